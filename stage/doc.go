// Copyright (c) 2025, ScenePin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stage is a minimal reference scene engine for the anchoring
// pipeline: a flat collection of transformed solids, an orbit camera, and
// bounding-box picking, advanced one explicit frame at a time. It exists to
// exercise [pin.Engine] end to end without a GPU; production embedders
// adapt their real rendering engine instead.
package stage
