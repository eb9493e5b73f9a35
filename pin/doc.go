// Copyright (c) 2025, ScenePin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pin anchors annotations to points on a live, camera-controlled 3D
// scene and keeps their screen-space positions synchronized with scene
// animation and camera motion.
//
// The lifecycle has three parts. [Capturer] turns a pointer interaction
// into a serializable [Anchor], recording the picked mesh's identity and
// the pick point in the mesh's local frame so the anchor survives mesh
// motion. [Resolve] rebuilds renderable [ResolvedPin] state from the
// external store's current annotation set, falling back to the captured
// world position when a mesh cannot be found in the active scene. [Tracker]
// reprojects every resolved pin to display pixels once per rendered frame.
//
// The rendering engine and the annotation store are collaborators reached
// only through the interfaces in this package; package stage provides a
// reference engine and package annot a reference store. Nothing in this
// package is fatal to the host: every failure path degrades to "pin not
// shown" or "anchor not captured", preserving render-loop liveness.
package pin
