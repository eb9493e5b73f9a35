// Copyright (c) 2025, ScenePin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pin

import (
	"encoding/json"

	"github.com/scenepin/scenepin/math32"
)

// Anchor is an immutable, serializable record describing where an annotation
// was placed in 3D space. It is created exactly once, at pointer-down
// capture, and handed off to the external annotation store as an opaque
// payload. The JSON field layout is the de facto serialization contract with
// previously stored annotations: adding fields is safe; renaming or removing
// them is a breaking change.
type Anchor struct {

	// OnMesh is true if the capture hit a mesh surface.
	OnMesh bool `json:"isOnMesh"`

	// World is the absolute 3D position at capture time.
	World math32.Vector3 `json:"world"`

	// Local is present only when OnMesh; it expresses the anchor in the
	// mesh's local coordinate frame at capture time, so the anchor remains
	// correct if the mesh subsequently moves, rotates, or scales.
	Local *LocalAnchor `json:"local,omitempty"`

	// Screen is the pixel-space projection at capture time. It is for
	// diagnostic and initial-placement use only and is not authoritative
	// after the first frame.
	Screen math32.Vector2 `json:"screen"`

	// Camera is the camera pose snapshot at capture time.
	Camera CameraPose `json:"camera"`

	// Time is the capture instant in Unix milliseconds.
	Time int64 `json:"timestamp"`

	// SceneID is the logical scene identifier, attached when the anchor is
	// handed to the external store so multiple scenes can share one
	// annotation store without cross-talk.
	SceneID string `json:"sceneId"`
}

// LocalAnchor is the mesh-relative part of an [Anchor], recording both the
// local-frame position and the identity of the mesh it was captured on.
type LocalAnchor struct {
	Position     math32.Vector3 `json:"position"`
	MeshID       string         `json:"meshId"`
	MeshUniqueID int64          `json:"meshUniqueId"`
	MeshName     string         `json:"meshName"`
}

// CameraPose is a snapshot of an orbit camera at capture time.
type CameraPose struct {
	Alpha    float32        `json:"alpha"`
	Beta     float32        `json:"beta"`
	Radius   float32        `json:"radius"`
	Target   math32.Vector3 `json:"target"`
	Position math32.Vector3 `json:"position"`
}

// MarshalContext returns the anchor encoded as a JSON context payload
// suitable for embedding in an external annotation record.
func (a *Anchor) MarshalContext() ([]byte, error) {
	return json.Marshal(a)
}

// AnchorFromContext decodes an anchor from a JSON context payload.
// It returns false if the payload is empty or not an anchor.
func AnchorFromContext(data []byte) (*Anchor, bool) {
	if len(data) == 0 {
		return nil, false
	}
	a := &Anchor{}
	if err := json.Unmarshal(data, a); err != nil {
		return nil, false
	}
	return a, true
}
