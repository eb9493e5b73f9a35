// Copyright (c) 2025, ScenePin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stage

import (
	"github.com/scenepin/scenepin/math32"
	"github.com/scenepin/scenepin/pin"
)

// Solid is a single scene element: a transform plus the local-frame
// bounding box of its geometry. Picking is against the bounding box; this
// package has no notion of materials or rendering proper.
//
// A Solid is a live handle into its owning [Scene]. Once removed from the
// scene it reports Alive() == false and must not be repositioned.
type Solid struct {
	// Pose is the solid's transform relative to the scene root.
	Pose Pose

	// Box is the local-frame bounding box of the solid's geometry.
	// Defaults to a unit cube centered on the origin.
	Box math32.Box3

	name     string
	id       string
	uid      int64
	released bool
}

// ID returns the solid's stable string identifier, unique within its scene.
func (sld *Solid) ID() string { return sld.id }

// UniqueID returns the scene-assigned numeric identifier.
func (sld *Solid) UniqueID() int64 { return sld.uid }

// Name returns the solid's display name, which need not be unique.
func (sld *Solid) Name() string { return sld.name }

// WorldMatrix returns the solid's current world transform.
func (sld *Solid) WorldMatrix() *math32.Matrix4 { return &sld.Pose.WorldMatrix }

// Alive returns false once the solid has been removed from its scene.
func (sld *Solid) Alive() bool { return !sld.released }

// Release marks the solid disposed without removing it from the scene,
// for simulating engine-side disposal. [Scene.RemoveSolid] calls it.
func (sld *Solid) Release() { sld.released = true }

// SetPos sets the [Pose.Pos] position of the solid.
func (sld *Solid) SetPos(x, y, z float32) *Solid {
	sld.Pose.Pos.Set(x, y, z)
	return sld
}

// SetScale sets the [Pose.Scale] scale of the solid.
func (sld *Solid) SetScale(x, y, z float32) *Solid {
	sld.Pose.Scale.Set(x, y, z)
	return sld
}

// SetAxisRotation sets the [Pose.Quat] rotation of the solid,
// from local axis and angle in degrees.
func (sld *Solid) SetAxisRotation(x, y, z, angle float32) *Solid {
	sld.Pose.SetAxisRotation(x, y, z, angle)
	return sld
}

// SetBox sets the solid's local bounding box from center and size.
func (sld *Solid) SetBox(center, size math32.Vector3) *Solid {
	sld.Box.SetFromCenterAndSize(center, size)
	return sld
}

var _ pin.Mesh = &Solid{}
