// Copyright (c) 2025, ScenePin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pin

import "github.com/scenepin/scenepin/math32"

// Mesh is a non-owning handle to a mesh in the rendering engine. The scene
// exclusively owns mesh lifetime; a handle can go stale at any time, which
// [Mesh.Alive] reports. Implementations must be cheap to call every frame.
type Mesh interface {

	// ID returns the engine's stable string identifier for the mesh.
	ID() string

	// UniqueID returns the engine's unique numeric identifier for the mesh.
	UniqueID() int64

	// Name returns the mesh's display name, which is not necessarily unique.
	Name() string

	// WorldMatrix returns the mesh's current world transform. The returned
	// matrix must reflect any motion since the anchor was captured.
	WorldMatrix() *math32.Matrix4

	// Alive returns false once the mesh has been removed from the scene or
	// otherwise disposed; its WorldMatrix must not be used after that.
	Alive() bool
}

// MeshSource resolves mesh identities in the active scene. Lookups return
// nil when no matching mesh exists; callers fall back accordingly.
type MeshSource interface {
	MeshByID(id string) Mesh
	MeshByUniqueID(uid int64) Mesh
	MeshByName(name string) Mesh
}

// MeshResolver is an externally supplied identity override hook, consulted
// before the standard id / unique-id / name lookup chain. It may return nil
// to defer to the standard chain.
type MeshResolver func(a *Anchor) Mesh

// Hit is the result of a successful ray-cast pick.
type Hit struct {
	Point math32.Vector3
	Mesh  Mesh
}

// Picker performs ray operations against the scene at canvas pixel
// coordinates (render-target resolution).
type Picker interface {

	// Pick ray-casts against the scene's visible geometry and returns the
	// closest hit, or false if nothing was hit.
	Pick(pt math32.Vector2) (Hit, bool)

	// PointerRay constructs the world-space ray through the given canvas
	// point. It returns false if the camera state does not permit ray
	// construction (e.g., a degenerate projection).
	PointerRay(pt math32.Vector2) (math32.Ray, bool)
}

// View supplies camera and viewport state. Methods return value copies so a
// caller can take one consistent snapshot at the start of a frame pass.
type View interface {

	// ViewProjection returns the combined view-projection matrix.
	ViewProjection() math32.Matrix4

	// Viewport returns the current viewport geometry.
	Viewport() Viewport

	// CameraPose returns the current orbit-camera pose.
	CameraPose() CameraPose
}

// Engine is the full rendering-engine boundary consumed by this package.
// [stage.Scene] provides a reference implementation; production embedders
// adapt their own engine.
type Engine interface {
	Picker
	MeshSource
	View

	// SceneID returns the logical identifier of the active scene.
	SceneID() string

	// OnFrame registers a hook invoked once per rendered frame, and returns
	// a cancel function that must be called on teardown before any scene,
	// camera, or mesh references are released.
	OnFrame(fn func()) (cancel func())

	// OnPointerDown registers a pointer observer, returning its cancel.
	OnPointerDown(fn func(PointerEvent)) (cancel func())
}

// PointerEvent is a pointer-down event in client (viewport) coordinates.
type PointerEvent struct {
	ClientX float32
	ClientY float32

	// Primary is true for the primary button / touch contact.
	Primary bool
}
