// Copyright (c) 2025, ScenePin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pin

import "github.com/scenepin/scenepin/math32"

// Viewport describes the canvas geometry used to map projected points to
// display pixels. RenderSize is the render target's internal resolution;
// DisplaySize is the canvas's on-screen (CSS) size, which differs from
// RenderSize under device-pixel-ratio scaling and responsive layouts.
// DisplayPos is the canvas's top-left corner in client coordinates.
type Viewport struct {
	RenderSize  math32.Vector2
	DisplaySize math32.Vector2
	DisplayPos  math32.Vector2
}

// CanvasPoint converts client (viewport) coordinates to canvas-local pixel
// coordinates at render-target resolution.
func (vp *Viewport) CanvasPoint(clientX, clientY float32) math32.Vector2 {
	pt := math32.Vec2(clientX-vp.DisplayPos.X, clientY-vp.DisplayPos.Y)
	if vp.DisplaySize.X > 0 {
		pt.X *= vp.RenderSize.X / vp.DisplaySize.X
	}
	if vp.DisplaySize.Y > 0 {
		pt.Y *= vp.RenderSize.Y / vp.DisplaySize.Y
	}
	return pt
}

// ToLocal transforms a world point into a mesh's local coordinate frame
// given the mesh's world transform. It returns false if the transform is not
// invertible (degenerate scale); callers must treat that as "capture failed
// on this mesh", not a fatal error.
func ToLocal(world math32.Vector3, meshWorld *math32.Matrix4) (math32.Vector3, bool) {
	inv, err := meshWorld.Inverse()
	if err != nil {
		return math32.Vector3{}, false
	}
	return world.MulMatrix4(inv), true
}

// ToScreen projects a world point through the combined view-projection
// matrix into the viewport's display pixel rectangle. The returned X and Y
// are display pixels; Z is normalized depth, in [0, 1] when the point lies
// between the near and far planes. Z is used purely as a visibility test,
// not for depth sorting. Points at or behind the camera plane produce
// out-of-range (or NaN) depth and fail the [0, 1] test.
func ToScreen(world math32.Vector3, viewProj *math32.Matrix4, vp Viewport) math32.Vector3 {
	ndc := math32.Vector4FromVector3(world, 1).MulMatrix4(viewProj).PerspDiv()

	// NDC to render-target pixels, Y down
	px := (ndc.X + 1) * 0.5 * vp.RenderSize.X
	py := (1 - ndc.Y) * 0.5 * vp.RenderSize.Y

	// render-target pixels to display pixels, per axis
	if vp.RenderSize.X > 0 {
		px *= vp.DisplaySize.X / vp.RenderSize.X
	}
	if vp.RenderSize.Y > 0 {
		py *= vp.DisplaySize.Y / vp.RenderSize.Y
	}

	// GL-convention NDC depth [-1, 1] to normalized [0, 1]
	return math32.Vec3(px, py, (ndc.Z+1)*0.5)
}
