// Copyright (c) 2025, ScenePin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pin_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scenepin/scenepin/math32"
	"github.com/scenepin/scenepin/pin"
)

func TestToScreenDisplayScaling(t *testing.T) {
	// render target at 2x device-pixel ratio: screen output must be in
	// display pixels, independent of the internal resolution
	vpm := math32.Identity4()

	native := pin.Viewport{
		RenderSize:  math32.Vec2(800, 600),
		DisplaySize: math32.Vec2(800, 600),
	}
	hidpi := pin.Viewport{
		RenderSize:  math32.Vec2(1600, 1200),
		DisplaySize: math32.Vec2(800, 600),
	}

	p := math32.Vec3(0.5, 0.5, 0)
	a := pin.ToScreen(p, vpm, native)
	b := pin.ToScreen(p, vpm, hidpi)
	assert.InDelta(t, a.X, b.X, tol)
	assert.InDelta(t, a.Y, b.Y, tol)
	assert.InDelta(t, a.Z, b.Z, tol)

	// NDC (0.5, 0.5) is three quarters across, one quarter down
	assert.InDelta(t, 600, a.X, tol)
	assert.InDelta(t, 150, a.Y, tol)
	assert.InDelta(t, 0.5, a.Z, tol)
}

func TestCanvasPoint(t *testing.T) {
	vp := pin.Viewport{
		RenderSize:  math32.Vec2(1600, 1200),
		DisplaySize: math32.Vec2(800, 600),
		DisplayPos:  math32.Vec2(20, 40),
	}

	// client coords are offset by the canvas position and scaled to the
	// render-target resolution
	pt := vp.CanvasPoint(420, 340)
	assert.InDelta(t, 800, pt.X, tol)
	assert.InDelta(t, 600, pt.Y, tol)
}

func TestToLocalRoundTrip(t *testing.T) {
	var world math32.Matrix4
	world.SetTransform(
		math32.Vec3(2, -1, 3),
		math32.NewQuatAxisAngle(math32.Vec3(0, 1, 0), math32.DegToRad(40)),
		math32.Vec3(2, 2, 2),
	)

	p := math32.Vec3(1, 2, 3)
	local, ok := pin.ToLocal(p, &world)
	require.True(t, ok)
	tolAssertEqualVector(t, tol, p, local.MulMatrix4(&world))
}

func TestToLocalSingular(t *testing.T) {
	var world math32.Matrix4
	world.SetTransform(math32.Vector3{}, math32.Quat{W: 1}, math32.Vec3(1, 0, 1))

	_, ok := pin.ToLocal(math32.Vec3(1, 2, 3), &world)
	assert.False(t, ok)
}
