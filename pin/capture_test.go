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
	"github.com/scenepin/scenepin/stage"
)

const tol = 1.0e-4

func tolAssertEqualVector(t *testing.T, tols float32, vt, va math32.Vector3) {
	t.Helper()
	assert.InDelta(t, vt.X, va.X, float64(tols), "X coord")
	assert.InDelta(t, vt.Y, va.Y, float64(tols), "Y coord")
	assert.InDelta(t, vt.Z, va.Z, float64(tols), "Z coord")
}

// makeScene builds the reference test scene: a unit cube at the origin
// viewed from (0,0,4), rendered to an 800x600 canvas at native display
// size.
func makeScene(t *testing.T) (*stage.Scene, *stage.Solid) {
	t.Helper()
	sc := stage.NewScene("test-scene")
	sc.Geom = pin.Viewport{
		RenderSize:  math32.Vec2(800, 600),
		DisplaySize: math32.Vec2(800, 600),
	}
	sc.Camera.FOV = 45
	sc.Camera.Aspect = 800.0 / 600.0
	sc.Camera.Pose.Pos.Set(0, 0, 4)
	sc.Camera.LookAtOrigin()

	cube := sc.AddSolid("cube", "box")
	sc.Step()
	return sc, cube
}

func center(sc *stage.Scene) pin.PointerEvent {
	return pin.PointerEvent{
		ClientX: sc.Geom.DisplaySize.X / 2,
		ClientY: sc.Geom.DisplaySize.Y / 2,
		Primary: true,
	}
}

func TestCaptureOnMesh(t *testing.T) {
	sc, cube := makeScene(t)

	var got []pin.Anchor
	cp := pin.NewCapturer(sc)
	cp.CommentMode = func() bool { return true }
	cp.SetHandler(func(a pin.Anchor) { got = append(got, a) })
	cp.Attach()
	defer cp.Detach()

	sc.PointerDown(center(sc))
	require.Len(t, got, 1)

	a := got[0]
	assert.True(t, a.OnMesh)
	assert.Equal(t, "test-scene", a.SceneID)
	require.NotNil(t, a.Local)
	assert.Equal(t, "cube", a.Local.MeshID)
	assert.Equal(t, cube.UniqueID(), a.Local.MeshUniqueID)
	assert.Equal(t, "box", a.Local.MeshName)

	// the ray through the canvas center hits the front face center
	tolAssertEqualVector(t, tol, math32.Vec3(0, 0, 0.5), a.World)
	tolAssertEqualVector(t, tol, math32.Vec3(0, 0, 0.5), a.Local.Position)

	// capture-time projection lands back on the canvas center
	assert.InDelta(t, 400, a.Screen.X, tol)
	assert.InDelta(t, 300, a.Screen.Y, tol)

	// orbit pose snapshot: camera is on the +Z axis, 4 units out
	assert.InDelta(t, 4, a.Camera.Radius, tol)
	tolAssertEqualVector(t, tol, math32.Vec3(0, 0, 4), a.Camera.Position)
	assert.NotZero(t, a.Time)
}

func TestCapturePlaneFallback(t *testing.T) {
	sc := stage.NewScene("test-scene")
	sc.Geom = pin.Viewport{
		RenderSize:  math32.Vec2(800, 600),
		DisplaySize: math32.Vec2(800, 600),
	}
	sc.Camera.FOV = 45
	sc.Camera.Aspect = 800.0 / 600.0
	sc.Camera.Pose.Pos.Set(0, 3, 4)
	sc.Camera.LookAtOrigin()
	sc.Step()

	var got []pin.Anchor
	cp := pin.NewCapturer(sc)
	cp.CommentMode = func() bool { return true }
	cp.SetHandler(func(a pin.Anchor) { got = append(got, a) })
	cp.Attach()
	defer cp.Detach()

	// empty scene: the click falls through to the ground plane
	sc.PointerDown(center(sc))
	require.Len(t, got, 1)

	a := got[0]
	assert.False(t, a.OnMesh)
	assert.Nil(t, a.Local)
	assert.InDelta(t, 0, a.World.Y, tol)
}

func TestCaptureRejectsParallelRay(t *testing.T) {
	sc, cube := makeScene(t)
	sc.RemoveSolid(cube)
	sc.Step()

	var got []pin.Anchor
	cp := pin.NewCapturer(sc)
	cp.CommentMode = func() bool { return true }
	cp.SetHandler(func(a pin.Anchor) { got = append(got, a) })
	cp.Attach()
	defer cp.Detach()

	// the camera is level with the ground plane, so the center ray is
	// parallel to it; no anchor may be produced
	sc.PointerDown(center(sc))
	assert.Empty(t, got)
}

func TestCaptureRejectsPlaneBehindRay(t *testing.T) {
	sc := stage.NewScene("test-scene")
	sc.Geom = pin.Viewport{
		RenderSize:  math32.Vec2(800, 600),
		DisplaySize: math32.Vec2(800, 600),
	}
	sc.Camera.Aspect = 800.0 / 600.0
	sc.Camera.Pose.Pos.Set(0, 1, 4)
	sc.Camera.LookAt(math32.Vec3(0, 5, 4), math32.Vec3(0, 1, 0))
	sc.Step()

	var got []pin.Anchor
	cp := pin.NewCapturer(sc)
	cp.CommentMode = func() bool { return true }
	cp.SetHandler(func(a pin.Anchor) { got = append(got, a) })
	cp.Attach()
	defer cp.Detach()

	// looking straight up: the plane intersection is behind the camera
	sc.PointerDown(center(sc))
	assert.Empty(t, got)
}

func TestCaptureGates(t *testing.T) {
	sc, _ := makeScene(t)

	var got []pin.Anchor
	cp := pin.NewCapturer(sc)
	cp.SetHandler(func(a pin.Anchor) { got = append(got, a) })
	cp.Attach()
	defer cp.Detach()

	// comment mode unset means disabled
	sc.PointerDown(center(sc))
	assert.Empty(t, got)

	cp.CommentMode = func() bool { return true }
	cp.Eligible = func() bool { return false }
	sc.PointerDown(center(sc))
	assert.Empty(t, got)

	// non-primary events are ignored
	cp.Eligible = nil
	ev := center(sc)
	ev.Primary = false
	sc.PointerDown(ev)
	assert.Empty(t, got)

	sc.PointerDown(center(sc))
	assert.Len(t, got, 1)
}

func TestCapturePendingRedeliveryIsOneShot(t *testing.T) {
	sc, _ := makeScene(t)

	cp := pin.NewCapturer(sc)
	cp.CommentMode = func() bool { return true }
	cp.Attach()
	defer cp.Detach()

	// no handler yet: the anchor parks in the pending slot
	sc.PointerDown(center(sc))

	var first, second []pin.Anchor
	cp.SetHandler(func(a pin.Anchor) { first = append(first, a) })
	require.Len(t, first, 1)
	assert.True(t, first[0].OnMesh)

	// a later handler change must not re-deliver
	cp.SetHandler(func(a pin.Anchor) { second = append(second, a) })
	assert.Empty(t, second)

	// a fresh capture goes to the current handler directly
	sc.PointerDown(center(sc))
	assert.Len(t, second, 1)
	assert.Len(t, first, 1)
}

func TestCaptureDetach(t *testing.T) {
	sc, _ := makeScene(t)

	var got []pin.Anchor
	cp := pin.NewCapturer(sc)
	cp.CommentMode = func() bool { return true }
	cp.SetHandler(func(a pin.Anchor) { got = append(got, a) })
	cp.Attach()
	cp.Detach()

	sc.PointerDown(center(sc))
	assert.Empty(t, got)
}
