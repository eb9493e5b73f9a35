// Copyright (c) 2025, ScenePin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scenepin/scenepin/math32"
	"github.com/scenepin/scenepin/pin"
)

const tol = 1.0e-4

func testScene() *Scene {
	sc := NewScene("s")
	sc.Geom = pin.Viewport{
		RenderSize:  math32.Vec2(800, 600),
		DisplaySize: math32.Vec2(800, 600),
	}
	sc.Camera.FOV = 45
	sc.Camera.Aspect = 800.0 / 600.0
	sc.Camera.Pose.Pos.Set(0, 0, 4)
	sc.Camera.LookAtOrigin()
	return sc
}

func TestCameraOrbitKeepsRadius(t *testing.T) {
	sc := testScene()
	sc.Camera.Orbit(5, 3)
	sc.Camera.Orbit(-8, 2)

	_, _, radius := sc.Camera.OrbitAngles()
	assert.InDelta(t, 4, radius, 1.0e-2)
	// still looking at the target
	assert.InDelta(t, 0, sc.Camera.Target.Length(), tol)
}

func TestCameraZoom(t *testing.T) {
	sc := testScene()
	sc.Camera.Zoom(0.5) // 50% further out
	_, _, radius := sc.Camera.OrbitAngles()
	assert.InDelta(t, 6, radius, tol)
}

func TestCameraPanMovesTarget(t *testing.T) {
	sc := testScene()
	sc.Camera.Pan(1, 0)
	_, _, radius := sc.Camera.OrbitAngles()
	assert.InDelta(t, 4, radius, tol)
	assert.NotZero(t, sc.Camera.Target.X)
}

func TestSceneLookups(t *testing.T) {
	sc := testScene()
	a := sc.AddSolid("a", "box")
	b := sc.AddSolid("b", "box")

	assert.Same(t, a, sc.MeshByID("a"))
	assert.Same(t, b, sc.MeshByUniqueID(b.UniqueID()))
	assert.Same(t, a, sc.MeshByName("box")) // first match wins
	assert.Nil(t, sc.MeshByID("nope"))
	assert.Nil(t, sc.MeshByUniqueID(999))
	assert.Nil(t, sc.MeshByName("nope"))

	assert.NotEqual(t, a.UniqueID(), b.UniqueID())
}

func TestRemoveSolid(t *testing.T) {
	sc := testScene()
	a := sc.AddSolid("a", "box")
	require.True(t, a.Alive())

	sc.RemoveSolid(a)
	assert.False(t, a.Alive())
	assert.Nil(t, sc.MeshByID("a"))
}

func TestPointerRayThroughCenter(t *testing.T) {
	sc := testScene()
	sc.Step()

	ray, ok := sc.PointerRay(math32.Vec2(400, 300))
	require.True(t, ok)

	// the center ray runs from the camera straight at the target
	assert.InDelta(t, 0, ray.Dir.X, tol)
	assert.InDelta(t, 0, ray.Dir.Y, tol)
	assert.InDelta(t, -1, ray.Dir.Z, tol)
	assert.InDelta(t, 0, ray.Origin.X, tol)
	assert.InDelta(t, 0, ray.Origin.Y, tol)
}

func TestPickNearest(t *testing.T) {
	sc := testScene()
	near := sc.AddSolid("near", "box").SetPos(0, 0, 1)
	sc.AddSolid("far", "box").SetPos(0, 0, -2)
	sc.Step()

	hit, ok := sc.Pick(math32.Vec2(400, 300))
	require.True(t, ok)
	assert.Same(t, near, hit.Mesh)
	assert.InDelta(t, 1.5, hit.Point.Z, tol)

	// miss: top-left corner ray passes outside both boxes
	_, ok = sc.Pick(math32.Vec2(0, 0))
	assert.False(t, ok)
}

func TestPickTracksWorldTransform(t *testing.T) {
	sc := testScene()
	sld := sc.AddSolid("a", "box").SetPos(1.5, 0, 0).SetScale(2, 2, 2)
	sc.Step()

	// the box is now centered at x=1.5 with extent 1 in each direction;
	// the center ray misses it, a ray toward its center hits
	_, ok := sc.Pick(math32.Vec2(400, 300))
	assert.False(t, ok)

	vpm := sc.ViewProjection()
	scr := pin.ToScreen(math32.Vec3(1.5, 0, 1), &vpm, sc.Geom)
	hit, ok := sc.Pick(math32.Vec2(scr.X, scr.Y))
	require.True(t, ok)
	assert.Same(t, sld, hit.Mesh)
	tolAssertHitNear(t, math32.Vec3(1.5, 0, 1), hit.Point)
}

func tolAssertHitNear(t *testing.T, want, got math32.Vector3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1.0e-3)
	assert.InDelta(t, want.Y, got.Y, 1.0e-3)
	assert.InDelta(t, want.Z, got.Z, 1.0e-3)
}

func TestSceneHooks(t *testing.T) {
	sc := testScene()

	frames := 0
	cancel := sc.OnFrame(func() { frames++ })
	sc.Step()
	sc.Step()
	assert.Equal(t, 2, frames)

	cancel()
	sc.Step()
	assert.Equal(t, 2, frames)

	var evs []pin.PointerEvent
	cancelPtr := sc.OnPointerDown(func(ev pin.PointerEvent) { evs = append(evs, ev) })
	sc.PointerDown(pin.PointerEvent{ClientX: 1, ClientY: 2, Primary: true})
	require.Len(t, evs, 1)
	assert.Equal(t, float32(1), evs[0].ClientX)

	cancelPtr()
	sc.PointerDown(pin.PointerEvent{Primary: true})
	assert.Len(t, evs, 1)
}

func TestSolidWorldMatrix(t *testing.T) {
	sc := testScene()
	sld := sc.AddSolid("a", "box").SetPos(1, 2, 3)
	sld.SetAxisRotation(0, 1, 0, 90)
	sc.Step()

	// local +X maps to world -Z, plus the translation
	got := math32.Vec3(1, 0, 0).MulMatrix4(sld.WorldMatrix())
	tolAssertHitNear(t, math32.Vec3(1, 2, 2), got)
}
