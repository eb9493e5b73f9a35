// Copyright (c) 2025, ScenePin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package math32

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1.0e-5

func tolAssertEqualVector(t *testing.T, tols float32, vt, va Vector3) {
	t.Helper()
	assert.InDelta(t, vt.X, va.X, float64(tols), "X coord")
	assert.InDelta(t, vt.Y, va.Y, float64(tols), "Y coord")
	assert.InDelta(t, vt.Z, va.Z, float64(tols), "Z coord")
}

func TestMatrix4MulIdentity(t *testing.T) {
	m := Identity4()
	v := Vec3(1, 2, 3)
	tolAssertEqualVector(t, tol, v, v.MulMatrix4(m))
}

func TestMatrix4SetTransform(t *testing.T) {
	var m Matrix4
	m.SetTransform(Vec3(1, 2, 3), NewQuatAxisAngle(Vec3(0, 1, 0), DegToRad(90)), Vec3(1, 1, 1))

	// +X rotated 90 degrees about +Y lands on -Z, then translates
	got := Vec3(1, 0, 0).MulMatrix4(&m)
	tolAssertEqualVector(t, tol, Vec3(1, 2, 2), got)
}

func TestMatrix4Inverse(t *testing.T) {
	var m Matrix4
	m.SetTransform(Vec3(3, -1, 2), NewQuatAxisAngle(Vec3(1, 1, 0).Normal(), DegToRad(33)), Vec3(2, 0.5, 1.5))

	inv, err := m.Inverse()
	require.NoError(t, err)

	v := Vec3(-2, 4, 1)
	tolAssertEqualVector(t, tol, v, v.MulMatrix4(&m).MulMatrix4(inv))
}

func TestMatrix4InverseSingular(t *testing.T) {
	var m Matrix4
	m.SetTransform(Vec3(1, 1, 1), Quat{W: 1}, Vec3(0, 1, 1)) // zero X scale

	_, err := m.Inverse()
	require.ErrorIs(t, err, ErrSingular)
}

func TestMatrix4SetPerspective(t *testing.T) {
	var p Matrix4
	p.SetPerspective(90, 1, 1, 100)

	// edge of the frustum at the near plane maps to NDC x = 1
	near := Vector4FromVector3(Vec3(1, 0, -1), 1).MulMatrix4(&p).PerspDiv()
	tolAssertEqualVector(t, tol, Vec3(1, 0, -1), near)

	// far plane maps to NDC z = 1
	far := Vector4FromVector3(Vec3(0, 0, -100), 1).MulMatrix4(&p).PerspDiv()
	assert.InDelta(t, 1, far.Z, tol)
}

func TestMatrix4LookAt(t *testing.T) {
	// camera at +Z looking at origin: forward maps onto -Z
	rot := NewLookAt(Vec3(0, 0, 4), Vec3(0, 0, 0), Vec3(0, 1, 0))
	var q Quat
	q.SetFromRotationMatrix(rot)
	tolAssertEqualVector(t, tol, Vec3(0, 0, -1), Vec3(0, 0, -1).MulQuat(q))
	tolAssertEqualVector(t, tol, Vec3(0, 1, 0), Vec3(0, 1, 0).MulQuat(q))
}

func TestQuatRotate(t *testing.T) {
	q := NewQuatAxisAngle(Vec3(0, 1, 0), DegToRad(90))
	tolAssertEqualVector(t, tol, Vec3(0, 0, -1), Vec3(1, 0, 0).MulQuat(q))

	q.SetMul(NewQuatAxisAngle(Vec3(0, 1, 0), DegToRad(-90)))
	tolAssertEqualVector(t, tol, Vec3(1, 0, 0), Vec3(1, 0, 0).MulQuat(q))
}

func TestRayIntersectPlane(t *testing.T) {
	ray := NewRay(Vec3(0, 5, 0), Vec3(0, -1, 0))
	pt, ok := ray.IntersectPlane(NewPlane(Vec3(0, 1, 0), 0))
	require.True(t, ok)
	tolAssertEqualVector(t, tol, Vec3(0, 0, 0), pt)

	// ray pointing away from the plane
	away := NewRay(Vec3(0, 5, 0), Vec3(0, 1, 0))
	_, ok = away.IntersectPlane(NewPlane(Vec3(0, 1, 0), 0))
	assert.False(t, ok)
}

func TestRayIntersectBox(t *testing.T) {
	box := B3(-0.5, -0.5, -0.5, 0.5, 0.5, 0.5)

	ray := NewRay(Vec3(0, 0, 5), Vec3(0, 0, -1))
	pt, ok := ray.IntersectBox(box)
	require.True(t, ok)
	tolAssertEqualVector(t, tol, Vec3(0, 0, 0.5), pt)

	miss := NewRay(Vec3(2, 0, 5), Vec3(0, 0, -1))
	_, ok = miss.IntersectBox(box)
	assert.False(t, ok)
}

func TestBox3MulMatrix4(t *testing.T) {
	box := B3(-0.5, -0.5, -0.5, 0.5, 0.5, 0.5)
	var m Matrix4
	m.SetTransform(Vec3(2, 0, 0), Quat{W: 1}, Vec3(2, 2, 2))

	wb := box.MulMatrix4(&m)
	tolAssertEqualVector(t, tol, Vec3(1, -1, -1), wb.Min)
	tolAssertEqualVector(t, tol, Vec3(3, 1, 1), wb.Max)
}

func TestProjectionPipeline(t *testing.T) {
	// camera at (0,0,4) looking at the origin: the origin projects to the
	// exact center of NDC with depth inside the clip range
	var cam Matrix4
	cam.SetTransform(Vec3(0, 0, 4), Quat{W: 1}, Vec3(1, 1, 1))
	var view Matrix4
	require.NoError(t, view.SetInverse(&cam))

	var prjn Matrix4
	prjn.SetPerspective(45, 1.5, 0.1, 100)

	var vpm Matrix4
	vpm.MulMatrices(&prjn, &view)

	ndc := Vector4FromVector3(Vec3(0, 0, 0), 1).MulMatrix4(&vpm).PerspDiv()
	assert.InDelta(t, 0, ndc.X, tol)
	assert.InDelta(t, 0, ndc.Y, tol)
	assert.Greater(t, ndc.Z, float32(-1))
	assert.Less(t, ndc.Z, float32(1))
}
