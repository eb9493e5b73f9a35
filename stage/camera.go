// Copyright (c) 2025, ScenePin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Derived from the GoKi gi3d scene graph: github.com/goki/gi/gi3d

package stage

import (
	"sync"

	"github.com/scenepin/scenepin/math32"
)

// Camera defines the properties of the scene camera: an orbit camera that
// circles a target point at a given distance, relative to pointing at the
// negative Z axis with up in the positive Y direction.
type Camera struct {
	// Pose is the overall orientation and direction of the camera.
	Pose Pose

	// CamMu protects camera data across the render and input goroutines.
	CamMu sync.RWMutex

	// Target is the location the camera is pointing at. It defaults to the
	// origin, moves with panning movements, and is reset by LookAt.
	Target math32.Vector3

	// UpDir is which way is up. Defaults to positive Y axis, and is reset
	// by LookAt.
	UpDir math32.Vector3

	// FOV is the vertical field of view in degrees.
	FOV float32

	// Aspect is the aspect ratio (width / height).
	Aspect float32

	// Near is the near plane z coordinate.
	Near float32

	// Far is the far plane z coordinate.
	Far float32

	// ViewMatrix is the inverse of Pose.Matrix.
	ViewMatrix math32.Matrix4

	// PrjnMatrix is the perspective projection transform.
	PrjnMatrix math32.Matrix4

	// InvPrjnMatrix is the inverse of PrjnMatrix.
	InvPrjnMatrix math32.Matrix4
}

func (cm *Camera) Defaults() {
	cm.FOV = 30
	cm.Aspect = 1.5
	cm.Near = .01
	cm.Far = 1000
	cm.DefaultPose()
}

// DefaultPose resets the camera pose to the default location and
// orientation, looking at the origin from 0,0,10, with up Y axis.
func (cm *Camera) DefaultPose() {
	cm.Pose.Defaults()
	cm.Pose.Pos.Set(0, 0, 10)
	cm.LookAtOrigin()
}

// UpdateMatrix updates the view and projection matrices.
func (cm *Camera) UpdateMatrix() {
	cm.CamMu.Lock()
	defer cm.CamMu.Unlock()

	cm.Pose.UpdateMatrix()
	cm.ViewMatrix.SetInverse(&cm.Pose.Matrix)
	cm.PrjnMatrix.SetPerspective(cm.FOV, cm.Aspect, cm.Near, cm.Far)
	cm.InvPrjnMatrix.SetInverse(&cm.PrjnMatrix)
}

// ViewProjection returns the combined projection * view matrix, which maps
// world coordinates directly to clip space.
func (cm *Camera) ViewProjection() math32.Matrix4 {
	cm.CamMu.RLock()
	defer cm.CamMu.RUnlock()
	var vpm math32.Matrix4
	vpm.MulMatrices(&cm.PrjnMatrix, &cm.ViewMatrix)
	return vpm
}

// LookAt points the camera at the given target location, using the given up
// direction, and sets the Target, UpDir fields for future camera movements.
func (cm *Camera) LookAt(target, upDir math32.Vector3) {
	cm.CamMu.Lock()
	cm.Target = target
	if upDir.IsNil() {
		upDir = math32.Vec3(0, 1, 0)
	}
	cm.UpDir = upDir
	cm.Pose.LookAt(target, upDir)
	cm.CamMu.Unlock()
	cm.UpdateMatrix()
}

// LookAtOrigin points the camera at the origin with the Y axis pointing up.
func (cm *Camera) LookAtOrigin() {
	cm.LookAt(math32.Vector3{}, math32.Vec3(0, 1, 0))
}

// LookAtTarget points the camera at the current target using the current up
// direction.
func (cm *Camera) LookAtTarget() {
	cm.LookAt(cm.Target, cm.UpDir)
}

// ViewVector is the vector between the camera position and target.
func (cm *Camera) ViewVector() math32.Vector3 {
	cm.CamMu.RLock()
	defer cm.CamMu.RUnlock()
	return cm.Pose.Pos.Sub(cm.Target)
}

// Orbit moves the camera along the given 2D axes in degrees
// (delX = left/right, delY = up/down), relative to the current position and
// orientation, keeping the same distance from the Target, and rotating the
// camera and the up direction vector to keep looking at the target.
func (cm *Camera) Orbit(delX, delY float32) {
	ctdir := cm.ViewVector()
	if ctdir.IsNil() {
		ctdir.Set(0, 0, 1)
	}
	dir := ctdir.Normal()

	cm.CamMu.Lock()
	up := cm.UpDir
	right := cm.UpDir.Cross(dir).Normal()

	// delX rotates around the up vector
	dxq := math32.NewQuatAxisAngle(up, math32.DegToRad(delX))
	dx := ctdir.MulQuat(dxq).Sub(ctdir)
	// delY rotates around the right vector
	dyq := math32.NewQuatAxisAngle(right, math32.DegToRad(delY))
	dy := ctdir.MulQuat(dyq).Sub(ctdir)

	cm.Pose.Pos = cm.Pose.Pos.Add(dx).Add(dy)
	cm.UpDir = cm.UpDir.MulQuat(dyq) // only the vertical orbit affects up
	cm.CamMu.Unlock()

	cm.LookAtTarget()
}

// Pan moves the camera along the given 2D axes (left/right, up/down),
// relative to the current position and orientation (i.e., in the plane of
// the current window view), and moves the target by the same increment.
func (cm *Camera) Pan(delX, delY float32) {
	cm.CamMu.Lock()
	dx := math32.Vec3(-delX, 0, 0).MulQuat(cm.Pose.Quat)
	dy := math32.Vec3(0, -delY, 0).MulQuat(cm.Pose.Quat)
	td := dx.Add(dy)
	cm.Pose.Pos.SetAdd(td)
	cm.Target.SetAdd(td)
	cm.CamMu.Unlock()
	cm.UpdateMatrix()
}

// Zoom moves along the view axis the given percent closer or further from
// the target. It also moves the target back if its distance is < 1, so the
// camera never overruns its own target.
func (cm *Camera) Zoom(zoomPct float32) {
	ctaxis := cm.ViewVector()
	cm.CamMu.Lock()
	if ctaxis.IsNil() {
		ctaxis.Set(0, 0, 1)
	}
	dist := ctaxis.Length()
	del := ctaxis.MulScalar(zoomPct)
	cm.Pose.Pos.SetAdd(del)
	if zoomPct < 0 && dist < 1 {
		cm.Target.SetAdd(del)
	}
	cm.CamMu.Unlock()
	cm.UpdateMatrix()
}

// OrbitAngles returns the orbit-camera spherical coordinates of the current
// pose around the target: alpha is the azimuth in the XZ plane measured
// from +X toward +Z, beta is the polar angle from the +Y axis, and radius
// is the distance to the target. All angles are radians.
func (cm *Camera) OrbitAngles() (alpha, beta, radius float32) {
	vv := cm.ViewVector()
	radius = vv.Length()
	if radius == 0 {
		return 0, 0, 0
	}
	alpha = math32.Atan2(vv.Z, vv.X)
	beta = math32.Acos(math32.Clamp(vv.Y/radius, -1, 1))
	return alpha, beta, radius
}
