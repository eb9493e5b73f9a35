// Copyright (c) 2025, ScenePin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Derived from G3N: github.com/g3n/engine/math32
// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
// with modifications needed to suit ScenePin functionality.

package math32

// Ray represents an oriented 3D line segment defined by an origin point
// and a unit direction vector.
type Ray struct {
	Origin Vector3
	Dir    Vector3
}

// NewRay returns a new [Ray] with the given origin and direction;
// the direction should be a unit vector.
func NewRay(origin, dir Vector3) Ray {
	return Ray{Origin: origin, Dir: dir}
}

// At returns the point at the given distance along the ray.
func (r *Ray) At(t float32) Vector3 {
	return r.Dir.MulScalar(t).Add(r.Origin)
}

// IntersectPlane returns the point where the ray intersects the given plane,
// or false if the ray is parallel to the plane or the intersection lies
// behind the ray origin.
func (r *Ray) IntersectPlane(plane Plane) (Vector3, bool) {
	denom := plane.Norm.Dot(r.Dir)
	if denom == 0 {
		// coplanar ray intersects everywhere; report the origin
		if plane.DistanceToPoint(r.Origin) == 0 {
			return r.Origin, true
		}
		return Vector3{}, false
	}
	t := -(r.Origin.Dot(plane.Norm) + plane.Off) / denom
	if t < 0 {
		return Vector3{}, false
	}
	return r.At(t), true
}

// IntersectBox returns the point where the ray enters the given
// axis-aligned bounding box, or false if it misses it entirely.
// A ray starting inside the box intersects at its exit point.
func (r *Ray) IntersectBox(box Box3) (Vector3, bool) {
	var tmin, tmax, tymin, tymax, tzmin, tzmax float32

	invdirx := 1 / r.Dir.X
	invdiry := 1 / r.Dir.Y
	invdirz := 1 / r.Dir.Z

	origin := r.Origin

	if invdirx >= 0 {
		tmin = (box.Min.X - origin.X) * invdirx
		tmax = (box.Max.X - origin.X) * invdirx
	} else {
		tmin = (box.Max.X - origin.X) * invdirx
		tmax = (box.Min.X - origin.X) * invdirx
	}

	if invdiry >= 0 {
		tymin = (box.Min.Y - origin.Y) * invdiry
		tymax = (box.Max.Y - origin.Y) * invdiry
	} else {
		tymin = (box.Max.Y - origin.Y) * invdiry
		tymax = (box.Min.Y - origin.Y) * invdiry
	}

	if tmin > tymax || tymin > tmax {
		return Vector3{}, false
	}

	// these lines also handle the case where tmin or tmax is NaN
	// (result of 0 * Infinity); NaN comparisons return false
	if tymin > tmin || IsNaN(tmin) {
		tmin = tymin
	}
	if tymax < tmax || IsNaN(tmax) {
		tmax = tymax
	}

	if invdirz >= 0 {
		tzmin = (box.Min.Z - origin.Z) * invdirz
		tzmax = (box.Max.Z - origin.Z) * invdirz
	} else {
		tzmin = (box.Max.Z - origin.Z) * invdirz
		tzmax = (box.Min.Z - origin.Z) * invdirz
	}

	if tmin > tzmax || tzmin > tmax {
		return Vector3{}, false
	}
	if tzmin > tmin || IsNaN(tmin) {
		tmin = tzmin
	}
	if tzmax < tmax || IsNaN(tmax) {
		tmax = tzmax
	}

	// return point closest to the ray (positive side)
	if tmax < 0 {
		return Vector3{}, false
	}
	if tmin >= 0 {
		return r.At(tmin), true
	}
	return r.At(tmax), true
}
