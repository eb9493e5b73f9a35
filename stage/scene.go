// Copyright (c) 2025, ScenePin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stage

import (
	"sort"
	"sync"

	"github.com/scenepin/scenepin/math32"
	"github.com/scenepin/scenepin/pin"
)

// Scene is the root of the stage scene graph: a flat collection of solids
// viewed through an orbit [Camera]. It implements the [pin.Engine]
// boundary, so the anchoring pipeline can run against it unmodified.
//
// The scene is advanced explicitly by [Scene.Step]; there is no internal
// render loop. Each step updates the camera and world matrices and then
// runs the registered frame hooks, mirroring a per-frame render callback.
type Scene struct {
	// Camera is the scene's single viewpoint.
	Camera Camera

	// Geom is the canvas geometry used for projection and picking.
	Geom pin.Viewport

	id     string
	mu     sync.Mutex
	solids []*Solid
	byID   map[string]*Solid
	uidSeq int64

	hookMu     sync.Mutex
	hookSeq    int
	frameFns   map[int]func()
	pointerFns map[int]func(pin.PointerEvent)
}

// NewScene returns a new scene with the given logical identifier, a default
// camera, and no solids.
func NewScene(id string) *Scene {
	sc := &Scene{
		id:         id,
		byID:       map[string]*Solid{},
		frameFns:   map[int]func(){},
		pointerFns: map[int]func(pin.PointerEvent){},
	}
	sc.Camera.Defaults()
	return sc
}

// SceneID returns the scene's logical identifier.
func (sc *Scene) SceneID() string { return sc.id }

// AddSolid creates a solid with the given id and display name, registers it
// in the scene, and returns it. The solid starts at the origin with unit
// scale and a unit-cube bounding box.
func (sc *Scene) AddSolid(id, name string) *Solid {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.uidSeq++
	sld := &Solid{id: id, name: name, uid: sc.uidSeq}
	sld.Pose.Defaults()
	sld.Box.SetFromCenterAndSize(math32.Vector3{}, math32.Vec3(1, 1, 1))
	sc.solids = append(sc.solids, sld)
	sc.byID[id] = sld
	return sld
}

// RemoveSolid removes the solid from the scene and marks it released;
// existing handles to it report Alive() == false from then on.
func (sc *Scene) RemoveSolid(sld *Solid) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	for i, s := range sc.solids {
		if s == sld {
			sc.solids = append(sc.solids[:i], sc.solids[i+1:]...)
			break
		}
	}
	if sc.byID[sld.id] == sld {
		delete(sc.byID, sld.id)
	}
	sld.released = true
}

// MeshByID returns the solid with the given id, or nil.
func (sc *Scene) MeshByID(id string) pin.Mesh {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sld, ok := sc.byID[id]; ok {
		return sld
	}
	return nil
}

// MeshByUniqueID returns the solid with the given numeric id, or nil.
func (sc *Scene) MeshByUniqueID(uid int64) pin.Mesh {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	for _, sld := range sc.solids {
		if sld.uid == uid {
			return sld
		}
	}
	return nil
}

// MeshByName returns the first solid with the given display name, or nil.
func (sc *Scene) MeshByName(name string) pin.Mesh {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	for _, sld := range sc.solids {
		if sld.name == name {
			return sld
		}
	}
	return nil
}

// Viewport returns the scene's canvas geometry.
func (sc *Scene) Viewport() pin.Viewport { return sc.Geom }

// ViewProjection returns the camera's combined view-projection matrix.
func (sc *Scene) ViewProjection() math32.Matrix4 {
	return sc.Camera.ViewProjection()
}

// CameraPose returns the orbit-camera pose snapshot used in anchors.
func (sc *Scene) CameraPose() pin.CameraPose {
	alpha, beta, radius := sc.Camera.OrbitAngles()
	sc.Camera.CamMu.RLock()
	defer sc.Camera.CamMu.RUnlock()
	return pin.CameraPose{
		Alpha:    alpha,
		Beta:     beta,
		Radius:   radius,
		Target:   sc.Camera.Target,
		Position: sc.Camera.Pose.Pos,
	}
}

// PointerRay constructs the world-space ray through the given canvas point
// (render-target pixels) by unprojecting the near and far clip-plane points
// through the inverse view-projection matrix. It returns false when the
// combined matrix is not invertible.
func (sc *Scene) PointerRay(pt math32.Vector2) (math32.Ray, bool) {
	if sc.Geom.RenderSize.X <= 0 || sc.Geom.RenderSize.Y <= 0 {
		return math32.Ray{}, false
	}
	ndcX := 2*pt.X/sc.Geom.RenderSize.X - 1
	ndcY := 1 - 2*pt.Y/sc.Geom.RenderSize.Y

	vpm := sc.Camera.ViewProjection()
	inv, err := vpm.Inverse()
	if err != nil {
		return math32.Ray{}, false
	}
	near := math32.Vector4FromVector3(math32.Vec3(ndcX, ndcY, -1), 1).MulMatrix4(inv).PerspDiv()
	far := math32.Vector4FromVector3(math32.Vec3(ndcX, ndcY, 1), 1).MulMatrix4(inv).PerspDiv()

	dir := far.Sub(near)
	if dir.IsNil() {
		return math32.Ray{}, false
	}
	return math32.NewRay(near, dir.Normal()), true
}

// Pick ray-casts the pointer ray against the world-space bounding boxes of
// all solids and returns the closest hit. Intersections are sorted by
// distance from the ray origin.
func (sc *Scene) Pick(pt math32.Vector2) (pin.Hit, bool) {
	ray, ok := sc.PointerRay(pt)
	if !ok {
		return pin.Hit{}, false
	}

	type solidPoint struct {
		sld   *Solid
		point math32.Vector3
	}
	var sp []solidPoint

	sc.mu.Lock()
	for _, sld := range sc.solids {
		wbb := sld.Box.MulMatrix4(&sld.Pose.WorldMatrix)
		if p, has := ray.IntersectBox(wbb); has {
			sp = append(sp, solidPoint{sld, p})
		}
	}
	sc.mu.Unlock()

	if len(sp) == 0 {
		return pin.Hit{}, false
	}
	sort.Slice(sp, func(i, j int) bool {
		di := sp[i].point.DistanceTo(ray.Origin)
		dj := sp[j].point.DistanceTo(ray.Origin)
		return di < dj
	})
	return pin.Hit{Point: sp[0].point, Mesh: sp[0].sld}, true
}

// OnFrame registers a hook invoked at the end of every [Scene.Step].
func (sc *Scene) OnFrame(fn func()) (cancel func()) {
	sc.hookMu.Lock()
	defer sc.hookMu.Unlock()
	sc.hookSeq++
	key := sc.hookSeq
	sc.frameFns[key] = fn
	return func() {
		sc.hookMu.Lock()
		defer sc.hookMu.Unlock()
		delete(sc.frameFns, key)
	}
}

// OnPointerDown registers a pointer observer, invoked by [Scene.PointerDown].
func (sc *Scene) OnPointerDown(fn func(pin.PointerEvent)) (cancel func()) {
	sc.hookMu.Lock()
	defer sc.hookMu.Unlock()
	sc.hookSeq++
	key := sc.hookSeq
	sc.pointerFns[key] = fn
	return func() {
		sc.hookMu.Lock()
		defer sc.hookMu.Unlock()
		delete(sc.pointerFns, key)
	}
}

// PointerDown dispatches a pointer-down event to all registered observers.
// The host's input layer calls this with events already in client
// coordinates.
func (sc *Scene) PointerDown(ev pin.PointerEvent) {
	sc.hookMu.Lock()
	fns := make([]func(pin.PointerEvent), 0, len(sc.pointerFns))
	for _, fn := range sc.pointerFns {
		fns = append(fns, fn)
	}
	sc.hookMu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

// Step advances the scene by one frame: camera matrices and solid world
// matrices are brought current, then the frame hooks run. Hooks therefore
// always observe a fully consistent scene.
func (sc *Scene) Step() {
	sc.Camera.UpdateMatrix()
	sc.UpdateWorldMatrix()

	sc.hookMu.Lock()
	fns := make([]func(), 0, len(sc.frameFns))
	for _, fn := range sc.frameFns {
		fns = append(fns, fn)
	}
	sc.hookMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// UpdateWorldMatrix recomputes every solid's local and world matrices.
func (sc *Scene) UpdateWorldMatrix() {
	ident := math32.Identity4()
	sc.mu.Lock()
	defer sc.mu.Unlock()
	for _, sld := range sc.solids {
		sld.Pose.UpdateMatrix()
		sld.Pose.UpdateWorldMatrix(ident)
	}
}

var _ pin.Engine = &Scene{}
