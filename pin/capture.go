// Copyright (c) 2025, ScenePin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pin

import (
	"sync"
	"time"

	"github.com/scenepin/scenepin/math32"
)

// PlaneEps is the parallelism threshold for the ground-plane fallback:
// a pointer ray with |dot(normal, direction)| at or below this value is
// treated as parallel to the reference plane and produces no anchor.
const PlaneEps = 1e-6

// Capturer turns pointer-down events on the scene into serializable
// [Anchor] records and hands them to the external annotation-creation
// handler. All failure paths (no pick, degenerate plane intersection,
// missing dependency, non-invertible mesh transform) abort the capture for
// that pointer event silently; these are expected, frequent conditions,
// such as clicking on empty sky, not error states.
//
// The only state a Capturer owns is the single "last captured anchor, not
// yet delivered" slot used when the handler is not yet available.
type Capturer struct {

	// Engine is the rendering-engine boundary used for picking, ray
	// construction, camera state, and the scene identifier.
	Engine Engine

	// CommentMode reports whether anchor placement is currently enabled.
	// A nil func means disabled.
	CommentMode func() bool

	// Eligible reports whether the scene is in a state that permits
	// capture (e.g., not mid-animation). A nil func means always eligible.
	Eligible func() bool

	// PlaneNormal is the reference plane normal for the no-geometry
	// fallback; the plane passes through the origin. Defaults to +Y.
	PlaneNormal math32.Vector3

	mu      sync.Mutex
	handler func(Anchor)
	pending *Anchor
	cancel  func()
}

// NewCapturer returns a new [Capturer] for the given engine,
// with the reference plane normal set to the +Y up axis.
func NewCapturer(eng Engine) *Capturer {
	return &Capturer{
		Engine:      eng,
		PlaneNormal: math32.Vec3(0, 1, 0),
	}
}

// Attach registers the capturer as a pointer observer on its engine.
// Detach must be called on teardown.
func (cp *Capturer) Attach() {
	cp.Detach()
	cp.cancel = cp.Engine.OnPointerDown(cp.PointerDown)
}

// Detach deregisters the pointer observer. It is safe to call when not
// attached.
func (cp *Capturer) Detach() {
	if cp.cancel != nil {
		cp.cancel()
		cp.cancel = nil
	}
}

// SetHandler sets the annotation-creation handler. If an anchor was
// captured while no handler was available, it is delivered now, exactly
// once; a later handler change never re-delivers it.
func (cp *Capturer) SetHandler(h func(Anchor)) {
	cp.mu.Lock()
	cp.handler = h
	var redeliver *Anchor
	if h != nil && cp.pending != nil {
		redeliver = cp.pending
		cp.pending = nil
	}
	cp.mu.Unlock()
	if redeliver != nil {
		h(*redeliver)
	}
}

// PointerDown performs a capture for the given pointer event, subject to
// the comment-mode and eligibility gates. Non-primary events are ignored.
func (cp *Capturer) PointerDown(ev PointerEvent) {
	if !ev.Primary {
		return
	}
	if cp.CommentMode == nil || !cp.CommentMode() {
		return
	}
	if cp.Eligible != nil && !cp.Eligible() {
		return
	}
	eng := cp.Engine
	if eng == nil {
		return
	}

	vp := eng.Viewport()
	pt := vp.CanvasPoint(ev.ClientX, ev.ClientY)

	if hit, ok := eng.Pick(pt); ok {
		cp.CaptureAt(hit.Point, hit.Mesh)
		return
	}

	// no geometry hit: intersect the pointer ray with the reference plane
	world, ok := cp.planePoint(pt)
	if !ok {
		return
	}
	cp.CaptureAt(world, nil)
}

// planePoint intersects the pointer ray through pt with the infinite
// reference plane (normal PlaneNormal, through the origin). It returns
// false when the ray is parallel to the plane or intersects it behind the
// ray origin.
func (cp *Capturer) planePoint(pt math32.Vector2) (math32.Vector3, bool) {
	ray, ok := cp.Engine.PointerRay(pt)
	if !ok {
		return math32.Vector3{}, false
	}
	n := cp.PlaneNormal
	denom := n.Dot(ray.Dir)
	if math32.Abs(denom) <= PlaneEps {
		return math32.Vector3{}, false
	}
	t := n.Dot(ray.Origin.Negate()) / denom
	if t < 0 {
		return math32.Vector3{}, false
	}
	return ray.At(t), true
}

// CaptureAt builds an anchor for the given world point and optional mesh
// and delivers it. It is the manual entry point for callers that perform
// their own picking; mesh may be nil for a free-space anchor.
func (cp *Capturer) CaptureAt(world math32.Vector3, mesh Mesh) {
	eng := cp.Engine
	if eng == nil {
		return
	}

	a := Anchor{
		World:   world,
		Camera:  eng.CameraPose(),
		Time:    time.Now().UnixMilli(),
		SceneID: eng.SceneID(),
	}

	if mesh != nil {
		local, ok := ToLocal(world, mesh.WorldMatrix())
		if !ok {
			// non-invertible mesh transform aborts the capture
			return
		}
		a.OnMesh = true
		a.Local = &LocalAnchor{
			Position:     local,
			MeshID:       mesh.ID(),
			MeshUniqueID: mesh.UniqueID(),
			MeshName:     mesh.Name(),
		}
	}

	vpm := eng.ViewProjection()
	scr := ToScreen(world, &vpm, eng.Viewport())
	a.Screen = math32.Vec2(scr.X, scr.Y)

	cp.deliver(a)
}

func (cp *Capturer) deliver(a Anchor) {
	cp.mu.Lock()
	h := cp.handler
	if h == nil {
		// retain for one-shot redelivery when the handler arrives;
		// a newer capture replaces an undelivered older one
		cp.pending = &a
		cp.mu.Unlock()
		return
	}
	cp.mu.Unlock()
	h(a)
}
