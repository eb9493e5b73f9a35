// Copyright (c) 2025, ScenePin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pin

import "sync"

// Placement is the per-frame screen-space result for one pin, written for
// the overlay layer that owns the actual pin elements. X and Y are display
// pixels for the pin's anchor point; centering the overlay element on them
// is the overlay layer's responsibility.
type Placement struct {
	ID      string
	X       float32
	Y       float32
	Depth   float32
	Visible bool
}

// Tracker is the per-frame reprojector: once per rendered frame it
// recomputes each tracked pin's current world position and projects it to
// display pixels, updating visibility and placement.
//
// Within one frame pass all pins are projected through a single snapshot of
// camera and viewport state taken at the start of the pass. The tracked pin
// list is replaced atomically by [Tracker.SetPins]; a pass reads either the
// old list or the fully built new one, never a partial list. The pass
// allocates nothing in steady state and performs no annotation-store
// queries.
type Tracker struct {

	// Sink, if set, is invoked with every placement computed during a
	// frame pass, including hidden ones, so an overlay layer can write
	// positions without polling.
	Sink func(Placement)

	view    View
	mu      sync.Mutex
	pins    []*ResolvedPin
	places  []Placement
	sinkBuf []Placement
	index   map[string]int
	cancel  func()
}

// NewTracker returns a new [Tracker] projecting through the given view.
func NewTracker(view View) *Tracker {
	return &Tracker{view: view}
}

// SetPins atomically replaces the tracked pin list, typically with the
// result of [Resolve]. The placement table is rebuilt to match; stale
// entries for removed pins are dropped, and it is the overlay layer's job
// to release their backing elements.
func (tr *Tracker) SetPins(pins []*ResolvedPin) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.pins = pins
	tr.places = make([]Placement, len(pins))
	tr.index = make(map[string]int, len(pins))
	for i, rp := range pins {
		tr.places[i] = Placement{ID: rp.ID}
		tr.index[rp.ID] = i
	}
}

// Attach registers the tracker's frame pass on the given engine.
// Detach must be called on teardown, before scene, camera, or mesh
// references are released, so that no pass runs against disposed
// resources.
func (tr *Tracker) Attach(eng Engine) {
	tr.Detach()
	tr.cancel = eng.OnFrame(tr.Frame)
}

// Detach deregisters the frame pass. Safe to call when not attached.
func (tr *Tracker) Detach() {
	if tr.cancel != nil {
		tr.cancel()
		tr.cancel = nil
	}
}

// Frame runs one reprojection pass. It is normally invoked from the
// engine's per-frame hook but can be called directly (e.g., in tests).
func (tr *Tracker) Frame() {
	if tr.view == nil {
		return
	}
	// one consistent camera/viewport snapshot for the whole pass
	vpm := tr.view.ViewProjection()
	vp := tr.view.Viewport()

	tr.mu.Lock()
	for i, rp := range tr.pins {
		pl := &tr.places[i]
		world, ok := rp.WorldPos()
		if !ok {
			pl.Visible = false
			continue
		}
		scr := ToScreen(world, &vpm, vp)
		pl.X = scr.X
		pl.Y = scr.Y
		pl.Depth = scr.Z
		// boundary inclusive on [0,1]; NaN depth fails both comparisons
		pl.Visible = scr.Z >= 0 && scr.Z <= 1
	}
	sink := tr.Sink
	if sink != nil {
		tr.sinkBuf = append(tr.sinkBuf[:0], tr.places...)
	}
	tr.mu.Unlock()

	if sink != nil {
		for _, pl := range tr.sinkBuf {
			sink(pl)
		}
	}
}

// Placements returns a copy of the current placement table, in pin order.
func (tr *Tracker) Placements() []Placement {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	out := make([]Placement, len(tr.places))
	copy(out, tr.places)
	return out
}

// Placement returns the current placement for the given annotation id.
func (tr *Tracker) Placement(id string) (Placement, bool) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	i, ok := tr.index[id]
	if !ok {
		return Placement{}, false
	}
	return tr.places[i], true
}

// Visible returns the ids of all currently visible pins, in pin order.
func (tr *Tracker) Visible() []string {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	ids := make([]string, 0, len(tr.places))
	for _, pl := range tr.places {
		if pl.Visible {
			ids = append(ids, pl.ID)
		}
	}
	return ids
}
