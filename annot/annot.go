// Copyright (c) 2025, ScenePin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package annot is the annotation store: the persistent record an anchor
// rides inside, a [Store] interface with snapshot subscriptions, and
// in-memory and SQLite implementations. The anchoring pipeline in package
// pin never talks to a store directly; hosts wire snapshots from here into
// [pin.Resolve].
package annot

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/scenepin/scenepin/pin"
)

// Annotation is one stored annotation record. The anchor produced at
// capture time is carried in Context as an opaque JSON payload, so the
// store never needs to understand anchor geometry.
type Annotation struct {
	// ID is the store-assigned identifier, a UUID. Empty on Add input;
	// never empty on output.
	ID string `json:"annotationId"`

	// SceneID tags the annotation with the scene it was placed in, so
	// multiple scenes can share one store without cross-talk.
	SceneID string `json:"sceneId"`

	// Author is a free-form author identifier.
	Author string `json:"author"`

	// Body is the annotation's comment text.
	Body string `json:"body"`

	// Context is the serialized anchor payload, or empty for annotations
	// without placement data.
	Context json.RawMessage `json:"context,omitempty"`

	// CreatedAt is the creation instant in Unix milliseconds.
	CreatedAt int64 `json:"createdAt"`
}

// Anchor decodes the annotation's anchor payload. It returns false for
// annotations without placement data.
func (a *Annotation) Anchor() (*pin.Anchor, bool) {
	return pin.AnchorFromContext(a.Context)
}

// SetAnchor encodes the given anchor into the annotation's Context and
// stamps the annotation with the anchor's scene id.
func (a *Annotation) SetAnchor(anc *pin.Anchor) error {
	data, err := anc.MarshalContext()
	if err != nil {
		return err
	}
	a.Context = data
	a.SceneID = anc.SceneID
	return nil
}

// Records converts an annotation snapshot into resolver input, preserving
// order. Annotations without anchor payloads yield records with a nil
// anchor, which the resolver skips.
func Records(as []Annotation) []pin.Record {
	recs := make([]pin.Record, len(as))
	for i, a := range as {
		rec := pin.Record{ID: a.ID}
		if anc, ok := a.Anchor(); ok {
			rec.Anchor = anc
		}
		recs[i] = rec
	}
	return recs
}

// Store is the annotation persistence boundary. Snapshots returned by List
// and ByScene are copies in insertion order; mutating them does not affect
// the store. Subscribers receive the full post-mutation snapshot after
// every successful Add or Delete.
type Store interface {

	// Add stores the annotation and returns it with ID and CreatedAt
	// filled in when they were absent.
	Add(ctx context.Context, a Annotation) (Annotation, error)

	// List returns all annotations in insertion order.
	List(ctx context.Context) ([]Annotation, error)

	// ByScene returns the annotations tagged with the given scene id,
	// in insertion order.
	ByScene(ctx context.Context, sceneID string) ([]Annotation, error)

	// Delete removes the annotation with the given id. Deleting an
	// unknown id is not an error.
	Delete(ctx context.Context, id string) error

	// Subscribe registers a snapshot observer and returns its cancel.
	// The observer runs on the mutating goroutine; it must not call back
	// into the store.
	Subscribe(fn func(snapshot []Annotation)) (cancel func())
}

// hub is the shared subscriber registry used by the store implementations.
type hub struct {
	mu   sync.Mutex
	seq  int
	subs map[int]func([]Annotation)
}

func (h *hub) subscribe(fn func([]Annotation)) (cancel func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs == nil {
		h.subs = map[int]func([]Annotation){}
	}
	h.seq++
	key := h.seq
	h.subs[key] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, key)
	}
}

// notify fans the snapshot out to all current subscribers. Each subscriber
// gets its own copy so none can corrupt another's view.
func (h *hub) notify(snap []Annotation) {
	h.mu.Lock()
	fns := make([]func([]Annotation), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.Unlock()
	for _, fn := range fns {
		cp := make([]Annotation, len(snap))
		copy(cp, snap)
		fn(cp)
	}
}
