// Copyright (c) 2025, ScenePin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package annot

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore is an in-memory [Store], for tests, demos, and ephemeral serve
// sessions. Safe for concurrent use.
type MemStore struct {
	mu  sync.Mutex
	as  []Annotation
	hub hub
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Add stores the annotation, assigning ID and CreatedAt when absent.
func (st *MemStore) Add(ctx context.Context, a Annotation) (Annotation, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt == 0 {
		a.CreatedAt = time.Now().UnixMilli()
	}
	st.mu.Lock()
	st.as = append(st.as, a)
	snap := make([]Annotation, len(st.as))
	copy(snap, st.as)
	st.mu.Unlock()

	st.hub.notify(snap)
	return a, nil
}

// List returns a copy of all annotations in insertion order.
func (st *MemStore) List(ctx context.Context) ([]Annotation, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]Annotation, len(st.as))
	copy(out, st.as)
	return out, nil
}

// ByScene returns the annotations tagged with the given scene id.
func (st *MemStore) ByScene(ctx context.Context, sceneID string) ([]Annotation, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	var out []Annotation
	for _, a := range st.as {
		if a.SceneID == sceneID {
			out = append(out, a)
		}
	}
	return out, nil
}

// Delete removes the annotation with the given id, if present.
func (st *MemStore) Delete(ctx context.Context, id string) error {
	st.mu.Lock()
	found := false
	for i, a := range st.as {
		if a.ID == id {
			st.as = append(st.as[:i], st.as[i+1:]...)
			found = true
			break
		}
	}
	var snap []Annotation
	if found {
		snap = make([]Annotation, len(st.as))
		copy(snap, st.as)
	}
	st.mu.Unlock()

	if found {
		st.hub.notify(snap)
	}
	return nil
}

// Subscribe registers a snapshot observer.
func (st *MemStore) Subscribe(fn func(snapshot []Annotation)) (cancel func()) {
	return st.hub.subscribe(fn)
}

var _ Store = &MemStore{}
