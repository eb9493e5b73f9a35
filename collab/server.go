// Copyright (c) 2025, ScenePin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package collab distributes annotation snapshots over WebSockets. The
// server pushes the store's full annotation set on connect and after every
// change; clients replace their copy wholesale on each message. Snapshots
// are authoritative replacements, never deltas, so a dropped message costs
// only latency, not correctness.
package collab

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/scenepin/scenepin/annot"
)

// Server serves a store's annotation snapshots to WebSocket clients.
// It is an http.Handler; mount it wherever the feed should live.
type Server struct {
	// Log receives connection diagnostics. Defaults to slog.Default.
	Log *slog.Logger

	store    annot.Store
	upgrader websocket.Upgrader
}

// NewServer returns a snapshot server over the given store.
func NewServer(store annot.Store) *Server {
	return &Server{
		Log:   slog.Default(),
		store: store,
	}
}

// ServeHTTP upgrades the request to a WebSocket and streams snapshots
// until the client disconnects. Consecutive changes may be coalesced; the
// client always converges on the latest snapshot.
func (sv *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := sv.upgrader.Upgrade(w, r, nil)
	if err != nil {
		sv.Log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	defer conn.Close()

	// latest-wins slot between the store's mutating goroutines and the
	// single writer below; push never blocks a mutator
	var mu sync.Mutex
	var latest []annot.Annotation
	kick := make(chan struct{}, 1)
	push := func(snap []annot.Annotation) {
		mu.Lock()
		latest = snap
		mu.Unlock()
		select {
		case kick <- struct{}{}:
		default:
		}
	}
	cancel := sv.store.Subscribe(push)
	defer cancel()

	initial, err := sv.store.List(r.Context())
	if err != nil {
		sv.Log.Warn("initial snapshot failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	push(initial)

	// reader goroutine only detects the client going away
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-kick:
			mu.Lock()
			snap := latest
			mu.Unlock()
			if err := conn.WriteJSON(snap); err != nil {
				sv.Log.Debug("snapshot write failed", "remote", r.RemoteAddr, "err", err)
				return
			}
		}
	}
}
