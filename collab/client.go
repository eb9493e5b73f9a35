// Copyright (c) 2025, ScenePin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package collab

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/scenepin/scenepin/annot"
	"github.com/scenepin/scenepin/pin"
)

// Client maintains a live copy of the server's annotation snapshot. Each
// received snapshot replaces the local copy atomically and is fanned out to
// subscribers; hosts typically re-run [pin.Resolve] on every notification.
//
// The connection is kept alive with capped exponential backoff: the delay
// starts at Config.BackoffMin, doubles per consecutive failure, caps at
// Config.BackoffMax, and resets after a successful dial.
type Client struct {
	// Log receives connection diagnostics. Defaults to slog.Default.
	Log *slog.Logger

	cfg Config

	mu   sync.Mutex
	snap []annot.Annotation
	seq  int
	subs map[int]func([]annot.Annotation)

	stop    context.CancelFunc
	done    chan struct{}
	startMu sync.Mutex
}

// NewClient returns a client for the given config. It does not connect
// until [Client.Run] or [Client.Start] is called.
func NewClient(cfg Config) *Client {
	return &Client{
		Log:  slog.Default(),
		cfg:  cfg,
		subs: map[int]func([]annot.Annotation){},
	}
}

// Snapshot returns a copy of the most recent annotation snapshot.
func (cl *Client) Snapshot() []annot.Annotation {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	out := make([]annot.Annotation, len(cl.snap))
	copy(out, cl.snap)
	return out
}

// Records returns the current snapshot converted to resolver input.
func (cl *Client) Records() []pin.Record {
	return annot.Records(cl.Snapshot())
}

// Subscribe registers a snapshot observer and returns its cancel. The
// observer runs on the client's read goroutine.
func (cl *Client) Subscribe(fn func(snapshot []annot.Annotation)) (cancel func()) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	cl.seq++
	key := cl.seq
	cl.subs[key] = fn
	return func() {
		cl.mu.Lock()
		defer cl.mu.Unlock()
		delete(cl.subs, key)
	}
}

// Run connects and processes snapshots until ctx is canceled, reconnecting
// on any failure. It always returns ctx.Err().
func (cl *Client) Run(ctx context.Context) error {
	backoff := time.Duration(cl.cfg.BackoffMin)
	for {
		connected, err := cl.session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		cl.Log.Debug("collab session ended", "url", cl.cfg.ServerURL, "err", err)
		if connected {
			backoff = time.Duration(cl.cfg.BackoffMin)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if lim := time.Duration(cl.cfg.BackoffMax); backoff > lim {
			backoff = lim
		}
	}
}

// Start runs the client on its own goroutine. Stop it with [Client.Close].
func (cl *Client) Start() {
	cl.startMu.Lock()
	defer cl.startMu.Unlock()
	if cl.done != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	cl.stop = cancel
	cl.done = make(chan struct{})
	go func() {
		defer close(cl.done)
		cl.Run(ctx)
	}()
}

// Close stops a [Client.Start]-ed client and waits for it to finish.
func (cl *Client) Close() {
	cl.startMu.Lock()
	defer cl.startMu.Unlock()
	if cl.done == nil {
		return
	}
	cl.stop()
	<-cl.done
	cl.stop = nil
	cl.done = nil
}

// session dials once and reads snapshots until the connection fails or ctx
// is canceled. connected reports whether the dial succeeded.
func (cl *Client) session(ctx context.Context) (connected bool, err error) {
	dialer := websocket.Dialer{HandshakeTimeout: time.Duration(cl.cfg.DialTimeout)}
	conn, _, err := dialer.DialContext(ctx, cl.cfg.ServerURL, nil)
	if err != nil {
		return false, err
	}
	defer conn.Close()
	cl.Log.Debug("collab connected", "url", cl.cfg.ServerURL)

	// unblock the read loop on cancellation
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	for {
		var snap []annot.Annotation
		if err := conn.ReadJSON(&snap); err != nil {
			return true, err
		}
		cl.apply(snap)
	}
}

func (cl *Client) apply(snap []annot.Annotation) {
	cl.mu.Lock()
	cl.snap = snap
	fns := make([]func([]annot.Annotation), 0, len(cl.subs))
	for _, fn := range cl.subs {
		fns = append(fns, fn)
	}
	cl.mu.Unlock()

	for _, fn := range fns {
		cp := make([]annot.Annotation, len(snap))
		copy(cp, snap)
		fn(cp)
	}
}
