// Copyright (c) 2025, ScenePin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package collab_test

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scenepin/scenepin/annot"
	"github.com/scenepin/scenepin/collab"
)

func waitSnap(t *testing.T, ch <-chan []annot.Annotation) []annot.Annotation {
	t.Helper()
	select {
	case snap := <-ch:
		return snap
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	st := annot.NewMemStore()
	srv := httptest.NewServer(collab.NewServer(st))
	defer srv.Close()

	cfg := collab.DefaultConfig()
	cfg.ServerURL = "ws" + strings.TrimPrefix(srv.URL, "http")
	cfg.SceneID = "s1"

	cl := collab.NewClient(cfg)
	snaps := make(chan []annot.Annotation, 8)
	cancel := cl.Subscribe(func(s []annot.Annotation) { snaps <- s })
	defer cancel()
	cl.Start()
	defer cl.Close()

	// connect delivers the current (empty) snapshot
	assert.Empty(t, waitSnap(t, snaps))

	a, err := st.Add(context.Background(), annot.Annotation{Body: "hi", SceneID: "s1"})
	require.NoError(t, err)

	snap := waitSnap(t, snaps)
	require.Len(t, snap, 1)
	assert.Equal(t, a.ID, snap[0].ID)
	assert.Equal(t, "hi", snap[0].Body)

	// the client's own copy converged too
	local := cl.Snapshot()
	require.Len(t, local, 1)
	assert.Equal(t, a.ID, local[0].ID)

	recs := cl.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, a.ID, recs[0].ID)

	// deletion replaces the snapshot wholesale
	require.NoError(t, st.Delete(context.Background(), a.ID))
	assert.Empty(t, waitSnap(t, snaps))
}

func TestClientRunStopsOnCancel(t *testing.T) {
	st := annot.NewMemStore()
	srv := httptest.NewServer(collab.NewServer(st))
	defer srv.Close()

	cfg := collab.DefaultConfig()
	cfg.ServerURL = "ws" + strings.TrimPrefix(srv.URL, "http")

	cl := collab.NewClient(cfg)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- cl.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenepin.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
server_url = "ws://example.test:9900/feed"
scene_id = "demo"
dial_timeout = "2s"
backoff_min = "100ms"
`), 0o644))

	cfg, err := collab.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "ws://example.test:9900/feed", cfg.ServerURL)
	assert.Equal(t, "demo", cfg.SceneID)
	assert.Equal(t, 2*time.Second, time.Duration(cfg.DialTimeout))
	assert.Equal(t, 100*time.Millisecond, time.Duration(cfg.BackoffMin))

	// unset fields keep their defaults
	assert.Equal(t, 10*time.Second, time.Duration(cfg.BackoffMax))
	assert.Equal(t, ":8780", cfg.ListenAddr)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := collab.LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
