// Copyright (c) 2025, ScenePin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package annot_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scenepin/scenepin/annot"
	"github.com/scenepin/scenepin/math32"
	"github.com/scenepin/scenepin/pin"
)

func testAnchor(sceneID string) *pin.Anchor {
	return &pin.Anchor{
		OnMesh:  true,
		World:   math32.Vec3(1, 2, 3),
		SceneID: sceneID,
		Time:    1700000000000,
		Local: &pin.LocalAnchor{
			Position:     math32.Vec3(0, 0, 0.5),
			MeshID:       "cube",
			MeshUniqueID: 7,
			MeshName:     "box",
		},
	}
}

func runStoreTests(t *testing.T, st annot.Store) {
	ctx := context.Background()

	a1 := annot.Annotation{Author: "ana", Body: "first"}
	require.NoError(t, a1.SetAnchor(testAnchor("s1")))
	a1, err := st.Add(ctx, a1)
	require.NoError(t, err)
	assert.NotEmpty(t, a1.ID)
	assert.NotZero(t, a1.CreatedAt)

	a2, err := st.Add(ctx, annot.Annotation{Author: "bo", Body: "second", SceneID: "s2"})
	require.NoError(t, err)
	assert.NotEqual(t, a1.ID, a2.ID)

	all, err := st.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, a1.ID, all[0].ID)
	assert.Equal(t, a2.ID, all[1].ID)

	// the anchor payload round-trips through the store untouched
	anc, ok := all[0].Anchor()
	require.True(t, ok)
	assert.True(t, anc.OnMesh)
	assert.Equal(t, "cube", anc.Local.MeshID)
	assert.Equal(t, int64(7), anc.Local.MeshUniqueID)
	assert.InDelta(t, 0.5, anc.Local.Position.Z, 1.0e-6)

	// annotations without placement data have no anchor
	_, ok = all[1].Anchor()
	assert.False(t, ok)

	scene, err := st.ByScene(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, scene, 1)
	assert.Equal(t, a1.ID, scene[0].ID)

	require.NoError(t, st.Delete(ctx, a1.ID))
	require.NoError(t, st.Delete(ctx, "unknown-id")) // not an error
	all, err = st.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, a2.ID, all[0].ID)
}

func TestMemStore(t *testing.T) {
	runStoreTests(t, annot.NewMemStore())
}

func TestSQLiteStore(t *testing.T) {
	st, err := annot.OpenSQLite(filepath.Join(t.TempDir(), "annot.db"))
	require.NoError(t, err)
	defer st.Close()
	runStoreTests(t, st)
}

func TestSQLitePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "annot.db")
	ctx := context.Background()

	st, err := annot.OpenSQLite(path)
	require.NoError(t, err)
	a := annot.Annotation{Body: "survives reopen", SceneID: "s1"}
	a, err = st.Add(ctx, a)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	st, err = annot.OpenSQLite(path)
	require.NoError(t, err)
	defer st.Close()
	all, err := st.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, a.ID, all[0].ID)
	assert.Equal(t, "survives reopen", all[0].Body)
}

func TestSubscribe(t *testing.T) {
	st := annot.NewMemStore()
	ctx := context.Background()

	var snaps [][]annot.Annotation
	cancel := st.Subscribe(func(snap []annot.Annotation) { snaps = append(snaps, snap) })

	a, err := st.Add(ctx, annot.Annotation{Body: "one"})
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Len(t, snaps[0], 1)

	require.NoError(t, st.Delete(ctx, a.ID))
	require.Len(t, snaps, 2)
	assert.Empty(t, snaps[1])

	// deleting an unknown id does not notify
	require.NoError(t, st.Delete(ctx, "nope"))
	assert.Len(t, snaps, 2)

	cancel()
	_, err = st.Add(ctx, annot.Annotation{Body: "two"})
	require.NoError(t, err)
	assert.Len(t, snaps, 2)
}

func TestRecords(t *testing.T) {
	withAnchor := annot.Annotation{ID: "a"}
	require.NoError(t, withAnchor.SetAnchor(testAnchor("s1")))
	bare := annot.Annotation{ID: "b"}

	recs := annot.Records([]annot.Annotation{withAnchor, bare})
	require.Len(t, recs, 2)
	assert.Equal(t, "a", recs[0].ID)
	require.NotNil(t, recs[0].Anchor)
	assert.Equal(t, "s1", recs[0].Anchor.SceneID)
	assert.Equal(t, "b", recs[1].ID)
	assert.Nil(t, recs[1].Anchor)
}
