// Copyright (c) 2025, ScenePin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package annot

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS annotations (
	id         TEXT PRIMARY KEY,
	scene_id   TEXT NOT NULL,
	author     TEXT NOT NULL DEFAULT '',
	body       TEXT NOT NULL DEFAULT '',
	context    TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS annotations_scene ON annotations(scene_id);
`

// SQLiteStore is a [Store] backed by a SQLite database file. The anchor
// context payload is stored verbatim as a JSON TEXT column, so anchors
// written by older versions round-trip untouched.
type SQLiteStore struct {
	db  *sql.DB
	hub hub
}

// OpenSQLite opens (creating if needed) the SQLite database at path and
// ensures the schema exists.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("annot: open %s: %w", path, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("annot: schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (st *SQLiteStore) Close() error {
	return st.db.Close()
}

// Add stores the annotation, assigning ID and CreatedAt when absent.
func (st *SQLiteStore) Add(ctx context.Context, a Annotation) (Annotation, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt == 0 {
		a.CreatedAt = time.Now().UnixMilli()
	}
	_, err := st.db.ExecContext(ctx,
		`INSERT INTO annotations (id, scene_id, author, body, context, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.SceneID, a.Author, a.Body, string(a.Context), a.CreatedAt)
	if err != nil {
		return Annotation{}, fmt.Errorf("annot: add %s: %w", a.ID, err)
	}
	st.notify(ctx)
	return a, nil
}

// List returns all annotations in insertion order.
func (st *SQLiteStore) List(ctx context.Context) ([]Annotation, error) {
	return st.query(ctx,
		`SELECT id, scene_id, author, body, context, created_at
		 FROM annotations ORDER BY rowid`)
}

// ByScene returns the annotations tagged with the given scene id.
func (st *SQLiteStore) ByScene(ctx context.Context, sceneID string) ([]Annotation, error) {
	return st.query(ctx,
		`SELECT id, scene_id, author, body, context, created_at
		 FROM annotations WHERE scene_id = ? ORDER BY rowid`, sceneID)
}

// Delete removes the annotation with the given id, if present.
func (st *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := st.db.ExecContext(ctx, `DELETE FROM annotations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("annot: delete %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		st.notify(ctx)
	}
	return nil
}

// Subscribe registers a snapshot observer.
func (st *SQLiteStore) Subscribe(fn func(snapshot []Annotation)) (cancel func()) {
	return st.hub.subscribe(fn)
}

func (st *SQLiteStore) query(ctx context.Context, q string, args ...any) ([]Annotation, error) {
	rows, err := st.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("annot: query: %w", err)
	}
	defer rows.Close()

	var out []Annotation
	for rows.Next() {
		var a Annotation
		var payload string
		if err := rows.Scan(&a.ID, &a.SceneID, &a.Author, &a.Body, &payload, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("annot: scan: %w", err)
		}
		if payload != "" {
			a.Context = json.RawMessage(payload)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("annot: rows: %w", err)
	}
	return out, nil
}

func (st *SQLiteStore) notify(ctx context.Context) {
	snap, err := st.List(ctx)
	if err != nil {
		slog.Warn("annotation snapshot for subscribers failed", "err", err)
		return
	}
	st.hub.notify(snap)
}

var _ Store = &SQLiteStore{}
