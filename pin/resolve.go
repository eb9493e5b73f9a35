// Copyright (c) 2025, ScenePin Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pin

import "github.com/scenepin/scenepin/math32"

// Record pairs an external annotation identifier with its embedded anchor.
// The ID comes from the external annotation store and is never generated
// here. A nil Anchor marks a record without placement data; the resolver
// skips it.
type Record struct {
	ID     string
	Anchor *Anchor
}

// ResolvedPin is the renderable state derived from one annotation record.
// Pins are rebuilt wholesale whenever the upstream annotation set or scene
// changes; they are never patched in place.
//
// Exactly one of the mesh reference or StaticWorld is used as the position
// source for reprojection at any instant; a resolvable mesh always takes
// precedence. The mesh reference is non-owning: the scene owns mesh
// lifetime, and a stale mesh simply stops contributing a position.
type ResolvedPin struct {

	// ID is the annotation identifier in the external store.
	ID string

	// Mesh is the resolved live mesh, or nil if none could be resolved.
	Mesh Mesh

	// LocalPos is the anchor position in the mesh's local frame,
	// or the zero vector when unused.
	LocalPos math32.Vector3

	// StaticWorld is the captured world position, present only when no
	// live mesh could be resolved; it is authoritative in that case.
	StaticWorld *math32.Vector3
}

// WorldPos returns the pin's current world position: the local position
// transformed by the mesh's current world matrix when the mesh is still
// alive, else the static fallback. It returns false when neither source is
// available, in which case the pin is hidden for the frame.
func (rp *ResolvedPin) WorldPos() (math32.Vector3, bool) {
	if rp.Mesh != nil && rp.Mesh.Alive() {
		return rp.LocalPos.MulMatrix4(rp.Mesh.WorldMatrix()), true
	}
	if rp.StaticWorld != nil {
		return *rp.StaticWorld, true
	}
	return math32.Vector3{}, false
}

// Resolve produces the current resolved-pin list for the given scene from
// the full external annotation collection, preserving the collection's
// order. Records whose anchor is absent or tagged with a different scene
// are skipped. Mesh identity is resolved by, in order: the custom resolver
// hook, mesh id, mesh unique id, and mesh name; if all fail, or the anchor
// was not on a mesh, the captured world position becomes the static
// fallback.
//
// Resolve performs a full rebuild; callers invoke it whenever the
// annotation collection, the target scene, or the custom resolver changes.
func Resolve(recs []Record, sceneID string, meshes MeshSource, custom MeshResolver) []*ResolvedPin {
	pins := make([]*ResolvedPin, 0, len(recs))
	for _, rec := range recs {
		a := rec.Anchor
		if a == nil || a.SceneID != sceneID {
			continue
		}
		rp := &ResolvedPin{ID: rec.ID}
		if a.OnMesh && a.Local != nil {
			rp.Mesh = resolveMesh(a, meshes, custom)
			rp.LocalPos = a.Local.Position
		}
		if rp.Mesh == nil {
			w := a.World
			rp.StaticWorld = &w
		}
		pins = append(pins, rp)
	}
	return pins
}

func resolveMesh(a *Anchor, meshes MeshSource, custom MeshResolver) Mesh {
	if custom != nil {
		if m := custom(a); m != nil {
			return m
		}
	}
	if meshes == nil {
		return nil
	}
	if m := meshes.MeshByID(a.Local.MeshID); m != nil {
		return m
	}
	if m := meshes.MeshByUniqueID(a.Local.MeshUniqueID); m != nil {
		return m
	}
	if m := meshes.MeshByName(a.Local.MeshName); m != nil {
		return m
	}
	return nil
}
