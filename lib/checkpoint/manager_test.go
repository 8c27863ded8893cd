// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package checkpoint

import (
	"testing"

	"github.com/tx2pack/tx2pack/lib/cryptutil"
	"github.com/tx2pack/tx2pack/lib/snaperr"
	"github.com/tx2pack/tx2pack/lib/snapshot"
)

func samplePacked(t *testing.T) *snapshot.PackedSnapshot {
	t.Helper()
	ws := snapshot.WorldSnapshot{
		Entities: []snapshot.WorldEntity{
			{ID: 1, Components: []snapshot.WorldComponent{
				{ID: "health", Fields: map[string]snapshot.FieldValue{"hp": {Type: snapshot.FieldI32, I32: 100}}},
			}},
		},
	}
	packed, err := snapshot.Columnarize(ws)
	if err != nil {
		t.Fatalf("Columnarize: %v", err)
	}
	return packed
}

func newManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(t.TempDir(), Config{Format: snapshot.FormatBinary, Compression: snapshot.None()})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func TestCreateLoadCheckpoint(t *testing.T) {
	m := newManager(t)

	if err := m.CreateCheckpoint("cp1", samplePacked(t), ""); err != nil {
		t.Fatalf("CreateCheckpoint: %v", err)
	}

	cp, err := m.LoadCheckpoint("cp1")
	if err != nil {
		t.Fatalf("LoadCheckpoint: %v", err)
	}
	if cp.ID != "cp1" {
		t.Fatalf("cp.ID = %q, want cp1", cp.ID)
	}
	if cp.ParentID != "" {
		t.Fatalf("cp.ParentID = %q, want empty", cp.ParentID)
	}
}

func TestCreateCheckpointRejectsDuplicateID(t *testing.T) {
	m := newManager(t)
	if err := m.CreateCheckpoint("cp1", samplePacked(t), ""); err != nil {
		t.Fatalf("CreateCheckpoint: %v", err)
	}
	err := m.CreateCheckpoint("cp1", samplePacked(t), "")
	if !snaperr.Is(err, snaperr.KindInvalidCheckpoint) {
		t.Fatalf("duplicate create error = %v, want InvalidCheckpoint", err)
	}
}

func TestCreateCheckpointRejectsMissingParent(t *testing.T) {
	m := newManager(t)
	err := m.CreateCheckpoint("cp1", samplePacked(t), "does-not-exist")
	if !snaperr.Is(err, snaperr.KindInvalidCheckpoint) {
		t.Fatalf("missing-parent error = %v, want InvalidCheckpoint", err)
	}
}

func TestChainWalksToRoot(t *testing.T) {
	m := newManager(t)
	if err := m.CreateCheckpoint("root", samplePacked(t), ""); err != nil {
		t.Fatalf("CreateCheckpoint(root): %v", err)
	}
	if err := m.CreateCheckpoint("mid", samplePacked(t), "root"); err != nil {
		t.Fatalf("CreateCheckpoint(mid): %v", err)
	}
	if err := m.CreateCheckpoint("leaf", samplePacked(t), "mid"); err != nil {
		t.Fatalf("CreateCheckpoint(leaf): %v", err)
	}

	chain, err := m.Chain("leaf")
	if err != nil {
		t.Fatalf("Chain: %v", err)
	}
	want := []string{"leaf", "mid", "root"}
	if len(chain) != len(want) {
		t.Fatalf("Chain = %v, want %v", chain, want)
	}
	for i := range want {
		if chain[i] != want[i] {
			t.Fatalf("Chain = %v, want %v", chain, want)
		}
	}
}

func TestChainDetectsCycle(t *testing.T) {
	m := newManager(t)
	if err := m.CreateCheckpoint("a", samplePacked(t), ""); err != nil {
		t.Fatalf("CreateCheckpoint(a): %v", err)
	}
	if err := m.CreateCheckpoint("b", samplePacked(t), "a"); err != nil {
		t.Fatalf("CreateCheckpoint(b): %v", err)
	}

	// Plant a cycle directly in the index, simulating corrupted
	// sidecar metadata — CreateCheckpoint itself can never produce one.
	m.index["a"] = indexEntry{ParentID: "b", CreatedAt: m.index["a"].CreatedAt}

	if _, err := m.Chain("b"); !snaperr.Is(err, snaperr.KindInvalidCheckpoint) {
		t.Fatalf("Chain on a cycle = %v, want InvalidCheckpoint", err)
	}
}

func TestPruneOldCheckpointsKeepsMostRecent(t *testing.T) {
	m := newManager(t)
	for _, id := range []string{"cp1", "cp2", "cp3", "cp4", "cp5", "cp6", "cp7"} {
		if err := m.CreateCheckpoint(id, samplePacked(t), ""); err != nil {
			t.Fatalf("CreateCheckpoint(%s): %v", id, err)
		}
	}

	if err := m.PruneOldCheckpoints(3); err != nil {
		t.Fatalf("PruneOldCheckpoints: %v", err)
	}

	metas, err := m.ListCheckpoints()
	if err != nil {
		t.Fatalf("ListCheckpoints: %v", err)
	}
	if len(metas) != 3 {
		t.Fatalf("len(ListCheckpoints()) = %d, want 3", len(metas))
	}
	want := map[string]bool{"cp5": true, "cp6": true, "cp7": true}
	for _, meta := range metas {
		if !want[meta.ID] {
			t.Fatalf("unexpected surviving checkpoint %q", meta.ID)
		}
	}
}

func TestPruneOldCheckpointsZeroDeletesAll(t *testing.T) {
	m := newManager(t)
	if err := m.CreateCheckpoint("cp1", samplePacked(t), ""); err != nil {
		t.Fatalf("CreateCheckpoint: %v", err)
	}
	if err := m.PruneOldCheckpoints(0); err != nil {
		t.Fatalf("PruneOldCheckpoints(0): %v", err)
	}
	metas, err := m.ListCheckpoints()
	if err != nil {
		t.Fatalf("ListCheckpoints: %v", err)
	}
	if len(metas) != 0 {
		t.Fatalf("len(ListCheckpoints()) = %d, want 0", len(metas))
	}
}

func TestDeleteCheckpointLeavesChildrenOrphaned(t *testing.T) {
	m := newManager(t)
	if err := m.CreateCheckpoint("root", samplePacked(t), ""); err != nil {
		t.Fatalf("CreateCheckpoint(root): %v", err)
	}
	if err := m.CreateCheckpoint("child", samplePacked(t), "root"); err != nil {
		t.Fatalf("CreateCheckpoint(child): %v", err)
	}

	if err := m.DeleteCheckpoint("root"); err != nil {
		t.Fatalf("DeleteCheckpoint: %v", err)
	}

	child, err := m.LoadCheckpoint("child")
	if err != nil {
		t.Fatalf("LoadCheckpoint(child): %v", err)
	}
	if child.ParentID != "root" {
		t.Fatalf("child.ParentID = %q, want root (orphaned, not rewritten)", child.ParentID)
	}
}

func TestEncryptedCheckpointsLoadUnderDerivedKeys(t *testing.T) {
	raw := make([]byte, cryptutil.KeySize)
	for i := range raw {
		raw[i] = byte(i + 1)
	}
	rootKey, err := cryptutil.NewKeyFromBytes(raw)
	if err != nil {
		t.Fatalf("NewKeyFromBytes: %v", err)
	}
	defer rootKey.Close()

	m, err := NewManager(t.TempDir(), Config{RootKey: rootKey})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	if err := m.CreateCheckpoint("cp1", samplePacked(t), ""); err != nil {
		t.Fatalf("CreateCheckpoint: %v", err)
	}
	if err := m.CreateCheckpoint("cp2", samplePacked(t), ""); err != nil {
		t.Fatalf("CreateCheckpoint: %v", err)
	}

	cp1, err := m.LoadCheckpoint("cp1")
	if err != nil {
		t.Fatalf("LoadCheckpoint(cp1): %v", err)
	}
	cp2, err := m.LoadCheckpoint("cp2")
	if err != nil {
		t.Fatalf("LoadCheckpoint(cp2): %v", err)
	}
	if len(cp1.Snapshot.Archetypes) != 1 || len(cp2.Snapshot.Archetypes) != 1 {
		t.Fatal("expected both checkpoints to decrypt successfully under their own derived key")
	}
}
