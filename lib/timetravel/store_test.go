// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package timetravel

import (
	"math"
	"testing"

	"github.com/tx2pack/tx2pack/lib/codec"
	"github.com/tx2pack/tx2pack/lib/snapshot"
)

func samplePacked(t *testing.T, hp int32) *snapshot.PackedSnapshot {
	t.Helper()
	ws := snapshot.WorldSnapshot{
		Entities: []snapshot.WorldEntity{
			{ID: 1, Components: []snapshot.WorldComponent{
				{ID: "health", Fields: map[string]snapshot.FieldValue{"hp": {Type: snapshot.FieldI32, I32: hp}}},
			}},
		},
	}
	packed, err := snapshot.Columnarize(ws)
	if err != nil {
		t.Fatalf("Columnarize: %v", err)
	}
	return packed
}

func encodeBinary(p *snapshot.PackedSnapshot) ([]byte, error) {
	return codec.EncodeBinary(p)
}

func TestRecordRejectsNaN(t *testing.T) {
	s := NewStore()
	if err := s.Record(math.NaN(), samplePacked(t, 1)); err == nil {
		t.Fatal("expected Record(NaN, ...) to fail")
	}
}

func TestRecordKeepsSortedOrder(t *testing.T) {
	s := NewStore()
	for _, ts := range []float64{5, 1, 3} {
		if err := s.Record(ts, samplePacked(t, 1)); err != nil {
			t.Fatalf("Record(%v): %v", ts, err)
		}
	}
	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}
	want := []float64{1, 3, 5}
	for i, r := range s.Range(math.Inf(-1), math.Inf(1)) {
		if r.TimeSeconds != want[i] {
			t.Fatalf("entries[%d].TimeSeconds = %v, want %v", i, r.TimeSeconds, want[i])
		}
	}
}

func TestSeekToTimeExactMatch(t *testing.T) {
	s := NewStore()
	s.Record(1, samplePacked(t, 1))
	s.Record(2, samplePacked(t, 2))
	s.Record(3, samplePacked(t, 3))

	entry := s.SeekToTime(2)
	if entry.TimeSeconds != 2 {
		t.Fatalf("SeekToTime(2).TimeSeconds = %v, want 2", entry.TimeSeconds)
	}
}

// TestSeekToTimeTieBreaksEarlier exercises the spec's explicit
// nearest-time tie-break rule: when a query time is equidistant
// between two recorded entries, the earlier one wins.
func TestSeekToTimeTieBreaksEarlier(t *testing.T) {
	s := NewStore()
	s.Record(1, samplePacked(t, 1))
	s.Record(3, samplePacked(t, 3))

	entry := s.SeekToTime(2) // equidistant from 1 and 3
	if entry.TimeSeconds != 1 {
		t.Fatalf("SeekToTime(2).TimeSeconds = %v, want 1 (earlier tie-break)", entry.TimeSeconds)
	}
}

func TestSeekToTimeBeforeFirstAndAfterLast(t *testing.T) {
	s := NewStore()
	s.Record(5, samplePacked(t, 1))
	s.Record(10, samplePacked(t, 2))

	if entry := s.SeekToTime(0); entry.TimeSeconds != 5 {
		t.Fatalf("SeekToTime(0).TimeSeconds = %v, want 5", entry.TimeSeconds)
	}
	if entry := s.SeekToTime(100); entry.TimeSeconds != 10 {
		t.Fatalf("SeekToTime(100).TimeSeconds = %v, want 10", entry.TimeSeconds)
	}
}

func TestSeekToTimeEmptyStore(t *testing.T) {
	s := NewStore()
	if entry := s.SeekToTime(1); entry != nil {
		t.Fatalf("SeekToTime on an empty store = %v, want nil", entry)
	}
}

func TestForkAtTimeIsIndependent(t *testing.T) {
	s := NewStore()
	s.Record(1, samplePacked(t, 42))

	fork := s.ForkAtTime(1)
	if fork == nil {
		t.Fatal("ForkAtTime returned nil")
	}

	// Mutate the original entry's snapshot and prune it away; the fork
	// must be unaffected.
	original := s.SeekToTime(1).Snapshot
	original.Archetypes[0].Data.SoA.FieldData[0].I32[0] = 999
	s.PruneAfter(0)

	if got := fork.Archetypes[0].Data.SoA.FieldData[0].I32[0]; got != 42 {
		t.Fatalf("fork's hp = %d, want 42 (unaffected by later mutation/prune)", got)
	}
}

func TestForkAtTimeEmptyStore(t *testing.T) {
	s := NewStore()
	if fork := s.ForkAtTime(1); fork != nil {
		t.Fatal("ForkAtTime on an empty store should return nil")
	}
}

func TestPruneBeforeRemovesOlderEntries(t *testing.T) {
	s := NewStore()
	for _, ts := range []float64{1, 2, 3, 4, 5} {
		s.Record(ts, samplePacked(t, 1))
	}
	s.PruneBefore(3)

	remaining := s.Range(math.Inf(-1), math.Inf(1))
	if len(remaining) != 3 {
		t.Fatalf("len(remaining) = %d, want 3", len(remaining))
	}
	if remaining[0].TimeSeconds != 3 {
		t.Fatalf("remaining[0].TimeSeconds = %v, want 3", remaining[0].TimeSeconds)
	}
}

func TestPruneAfterRemovesNewerEntries(t *testing.T) {
	s := NewStore()
	for _, ts := range []float64{1, 2, 3, 4, 5} {
		s.Record(ts, samplePacked(t, 1))
	}
	s.PruneAfter(3)

	remaining := s.Range(math.Inf(-1), math.Inf(1))
	if len(remaining) != 3 {
		t.Fatalf("len(remaining) = %d, want 3", len(remaining))
	}
	if remaining[len(remaining)-1].TimeSeconds != 3 {
		t.Fatalf("remaining[last].TimeSeconds = %v, want 3", remaining[len(remaining)-1].TimeSeconds)
	}
}

func TestRangeIsInclusive(t *testing.T) {
	s := NewStore()
	for _, ts := range []float64{1, 2, 3, 4, 5} {
		s.Record(ts, samplePacked(t, 1))
	}

	got := s.Range(2, 4)
	if len(got) != 3 {
		t.Fatalf("len(Range(2, 4)) = %d, want 3", len(got))
	}
	if got[0].TimeSeconds != 2 || got[2].TimeSeconds != 4 {
		t.Fatalf("Range(2, 4) bounds = [%v..%v], want [2..4]", got[0].TimeSeconds, got[2].TimeSeconds)
	}
}

func TestRecordIfChangedSkipsIdenticalContent(t *testing.T) {
	s := NewStore()

	changed, err := s.RecordIfChanged(1, samplePacked(t, 7), encodeBinary)
	if err != nil {
		t.Fatalf("RecordIfChanged: %v", err)
	}
	if !changed {
		t.Fatal("first RecordIfChanged call should record")
	}

	changed, err = s.RecordIfChanged(2, samplePacked(t, 7), encodeBinary)
	if err != nil {
		t.Fatalf("RecordIfChanged: %v", err)
	}
	if changed {
		t.Fatal("RecordIfChanged with identical content should be a no-op")
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
}

func TestRecordIfChangedRecordsDifferentContent(t *testing.T) {
	s := NewStore()
	if _, err := s.RecordIfChanged(1, samplePacked(t, 7), encodeBinary); err != nil {
		t.Fatalf("RecordIfChanged: %v", err)
	}
	changed, err := s.RecordIfChanged(2, samplePacked(t, 8), encodeBinary)
	if err != nil {
		t.Fatalf("RecordIfChanged: %v", err)
	}
	if !changed {
		t.Fatal("RecordIfChanged with different content should record")
	}
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
}
