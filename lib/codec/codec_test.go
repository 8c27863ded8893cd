// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"testing"

	"github.com/tx2pack/tx2pack/lib/snapshot"
)

func samplePacked() *snapshot.PackedSnapshot {
	return &snapshot.PackedSnapshot{
		Archetypes: []snapshot.ComponentArchetype{
			{
				ComponentID: "velocity",
				EntityIDs:   []snapshot.EntityId{5, 2},
				Data: snapshot.ComponentData{
					Kind: snapshot.ComponentStructOfArrays,
					SoA: &snapshot.StructOfArraysData{
						FieldNames: []string{"dx", "dy"},
						FieldTypes: []snapshot.FieldType{snapshot.FieldF32, snapshot.FieldF32},
						FieldData: []snapshot.FieldArray{
							{Type: snapshot.FieldF32, F32: []float32{1.5, -2.5}},
							{Type: snapshot.FieldF32, F32: []float32{0.5, 0}},
						},
					},
				},
			},
			{
				ComponentID: "tag",
				EntityIDs:   []snapshot.EntityId{2},
				Data: snapshot.ComponentData{
					Kind: snapshot.ComponentBlob,
					Blob: []byte{0xDE, 0xAD, 0xBE, 0xEF},
				},
			},
		},
		EntityMetadata: map[snapshot.EntityId]snapshot.EntityMetadata{
			5: {Generation: 1, Flags: 0x1, Name: "enemy"},
			2: {Generation: 3, Flags: 0x0},
		},
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	original := samplePacked()
	data, err := EncodeBinary(original)
	if err != nil {
		t.Fatalf("EncodeBinary: %v", err)
	}

	decoded, err := DecodeBinary(data)
	if err != nil {
		t.Fatalf("DecodeBinary: %v", err)
	}

	assertSnapshotsEqual(t, original, decoded)
}

func TestBinaryEncodeIsDeterministic(t *testing.T) {
	original := samplePacked()
	first, err := EncodeBinary(original)
	if err != nil {
		t.Fatalf("EncodeBinary: %v", err)
	}
	second, err := EncodeBinary(original)
	if err != nil {
		t.Fatalf("EncodeBinary: %v", err)
	}
	if string(first) != string(second) {
		t.Fatal("two encodings of the same snapshot produced different bytes")
	}
}

func TestBinaryDecodeRejectsTrailingBytes(t *testing.T) {
	data, err := EncodeBinary(samplePacked())
	if err != nil {
		t.Fatalf("EncodeBinary: %v", err)
	}
	data = append(data, 0xFF)
	if _, err := DecodeBinary(data); err == nil {
		t.Fatal("expected an error for trailing bytes, got nil")
	}
}

func TestMessagePackRoundTrip(t *testing.T) {
	original := samplePacked()
	data, err := EncodeMessagePack(original)
	if err != nil {
		t.Fatalf("EncodeMessagePack: %v", err)
	}

	decoded, err := DecodeMessagePack(data)
	if err != nil {
		t.Fatalf("DecodeMessagePack: %v", err)
	}

	assertSnapshotsEqual(t, original, decoded)
}

func TestEncodeRejectsUnsupportedFormat(t *testing.T) {
	if _, err := Encode(samplePacked(), snapshot.Format(99)); err == nil {
		t.Fatal("expected an error for an unsupported format, got nil")
	}
}

func assertSnapshotsEqual(t *testing.T, want, got *snapshot.PackedSnapshot) {
	t.Helper()

	if len(got.Archetypes) != len(want.Archetypes) {
		t.Fatalf("len(Archetypes) = %d, want %d", len(got.Archetypes), len(want.Archetypes))
	}

	byID := make(map[snapshot.ComponentId]snapshot.ComponentArchetype)
	for _, a := range want.Archetypes {
		byID[a.ComponentID] = a
	}

	for _, got := range got.Archetypes {
		want, ok := byID[got.ComponentID]
		if !ok {
			t.Fatalf("unexpected archetype %q in decoded output", got.ComponentID)
		}
		if len(got.EntityIDs) != len(want.EntityIDs) {
			t.Fatalf("archetype %q: len(EntityIDs) = %d, want %d", got.ComponentID, len(got.EntityIDs), len(want.EntityIDs))
		}
		for i := range got.EntityIDs {
			if got.EntityIDs[i] != want.EntityIDs[i] {
				t.Fatalf("archetype %q: EntityIDs[%d] = %d, want %d", got.ComponentID, i, got.EntityIDs[i], want.EntityIDs[i])
			}
		}
		if got.Data.Kind != want.Data.Kind {
			t.Fatalf("archetype %q: Kind = %v, want %v", got.ComponentID, got.Data.Kind, want.Data.Kind)
		}
		if want.Data.Kind == snapshot.ComponentBlob {
			if string(got.Data.Blob) != string(want.Data.Blob) {
				t.Fatalf("archetype %q: Blob = %v, want %v", got.ComponentID, got.Data.Blob, want.Data.Blob)
			}
		} else {
			if len(got.Data.SoA.FieldNames) != len(want.Data.SoA.FieldNames) {
				t.Fatalf("archetype %q: field count = %d, want %d", got.ComponentID, len(got.Data.SoA.FieldNames), len(want.Data.SoA.FieldNames))
			}
			for i := range got.Data.SoA.FieldData {
				if got.Data.SoA.FieldData[i].Len() != want.Data.SoA.FieldData[i].Len() {
					t.Fatalf("archetype %q field %d: length mismatch", got.ComponentID, i)
				}
			}
		}
	}

	if len(got.EntityMetadata) != len(want.EntityMetadata) {
		t.Fatalf("len(EntityMetadata) = %d, want %d", len(got.EntityMetadata), len(want.EntityMetadata))
	}
	for id, wantMeta := range want.EntityMetadata {
		gotMeta, ok := got.EntityMetadata[id]
		if !ok {
			t.Fatalf("entity %d missing from decoded metadata", id)
		}
		if gotMeta != wantMeta {
			t.Fatalf("entity %d metadata = %+v, want %+v", id, gotMeta, wantMeta)
		}
	}
}
