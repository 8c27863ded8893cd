// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

// PackedSnapshot is the in-memory, pre-encoding columnar form of a
// world snapshot: a header plus the archetype columns and per-entity
// metadata it describes. Created once from a WorldSnapshot, never
// mutated in place once handed to a Writer (spec §3, "Lifecycle").
type PackedSnapshot struct {
	Header         SnapshotHeader
	Archetypes     []ComponentArchetype
	EntityMetadata map[EntityId]EntityMetadata
}

// NewPackedSnapshot returns an empty snapshot with a fresh header.
func NewPackedSnapshot() *PackedSnapshot {
	return &PackedSnapshot{
		Header:         NewHeader(),
		Archetypes:     nil,
		EntityMetadata: make(map[EntityId]EntityMetadata),
	}
}

// Clone returns a deep, independent copy of s. Used by the time-travel
// store's fork operation, where the clone must not be affected by
// later mutation of the original (spec §4.8).
func (s *PackedSnapshot) Clone() *PackedSnapshot {
	if s == nil {
		return nil
	}

	clone := &PackedSnapshot{
		Header:         s.Header,
		Archetypes:     make([]ComponentArchetype, len(s.Archetypes)),
		EntityMetadata: make(map[EntityId]EntityMetadata, len(s.EntityMetadata)),
	}

	for i, archetype := range s.Archetypes {
		clone.Archetypes[i] = cloneArchetype(archetype)
	}
	for id, meta := range s.EntityMetadata {
		clone.EntityMetadata[id] = meta
	}

	return clone
}

func cloneArchetype(a ComponentArchetype) ComponentArchetype {
	out := ComponentArchetype{
		ComponentID: a.ComponentID,
		EntityIDs:   append([]EntityId(nil), a.EntityIDs...),
	}

	switch a.Data.Kind {
	case ComponentBlob:
		out.Data = ComponentData{
			Kind: ComponentBlob,
			Blob: append([]byte(nil), a.Data.Blob...),
		}
	case ComponentStructOfArrays:
		out.Data = ComponentData{
			Kind: ComponentStructOfArrays,
			SoA:  cloneSoA(a.Data.SoA),
		}
	}

	return out
}

func cloneSoA(soa *StructOfArraysData) *StructOfArraysData {
	if soa == nil {
		return nil
	}
	clone := &StructOfArraysData{
		FieldNames: append([]string(nil), soa.FieldNames...),
		FieldTypes: append([]FieldType(nil), soa.FieldTypes...),
		FieldData:  make([]FieldArray, len(soa.FieldData)),
	}
	for i, col := range soa.FieldData {
		clone.FieldData[i] = cloneFieldArray(col)
	}
	return clone
}

func cloneFieldArray(f FieldArray) FieldArray {
	clone := FieldArray{Type: f.Type}
	clone.Bool = append([]bool(nil), f.Bool...)
	clone.I8 = append([]int8(nil), f.I8...)
	clone.I16 = append([]int16(nil), f.I16...)
	clone.I32 = append([]int32(nil), f.I32...)
	clone.I64 = append([]int64(nil), f.I64...)
	clone.U8 = append([]byte(nil), f.U8...)
	clone.U16 = append([]uint16(nil), f.U16...)
	clone.U32 = append([]uint32(nil), f.U32...)
	clone.U64 = append([]uint64(nil), f.U64...)
	clone.F32 = append([]float32(nil), f.F32...)
	clone.F64 = append([]float64(nil), f.F64...)
	clone.Str = append([]string(nil), f.Str...)
	clone.Bytes = make([][]byte, len(f.Bytes))
	for i, b := range f.Bytes {
		clone.Bytes[i] = append([]byte(nil), b...)
	}
	return clone
}
