// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

// ComponentKind discriminates the two shapes ComponentData can take.
type ComponentKind uint8

const (
	// ComponentStructOfArrays marks a component with a caller-registered
	// typed schema, stored as parallel typed columns.
	ComponentStructOfArrays ComponentKind = iota
	// ComponentBlob marks a component this system does not introspect;
	// its encoding is opaque to tx2pack and carried as raw bytes.
	ComponentBlob
)

// StructOfArraysData is a parallel triple of field names, field types,
// and field columns. Invariant: all three slices have equal length,
// and for every i, FieldData[i].Len() equals the archetype's entity
// count (spec §3).
type StructOfArraysData struct {
	FieldNames []string     `msgpack:"field_names"`
	FieldTypes []FieldType  `msgpack:"field_types"`
	FieldData  []FieldArray `msgpack:"field_data"`
}

// ComponentData is the tagged union between a typed column set and an
// opaque blob. Exactly one of SoA / Blob is meaningful, selected by
// Kind.
type ComponentData struct {
	Kind ComponentKind

	SoA  *StructOfArraysData `msgpack:",omitempty"`
	Blob []byte              `msgpack:",omitempty"`
}

// ComponentArchetype groups one component family's data with the
// entities that carry it. Invariants (spec §3): EntityIDs has no
// duplicates; row k of every column in Data corresponds to
// EntityIDs[k]; archetypes are keyed uniquely by ComponentID within a
// snapshot.
type ComponentArchetype struct {
	ComponentID ComponentId `msgpack:"component_id"`
	EntityIDs   []EntityId  `msgpack:"entity_ids"`
	Data        ComponentData
}

// EntityMetadata is per-entity sidecar information: a generation
// counter (reused-slot disambiguation), a caller-defined flags
// bitfield, and an optional display name.
type EntityMetadata struct {
	Generation uint32
	Flags      uint32
	Name       string `msgpack:",omitempty"`
}
