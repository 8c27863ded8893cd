// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import "sort"

// WorldSnapshot is the opaque, externally-defined input this system
// columnarizes. Producing one is the ECS runtime's concern, not this
// system's (spec §1, "Explicitly out of scope") — tx2pack only needs
// entities and, per entity, the set of components it carries.
type WorldSnapshot struct {
	TimestampUnix int64
	Entities      []WorldEntity
}

// WorldEntity is one entity's row in a WorldSnapshot: its id, its
// per-entity metadata, and the components it carries.
type WorldEntity struct {
	ID         EntityId
	Metadata   EntityMetadata
	Components []WorldComponent
}

// WorldComponent is one entity's payload for one component family.
// Exactly one of Fields / Opaque should be set: when Fields is
// non-nil, the component has a typed schema and Columnarize emits a
// StructOfArrays column for it; when Fields is nil, Columnarize
// carries Opaque through untouched as a Blob (spec §4.2).
type WorldComponent struct {
	ID     ComponentId
	Fields map[string]FieldValue
	Opaque []byte
}

// Columnarize builds a PackedSnapshot from a WorldSnapshot: for each
// component family, entities sharing that component are grouped into
// one ComponentArchetype, and typed per-entity field values are
// transposed into parallel FieldArray columns (spec §4.2). Components
// whose payload is untyped (Opaque) are carried as a Blob per entity,
// concatenated in entity order with no further structure imposed —
// tx2pack does not introspect opaque payloads.
//
// Entities within an archetype appear in the order they were first
// seen in ws.Entities. Columnarize returns an error if two
// entities supply different field sets or field types for the same
// component — the StructOfArrays invariant requires every row to
// share one schema.
func Columnarize(ws WorldSnapshot) (*PackedSnapshot, error) {
	packed := NewPackedSnapshot()
	packed.Header.Timestamp = ws.TimestampUnix
	packed.Header.EntityCount = uint64(len(ws.Entities))

	type building struct {
		componentID ComponentId
		entityIDs   []EntityId
		fieldOrder  []string
		fieldTypes  map[string]FieldType
		columns     map[string]*FieldArray
		blobs       [][]byte
		typed       bool
		sawTyped    bool
		sawOpaque   bool
	}

	order := make([]ComponentId, 0)
	groups := make(map[ComponentId]*building)

	for _, entity := range ws.Entities {
		packed.EntityMetadata[entity.ID] = entity.Metadata

		for _, component := range entity.Components {
			group, ok := groups[component.ID]
			if !ok {
				group = &building{
					componentID: component.ID,
					fieldTypes:  make(map[string]FieldType),
					columns:     make(map[string]*FieldArray),
				}
				groups[component.ID] = group
				order = append(order, component.ID)
			}

			group.entityIDs = append(group.entityIDs, entity.ID)

			if component.Fields != nil {
				group.sawTyped = true
				if !group.typed && !group.sawOpaque {
					group.typed = true
					group.fieldOrder = sortedFieldNames(component.Fields)
					for _, name := range group.fieldOrder {
						fv := component.Fields[name]
						group.fieldTypes[name] = fv.Type
						group.columns[name] = &FieldArray{Type: fv.Type}
					}
				}
				if err := appendRow(group.fieldOrder, group.fieldTypes, group.columns, component.Fields); err != nil {
					return nil, err
				}
			} else {
				group.sawOpaque = true
				group.blobs = append(group.blobs, component.Opaque)
			}

			if group.sawTyped && group.sawOpaque {
				return nil, inconsistentComponentErr(component.ID)
			}
		}
	}

	for _, id := range order {
		group := groups[id]
		archetype := ComponentArchetype{
			ComponentID: group.componentID,
			EntityIDs:   group.entityIDs,
		}

		if group.typed {
			soa := &StructOfArraysData{
				FieldNames: group.fieldOrder,
				FieldTypes: make([]FieldType, len(group.fieldOrder)),
				FieldData:  make([]FieldArray, len(group.fieldOrder)),
			}
			for i, name := range group.fieldOrder {
				soa.FieldTypes[i] = group.fieldTypes[name]
				soa.FieldData[i] = *group.columns[name]
			}
			archetype.Data = ComponentData{Kind: ComponentStructOfArrays, SoA: soa}
		} else {
			archetype.Data = ComponentData{Kind: ComponentBlob, Blob: concatBlobs(group.blobs)}
		}

		packed.Archetypes = append(packed.Archetypes, archetype)
	}

	packed.Header.ComponentCount = uint64(len(packed.Archetypes))
	packed.Header.ArchetypeCount = uint64(len(packed.Archetypes))

	return packed, nil
}

func sortedFieldNames(fields map[string]FieldValue) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func appendRow(order []string, types map[string]FieldType, columns map[string]*FieldArray, row map[string]FieldValue) error {
	if len(row) != len(order) {
		return inconsistentFieldSetErr()
	}
	for _, name := range order {
		value, ok := row[name]
		if !ok {
			return inconsistentFieldSetErr()
		}
		if value.Type != types[name] {
			return inconsistentFieldTypeErr(name)
		}
		appendValue(columns[name], value)
	}
	return nil
}

// concatBlobs joins per-entity opaque payloads with no delimiter —
// the blob is opaque to tx2pack by definition (spec §4.2); any
// internal structure needed to separate rows is the caller's
// concern to encode and decode.
func concatBlobs(blobs [][]byte) []byte {
	total := 0
	for _, b := range blobs {
		total += len(b)
	}
	out := make([]byte, 0, total)
	for _, b := range blobs {
		out = append(out, b...)
	}
	return out
}
