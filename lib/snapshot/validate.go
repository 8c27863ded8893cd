// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"fmt"

	"github.com/tx2pack/tx2pack/lib/snaperr"
)

// ValidateStructure checks the structural invariants a decoded
// PackedSnapshot must hold regardless of which wire format produced
// it: component ids unique across archetypes, entity ids unique
// within an archetype, and every StructOfArrays column's length equal
// to its archetype's entity count. A well-framed, well-checksummed
// body can still violate these — decoding never rejects them on its
// own, so a caller must run this after Decode.
func ValidateStructure(p *PackedSnapshot) error {
	seenComponents := make(map[ComponentId]bool, len(p.Archetypes))

	for _, archetype := range p.Archetypes {
		if seenComponents[archetype.ComponentID] {
			return snaperr.New(snaperr.KindInvalidFormat,
				fmt.Sprintf("duplicate component id %q across archetypes", string(archetype.ComponentID)))
		}
		seenComponents[archetype.ComponentID] = true

		seenEntities := make(map[EntityId]bool, len(archetype.EntityIDs))
		for _, id := range archetype.EntityIDs {
			if seenEntities[id] {
				return snaperr.New(snaperr.KindInvalidFormat,
					fmt.Sprintf("duplicate entity id %d in archetype %q", id, string(archetype.ComponentID)))
			}
			seenEntities[id] = true
		}

		if archetype.Data.Kind != ComponentStructOfArrays {
			continue
		}
		soa := archetype.Data.SoA
		if soa == nil {
			return snaperr.New(snaperr.KindInvalidFormat,
				fmt.Sprintf("archetype %q is tagged StructOfArrays but carries no column data", string(archetype.ComponentID)))
		}
		if len(soa.FieldNames) != len(soa.FieldData) || len(soa.FieldTypes) != len(soa.FieldData) {
			return snaperr.New(snaperr.KindInvalidFormat,
				fmt.Sprintf("archetype %q has mismatched field_names/field_types/field_data lengths", string(archetype.ComponentID)))
		}
		for i, col := range soa.FieldData {
			if col.Len() != len(archetype.EntityIDs) {
				return snaperr.New(snaperr.KindInvalidFormat,
					fmt.Sprintf("archetype %q column %q has %d rows, want %d (entity count)",
						string(archetype.ComponentID), soa.FieldNames[i], col.Len(), len(archetype.EntityIDs)))
			}
		}
	}

	return nil
}
