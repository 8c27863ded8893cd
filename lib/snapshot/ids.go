// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

// EntityId is an opaque 64-bit handle, stable within a snapshot.
// Equality-comparable; ordering is used only to make map iteration
// deterministic at encode time (spec §4.2), never for correctness.
type EntityId uint64

// ComponentId is a short textual name, unique per snapshot, that
// identifies a column family (an archetype).
type ComponentId string
