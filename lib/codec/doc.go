// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec serializes a snapshot.PackedSnapshot body to and from
// bytes, in either of the two formats the header's Format field can
// select: a hand-rolled deterministic binary layout, or MessagePack.
//
// Both codecs encode archetypes sorted by ComponentID (lexicographic)
// and entity metadata sorted by EntityId (numeric) regardless of the
// order they appear in memory, so that encoding the same snapshot
// twice with encryption disabled produces byte-identical output.
package codec
