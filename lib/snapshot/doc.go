// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package snapshot defines the columnar, struct-of-arrays data model
// for a packed ECS world: typed field columns grouped into
// per-component archetypes, per-entity metadata, and the
// PackedSnapshot container that bundles them with a header.
//
// The types here are pure data — no I/O, no compression, no
// encryption. Those concerns live in lib/codec, lib/compress,
// lib/cryptutil, and lib/envelope, which operate on the types defined
// here.
package snapshot
