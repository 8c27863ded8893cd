// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package checkpoint implements named, parent-linked snapshots: a
// directory of envelopes plus JSON sidecars, with an in-memory index
// rebuilt from the sidecars on construction. Parent links form a DAG
// (in practice a tree); Manager defends against cycles
// arising from corrupted metadata by bounding every chain walk to the
// index size.
package checkpoint
