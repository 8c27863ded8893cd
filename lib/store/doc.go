// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package store persists named snapshots on disk as a pair of files
// per snapshot: the tx2pack envelope itself and a JSON metadata
// sidecar. There is no separate index file — the directory listing of
// sidecars is the index.
package store
