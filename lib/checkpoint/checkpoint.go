// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package checkpoint

import (
	"time"

	"github.com/google/uuid"

	"github.com/tx2pack/tx2pack/lib/cryptutil"
	"github.com/tx2pack/tx2pack/lib/snapshot"
)

// Checkpoint is a named snapshot with an optional parent link,
// materialized in full (snapshot included) by LoadCheckpoint.
type Checkpoint struct {
	ID          string
	ParentID    string // empty means no parent
	CreatedAt   time.Time
	Fingerprint cryptutil.Fingerprint
	Snapshot    *snapshot.PackedSnapshot
}

// Metadata is a Checkpoint's sidecar form: everything but the
// snapshot itself. Returned by ListCheckpoints, which does not touch
// envelope bytes.
type Metadata struct {
	ID          string    `json:"id"`
	ParentID    string    `json:"parent_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Fingerprint string    `json:"fingerprint"`
}

// NewID returns a fresh checkpoint id for callers that don't need a
// caller-meaningful name. Checkpoint ids are otherwise opaque strings
// chosen by the caller.
func NewID() string {
	return uuid.NewString()
}
