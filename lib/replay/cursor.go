// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package replay implements a sequential navigator over a checkpoint
// manager's checkpoints, loaded once and then stepped through without
// touching disk again per step.
package replay

import (
	"github.com/tx2pack/tx2pack/lib/checkpoint"
	"github.com/tx2pack/tx2pack/lib/snaperr"
)

// Cursor holds an ordered list of loaded checkpoints and a position
// within it. The cursor does not own the underlying manager's
// lifetime: if checkpoints are created, deleted, or pruned after
// LoadFromManager, the cursor's view goes stale until reloaded.
type Cursor struct {
	checkpoints []*checkpoint.Checkpoint
	index       int // -1 when empty
	LoopEnabled bool
}

// NewCursor returns an empty cursor.
func NewCursor() *Cursor {
	return &Cursor{index: -1}
}

// LoadFromManager populates the cursor from every checkpoint the
// manager currently has, in list_checkpoints order (ascending by
// created_at), and resets the position to the start.
func (c *Cursor) LoadFromManager(m *checkpoint.Manager) error {
	metas, err := m.ListCheckpoints()
	if err != nil {
		return err
	}

	loaded := make([]*checkpoint.Checkpoint, len(metas))
	for i, meta := range metas {
		cp, err := m.LoadCheckpoint(meta.ID)
		if err != nil {
			return err
		}
		loaded[i] = cp
	}

	c.checkpoints = loaded
	if len(loaded) == 0 {
		c.index = -1
	} else {
		c.index = 0
	}
	return nil
}

// Len returns the number of checkpoints currently loaded.
func (c *Cursor) Len() int { return len(c.checkpoints) }

// Current returns the checkpoint at the cursor's position, or nil if
// the cursor is empty.
func (c *Cursor) Current() *checkpoint.Checkpoint {
	if c.index < 0 {
		return nil
	}
	return c.checkpoints[c.index]
}

// Next advances the cursor by one. If already at the end, wraps to
// the start when LoopEnabled, otherwise does nothing. Returns whether
// the position changed.
func (c *Cursor) Next() bool {
	if c.index < 0 {
		return false
	}
	if c.index+1 < len(c.checkpoints) {
		c.index++
		return true
	}
	if c.LoopEnabled {
		c.index = 0
		return true
	}
	return false
}

// Previous is the symmetric counterpart of Next.
func (c *Cursor) Previous() bool {
	if c.index < 0 {
		return false
	}
	if c.index-1 >= 0 {
		c.index--
		return true
	}
	if c.LoopEnabled {
		c.index = len(c.checkpoints) - 1
		return true
	}
	return false
}

// Seek sets the cursor's position directly. Fails with
// InvalidCheckpoint if i is out of range.
func (c *Cursor) Seek(i int) error {
	if i < 0 || i >= len(c.checkpoints) {
		return snaperr.InvalidCheckpoint("replay cursor seek index out of range")
	}
	c.index = i
	return nil
}

// SeekToStart moves the cursor to index 0. A no-op on an empty cursor.
func (c *Cursor) SeekToStart() {
	if len(c.checkpoints) == 0 {
		return
	}
	c.index = 0
}

// SeekToEnd moves the cursor to the last index. A no-op on an empty
// cursor.
func (c *Cursor) SeekToEnd() {
	if len(c.checkpoints) == 0 {
		return
	}
	c.index = len(c.checkpoints) - 1
}
