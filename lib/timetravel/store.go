// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package timetravel keeps a time-sorted sequence of snapshots and
// supports nearest-time lookup, forking, and range pruning over it.
package timetravel

import (
	"math"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/tx2pack/tx2pack/lib/snaperr"
	"github.com/tx2pack/tx2pack/lib/snapshot"
)

// Entry is one recorded point in time.
type Entry struct {
	TimeSeconds float64
	Snapshot    *snapshot.PackedSnapshot

	// contentHash is the xxhash digest of the entry's encoded
	// snapshot body, used by RecordIfChanged to skip recording a
	// snapshot that is identical to the one already at the end of
	// the sequence.
	contentHash uint64
}

// Store holds Entry values sorted ascending by TimeSeconds. Insertion
// is by binary search; ties append after existing equal-time entries,
// so repeated Record calls at the same time preserve call order.
type Store struct {
	entries []Entry
}

// NewStore returns an empty time-travel store.
func NewStore() *Store {
	return &Store{}
}

// Record inserts a snapshot at time t, maintaining sorted order.
// Rejects NaN times.
func (s *Store) Record(t float64, snap *snapshot.PackedSnapshot) error {
	_, err := s.insert(t, snap, 0, false)
	return err
}

// RecordIfChanged records snap at time t only if its encoded content
// differs from the entry at the end of the sequence (the one with the
// latest time, not necessarily the one inserted last), using xxhash
// over encode's output to detect a no-op snapshot cheaply without a
// full byte comparison. Entries added by Record carry no hash, so a
// RecordIfChanged call after one always records. Returns whether a new
// entry was recorded.
func (s *Store) RecordIfChanged(t float64, snap *snapshot.PackedSnapshot, encode func(*snapshot.PackedSnapshot) ([]byte, error)) (bool, error) {
	data, err := encode(snap)
	if err != nil {
		return false, err
	}
	hash := xxhash.Sum64(data)

	if len(s.entries) > 0 && s.entries[len(s.entries)-1].contentHash == hash {
		return false, nil
	}

	if _, err := s.insert(t, snap, hash, true); err != nil {
		return false, err
	}
	return true, nil
}

// insert places snap at its sorted position and returns that index.
// Ties append after existing equal-time entries (stable).
func (s *Store) insert(t float64, snap *snapshot.PackedSnapshot, hash uint64, trackHash bool) (int, error) {
	if math.IsNaN(t) {
		return 0, snaperr.New(snaperr.KindInvalidFormat, "time-travel record time must not be NaN")
	}

	pos := sort.Search(len(s.entries), func(i int) bool { return s.entries[i].TimeSeconds > t })
	entry := Entry{TimeSeconds: t, Snapshot: snap}
	if trackHash {
		entry.contentHash = hash
	}
	s.entries = append(s.entries, Entry{})
	copy(s.entries[pos+1:], s.entries[pos:])
	s.entries[pos] = entry
	return pos, nil
}

// SeekToTime returns the entry whose time is closest to target. On an
// equal distance between two candidates, the entry with the smaller
// (earlier) time wins. Returns nil if the store is empty.
func (s *Store) SeekToTime(target float64) *Entry {
	if len(s.entries) == 0 {
		return nil
	}

	pos := sort.Search(len(s.entries), func(i int) bool { return s.entries[i].TimeSeconds >= target })

	if pos == 0 {
		return &s.entries[0]
	}
	if pos == len(s.entries) {
		return &s.entries[len(s.entries)-1]
	}

	before := &s.entries[pos-1]
	after := &s.entries[pos]
	distBefore := target - before.TimeSeconds
	distAfter := after.TimeSeconds - target

	if distBefore <= distAfter {
		return before
	}
	return after
}

// ForkAtTime returns a deep, independent clone of the snapshot
// SeekToTime(target) would return. The clone is unaffected by any
// later Record/Prune call on the store. Returns nil if the store is
// empty.
func (s *Store) ForkAtTime(target float64) *snapshot.PackedSnapshot {
	entry := s.SeekToTime(target)
	if entry == nil {
		return nil
	}
	return entry.Snapshot.Clone()
}

// PruneBefore deletes every entry with TimeSeconds < t.
func (s *Store) PruneBefore(t float64) {
	pos := sort.Search(len(s.entries), func(i int) bool { return s.entries[i].TimeSeconds >= t })
	s.entries = append([]Entry(nil), s.entries[pos:]...)
}

// PruneAfter deletes every entry with TimeSeconds > t.
func (s *Store) PruneAfter(t float64) {
	pos := sort.Search(len(s.entries), func(i int) bool { return s.entries[i].TimeSeconds > t })
	s.entries = append([]Entry(nil), s.entries[:pos]...)
}

// Range returns every entry with a <= TimeSeconds <= b.
func (s *Store) Range(a, b float64) []*Entry {
	start := sort.Search(len(s.entries), func(i int) bool { return s.entries[i].TimeSeconds >= a })
	end := sort.Search(len(s.entries), func(i int) bool { return s.entries[i].TimeSeconds > b })

	result := make([]*Entry, 0, end-start)
	for i := start; i < end; i++ {
		result = append(result, &s.entries[i])
	}
	return result
}

// Len returns the number of recorded entries.
func (s *Store) Len() int { return len(s.entries) }
