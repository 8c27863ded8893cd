// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package snaperr defines the exhaustive error taxonomy shared by every
// layer of tx2pack: codec, compression, the envelope pipeline
// (including its encryption step), the snapshot store, the checkpoint
// manager, and the replay and time-travel engines all return *Error
// values from this package (or errors wrapping one) rather than ad hoc
// per-package sentinels, so a caller can switch on Kind regardless of
// which layer produced the failure. The lib/cryptutil primitives return
// plain errors; the envelope and checkpoint layers wrap them.
package snaperr

import (
	"errors"
	"fmt"
)

// Kind identifies the category of a tx2pack error. The set is closed —
// see spec §7, "Error taxonomy (kinds, exhaustive)".
type Kind int

const (
	KindIO Kind = iota
	KindSerialization
	KindDeserialization
	KindCompression
	KindDecompression
	KindEncryption
	KindDecryption
	KindInvalidFormat
	KindVersionMismatch
	KindChecksumMismatch
	KindSnapshotNotFound
	KindInvalidCheckpoint
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindSerialization:
		return "serialization"
	case KindDeserialization:
		return "deserialization"
	case KindCompression:
		return "compression"
	case KindDecompression:
		return "decompression"
	case KindEncryption:
		return "encryption"
	case KindDecryption:
		return "decryption"
	case KindInvalidFormat:
		return "invalid_format"
	case KindVersionMismatch:
		return "version_mismatch"
	case KindChecksumMismatch:
		return "checksum_mismatch"
	case KindSnapshotNotFound:
		return "snapshot_not_found"
	case KindInvalidCheckpoint:
		return "invalid_checkpoint"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Error is the single error type returned across tx2pack. Message
// carries a human-readable description; Err, when non-nil, is the
// underlying error this one wraps (available via errors.Unwrap /
// errors.As). Expected/Actual are populated only for
// KindVersionMismatch; ID only for KindSnapshotNotFound; Reason only
// for KindInvalidCheckpoint (these mirror the field shape the spec's
// error taxonomy calls for on those three kinds specifically).
type Error struct {
	Kind     Kind
	Message  string
	Err      error
	Expected uint32
	Actual   uint32
	ID       string
	Reason   string
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindVersionMismatch:
		return fmt.Sprintf("version mismatch: expected %d, got %d", e.Expected, e.Actual)
	case KindChecksumMismatch:
		return "checksum mismatch"
	case KindSnapshotNotFound:
		return fmt.Sprintf("snapshot not found: %s", e.ID)
	case KindInvalidCheckpoint:
		return fmt.Sprintf("invalid checkpoint: %s", e.Reason)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind, so
// callers can write errors.Is(err, snaperr.New(snaperr.KindChecksumMismatch, "")).
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

// New constructs an *Error of the given kind with a message and no
// wrapped error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an *Error of the given kind that wraps err.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// IO wraps an I/O failure. Surfaced verbatim per spec §7.
func IO(err error) *Error {
	return Wrap(KindIO, "io", err)
}

// VersionMismatch builds the typed version-mismatch error.
func VersionMismatch(expected, actual uint32) *Error {
	return &Error{Kind: KindVersionMismatch, Expected: expected, Actual: actual}
}

// ChecksumMismatch builds the checksum-mismatch error.
func ChecksumMismatch() *Error {
	return &Error{Kind: KindChecksumMismatch}
}

// SnapshotNotFound builds the not-found error for a store/manager lookup miss.
func SnapshotNotFound(id string) *Error {
	return &Error{Kind: KindSnapshotNotFound, ID: id}
}

// InvalidCheckpoint builds a checkpoint-layer constraint-violation error.
func InvalidCheckpoint(reason string) *Error {
	return &Error{Kind: KindInvalidCheckpoint, Reason: reason}
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
