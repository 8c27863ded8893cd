// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cryptutil

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// hkdfInfoCheckpoint is the "info" parameter for per-checkpoint key
// derivation, providing domain separation from any other HKDF path
// that might be added later. Changing it invalidates every ciphertext
// that was encrypted under a checkpoint-derived key.
var hkdfInfoCheckpoint = []byte("tx2pack.checkpoint.v1")

// DeriveCheckpointKey derives a checkpoint-specific encryption key
// from a root key and the checkpoint's id, so that a single caller
// supplied master key never directly encrypts checkpoint data and
// compromise of one checkpoint's derived key does not expose any
// other checkpoint's data.
//
// rootKey is borrowed and not closed. The returned Key is owned by
// the caller.
func DeriveCheckpointKey(rootKey *Key, checkpointID string) (*Key, error) {
	info := append(append([]byte(nil), hkdfInfoCheckpoint...), []byte(checkpointID)...)

	reader := hkdf.New(sha256.New, rootKey.Bytes(), nil, info)
	derived := make([]byte, KeySize)
	if _, err := io.ReadFull(reader, derived); err != nil {
		return nil, fmt.Errorf("cryptutil: HKDF checkpoint key derivation failed: %w", err)
	}
	// NewKeyFromBytes copies into guarded memory and zeroes derived.
	return NewKeyFromBytes(derived)
}
