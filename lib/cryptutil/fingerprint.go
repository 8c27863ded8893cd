// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cryptutil

import "github.com/zeebo/blake3"

// Fingerprint is a content-addressed BLAKE3 digest of a checkpoint's
// encoded envelope bytes. Identical envelope bytes always get the same
// fingerprint regardless of checkpoint name; an encrypted envelope
// carries a fresh random nonce, so two encrypted checkpoints of the
// same snapshot get different fingerprints. The checkpoint manager
// computes it after writing the envelope and records it in the
// sidecar; it does not compare fingerprints or skip duplicate writes.
type Fingerprint [32]byte

// ComputeFingerprint returns the BLAKE3 digest of data.
func ComputeFingerprint(data []byte) Fingerprint {
	var fp Fingerprint
	sum := blake3.Sum256(data)
	copy(fp[:], sum[:])
	return fp
}
