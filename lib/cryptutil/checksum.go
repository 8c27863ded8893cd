// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cryptutil

import "crypto/sha256"

// Checksum returns the SHA-256 digest of data. This is the checksum
// algorithm stored in a snapshot header, computed over the serialized
// (and, if applicable, compressed) body before encryption.
func Checksum(data []byte) [32]byte {
	return sha256.Sum256(data)
}
