// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cryptutil

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
)

// NonceSize is the width of the random AES-256-GCM nonce prepended to
// every sealed blob.
const NonceSize = 12

// Overhead is the total byte overhead of Seal over the plaintext: the
// nonce plus the GCM authentication tag.
const Overhead = NonceSize + 16

// Seal encrypts plaintext with AES-256-GCM under key and returns
// nonce || ciphertext || tag. aad is bound into the tag but not
// encrypted — the caller recomputes it and passes the same bytes to
// Open, which fails authentication if they differ. key must be
// exactly KeySize bytes.
//
// The algorithm is fixed to AES-256-GCM; this is not a pluggable
// cipher suite.
func Seal(plaintext []byte, key *Key, aad []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("cryptutil: generating nonce: %w", err)
	}

	output := make([]byte, NonceSize, NonceSize+len(plaintext)+gcm.Overhead())
	copy(output, nonce)
	output = gcm.Seal(output, nonce, plaintext, aad)
	return output, nil
}

// Open decrypts a blob produced by Seal, authenticating it against
// aad. Returns an error if the blob is too short, or if AEAD
// authentication fails (wrong key, tampered ciphertext, or mismatched
// aad).
func Open(blob []byte, key *Key, aad []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if len(blob) < NonceSize+gcm.Overhead() {
		return nil, fmt.Errorf("cryptutil: encrypted blob is %d bytes, minimum is %d", len(blob), NonceSize+gcm.Overhead())
	}

	nonce := blob[:NonceSize]
	ciphertext := blob[NonceSize:]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("cryptutil: AEAD decryption failed (wrong key, tampered data, or mismatched associated data): %w", err)
	}
	return plaintext, nil
}

func newGCM(key *Key) (cipher.AEAD, error) {
	if key.Len() != KeySize {
		return nil, fmt.Errorf("cryptutil: AES-256-GCM key must be %d bytes, got %d", KeySize, key.Len())
	}
	block, err := aes.NewCipher(key.Bytes())
	if err != nil {
		return nil, fmt.Errorf("cryptutil: constructing AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cryptutil: constructing GCM mode: %w", err)
	}
	return gcm, nil
}
