// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cryptutil

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// KeySize is the size in bytes of every encryption key in tx2pack:
// the caller-supplied envelope key and every key derived from it.
const KeySize = 32

// Key holds key material in memory that is locked against swapping,
// excluded from core dumps, and zeroed on close. The backing memory is
// allocated via an anonymous mmap region outside the Go heap, so the
// garbage collector never sees it and cannot copy or relocate it.
//
// A Key must not be copied after creation. Close releases the memory
// when the key is no longer needed; after Close, Bytes panics.
type Key struct {
	mu     sync.Mutex
	data   []byte
	closed bool
}

// NewKey allocates size bytes of guarded memory.
func NewKey(size int) (*Key, error) {
	if size <= 0 {
		return nil, fmt.Errorf("cryptutil: key size must be positive, got %d", size)
	}

	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("cryptutil: mmap failed: %w", err)
	}

	if err := unix.Mlock(data); err != nil {
		unix.Munmap(data)
		return nil, fmt.Errorf("cryptutil: mlock failed: %w", err)
	}

	if err := unix.Madvise(data, unix.MADV_DONTDUMP); err != nil {
		unix.Munlock(data)
		unix.Munmap(data)
		return nil, fmt.Errorf("cryptutil: madvise(MADV_DONTDUMP) failed: %w", err)
	}

	return &Key{data: data}, nil
}

// NewKeyFromBytes copies source into a new guarded Key and zeroes the
// caller's copy, so the plaintext key no longer exists outside guarded
// memory. Returns an error unless len(source) == KeySize.
func NewKeyFromBytes(source []byte) (*Key, error) {
	if len(source) != KeySize {
		return nil, fmt.Errorf("cryptutil: key must be %d bytes, got %d", KeySize, len(source))
	}

	key, err := NewKey(len(source))
	if err != nil {
		return nil, err
	}
	copy(key.data, source)
	for i := range source {
		source[i] = 0
	}
	return key, nil
}

// Bytes returns the key material. The slice points directly into the
// guarded region; do not retain it beyond the Key's lifetime. Panics
// if the key has been closed.
func (k *Key) Bytes() []byte {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		panic("cryptutil: read from closed key")
	}
	return k.data
}

// Len returns the size of the key material.
func (k *Key) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.data)
}

// Close zeroes, unlocks, and unmaps the key's memory. Idempotent.
func (k *Key) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return nil
	}
	k.closed = true

	for i := range k.data {
		k.data[i] = 0
	}

	var firstErr error
	if err := unix.Munlock(k.data); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("cryptutil: munlock failed: %w", err)
	}
	if err := unix.Munmap(k.data); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("cryptutil: munmap failed: %w", err)
	}
	k.data = nil
	return firstErr
}
