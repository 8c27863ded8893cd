// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cryptutil holds the envelope pipeline's cryptographic
// primitives: guarded key storage, AES-256-GCM sealing, SHA-256
// checksums, and HKDF-SHA256 key derivation for per-checkpoint keys.
package cryptutil
