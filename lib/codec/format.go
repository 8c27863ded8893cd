// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import "github.com/tx2pack/tx2pack/lib/snapshot"

// Encode serializes the body of p (everything except the header) using
// the given format.
func Encode(p *snapshot.PackedSnapshot, format snapshot.Format) ([]byte, error) {
	switch format {
	case snapshot.FormatBinary:
		return EncodeBinary(p)
	case snapshot.FormatMessagePack:
		return EncodeMessagePack(p)
	default:
		return nil, unsupportedFormatErr(format)
	}
}

// Decode parses bytes produced by Encode back into a PackedSnapshot
// body, using the given format. The returned snapshot's Header is
// zero-valued; callers fill it in from the envelope header they
// already parsed.
func Decode(data []byte, format snapshot.Format) (*snapshot.PackedSnapshot, error) {
	switch format {
	case snapshot.FormatBinary:
		return DecodeBinary(data)
	case snapshot.FormatMessagePack:
		return DecodeMessagePack(data)
	default:
		return nil, unsupportedFormatErr(format)
	}
}
