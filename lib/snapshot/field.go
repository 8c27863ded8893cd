// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import "fmt"

// FieldType is one of the closed set of wire-shape tags a FieldArray
// column can carry. Spec §3.
type FieldType uint8

const (
	FieldBool FieldType = iota
	FieldI8
	FieldI16
	FieldI32
	FieldI64
	FieldU8
	FieldU16
	FieldU32
	FieldU64
	FieldF32
	FieldF64
	FieldString
	FieldBytes
)

func (t FieldType) String() string {
	switch t {
	case FieldBool:
		return "bool"
	case FieldI8:
		return "i8"
	case FieldI16:
		return "i16"
	case FieldI32:
		return "i32"
	case FieldI64:
		return "i64"
	case FieldU8:
		return "u8"
	case FieldU16:
		return "u16"
	case FieldU32:
		return "u32"
	case FieldU64:
		return "u64"
	case FieldF32:
		return "f32"
	case FieldF64:
		return "f64"
	case FieldString:
		return "string"
	case FieldBytes:
		return "bytes"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// IsValid reports whether t is one of the defined FieldType constants.
func (t FieldType) IsValid() bool {
	return t <= FieldBytes
}

// FieldArray is a typed, homogeneous column. Exactly one of the
// type-specific slices below is populated, selected by Type — Go has
// no native tagged union, so this mirrors the Rust source's
// `enum FieldArray` the way a discriminated struct with exclusive
// fields does in idiomatic Go (the same shape msgpack and our binary
// codec both serialize without reflection tricks).
type FieldArray struct {
	Type FieldType

	Bool  []bool    `msgpack:",omitempty"`
	I8    []int8    `msgpack:",omitempty"`
	I16   []int16   `msgpack:",omitempty"`
	I32   []int32   `msgpack:",omitempty"`
	I64   []int64   `msgpack:",omitempty"`
	U8    []byte    `msgpack:",omitempty"`
	U16   []uint16  `msgpack:",omitempty"`
	U32   []uint32  `msgpack:",omitempty"`
	U64   []uint64  `msgpack:",omitempty"`
	F32   []float32 `msgpack:",omitempty"`
	F64   []float64 `msgpack:",omitempty"`
	Str   []string  `msgpack:",omitempty"`
	Bytes [][]byte  `msgpack:",omitempty"`
}

// Len returns the number of elements in the column, regardless of
// which type-specific slice is populated.
func (f FieldArray) Len() int {
	switch f.Type {
	case FieldBool:
		return len(f.Bool)
	case FieldI8:
		return len(f.I8)
	case FieldI16:
		return len(f.I16)
	case FieldI32:
		return len(f.I32)
	case FieldI64:
		return len(f.I64)
	case FieldU8:
		return len(f.U8)
	case FieldU16:
		return len(f.U16)
	case FieldU32:
		return len(f.U32)
	case FieldU64:
		return len(f.U64)
	case FieldF32:
		return len(f.F32)
	case FieldF64:
		return len(f.F64)
	case FieldString:
		return len(f.Str)
	case FieldBytes:
		return len(f.Bytes)
	default:
		return 0
	}
}

// FieldValue is a single scalar value tagged with its FieldType. Used
// by Columnarize to accept one entity's field value before it is
// appended into the matching FieldArray column.
type FieldValue struct {
	Type FieldType

	Bool  bool
	I8    int8
	I16   int16
	I32   int32
	I64   int64
	U8    byte
	U16   uint16
	U32   uint32
	U64   uint64
	F32   float32
	F64   float64
	Str   string
	Bytes []byte
}

// appendValue appends v onto the matching slice of arr. arr.Type must
// already equal v.Type; callers (Columnarize) are responsible for
// that check since it is cheaper to do once per column than once per
// value.
func appendValue(arr *FieldArray, v FieldValue) {
	switch arr.Type {
	case FieldBool:
		arr.Bool = append(arr.Bool, v.Bool)
	case FieldI8:
		arr.I8 = append(arr.I8, v.I8)
	case FieldI16:
		arr.I16 = append(arr.I16, v.I16)
	case FieldI32:
		arr.I32 = append(arr.I32, v.I32)
	case FieldI64:
		arr.I64 = append(arr.I64, v.I64)
	case FieldU8:
		arr.U8 = append(arr.U8, v.U8)
	case FieldU16:
		arr.U16 = append(arr.U16, v.U16)
	case FieldU32:
		arr.U32 = append(arr.U32, v.U32)
	case FieldU64:
		arr.U64 = append(arr.U64, v.U64)
	case FieldF32:
		arr.F32 = append(arr.F32, v.F32)
	case FieldF64:
		arr.F64 = append(arr.F64, v.F64)
	case FieldString:
		arr.Str = append(arr.Str, v.Str)
	case FieldBytes:
		arr.Bytes = append(arr.Bytes, v.Bytes)
	}
}
