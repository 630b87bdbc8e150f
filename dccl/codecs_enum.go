// Copyright 2026 The DCCL Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dccl

import "fmt"

// newEnumCodec is the default codec factory for KindEnum: values are
// encoded as a 0-based index into fd.Enum (declaration order), in
// ceil(log2(N)) bits.
func newEnumCodec(fd *FieldDescriptor) (*FieldCodec, error) {
	if len(fd.Enum) == 0 {
		return nil, wrapFieldCause(ErrSchemaError, fd.FullName(), fmt.Errorf("enum field has no declared values"))
	}
	width := bitsForRange(uint64(len(fd.Enum)))
	if width == 0 {
		width = 1 // a single-value enum still needs a bit to round-trip
	}
	indexOf := func(number int64) (int, bool) {
		for i, e := range fd.Enum {
			if e.Number == number {
				return i, true
			}
		}
		return 0, false
	}
	return &FieldCodec{
		Name: "enum",
		Size: func(ctx *Context, v WireValue, f *FieldDescriptor) (int, error) {
			return width, nil
		},
		Encode: func(ctx *Context, bs *BitStream, v WireValue, f *FieldDescriptor) error {
			n, ok := numericValue(v)
			if !ok {
				return wrapFieldCause(ErrOutOfRange, f.FullName(), fmt.Errorf("expected enum number, got %v", v))
			}
			idx, ok := indexOf(n)
			if !ok {
				return wrapFieldCause(ErrOutOfRange, f.FullName(), fmt.Errorf("undeclared enum value %d", n))
			}
			bs.AppendUint(uint64(idx), width)
			return nil
		},
		Decode: func(ctx *Context, bs *BitStream, f *FieldDescriptor) (WireValue, error) {
			idx, err := bs.PopUint(width)
			if err != nil {
				return WireValue{}, err
			}
			if int(idx) >= len(f.Enum) {
				return WireValue{}, wrapFieldCause(ErrInvalidEncoding, f.FullName(), fmt.Errorf("enum index %d out of range", idx))
			}
			return IntValue(f.Enum[idx].Number), nil
		},
		MinSize:  func(f *FieldDescriptor) (int, error) { return width, nil },
		MaxSize:  func(f *FieldDescriptor) (int, error) { return width, nil },
		Validate: func(f *FieldDescriptor) error {
			if len(f.Enum) == 0 {
				return wrapFieldCause(ErrSchemaError, f.FullName(), fmt.Errorf("enum field has no declared values"))
			}
			return nil
		},
		Info: func(f *FieldDescriptor) string {
			return fmt.Sprintf("%s: enum(%d values) (%d bits)", f.Name, len(f.Enum), width)
		},
	}, nil
}
