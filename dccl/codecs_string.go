// Copyright 2026 The DCCL Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dccl

import "fmt"

// stringMaxBytes returns the declared maximum byte length for a string
// or bytes field, defaulting to 255 when unspecified (matching the
// teacher's coderString, which treats a zero col.Length as "unbounded"
// but needs a concrete ceiling here to size the length prefix).
func stringMaxBytes(fd *FieldDescriptor) int {
	if fd.Options.Max > 0 {
		return int(fd.Options.Max)
	}
	return 255
}

// newStringCodec is the default codec factory for KindString: a
// length-prefixed run of UTF-8 bytes, length measured in bytes up to
// Options.Max (default 255).
func newStringCodec(fd *FieldDescriptor) (*FieldCodec, error) {
	maxBytes := stringMaxBytes(fd)
	lengthBits := bitsForRange(uint64(maxBytes) + 1)
	return &FieldCodec{
		Name: "string",
		Size: func(ctx *Context, v WireValue, f *FieldDescriptor) (int, error) {
			s, ok := v.Str()
			if !ok {
				return 0, wrapFieldCause(ErrOutOfRange, f.FullName(), fmt.Errorf("expected string, got %v", v))
			}
			return lengthBits + len(s)*8, nil
		},
		Encode: func(ctx *Context, bs *BitStream, v WireValue, f *FieldDescriptor) error {
			s, ok := v.Str()
			if !ok {
				return wrapFieldCause(ErrOutOfRange, f.FullName(), fmt.Errorf("expected string, got %v", v))
			}
			b := []byte(s)
			if len(b) > maxBytes {
				return wrapFieldCause(ErrOutOfRange, f.FullName(), fmt.Errorf("string of %d bytes exceeds max %d", len(b), maxBytes))
			}
			bs.AppendUint(uint64(len(b)), lengthBits)
			for _, by := range b {
				bs.AppendUint(uint64(by), 8)
			}
			return nil
		},
		Decode: func(ctx *Context, bs *BitStream, f *FieldDescriptor) (WireValue, error) {
			n, err := bs.PopUint(lengthBits)
			if err != nil {
				return WireValue{}, err
			}
			if int(n) > maxBytes {
				return WireValue{}, wrapFieldCause(ErrInvalidEncoding, f.FullName(), fmt.Errorf("decoded length %d exceeds max %d", n, maxBytes))
			}
			b := make([]byte, n)
			for i := range b {
				u, err := bs.PopUint(8)
				if err != nil {
					return WireValue{}, err
				}
				b[i] = byte(u)
			}
			return StringValue(string(b)), nil
		},
		MinSize: func(f *FieldDescriptor) (int, error) { return lengthBits, nil },
		MaxSize: func(f *FieldDescriptor) (int, error) { return lengthBits + maxBytes*8, nil },
		Validate: func(f *FieldDescriptor) error {
			if maxBytes <= 0 {
				return wrapFieldCause(ErrSchemaError, f.FullName(), fmt.Errorf("string max length must be > 0"))
			}
			return nil
		},
		Info: func(f *FieldDescriptor) string {
			return fmt.Sprintf("%s: string(max %d bytes) (%d..%d bits)", f.Name, maxBytes, lengthBits, lengthBits+maxBytes*8)
		},
	}, nil
}
