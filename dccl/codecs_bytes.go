// Copyright 2026 The DCCL Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dccl

import "fmt"

// newBytesCodec is the default codec factory for KindBytes: a
// length-prefixed run of arbitrary bytes, the binary twin of the string
// codec with no UTF-8 validation.
func newBytesCodec(fd *FieldDescriptor) (*FieldCodec, error) {
	maxBytes := stringMaxBytes(fd)
	lengthBits := bitsForRange(uint64(maxBytes) + 1)
	return &FieldCodec{
		Name: "bytes",
		Size: func(ctx *Context, v WireValue, f *FieldDescriptor) (int, error) {
			b, ok := v.Bytes()
			if !ok {
				return 0, wrapFieldCause(ErrOutOfRange, f.FullName(), fmt.Errorf("expected bytes, got %v", v))
			}
			return lengthBits + len(b)*8, nil
		},
		Encode: func(ctx *Context, bs *BitStream, v WireValue, f *FieldDescriptor) error {
			b, ok := v.Bytes()
			if !ok {
				return wrapFieldCause(ErrOutOfRange, f.FullName(), fmt.Errorf("expected bytes, got %v", v))
			}
			if len(b) > maxBytes {
				return wrapFieldCause(ErrOutOfRange, f.FullName(), fmt.Errorf("bytes of length %d exceed max %d", len(b), maxBytes))
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
			return BytesValue(b), nil
		},
		MinSize: func(f *FieldDescriptor) (int, error) { return lengthBits, nil },
		MaxSize: func(f *FieldDescriptor) (int, error) { return lengthBits + maxBytes*8, nil },
		Validate: func(f *FieldDescriptor) error {
			if maxBytes <= 0 {
				return wrapFieldCause(ErrSchemaError, f.FullName(), fmt.Errorf("bytes max length must be > 0"))
			}
			return nil
		},
		Info: func(f *FieldDescriptor) string {
			return fmt.Sprintf("%s: bytes(max %d) (%d..%d bits)", f.Name, maxBytes, lengthBits, lengthBits+maxBytes*8)
		},
	}, nil
}
