// Copyright 2026 The DCCL Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dccl

import "fmt"

// newBoolCodec is the default codec factory for KindBool: a single bit,
// 1 = true, 0 = false.
func newBoolCodec(f *FieldDescriptor) (*FieldCodec, error) {
	return &FieldCodec{
		Name: "bool",
		Size: func(ctx *Context, v WireValue, f *FieldDescriptor) (int, error) {
			return 1, nil
		},
		Encode: func(ctx *Context, bs *BitStream, v WireValue, f *FieldDescriptor) error {
			b, ok := v.Bool()
			if !ok {
				return wrapFieldCause(ErrOutOfRange, f.FullName(), fmt.Errorf("expected bool, got %v", v))
			}
			if b {
				bs.AppendUint(1, 1)
			} else {
				bs.AppendUint(0, 1)
			}
			return nil
		},
		Decode: func(ctx *Context, bs *BitStream, f *FieldDescriptor) (WireValue, error) {
			u, err := bs.PopUint(1)
			if err != nil {
				return WireValue{}, err
			}
			return BoolValue(u == 1), nil
		},
		MinSize:  func(f *FieldDescriptor) (int, error) { return 1, nil },
		MaxSize:  func(f *FieldDescriptor) (int, error) { return 1, nil },
		Validate: func(f *FieldDescriptor) error { return nil },
		Info: func(f *FieldDescriptor) string {
			return fmt.Sprintf("%s: bool (1 bit)", f.Name)
		},
	}, nil
}
