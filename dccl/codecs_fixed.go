// Copyright 2026 The DCCL Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dccl

import "fmt"

// newFixedCodec is the default codec factory for KindFixed: an integer
// encoded in exactly Options.NumBits bits, offset from Options.Min (0 by
// default), with no range-derived width computation — used for raw
// fixed-width fields such as timestamps where the wire width is a
// protocol constant rather than a function of the value's range.
func newFixedCodec(fd *FieldDescriptor) (*FieldCodec, error) {
	width := int(fd.Options.NumBits)
	if width <= 0 {
		return nil, wrapFieldCause(ErrSchemaError, fd.FullName(), fmt.Errorf("fixed codec requires num_bits > 0"))
	}
	minVal := int64(fd.Options.Min)
	hasRange := fd.Options.Max > fd.Options.Min
	return &FieldCodec{
		Name: "fixed",
		Size: func(ctx *Context, v WireValue, f *FieldDescriptor) (int, error) {
			return width, nil
		},
		Encode: func(ctx *Context, bs *BitStream, v WireValue, f *FieldDescriptor) error {
			val, ok := numericValue(v)
			if !ok {
				return wrapFieldCause(ErrOutOfRange, f.FullName(), fmt.Errorf("expected integer, got %v", v))
			}
			if hasRange && (float64(val) < f.Options.Min || float64(val) > f.Options.Max) {
				return wrapFieldCause(ErrOutOfRange, f.FullName(), fmt.Errorf("%d outside [%v, %v]", val, f.Options.Min, f.Options.Max))
			}
			enc := offsetEncode(val, minVal)
			if val < minVal || (width < 64 && enc >= uint64(1)<<uint(width)) {
				return wrapFieldCause(ErrOutOfRange, f.FullName(), fmt.Errorf("%d does not fit %d bits", val, width))
			}
			bs.AppendUint(enc, width)
			return nil
		},
		Decode: func(ctx *Context, bs *BitStream, f *FieldDescriptor) (WireValue, error) {
			u, err := bs.PopUint(width)
			if err != nil {
				return WireValue{}, err
			}
			return IntValue(offsetDecode(u, minVal)), nil
		},
		MinSize:  func(f *FieldDescriptor) (int, error) { return width, nil },
		MaxSize:  func(f *FieldDescriptor) (int, error) { return width, nil },
		Validate: func(f *FieldDescriptor) error { return nil },
		Info: func(f *FieldDescriptor) string {
			return fmt.Sprintf("%s: fixed (%d bits)", f.Name, width)
		},
	}, nil
}
