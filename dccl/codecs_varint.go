// Copyright 2026 The DCCL Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dccl

import "fmt"

// varIntWidth computes the bit width and offset floor for a varint-kind
// field: an explicit Options.NumBits wins outright, otherwise the width
// is derived from the declared [Min, Max] range as
// ceil(log2(Max-Min+1)), per spec §3's union-case-bits style bit-count
// invariant applied to plain numeric ranges.
func varIntWidth(fd *FieldDescriptor) (width int, min int64, err error) {
	if fd.Options.NumBits > 0 {
		return int(fd.Options.NumBits), int64(fd.Options.Min), nil
	}
	if fd.Options.Max < fd.Options.Min {
		return 0, 0, wrapFieldCause(ErrSchemaError, fd.FullName(), fmt.Errorf("max %v < min %v", fd.Options.Max, fd.Options.Min))
	}
	minI := int64(fd.Options.Min)
	maxI := int64(fd.Options.Max)
	count := uint64(maxI-minI) + 1
	return bitsForRange(count), minI, nil
}

// newVarIntCodec is the default codec factory for KindVarInt: an
// unsigned or signed integer within [Min, Max], offset-encoded to a
// non-negative integer per spec §4.1.
func newVarIntCodec(fd *FieldDescriptor) (*FieldCodec, error) {
	width, minVal, err := varIntWidth(fd)
	if err != nil {
		return nil, err
	}
	return &FieldCodec{
		Name: "varint",
		Size: func(ctx *Context, v WireValue, f *FieldDescriptor) (int, error) {
			return width, nil
		},
		Encode: func(ctx *Context, bs *BitStream, v WireValue, f *FieldDescriptor) error {
			val, ok := numericValue(v)
			if !ok {
				return wrapFieldCause(ErrOutOfRange, f.FullName(), fmt.Errorf("expected integer, got %v", v))
			}
			if f.Options.NumBits == 0 && (float64(val) < f.Options.Min || float64(val) > f.Options.Max) {
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
		MinSize: func(f *FieldDescriptor) (int, error) { return width, nil },
		MaxSize: func(f *FieldDescriptor) (int, error) { return width, nil },
		Validate: func(f *FieldDescriptor) error {
			if f.Options.NumBits == 0 && f.Options.Max < f.Options.Min {
				return wrapFieldCause(ErrSchemaError, f.FullName(), fmt.Errorf("max < min"))
			}
			return nil
		},
		Info: func(f *FieldDescriptor) string {
			return fmt.Sprintf("%s: varint[%v..%v] (%d bits)", f.Name, f.Options.Min, f.Options.Max, width)
		},
	}, nil
}

// numericValue extracts an int64 from whichever numeric alternative v
// holds, so callers need not care whether the schema author produced an
// Int or a Uint WireValue.
func numericValue(v WireValue) (int64, bool) {
	if i, ok := v.Int(); ok {
		return i, true
	}
	if u, ok := v.Uint(); ok {
		return int64(u), true
	}
	return 0, false
}
