// Copyright 2026 The DCCL Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dccl

import (
	"fmt"
	"math"
)

// newFloatCodec is the default codec factory for KindFloat: a
// fixed-point quantization of a real value to Options.Precision decimal
// digits within [Min, Max], the way the original DCCL's default float
// field codec stores a scaled integer rather than raw IEEE-754 bits —
// precision is a schema-declared budget, not the host float's native
// precision.
func newFloatCodec(fd *FieldDescriptor) (*FieldCodec, error) {
	if fd.Options.Max <= fd.Options.Min {
		return nil, wrapFieldCause(ErrSchemaError, fd.FullName(), fmt.Errorf("max must be > min"))
	}
	scale := math.Pow(10, float64(fd.Options.Precision))
	span := uint64(math.Round((fd.Options.Max-fd.Options.Min)*scale)) + 1
	width := bitsForRange(span)
	min := fd.Options.Min
	return &FieldCodec{
		Name: "float",
		Size: func(ctx *Context, v WireValue, f *FieldDescriptor) (int, error) {
			return width, nil
		},
		Encode: func(ctx *Context, bs *BitStream, v WireValue, f *FieldDescriptor) error {
			val, ok := v.Float()
			if !ok {
				if i, okI := numericValue(v); okI {
					val, ok = float64(i), true
				}
			}
			if !ok {
				return wrapFieldCause(ErrOutOfRange, f.FullName(), fmt.Errorf("expected float, got %v", v))
			}
			if val < f.Options.Min || val > f.Options.Max {
				return wrapFieldCause(ErrOutOfRange, f.FullName(), fmt.Errorf("%v outside [%v, %v]", val, f.Options.Min, f.Options.Max))
			}
			scaled := uint64(math.Round((val - min) * scale))
			bs.AppendUint(scaled, width)
			return nil
		},
		Decode: func(ctx *Context, bs *BitStream, f *FieldDescriptor) (WireValue, error) {
			u, err := bs.PopUint(width)
			if err != nil {
				return WireValue{}, err
			}
			return FloatValue(min + float64(u)/scale), nil
		},
		MinSize:  func(f *FieldDescriptor) (int, error) { return width, nil },
		MaxSize:  func(f *FieldDescriptor) (int, error) { return width, nil },
		Validate: func(f *FieldDescriptor) error {
			if f.Options.Max <= f.Options.Min {
				return wrapFieldCause(ErrSchemaError, f.FullName(), fmt.Errorf("max must be > min"))
			}
			return nil
		},
		Info: func(f *FieldDescriptor) string {
			return fmt.Sprintf("%s: float[%v..%v]@%d decimals (%d bits)", f.Name, f.Options.Min, f.Options.Max, f.Options.Precision, width)
		},
	}, nil
}
