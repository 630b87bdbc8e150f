// Copyright 2026 The DCCL Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dccl

import "fmt"

// newStaticCodec implements a field whose value is fixed by the schema
// itself rather than carried on the wire (spec §6 "static_value"): it
// costs zero bits in every direction and Decode synthesizes the
// configured value instead of reading any.
func newStaticCodec(f *FieldDescriptor) (*FieldCodec, error) {
	static, err := nativeToWireValue(f.Options.StaticValue)
	if err != nil {
		return nil, wrapFieldCause(ErrSchemaError, f.FullName(), err)
	}
	return &FieldCodec{
		Name:   "static",
		Size:   func(ctx *Context, v WireValue, fld *FieldDescriptor) (int, error) { return 0, nil },
		Encode: func(ctx *Context, bs *BitStream, v WireValue, fld *FieldDescriptor) error { return nil },
		Decode: func(ctx *Context, bs *BitStream, fld *FieldDescriptor) (WireValue, error) {
			return static, nil
		},
		MinSize:  func(fld *FieldDescriptor) (int, error) { return 0, nil },
		MaxSize:  func(fld *FieldDescriptor) (int, error) { return 0, nil },
		Validate: func(fld *FieldDescriptor) error { return nil },
		Info: func(fld *FieldDescriptor) string {
			return fmt.Sprintf("%s: static(%v) (0 bits)", fld.Name, static)
		},
	}, nil
}

// nativeToWireValue converts a schema-declared Options.StaticValue (a
// plain Go value) into the tagged WireValue the codec engine moves
// internally.
func nativeToWireValue(v any) (WireValue, error) {
	switch t := v.(type) {
	case bool:
		return BoolValue(t), nil
	case int:
		return IntValue(int64(t)), nil
	case int64:
		return IntValue(t), nil
	case uint64:
		return UintValue(t), nil
	case float64:
		return FloatValue(t), nil
	case string:
		return StringValue(t), nil
	case []byte:
		return BytesValue(t), nil
	default:
		return WireValue{}, fmt.Errorf("static_value of unsupported type %T", v)
	}
}
