// Copyright 2026 The DCCL Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dccl

import "fmt"

// newPresenceCodecNamed returns a CodecFactory for the "presence"
// wrapper codec: a 1-bit presence flag ahead of the field's kind-default
// inner codec. It is never a kind default itself — a field opts in by
// setting Options.Codec = "presence" — since spec §4.4 notes most
// numeric codecs use a reserved sentinel value instead of a presence bit
// and only a minority of optional fields need this wrapper.
func newPresenceCodecNamed(reg *Registry) CodecFactory {
	return func(fd *FieldDescriptor) (*FieldCodec, error) {
		innerFactory, ok := reg.lookupKind(defaultGroup, fd.Kind)
		if !ok {
			return nil, wrapFieldCause(ErrUnknownCodec, fd.FullName(), fmt.Errorf("no kind-default codec to wrap with presence for kind %s", fd.Kind))
		}
		inner, err := innerFactory(fd)
		if err != nil {
			return nil, err
		}
		return &FieldCodec{
			Name: "presence",
			Size: func(ctx *Context, v WireValue, f *FieldDescriptor) (int, error) {
				if !v.IsValid() {
					return 1, nil
				}
				n, err := inner.Size(ctx, v, f)
				if err != nil {
					return 0, err
				}
				return 1 + n, nil
			},
			Encode: func(ctx *Context, bs *BitStream, v WireValue, f *FieldDescriptor) error {
				if !v.IsValid() {
					bs.AppendUint(0, 1)
					return nil
				}
				bs.AppendUint(1, 1)
				return inner.Encode(ctx, bs, v, f)
			},
			Decode: func(ctx *Context, bs *BitStream, f *FieldDescriptor) (WireValue, error) {
				present, err := bs.PopUint(1)
				if err != nil {
					return WireValue{}, err
				}
				if present == 0 {
					return WireValue{}, nil
				}
				return inner.Decode(ctx, bs, f)
			},
			MinSize: func(f *FieldDescriptor) (int, error) { return 1, nil },
			MaxSize: func(f *FieldDescriptor) (int, error) {
				n, err := inner.MaxSize(f)
				if err != nil {
					return 0, err
				}
				return 1 + n, nil
			},
			Validate: inner.Validate,
			Info: func(f *FieldDescriptor) string {
				return fmt.Sprintf("%s: presence + %s", f.Name, inner.Info(f))
			},
		}, nil
	}
}
