// Copyright 2026 The DCCL Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dccl

// defaultMaxCount is the repeated-field element cap used whenever a field
// does not declare Options.MaxCount; an explicit Options.LengthBits sets
// only the width of the count prefix, not the cap.
const defaultMaxCount = 255

// repeatedLengthBits is the number of bits used for a repeated field's
// leading element-count prefix: Options.LengthBits if given explicitly,
// otherwise derived from Options.MaxCount (or defaultMaxCount) so the
// count 0..MaxCount fits exactly.
func repeatedLengthBits(f *FieldDescriptor) int {
	if f.Options.LengthBits > 0 {
		return f.Options.LengthBits
	}
	maxCount := f.Options.MaxCount
	if maxCount <= 0 {
		maxCount = defaultMaxCount
	}
	return bitsForRange(uint64(maxCount) + 1)
}

func encodeRepeatedField(ctx *Context, bs *BitStream, vs []WireValue, f *FieldDescriptor, codec *FieldCodec) error {
	lengthBits := repeatedLengthBits(f)
	maxCount := f.Options.MaxCount
	if maxCount <= 0 {
		maxCount = defaultMaxCount
	}
	if len(vs) > maxCount || (lengthBits < 64 && uint64(len(vs)) >= uint64(1)<<uint(lengthBits)) {
		return wrapField(ErrOversizeMessage, f.FullName())
	}
	bs.AppendUint(uint64(len(vs)), lengthBits)
	for _, v := range vs {
		if err := codec.Encode(ctx, bs, v, f); err != nil {
			return err
		}
	}
	return nil
}

func decodeRepeatedField(ctx *Context, bs *BitStream, f *FieldDescriptor, codec *FieldCodec) ([]WireValue, error) {
	lengthBits := repeatedLengthBits(f)
	n, err := bs.PopUint(lengthBits)
	if err != nil {
		return nil, err
	}
	vs := make([]WireValue, 0, n)
	for i := uint64(0); i < n; i++ {
		v, err := codec.Decode(ctx, bs, f)
		if err != nil {
			return nil, err
		}
		vs = append(vs, v)
	}
	return vs, nil
}

func sizeRepeatedField(ctx *Context, vs []WireValue, f *FieldDescriptor, codec *FieldCodec) (int, error) {
	total := repeatedLengthBits(f)
	for _, v := range vs {
		n, err := codec.Size(ctx, v, f)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// minSizeRepeatedField assumes zero elements, the minimum any repeated
// field can encode to.
func minSizeRepeatedField(f *FieldDescriptor) (int, error) {
	return repeatedLengthBits(f), nil
}

// maxSizeRepeatedField assumes MaxCount elements each at their element
// codec's worst case.
func maxSizeRepeatedField(f *FieldDescriptor, codec *FieldCodec) (int, error) {
	maxCount := f.Options.MaxCount
	if maxCount <= 0 {
		maxCount = defaultMaxCount
	}
	elem, err := codec.MaxSize(f)
	if err != nil {
		return 0, err
	}
	return repeatedLengthBits(f) + maxCount*elem, nil
}
