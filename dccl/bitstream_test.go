// Copyright 2026 The DCCL Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dccl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitStreamRoundTrip(t *testing.T) {
	bs := NewBitStream()
	bs.AppendUint(0b101, 3)
	bs.AppendUint(0b11110000, 8)
	require.Equal(t, 11, bs.Len())

	v, err := bs.PopUint(3)
	require.NoError(t, err)
	assert.Equal(t, uint64(0b101), v)

	v, err = bs.PopUint(8)
	require.NoError(t, err)
	assert.Equal(t, uint64(0b11110000), v)
}

func TestBitStreamToBytesPadsOnce(t *testing.T) {
	bs := NewBitStream()
	bs.AppendUint(0b1, 1)
	b := bs.ToBytes()
	require.Len(t, b, 1)
	assert.Equal(t, byte(0b10000000), b[0])
}

func TestBitStreamPopUnderflow(t *testing.T) {
	bs := NewBitStream()
	bs.AppendUint(0b1, 1)
	_, err := bs.PopUint(4)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTruncatedMessage))
}

func TestBitStreamAppendOverflowPanics(t *testing.T) {
	bs := NewBitStream()
	assert.Panics(t, func() { bs.AppendUint(4, 2) })
}

func TestFromBytesRoundTrip(t *testing.T) {
	original := []byte{0xAB, 0xCD}
	bs := FromBytes(original)
	require.Equal(t, 16, bs.Len())
	assert.Equal(t, original, bs.ToBytes())
}

func TestBitsForRange(t *testing.T) {
	cases := map[uint64]int{0: 0, 1: 0, 2: 1, 3: 2, 4: 2, 64: 6, 201: 8, 256: 8}
	for count, want := range cases {
		assert.Equal(t, want, bitsForRange(count), "count=%d", count)
	}
}

func TestOffsetEncodeDecode(t *testing.T) {
	got := offsetEncode(50, -100)
	assert.Equal(t, uint64(150), got)
	assert.Equal(t, int64(50), offsetDecode(got, -100))
}
