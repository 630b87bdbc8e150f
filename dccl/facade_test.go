// Copyright 2026 The DCCL Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dccl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFacadeLoadIsIdempotent(t *testing.T) {
	f := NewFacade(NewRegistry())
	desc := scenarioASchema()

	require.NoError(t, f.Load(desc))
	before, err := f.Info(desc)
	require.NoError(t, err)

	require.NoError(t, f.Load(desc))
	after, err := f.Info(desc)
	require.NoError(t, err)

	assert.Equal(t, before, after)
}

func TestFacadeEncodeDecodeRoundTrip(t *testing.T) {
	f := NewFacade(NewRegistry())
	desc := scenarioASchema()
	require.NoError(t, f.Load(desc))

	msg := NewMessage(desc)
	msg.Set("state", IntValue(2))
	msg.Set("a", IntValue(63))
	msg.Set("b", IntValue(-100))

	b, err := f.Encode(msg)
	require.NoError(t, err)

	decoded, err := f.Decode(b)
	require.NoError(t, err)

	state, _ := decoded.Get("state")
	a, _ := decoded.Get("a")
	bVal, _ := decoded.Get("b")
	si, _ := state.Int()
	ai, _ := a.Int()
	bi, _ := bVal.Int()
	assert.Equal(t, int64(2), si)
	assert.Equal(t, int64(63), ai)
	assert.Equal(t, int64(-100), bi)
}

func TestFacadeSizeWithinBounds(t *testing.T) {
	f := NewFacade(NewRegistry())
	desc := scenarioASchema()
	require.NoError(t, f.Load(desc))

	msg := NewMessage(desc)
	msg.Set("state", IntValue(0))
	msg.Set("a", IntValue(1))
	msg.Set("b", IntValue(0))

	size, err := f.Size(msg)
	require.NoError(t, err)
	minSize, err := f.MinSize(desc)
	require.NoError(t, err)
	maxSize, err := f.MaxSize(desc)
	require.NoError(t, err)

	assert.LessOrEqual(t, minSize, size)
	assert.LessOrEqual(t, size, maxSize)
}

func TestFacadeDecodeUnknownSchemaID(t *testing.T) {
	f := NewFacade(NewRegistry())
	desc := scenarioASchema()
	require.NoError(t, f.Load(desc))

	bs := NewBitStream()
	require.NoError(t, encodeIdentity(bs, 99))
	_, err := f.Decode(bs.ToBytes())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownSchemaID)
}

func TestFacadeEncodeUnloadedSchema(t *testing.T) {
	f := NewFacade(NewRegistry())
	desc := scenarioASchema()
	msg := NewMessage(desc)
	msg.Set("state", IntValue(0))
	msg.Set("a", IntValue(1))

	_, err := f.Encode(msg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaError)
}
