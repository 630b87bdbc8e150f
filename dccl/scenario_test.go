// Copyright 2026 The DCCL Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dccl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scenarioASchema mirrors the worked example: state enum{S0,S1,S2},
// a uint[0..63], b int[-100..100] optional with a presence bit.
func scenarioASchema() *MessageDescriptor {
	return NewMessageDescriptor("ScenarioA", 1, []*FieldDescriptor{
		{
			Name: "state", Tag: 1, Kind: KindEnum, Label: LabelSingular,
			Enum: []EnumValue{{Name: "S0", Number: 0}, {Name: "S1", Number: 1}, {Name: "S2", Number: 2}},
		},
		{
			Name: "a", Tag: 2, Kind: KindVarInt, Label: LabelSingular,
			Options: Options{Min: 0, Max: 63},
		},
		{
			Name: "b", Tag: 3, Kind: KindFixed, Label: LabelSingular,
			Options: Options{Min: -100, Max: 100, NumBits: 8, Codec: "presence"},
		},
	}, nil)
}

func TestScenarioA_Basic(t *testing.T) {
	reg := NewRegistry()
	desc := scenarioASchema()
	cs, err := compileSchema(reg, desc, defaultGroup)
	require.NoError(t, err)

	msg := NewMessage(desc)
	msg.Set("state", IntValue(1)) // S1
	msg.Set("a", IntValue(40))
	msg.Set("b", IntValue(50))

	ctx := NewContext()
	pop := ctx.pushMessage(msg, nil, PartBody)
	bs := NewBitStream()
	err = encodeMessage(ctx, bs, msg, desc, cs)
	pop()
	require.NoError(t, err)
	require.True(t, ctx.Empty())

	require.Equal(t, 17, bs.Len())

	want := NewBitStream()
	want.AppendUint(0b01, 2)
	want.AppendUint(0b101000, 6)
	want.AppendUint(1, 1)
	want.AppendUint(0b10010110, 8)
	assert.Equal(t, want.ToBytes(), bs.ToBytes())

	decoded := NewMessage(desc)
	dctx := NewContext()
	dpop := dctx.pushMessage(decoded, nil, PartBody)
	dbs := FromBytes(bs.ToBytes())
	err = decodeMessage(dctx, dbs, decoded, desc, cs)
	dpop()
	require.NoError(t, err)

	state, _ := decoded.Get("state")
	a, _ := decoded.Get("a")
	b, _ := decoded.Get("b")
	si, _ := state.Int()
	ai, _ := a.Int()
	bi, _ := b.Int()
	assert.Equal(t, int64(1), si)
	assert.Equal(t, int64(40), ai)
	assert.Equal(t, int64(50), bi)
}

// scenarioBSchema adds an omit_if condition on b.
func scenarioBSchema() *MessageDescriptor {
	return NewMessageDescriptor("ScenarioB", 2, []*FieldDescriptor{
		{Name: "a", Tag: 1, Kind: KindVarInt, Label: LabelSingular, Options: Options{Min: 0, Max: 63}},
		{Name: "b", Tag: 2, Kind: KindVarInt, Label: LabelSingular, Options: Options{Min: -100, Max: 100, OmitIf: "self.a > 30"}},
	}, nil)
}

func TestScenarioB_OmitIf(t *testing.T) {
	reg := NewRegistry()
	desc := scenarioBSchema()
	cs, err := compileSchema(reg, desc, defaultGroup)
	require.NoError(t, err)

	t.Run("omitted when a > 30", func(t *testing.T) {
		msg := NewMessage(desc)
		msg.Set("a", IntValue(40))
		msg.Set("b", IntValue(50))

		ctx := NewContext()
		pop := ctx.pushMessage(msg, nil, PartBody)
		bs := NewBitStream()
		err := encodeMessage(ctx, bs, msg, desc, cs)
		pop()
		require.NoError(t, err)
		assert.Equal(t, 6, bs.Len()) // only "a"'s 6 bits

		decoded := NewMessage(desc)
		dctx := NewContext()
		dpop := dctx.pushMessage(decoded, nil, PartBody)
		err = decodeMessage(dctx, FromBytes(bs.ToBytes()), decoded, desc, cs)
		dpop()
		require.NoError(t, err)
		assert.False(t, decoded.Has("b"))
	})

	t.Run("present when a <= 30", func(t *testing.T) {
		msg := NewMessage(desc)
		msg.Set("a", IntValue(20))
		msg.Set("b", IntValue(50))

		ctx := NewContext()
		pop := ctx.pushMessage(msg, nil, PartBody)
		bs := NewBitStream()
		err := encodeMessage(ctx, bs, msg, desc, cs)
		pop()
		require.NoError(t, err)

		decoded := NewMessage(desc)
		dctx := NewContext()
		dpop := dctx.pushMessage(decoded, nil, PartBody)
		err = decodeMessage(dctx, FromBytes(bs.ToBytes()), decoded, desc, cs)
		dpop()
		require.NoError(t, err)
		require.True(t, decoded.Has("b"))
		b, _ := decoded.Get("b")
		bi, _ := b.Int()
		assert.Equal(t, int64(50), bi)
	})
}

// scenarioCSchema is a two-way union: x uint[0..15], y bool.
func scenarioCSchema() *MessageDescriptor {
	x := &FieldDescriptor{Name: "x", Tag: 1, Kind: KindVarInt, Label: LabelSingular, Oneof: "choice", Options: Options{Min: 0, Max: 15}}
	y := &FieldDescriptor{Name: "y", Tag: 2, Kind: KindBool, Label: LabelSingular, Oneof: "choice"}
	return NewMessageDescriptor("ScenarioC", 3, []*FieldDescriptor{x, y}, []*Oneof{
		{Name: "choice", Fields: []*FieldDescriptor{x, y}},
	})
}

func TestScenarioC_Union(t *testing.T) {
	reg := NewRegistry()
	desc := scenarioCSchema()
	cs, err := compileSchema(reg, desc, defaultGroup)
	require.NoError(t, err)

	assert.Equal(t, 2, desc.Oneofs[0].CaseBits())

	encodeAndCheck := func(set func(*Message), wantBits string) *Message {
		msg := NewMessage(desc)
		set(msg)
		ctx := NewContext()
		pop := ctx.pushMessage(msg, nil, PartBody)
		bs := NewBitStream()
		err := encodeMessage(ctx, bs, msg, desc, cs)
		pop()
		require.NoError(t, err)

		want := NewBitStream()
		for _, c := range wantBits {
			if c == '1' {
				want.AppendUint(1, 1)
			} else if c == '0' {
				want.AppendUint(0, 1)
			}
		}
		require.Equal(t, want.Len(), bs.Len())
		assert.Equal(t, want.ToBytes(), bs.ToBytes())

		decoded := NewMessage(desc)
		dctx := NewContext()
		dpop := dctx.pushMessage(decoded, nil, PartBody)
		err = decodeMessage(dctx, FromBytes(bs.ToBytes()), decoded, desc, cs)
		dpop()
		require.NoError(t, err)
		return decoded
	}

	decoded := encodeAndCheck(func(m *Message) { m.Set("x", IntValue(5)) }, "010101")
	name, ok := decoded.OneofCase("choice")
	require.True(t, ok)
	assert.Equal(t, "x", name)

	decoded = encodeAndCheck(func(m *Message) { m.Set("y", BoolValue(true)) }, "101")
	name, ok = decoded.OneofCase("choice")
	require.True(t, ok)
	assert.Equal(t, "y", name)

	decoded = encodeAndCheck(func(m *Message) {}, "00")
	_, ok = decoded.OneofCase("choice")
	assert.False(t, ok)
}

// scenarioDSchema is a repeated uint[0..255] field capped at 8 elements.
func scenarioDSchema() *MessageDescriptor {
	return NewMessageDescriptor("ScenarioD", 4, []*FieldDescriptor{
		{Name: "d", Tag: 1, Kind: KindVarInt, Label: LabelRepeated, Options: Options{Min: 0, Max: 255, MaxCount: 8}},
	}, nil)
}

func TestScenarioD_RepeatedWithCount(t *testing.T) {
	reg := NewRegistry()
	desc := scenarioDSchema()
	cs, err := compileSchema(reg, desc, defaultGroup)
	require.NoError(t, err)

	fd := desc.Fields[0]
	assert.Equal(t, 4, repeatedLengthBits(fd))

	msg := NewMessage(desc)
	msg.SetRepeated("d", []WireValue{IntValue(50), IntValue(100), IntValue(150), IntValue(200), IntValue(250)})

	ctx := NewContext()
	pop := ctx.pushMessage(msg, nil, PartBody)
	bs := NewBitStream()
	err = encodeMessage(ctx, bs, msg, desc, cs)
	pop()
	require.NoError(t, err)
	assert.Equal(t, 4+5*8, bs.Len())

	decoded := NewMessage(desc)
	dctx := NewContext()
	dpop := dctx.pushMessage(decoded, nil, PartBody)
	err = decodeMessage(dctx, FromBytes(bs.ToBytes()), decoded, desc, cs)
	dpop()
	require.NoError(t, err)
	vs, ok := decoded.Repeated("d")
	require.True(t, ok)
	require.Len(t, vs, 5)
	want := []int64{50, 100, 150, 200, 250}
	for i, v := range vs {
		n, _ := v.Int()
		assert.Equal(t, want[i], n)
	}
}

func TestScenarioE_OversizeRejectedAtLoad(t *testing.T) {
	desc := NewMessageDescriptor("ScenarioE", 5, []*FieldDescriptor{
		{Name: "big", Tag: 1, Kind: KindBytes, Label: LabelSingular, Options: Options{Max: 37}}, // ~300 bits
	}, nil)
	f := NewFacade(NewRegistry(), WithPayloadLimitBits(32*8))
	err := f.Load(desc)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaError)
}

func TestScenarioF_RepeatedHeterogeneousMessages(t *testing.T) {
	descA := scenarioASchema()
	descD := scenarioDSchema()
	f := NewFacade(NewRegistry())
	require.NoError(t, f.Load(descA))
	require.NoError(t, f.Load(descD))

	msgA := NewMessage(descA)
	msgA.Set("state", IntValue(2))
	msgA.Set("a", IntValue(10))
	msgA.Set("b", IntValue(-5))

	msgD := NewMessage(descD)
	msgD.SetRepeated("d", []WireValue{IntValue(1), IntValue(2)})

	b, err := f.EncodeRepeated([]*Message{msgA, msgD})
	require.NoError(t, err)

	decoded, err := f.DecodeRepeated(b)
	require.NoError(t, err)
	require.Len(t, decoded, 2)

	state, _ := decoded[0].Get("state")
	si, _ := state.Int()
	assert.Equal(t, int64(2), si)

	vs, ok := decoded[1].Repeated("d")
	require.True(t, ok)
	require.Len(t, vs, 2)
}
