// Copyright 2026 The DCCL Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package queue

import (
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfenucci/dccl/dccl"
	"github.com/dfenucci/dccl/internal/queuecfg"
)

func testDescriptor() *dccl.MessageDescriptor {
	return dccl.NewMessageDescriptor("Telegram", 1, []*dccl.FieldDescriptor{
		{Name: "text", Tag: 1, Kind: dccl.KindString, Label: dccl.LabelSingular, Options: dccl.Options{Max: 32}},
	}, nil)
}

func newTestQueue(t *testing.T, cfg queuecfg.QueueEntry) (*Queue, *dccl.Facade, *dccl.MessageDescriptor) {
	t.Helper()
	desc := testDescriptor()
	facade := dccl.NewFacade(dccl.NewRegistry())
	require.NoError(t, facade.Load(desc))
	log := zerolog.New(io.Discard)
	return New(facade, desc, cfg, log), facade, desc
}

func newMsg(desc *dccl.MessageDescriptor, text string) *dccl.Message {
	msg := dccl.NewMessage(desc)
	msg.Set("text", dccl.StringValue(text))
	return msg
}

func TestQueuePushAndLen(t *testing.T) {
	q, _, desc := newTestQueue(t, queuecfg.QueueEntry{Name: "telegram", MaxQueue: 2})

	n, err := q.Push(newMsg(desc, "a"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = q.Push(newMsg(desc, "b"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, q.Len())
}

func TestQueuePushEvictsOldestAtCapacity(t *testing.T) {
	q, _, desc := newTestQueue(t, queuecfg.QueueEntry{Name: "telegram", MaxQueue: 1})

	_, err := q.Push(newMsg(desc, "first"))
	require.NoError(t, err)
	_, err = q.Push(newMsg(desc, "second"))
	require.NoError(t, err)
	assert.Equal(t, 1, q.Len())

	_, frame, err := q.Pull(4096)
	require.NoError(t, err)
	assert.Equal(t, 1, frame)
}

func TestQueuePushRejectsWrongSchema(t *testing.T) {
	q, _, _ := newTestQueue(t, queuecfg.QueueEntry{Name: "telegram", MaxQueue: 2})
	other := dccl.NewMessageDescriptor("Other", 9, []*dccl.FieldDescriptor{
		{Name: "x", Tag: 1, Kind: dccl.KindBool, Label: dccl.LabelSingular},
	}, nil)
	msg := dccl.NewMessage(other)
	msg.Set("x", dccl.BoolValue(true))

	_, err := q.Push(msg)
	require.Error(t, err)
}

func TestQueuePullRespectsFrameBudget(t *testing.T) {
	q, facade, desc := newTestQueue(t, queuecfg.QueueEntry{Name: "telegram", MaxQueue: 8})
	for _, text := range []string{"aa", "bb", "cc"} {
		_, err := q.Push(newMsg(desc, text))
		require.NoError(t, err)
	}

	oneMsgBits, err := facade.Size(newMsg(desc, "aa"))
	require.NoError(t, err)

	b, count, err := q.Pull(oneMsgBits + 1)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.NotEmpty(t, b)
	assert.Equal(t, 2, q.Len())
}

func TestQueueAckFlow(t *testing.T) {
	q, _, desc := newTestQueue(t, queuecfg.QueueEntry{Name: "telegram", MaxQueue: 8, Ack: true})
	_, err := q.Push(newMsg(desc, "acked"))
	require.NoError(t, err)

	_, count, err := q.Pull(4096)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, q.Len(), "message awaiting ack should remain queued")

	assert.True(t, q.AckReceived())
	assert.Equal(t, 0, q.Len())
	assert.False(t, q.AckReceived())
}

func TestQueueBlackoutSuppressesPull(t *testing.T) {
	q, _, desc := newTestQueue(t, queuecfg.QueueEntry{Name: "telegram", MaxQueue: 8, BlackoutTime: 3600})
	_, err := q.Push(newMsg(desc, "one"))
	require.NoError(t, err)

	_, count, err := q.Pull(4096)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = q.Push(newMsg(desc, "two"))
	require.NoError(t, err)

	b, count, err := q.Pull(4096)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Nil(t, b)
}

func TestQueueExpireStale(t *testing.T) {
	q, _, desc := newTestQueue(t, queuecfg.QueueEntry{Name: "telegram", MaxQueue: 8, TTL: 1})
	_, err := q.Push(newMsg(desc, "stale"))
	require.NoError(t, err)

	dropped := q.ExpireStale(time.Now().Add(2 * time.Second))
	assert.Equal(t, 1, dropped)
	assert.Equal(t, 0, q.Len())
}
