// Copyright 2026 The DCCL Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package queue implements per-schema message admission and eviction,
// the DCCL transport-layer counterpart to the codec in package dccl.
// It is grounded on the behavior exercised by
// original_source/src/test/acomms/queue3/test.cpp: messages are pushed
// in, a modem data request pulls out as many as fit a frame byte
// budget (there, 256 bytes via ModemTransmission.max_frame_bytes; here,
// each message's exact Facade.Size, then EncodeRepeated), and an ack or blackout governs
// whether a sent message is retired or re-queued.
package queue

import (
	"container/list"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dfenucci/dccl/dccl"
	"github.com/dfenucci/dccl/internal/queuecfg"
)

// entry is one queued message awaiting transmission.
type entry struct {
	msg        *dccl.Message
	queuedAt   time.Time
	sentAt     time.Time
	requireAck bool
}

// Queue holds messages for a single schema, applying the admission
// policy (max depth, eviction order) and eviction policy (TTL, ack
// tracking, blackout) described by a queuecfg.QueueEntry.
type Queue struct {
	cfg    queuecfg.QueueEntry
	facade *dccl.Facade
	desc   *dccl.MessageDescriptor
	log    zerolog.Logger

	mu          sync.Mutex
	messages    *list.List // of *entry, in pull order: oldest at Front, or newest at Front when cfg.NewestFirst
	lastSent    time.Time
	awaitingAck *list.Element
}

// New returns a Queue bound to desc (which must already be loaded into
// facade) governed by cfg.
func New(facade *dccl.Facade, desc *dccl.MessageDescriptor, cfg queuecfg.QueueEntry, log zerolog.Logger) *Queue {
	return &Queue{
		cfg:      cfg,
		facade:   facade,
		desc:     desc,
		log:      log.With().Str("queue", cfg.Name).Logger(),
		messages: list.New(),
	}
}

// Push admits msg, evicting the oldest entry first if the queue is at
// its configured depth (spec §6 ambient: queue depth is operator
// policy, not a dccl concern). Returns the resulting queue depth.
func (q *Queue) Push(msg *dccl.Message) (int, error) {
	if msg.Desc != q.desc {
		return 0, fmt.Errorf("queue %q: message schema mismatch", q.cfg.Name)
	}
	if _, err := q.facade.Size(msg); err != nil {
		return 0, fmt.Errorf("queue %q: rejecting unencodable message: %w", q.cfg.Name, err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.cfg.MaxQueue > 0 && q.messages.Len() >= q.cfg.MaxQueue {
		var evicted *list.Element
		if q.cfg.NewestFirst {
			evicted = q.messages.Back()
		} else {
			evicted = q.messages.Front()
		}
		if evicted != nil {
			q.messages.Remove(evicted)
			q.log.Warn().Msg("queue at capacity, evicted oldest message")
		}
	}

	e := &entry{msg: msg, queuedAt: time.Now(), requireAck: q.cfg.Ack}
	if q.cfg.NewestFirst {
		q.messages.PushFront(e)
	} else {
		q.messages.PushBack(e)
	}
	return q.messages.Len(), nil
}

// Len reports the current queue depth.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.messages.Len()
}

// Pull pops and encodes as many queued messages as fit within
// maxFrameBits, in queue order, honoring the configured blackout
// interval since the last transmission. Messages awaiting an ack are
// skipped until AckReceived or the ack requirement is dropped.
func (q *Queue) Pull(maxFrameBits int) ([]byte, int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.cfg.Blackout() > 0 && !q.lastSent.IsZero() && time.Since(q.lastSent) < q.cfg.Blackout() {
		return nil, 0, nil
	}

	var selected []*dccl.Message
	var elems []*list.Element
	usedBits := 0
	for el := q.messages.Front(); el != nil; el = el.Next() {
		e := el.Value.(*entry)
		if q.awaitingAck != nil && q.awaitingAck == el {
			continue
		}
		n, err := q.facade.Size(e.msg)
		if err != nil {
			return nil, 0, err
		}
		if usedBits+n > maxFrameBits {
			break
		}
		usedBits += n
		selected = append(selected, e.msg)
		elems = append(elems, el)
	}
	if len(selected) == 0 {
		return nil, 0, nil
	}

	b, err := q.facade.EncodeRepeated(selected)
	if err != nil {
		return nil, 0, err
	}

	q.lastSent = time.Now()
	for _, el := range elems {
		e := el.Value.(*entry)
		e.sentAt = q.lastSent
		if e.requireAck && q.awaitingAck == nil {
			q.awaitingAck = el
			continue
		}
		q.messages.Remove(el)
	}
	return b, len(selected), nil
}

// AckReceived retires the message currently awaiting acknowledgment, if
// any, returning whether one was pending.
func (q *Queue) AckReceived() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.awaitingAck == nil {
		return false
	}
	q.messages.Remove(q.awaitingAck)
	q.awaitingAck = nil
	return true
}

// ExpireStale removes messages whose queuedAt exceeds the configured
// TTL, returning how many were dropped.
func (q *Queue) ExpireStale(now time.Time) int {
	ttl, ok := q.cfg.Expiry()
	if !ok {
		return 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	dropped := 0
	var next *list.Element
	for el := q.messages.Front(); el != nil; el = next {
		next = el.Next()
		e := el.Value.(*entry)
		if now.Sub(e.queuedAt) > ttl {
			if q.awaitingAck == el {
				q.awaitingAck = nil
			}
			q.messages.Remove(el)
			dropped++
		}
	}
	if dropped > 0 {
		q.log.Debug().Int("dropped", dropped).Msg("expired stale queued messages")
	}
	return dropped
}
