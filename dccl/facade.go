// Copyright 2026 The DCCL Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dccl

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// DefaultPayloadLimitBits is the façade's default admission ceiling: 256
// bytes, matching the original implementation's default DCCL packet
// budget for an acoustic-modem transmission slot.
const DefaultPayloadLimitBits = 256 * 8

// identitySmallBits and identityLargeBits are the two widths a schema ID
// can occupy in the identity prefix (spec §6: "a varint of the schema
// ID ... default 32 bits split into a 1-bit 'small' flag then 7- or
// 15-bit ID").
const (
	identitySmallBits = 7
	identityLargeBits = 15
)

// schemaEntry is one loaded schema: its descriptor, compiled layout, and
// precomputed identity-prefix width.
type schemaEntry struct {
	desc     *MessageDescriptor
	compiled *compiledSchema
	idBits   int // total width of the identity prefix for this ID, including the flag bit
}

// Facade is the single entry point a caller uses once schemas are
// loaded: Load, Encode, Decode, EncodeRepeated, DecodeRepeated, Size,
// MinSize, MaxSize and Info (spec §4.6). It owns a Registry and a cache
// of compiled schema layouts keyed by schema ID, and is safe for
// concurrent use — concurrent Encode/Decode calls each get their own
// Context, and concurrent Load calls for the same ID are deduplicated.
type Facade struct {
	registry         *Registry
	group            string
	payloadLimitBits int

	mu      sync.RWMutex
	schemas map[uint64]*schemaEntry

	loadGroup singleflight.Group
}

// FacadeOption configures a Facade at construction.
type FacadeOption func(*Facade)

// WithCodecGroup selects the codec group new schemas resolve against
// (spec §4.2). The default group is "".
func WithCodecGroup(group string) FacadeOption {
	return func(f *Facade) { f.group = group }
}

// WithPayloadLimitBits overrides the admission ceiling Load enforces via
// MaxSize. The default is DefaultPayloadLimitBits.
func WithPayloadLimitBits(bits int) FacadeOption {
	return func(f *Facade) { f.payloadLimitBits = bits }
}

// NewFacade returns a Facade bound to reg, with no schemas loaded.
func NewFacade(reg *Registry, opts ...FacadeOption) *Facade {
	f := &Facade{
		registry:         reg,
		payloadLimitBits: DefaultPayloadLimitBits,
		schemas:          make(map[uint64]*schemaEntry),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// identityBits reports the identity-prefix width an ID requires: 1 flag
// bit plus identitySmallBits when the ID fits in 7 bits, else 1 flag bit
// plus identityLargeBits.
func identityBits(id uint64) int {
	if id < (1 << identitySmallBits) {
		return 1 + identitySmallBits
	}
	return 1 + identityLargeBits
}

func encodeIdentity(bs *BitStream, id uint64) error {
	if id >= (1 << identityLargeBits) {
		return wrapFieldCause(ErrSchemaError, "identity", fmt.Errorf("schema id %d exceeds %d-bit ceiling", id, identityLargeBits))
	}
	if id < (1 << identitySmallBits) {
		bs.AppendUint(1, 1)
		bs.AppendUint(id, identitySmallBits)
		return nil
	}
	bs.AppendUint(0, 1)
	bs.AppendUint(id, identityLargeBits)
	return nil
}

func decodeIdentity(bs *BitStream) (uint64, error) {
	small, err := bs.PopUint(1)
	if err != nil {
		return 0, err
	}
	if small == 1 {
		return bs.PopUint(identitySmallBits)
	}
	return bs.PopUint(identityLargeBits)
}

// Load validates desc — every field codec resolves and validates, every
// dynamic condition parses — computes its identity-prefix width, checks
// that MaxSize (including the identity prefix) fits the façade's payload
// limit, and caches the compiled layout. Load is idempotent: loading the
// same ID twice with an identical descriptor is a no-op (spec §8
// property 4), and concurrent Load calls for the same ID are
// deduplicated via singleflight so the registry and predicate compiler
// only run once.
func (f *Facade) Load(desc *MessageDescriptor) error {
	_, err, _ := f.loadGroup.Do(fmt.Sprintf("%d", desc.ID), func() (interface{}, error) {
		f.mu.RLock()
		existing, ok := f.schemas[desc.ID]
		f.mu.RUnlock()
		if ok && existing.desc == desc {
			return nil, nil
		}

		compiled, err := compileSchema(f.registry, desc, f.group)
		if err != nil {
			return nil, err
		}
		bodyMax, err := maxSizeMessage(desc, compiled)
		if err != nil {
			return nil, err
		}
		idBits := identityBits(desc.ID)
		if idBits+bodyMax > f.payloadLimitBits {
			return nil, wrapFieldCause(ErrSchemaError, desc.FullName(),
				fmt.Errorf("max size %d bits (incl. %d-bit identity prefix) exceeds payload limit %d bits", idBits+bodyMax, idBits, f.payloadLimitBits))
		}

		f.mu.Lock()
		f.schemas[desc.ID] = &schemaEntry{desc: desc, compiled: compiled, idBits: idBits}
		f.mu.Unlock()
		return nil, nil
	})
	return err
}

func (f *Facade) entryFor(desc *MessageDescriptor) (*schemaEntry, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	e, ok := f.schemas[desc.ID]
	if !ok {
		return nil, wrapField(ErrSchemaError, desc.FullName())
	}
	return e, nil
}

func (f *Facade) entryByID(id uint64) (*schemaEntry, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	e, ok := f.schemas[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSchemaID, id)
	}
	return e, nil
}

// Encode serializes msg under its schema's identity prefix. The schema
// must already be loaded. Returns ErrOversizeMessage if the encoded size
// exceeds the façade's payload limit.
func (f *Facade) Encode(msg *Message) ([]byte, error) {
	bs, err := f.encodeBits(msg)
	if err != nil {
		return nil, err
	}
	return bs.ToBytes(), nil
}

func (f *Facade) encodeBits(msg *Message) (*BitStream, error) {
	entry, err := f.entryFor(msg.Desc)
	if err != nil {
		return nil, err
	}
	ctx := NewContext()
	pop := ctx.pushMessage(msg, nil, PartBody)
	body := NewBitStream()
	err = encodeMessage(ctx, body, msg, msg.Desc, entry.compiled)
	pop()
	if err != nil {
		return nil, err
	}
	if !ctx.Empty() {
		panic("dccl: traversal context not empty after encode")
	}

	bs := NewBitStream()
	if err := encodeIdentity(bs, msg.Desc.ID); err != nil {
		return nil, err
	}
	bs.Append(body)
	if bs.Len() > f.payloadLimitBits {
		return nil, wrapFieldCause(ErrOversizeMessage, msg.Desc.FullName(), fmt.Errorf("%d bits exceeds limit %d", bs.Len(), f.payloadLimitBits))
	}
	return bs, nil
}

// Decode reads the identity prefix from b, dispatches to the matching
// loaded schema, and decodes the remaining bits into a fresh Message.
func (f *Facade) Decode(b []byte) (*Message, error) {
	bs := FromBytes(b)
	msg, _, err := f.decodeOne(bs)
	return msg, err
}

func (f *Facade) decodeOne(bs *BitStream) (*Message, uint64, error) {
	id, err := decodeIdentity(bs)
	if err != nil {
		return nil, 0, err
	}
	entry, err := f.entryByID(id)
	if err != nil {
		return nil, id, err
	}
	msg := NewMessage(entry.desc)
	ctx := NewContext()
	pop := ctx.pushMessage(msg, nil, PartBody)
	err = decodeMessage(ctx, bs, msg, entry.desc, entry.compiled)
	pop()
	if err != nil {
		return nil, id, err
	}
	if !ctx.Empty() {
		panic("dccl: traversal context not empty after decode")
	}
	return msg, id, nil
}

// EncodeRepeated concatenates the bit-encodings of each message — each
// carrying its own identity prefix — and pads to a byte boundary exactly
// once, at the end (spec §6: "Decoders consume prefixes one at a
// time"). Messages may belong to different loaded schemas (spec §9
// open question a: "assumed allowed because each carries its own
// identity prefix").
func (f *Facade) EncodeRepeated(msgs []*Message) ([]byte, error) {
	out := NewBitStream()
	for i, msg := range msgs {
		bs, err := f.encodeBits(msg)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		out.Append(bs)
	}
	return out.ToBytes(), nil
}

// DecodeRepeated decodes a concatenation of self-delimited messages,
// stopping once only padding bits remain (spec §6).
func (f *Facade) DecodeRepeated(b []byte) ([]*Message, error) {
	bs := FromBytes(b)
	var out []*Message
	for bs.Remaining() {
		msg, _, err := f.decodeOne(bs)
		if err != nil {
			return out, err
		}
		out = append(out, msg)
	}
	return out, nil
}

// Size reports msg's exact encoded size in bits, including its identity
// prefix.
func (f *Facade) Size(msg *Message) (int, error) {
	entry, err := f.entryFor(msg.Desc)
	if err != nil {
		return 0, err
	}
	ctx := NewContext()
	pop := ctx.pushMessage(msg, nil, PartBody)
	n, err := sizeMessage(ctx, msg, msg.Desc, entry.compiled)
	pop()
	if err != nil {
		return 0, err
	}
	return entry.idBits + n, nil
}

// MinSize reports the schema's static lower bound on encoded size,
// including its identity prefix. Per spec §9 open question b, this is
// optimistic (may be 0) for fields governed by dynamic conditions — do
// not use it for admission control.
func (f *Facade) MinSize(desc *MessageDescriptor) (int, error) {
	entry, err := f.entryFor(desc)
	if err != nil {
		return 0, err
	}
	n, err := minSizeMessage(desc, entry.compiled)
	if err != nil {
		return 0, err
	}
	return entry.idBits + n, nil
}

// MaxSize reports the schema's static upper bound on encoded size,
// including its identity prefix. This is the bound Load enforces
// against the payload limit and the only one safe for admission
// control (spec §9 open question b).
func (f *Facade) MaxSize(desc *MessageDescriptor) (int, error) {
	entry, err := f.entryFor(desc)
	if err != nil {
		return 0, err
	}
	n, err := maxSizeMessage(desc, entry.compiled)
	if err != nil {
		return 0, err
	}
	return entry.idBits + n, nil
}

// Info returns a human-readable rendering of a loaded schema's layout,
// for operator tooling (spec §4.6).
func (f *Facade) Info(desc *MessageDescriptor) (string, error) {
	entry, err := f.entryFor(desc)
	if err != nil {
		return "", err
	}
	return infoMessage(desc, entry.compiled, 1), nil
}
