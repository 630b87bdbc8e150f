// Copyright 2026 The DCCL Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dccl

import (
	"fmt"
	"strings"
)

// compiledSchema is the layout a Facade caches after Load: every field's
// resolved, validated FieldCodec and compiled dynamic conditions, so
// Encode/Decode/Size never re-resolve the registry or re-parse a
// predicate (spec §4.6 "loads a schema (validates, caches layout)").
type compiledSchema struct {
	root  *MessageDescriptor
	codec map[*FieldDescriptor]*FieldCodec
	cond  map[*FieldDescriptor]*dynamicConditions
}

// compileSchema walks desc's field graph (which may be cyclic, per spec
// §3) exactly once per distinct MessageDescriptor, resolving each
// field's codec via the registry (or, for message-typed fields, binding
// the recursive message-wrapper codec) and compiling its dynamic
// conditions.
func compileSchema(reg *Registry, desc *MessageDescriptor, group string) (*compiledSchema, error) {
	cs := &compiledSchema{
		root:  desc,
		codec: make(map[*FieldDescriptor]*FieldCodec),
		cond:  make(map[*FieldDescriptor]*dynamicConditions),
	}
	visited := make(map[*MessageDescriptor]bool)

	var walk func(md *MessageDescriptor, group string) error
	walk = func(md *MessageDescriptor, group string) error {
		if visited[md] {
			return nil
		}
		visited[md] = true

		for _, f := range md.Fields {
			codec, err := resolveFieldCodec(reg, group, f, cs)
			if err != nil {
				return err
			}
			if err := codec.Validate(f); err != nil {
				return err
			}
			cs.codec[f] = codec

			dc, err := compileDynamicConditions(f)
			if err != nil {
				return err
			}
			cs.cond[f] = dc

			if f.Kind == KindMessage {
				if f.Message == nil {
					return wrapFieldCause(ErrSchemaError, f.FullName(), fmt.Errorf("message-typed field has no Message descriptor"))
				}
				childGroup := f.EffectiveGroup(group)
				if err := walk(f.Message, childGroup); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := walk(desc, group); err != nil {
		return nil, err
	}
	return cs, nil
}

// resolveFieldCodec implements spec §4.2 resolution rule 3: a
// message-typed field with no explicit codec override is bound to the
// default message codec wrapper, which recurses back into this package
// rather than a registry-registered leaf codec. A field declaring
// Options.StaticValue bypasses both the registry and the message
// wrapper entirely — it is static regardless of Kind.
func resolveFieldCodec(reg *Registry, group string, f *FieldDescriptor, cs *compiledSchema) (*FieldCodec, error) {
	if f.Options.StaticValue != nil {
		return newStaticCodec(f)
	}
	if f.Kind == KindMessage && f.Options.Codec == "" {
		return newMessageFieldCodec(f, cs), nil
	}
	return reg.Resolve(group, f)
}

// newMessageFieldCodec wraps a nested message type as a FieldCodec so it
// composes uniformly with every other field kind (spec §4.4: "the
// message codec is itself a field codec").
func newMessageFieldCodec(f *FieldDescriptor, cs *compiledSchema) *FieldCodec {
	child := f.Message
	return &FieldCodec{
		Name: "message",
		Size: func(ctx *Context, v WireValue, fld *FieldDescriptor) (int, error) {
			msg, ok := v.Msg()
			if !ok {
				return 0, wrapFieldCause(ErrOutOfRange, fld.FullName(), fmt.Errorf("expected nested message, got %v", v))
			}
			part := PartBody
			if fld.Options.InHead {
				part = PartHead
			} else {
				part = ctx.CurrentPart()
			}
			pop := ctx.pushMessage(msg, fld, part)
			defer pop()
			return sizeMessage(ctx, msg, child, cs)
		},
		Encode: func(ctx *Context, bs *BitStream, v WireValue, fld *FieldDescriptor) error {
			msg, ok := v.Msg()
			if !ok {
				return wrapFieldCause(ErrOutOfRange, fld.FullName(), fmt.Errorf("expected nested message, got %v", v))
			}
			part := PartBody
			if fld.Options.InHead {
				part = PartHead
			} else {
				part = ctx.CurrentPart()
			}
			pop := ctx.pushMessage(msg, fld, part)
			defer pop()
			return encodeMessage(ctx, bs, msg, child, cs)
		},
		Decode: func(ctx *Context, bs *BitStream, fld *FieldDescriptor) (WireValue, error) {
			msg := NewMessage(child)
			part := PartBody
			if fld.Options.InHead {
				part = PartHead
			} else {
				part = ctx.CurrentPart()
			}
			pop := ctx.pushMessage(msg, fld, part)
			defer pop()
			if err := decodeMessage(ctx, bs, msg, child, cs); err != nil {
				return WireValue{}, err
			}
			return MessageValue(msg), nil
		},
		MinSize: func(fld *FieldDescriptor) (int, error) {
			return minSizeMessage(child, cs)
		},
		MaxSize: func(fld *FieldDescriptor) (int, error) {
			return maxSizeMessage(child, cs)
		},
		Validate: func(fld *FieldDescriptor) error { return nil },
		Info: func(fld *FieldDescriptor) string {
			return infoMessage(child, cs, 1)
		},
	}
}

// effectivePart resolves spec §4.4's "header fields, recursively" rule:
// a field explicitly marked in_head is HEAD; otherwise it inherits the
// part of the message it is declared in (PartBody at the schema root).
// This mirrors original_source's MessageStack constructor, which pushes
// HEAD/BODY "if explicitly set ... else use the parent's current part".
func effectivePart(f *FieldDescriptor, inherited Part) Part {
	if f.Options.InHead {
		return PartHead
	}
	return inherited
}

// partitionFields splits md's fields into header and body, in schema
// order within each group, using effectivePart against the inherited
// part of the enclosing message.
func partitionFields(md *MessageDescriptor, inherited Part) (head, body []*FieldDescriptor) {
	for _, f := range md.Fields {
		if effectivePart(f, inherited) == PartHead {
			head = append(head, f)
		} else {
			body = append(body, f)
		}
	}
	return head, body
}

// nonOneofFields filters out fields that belong to a oneof declaration —
// those are encoded by the oneof case-bits step instead (spec §4.4).
func nonOneofFields(fields []*FieldDescriptor) []*FieldDescriptor {
	var out []*FieldDescriptor
	for _, f := range fields {
		if f.Oneof == "" {
			out = append(out, f)
		}
	}
	return out
}

// encodeMessage implements spec §4.4's traversal: header fields, then
// (in the body portion) each oneof's case bits followed by its selected
// alternative, then ordinary body fields.
func encodeMessage(ctx *Context, bs *BitStream, msg *Message, md *MessageDescriptor, cs *compiledSchema) error {
	head, body := partitionFields(md, ctx.CurrentPart())
	for _, f := range nonOneofFields(head) {
		if err := encodeField(ctx, bs, msg, f, cs); err != nil {
			return err
		}
	}
	for _, oneof := range md.Oneofs {
		if err := encodeOneof(ctx, bs, msg, oneof, cs); err != nil {
			return err
		}
	}
	for _, f := range nonOneofFields(body) {
		if err := encodeField(ctx, bs, msg, f, cs); err != nil {
			return err
		}
	}
	return nil
}

func decodeMessage(ctx *Context, bs *BitStream, msg *Message, md *MessageDescriptor, cs *compiledSchema) error {
	head, body := partitionFields(md, ctx.CurrentPart())
	for _, f := range nonOneofFields(head) {
		if err := decodeField(ctx, bs, msg, f, cs); err != nil {
			return err
		}
	}
	for _, oneof := range md.Oneofs {
		if err := decodeOneof(ctx, bs, msg, oneof, cs); err != nil {
			return err
		}
	}
	for _, f := range nonOneofFields(body) {
		if err := decodeField(ctx, bs, msg, f, cs); err != nil {
			return err
		}
	}
	return nil
}

func sizeMessage(ctx *Context, msg *Message, md *MessageDescriptor, cs *compiledSchema) (int, error) {
	head, body := partitionFields(md, ctx.CurrentPart())
	total := 0
	for _, f := range nonOneofFields(head) {
		n, err := sizeField(ctx, msg, f, cs)
		if err != nil {
			return 0, err
		}
		total += n
	}
	for _, oneof := range md.Oneofs {
		n, err := sizeOneof(ctx, msg, oneof, cs)
		if err != nil {
			return 0, err
		}
		total += n
	}
	for _, f := range nonOneofFields(body) {
		n, err := sizeField(ctx, msg, f, cs)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// encodeField dispatches one ordinary (non-oneof) field: repeated
// fields go through the generic repeated wrapper, singular fields
// evaluate their dynamic conditions first (spec §4.4, §4.5).
func encodeField(ctx *Context, bs *BitStream, msg *Message, f *FieldDescriptor, cs *compiledSchema) error {
	codec := cs.codec[f]
	if f.Label == LabelRepeated {
		vs, _ := msg.Repeated(f.Name)
		return encodeRepeatedField(ctx, bs, vs, f, codec)
	}

	dc := cs.cond[f]
	if dc.hasAny() && dc.omitIf != nil {
		omit, err := dc.omitIf.eval(ctx)
		if err != nil {
			return err
		}
		if omit {
			return nil
		}
	}
	v, ok := msg.Get(f.Name)
	if dc.hasAny() && dc.requiredIf != nil {
		req, err := dc.requiredIf.eval(ctx)
		if err != nil {
			return err
		}
		if req && !ok {
			return wrapField(ErrRequiredFieldMissing, f.FullName())
		}
	}
	if !ok {
		v = WireValue{}
	}
	return codec.Encode(ctx, bs, v, f)
}

func decodeField(ctx *Context, bs *BitStream, msg *Message, f *FieldDescriptor, cs *compiledSchema) error {
	codec := cs.codec[f]
	if f.Label == LabelRepeated {
		vs, err := decodeRepeatedField(ctx, bs, f, codec)
		if err != nil {
			return err
		}
		msg.SetRepeated(f.Name, vs)
		return nil
	}

	dc := cs.cond[f]
	if dc.hasAny() && dc.omitIf != nil {
		omit, err := dc.omitIf.eval(ctx)
		if err != nil {
			return err
		}
		if omit {
			msg.Clear(f.Name)
			return nil
		}
	}
	v, err := codec.Decode(ctx, bs, f)
	if err != nil {
		return err
	}
	if v.IsValid() {
		msg.Set(f.Name, v)
	} else {
		msg.Clear(f.Name)
	}
	if dc.hasAny() && dc.requiredIf != nil {
		req, err := dc.requiredIf.eval(ctx)
		if err != nil {
			return err
		}
		if req && !msg.Has(f.Name) {
			return wrapField(ErrRequiredFieldMissing, f.FullName())
		}
	}
	return nil
}

func sizeField(ctx *Context, msg *Message, f *FieldDescriptor, cs *compiledSchema) (int, error) {
	codec := cs.codec[f]
	if f.Label == LabelRepeated {
		vs, _ := msg.Repeated(f.Name)
		return sizeRepeatedField(ctx, vs, f, codec)
	}
	dc := cs.cond[f]
	if dc.hasAny() && dc.omitIf != nil {
		omit, err := dc.omitIf.eval(ctx)
		if err != nil {
			return 0, err
		}
		if omit {
			return 0, nil
		}
	}
	v, ok := msg.Get(f.Name)
	if !ok {
		v = WireValue{}
	}
	return codec.Size(ctx, v, f)
}

// encodeOneof / decodeOneof / sizeOneof implement spec §3's union
// invariant and the exact semantics documented in
// original_source/src/codecs4/field_codec_default_message.h: ceil(log2(N+1))
// case bits, 0 = none, i = 1-based alternative index, the selected
// alternative encoded as if it were required.
func encodeOneof(ctx *Context, bs *BitStream, msg *Message, oneof *Oneof, cs *compiledSchema) error {
	caseBits := oneof.CaseBits()
	selected, _ := msg.OneofCase(oneof.Name)
	idx := 0
	var field *FieldDescriptor
	for i, f := range oneof.Fields {
		if f.Name == selected {
			idx = i + 1
			field = f
			break
		}
	}
	bs.AppendUint(uint64(idx), caseBits)
	if idx == 0 {
		return nil
	}
	v, ok := msg.Get(field.Name)
	if !ok {
		return wrapField(ErrRequiredFieldMissing, field.FullName())
	}
	return cs.codec[field].Encode(ctx, bs, v, field)
}

func decodeOneof(ctx *Context, bs *BitStream, msg *Message, oneof *Oneof, cs *compiledSchema) error {
	caseBits := oneof.CaseBits()
	idx, err := bs.PopUint(caseBits)
	if err != nil {
		return err
	}
	if idx == 0 {
		return nil
	}
	if int(idx) > len(oneof.Fields) {
		return wrapFieldCause(ErrInvalidEncoding, oneof.Name, fmt.Errorf("union case %d out of range (%d alternatives)", idx, len(oneof.Fields)))
	}
	field := oneof.Fields[idx-1]
	v, err := cs.codec[field].Decode(ctx, bs, field)
	if err != nil {
		return err
	}
	msg.Set(field.Name, v)
	return nil
}

func sizeOneof(ctx *Context, msg *Message, oneof *Oneof, cs *compiledSchema) (int, error) {
	total := oneof.CaseBits()
	selected, ok := msg.OneofCase(oneof.Name)
	if !ok {
		return total, nil
	}
	for _, f := range oneof.Fields {
		if f.Name == selected {
			v, _ := msg.Get(f.Name)
			n, err := cs.codec[f].Size(ctx, v, f)
			if err != nil {
				return 0, err
			}
			return total + n, nil
		}
	}
	return total, nil
}

// minSizeMessage and maxSizeMessage are the static (context-free) size
// bounds spec §4.3/§4.4 require. A field governed by any dynamic
// condition contributes zero to the minimum (spec §4.3: "min_size may
// return 0 when the field is governed by a dynamic condition"); the
// maximum always assumes the worst case, which is why admission control
// must use MaxSize, never MinSize (spec §9 open question b).
func minSizeMessage(md *MessageDescriptor, cs *compiledSchema) (int, error) {
	total := 0
	for _, f := range nonOneofFields(md.Fields) {
		dc := cs.cond[f]
		if dc.hasAny() {
			continue
		}
		if f.Label == LabelRepeated {
			n, err := minSizeRepeatedField(f)
			if err != nil {
				return 0, err
			}
			total += n
			continue
		}
		n, err := cs.codec[f].MinSize(f)
		if err != nil {
			return 0, err
		}
		total += n
	}
	for _, oneof := range md.Oneofs {
		total += oneof.CaseBits()
	}
	return total, nil
}

func maxSizeMessage(md *MessageDescriptor, cs *compiledSchema) (int, error) {
	total := 0
	for _, f := range nonOneofFields(md.Fields) {
		if f.Label == LabelRepeated {
			n, err := maxSizeRepeatedField(f, cs.codec[f])
			if err != nil {
				return 0, err
			}
			total += n
			continue
		}
		n, err := cs.codec[f].MaxSize(f)
		if err != nil {
			return 0, err
		}
		total += n
	}
	for _, oneof := range md.Oneofs {
		total += oneof.CaseBits()
		maxAlt := 0
		for _, f := range oneof.Fields {
			n, err := cs.codec[f].MaxSize(f)
			if err != nil {
				return 0, err
			}
			if n > maxAlt {
				maxAlt = n
			}
		}
		total += maxAlt
	}
	return total, nil
}

// validateMessage re-runs codec.Validate over every direct field of md;
// compileSchema already does this once per field at Load. Facade.Load
// does not call it.
func validateMessage(md *MessageDescriptor, cs *compiledSchema) error {
	for _, f := range md.Fields {
		if err := cs.codec[f].Validate(f); err != nil {
			return err
		}
	}
	return nil
}

// infoMessage renders a human-readable layout description (spec §4.6
// Info), indenting nested messages.
func infoMessage(md *MessageDescriptor, cs *compiledSchema, depth int) string {
	var b strings.Builder
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(&b, "%smessage %s (id=%d)\n", strings.Repeat("  ", depth-1), md.Name, md.ID)
	for _, f := range nonOneofFields(md.Fields) {
		fmt.Fprintf(&b, "%s%s\n", indent, cs.codec[f].Info(f))
	}
	for _, oneof := range md.Oneofs {
		fmt.Fprintf(&b, "%sunion %s (%d case bits)\n", indent, oneof.Name, oneof.CaseBits())
		for _, f := range oneof.Fields {
			fmt.Fprintf(&b, "%s  %s\n", indent, cs.codec[f].Info(f))
		}
	}
	return b.String()
}
