// Copyright 2026 The DCCL Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dccl

import "fmt"

// wireKind tags the alternative held by a WireValue.
type wireKind int

const (
	wireInvalid wireKind = iota
	wireBool
	wireInt
	wireUint
	wireFloat
	wireString
	wireBytes
	wireMessage
)

// WireValue is a tagged-union runtime value crossing a field codec
// boundary, replacing the type-erased "any" the original implementation
// used (spec §9 design note "dynamic values across field kinds").
// Exactly one field is meaningful, selected by kind.
type WireValue struct {
	kind wireKind
	b    bool
	i    int64
	u    uint64
	f    float64
	s    string
	by   []byte
	msg  *Message
}

// BoolValue, IntValue, UintValue, FloatValue, StringValue, BytesValue and
// MessageValue construct a WireValue holding the named Go type.
func BoolValue(v bool) WireValue        { return WireValue{kind: wireBool, b: v} }
func IntValue(v int64) WireValue        { return WireValue{kind: wireInt, i: v} }
func UintValue(v uint64) WireValue      { return WireValue{kind: wireUint, u: v} }
func FloatValue(v float64) WireValue    { return WireValue{kind: wireFloat, f: v} }
func StringValue(v string) WireValue    { return WireValue{kind: wireString, s: v} }
func BytesValue(v []byte) WireValue     { return WireValue{kind: wireBytes, by: v} }
func MessageValue(v *Message) WireValue { return WireValue{kind: wireMessage, msg: v} }

// IsValid reports whether v holds any alternative at all (a zero
// WireValue is invalid, used as the "absent" sentinel for optional
// fields with no value set).
func (v WireValue) IsValid() bool { return v.kind != wireInvalid }

// Bool, Int, Uint, Float, Str, Bytes and Msg return the held value and
// whether the tag matches; they do not convert between kinds.
func (v WireValue) Bool() (bool, bool)       { return v.b, v.kind == wireBool }
func (v WireValue) Int() (int64, bool)       { return v.i, v.kind == wireInt }
func (v WireValue) Uint() (uint64, bool)     { return v.u, v.kind == wireUint }
func (v WireValue) Float() (float64, bool)   { return v.f, v.kind == wireFloat }
func (v WireValue) Str() (string, bool)      { return v.s, v.kind == wireString }
func (v WireValue) Bytes() ([]byte, bool)    { return v.by, v.kind == wireBytes }
func (v WireValue) Msg() (*Message, bool)    { return v.msg, v.kind == wireMessage }

// Native returns v unwrapped into a plain Go value suitable for a CEL
// activation or for %v-style formatting in Info(). Invalid values return
// nil.
func (v WireValue) Native() interface{} {
	switch v.kind {
	case wireBool:
		return v.b
	case wireInt:
		return v.i
	case wireUint:
		return v.u
	case wireFloat:
		return v.f
	case wireString:
		return v.s
	case wireBytes:
		return v.by
	case wireMessage:
		return v.msg
	default:
		return nil
	}
}

func (v WireValue) String() string {
	if !v.IsValid() {
		return "<absent>"
	}
	return fmt.Sprintf("%v", v.Native())
}

// Message is a runtime instance of a MessageDescriptor: the field values
// a facade encodes or the values a decode call materializes. Fields are
// looked up by name; repeated fields and oneof selections are tracked
// separately from plain singular values.
type Message struct {
	Desc *MessageDescriptor

	singular map[string]WireValue
	repeated map[string][]WireValue
	oneof    map[string]string // oneof name -> selected field name
}

// NewMessage returns an empty instance of desc with no fields set.
func NewMessage(desc *MessageDescriptor) *Message {
	return &Message{
		Desc:     desc,
		singular: make(map[string]WireValue),
		repeated: make(map[string][]WireValue),
		oneof:    make(map[string]string),
	}
}

// Set assigns a singular field's value. If the field belongs to a
// oneof, this also selects it as the active alternative, clearing any
// previously selected sibling.
func (m *Message) Set(field string, v WireValue) {
	m.singular[field] = v
	if fd, ok := m.Desc.FieldByName(field); ok && fd.Oneof != "" {
		if prev, ok := m.oneof[fd.Oneof]; ok && prev != field {
			delete(m.singular, prev)
		}
		m.oneof[fd.Oneof] = field
	}
}

// Get returns a singular field's value and whether it has been set.
func (m *Message) Get(field string) (WireValue, bool) {
	v, ok := m.singular[field]
	return v, ok
}

// Has reports whether a field (singular or repeated) currently has a
// value.
func (m *Message) Has(field string) bool {
	if _, ok := m.singular[field]; ok {
		return true
	}
	_, ok := m.repeated[field]
	return ok
}

// Clear removes any value set for field, and if it was the active
// alternative of a oneof, clears that selection too.
func (m *Message) Clear(field string) {
	delete(m.singular, field)
	delete(m.repeated, field)
	if fd, ok := m.Desc.FieldByName(field); ok && fd.Oneof != "" {
		if m.oneof[fd.Oneof] == field {
			delete(m.oneof, fd.Oneof)
		}
	}
}

// SetRepeated assigns the full vector of values for a repeated field.
func (m *Message) SetRepeated(field string, vs []WireValue) {
	m.repeated[field] = vs
}

// Repeated returns a repeated field's vector and whether it is set.
func (m *Message) Repeated(field string) ([]WireValue, bool) {
	vs, ok := m.repeated[field]
	return vs, ok
}

// OneofCase returns the name of the field currently selected within the
// named oneof declaration, if any.
func (m *Message) OneofCase(oneof string) (string, bool) {
	name, ok := m.oneof[oneof]
	return name, ok
}

// selfMap flattens this message's singular fields into a plain
// map[string]interface{} for use as a dynamic-condition activation
// variable (spec §4.5).
func (m *Message) selfMap() map[string]interface{} {
	out := make(map[string]interface{}, len(m.singular))
	for k, v := range m.singular {
		out[k] = v.Native()
	}
	return out
}

// FieldCodec is the contract every field codec implements (spec §4.3):
// six operations plus Info, modeled as a dispatch table of functions rather than a
// virtual-method interface per spec §9 design note "polymorphic codecs".
// Every operation is pure with respect to the traversal context: it may
// read ctx (for dynamic conditions and context-dependent sizing) but
// must never push or pop it itself — only the message codec and facade
// manage the context's lifetime.
type FieldCodec struct {
	// Name is the codec's registration name, used in Info() and
	// "explicit codec option" resolution (spec §4.2).
	Name string

	Size     func(ctx *Context, v WireValue, f *FieldDescriptor) (int, error)
	Encode   func(ctx *Context, bs *BitStream, v WireValue, f *FieldDescriptor) error
	Decode   func(ctx *Context, bs *BitStream, f *FieldDescriptor) (WireValue, error)
	MinSize  func(f *FieldDescriptor) (int, error)
	MaxSize  func(f *FieldDescriptor) (int, error)
	Validate func(f *FieldDescriptor) error
	Info     func(f *FieldDescriptor) string
}
