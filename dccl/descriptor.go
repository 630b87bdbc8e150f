// Copyright 2026 The DCCL Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dccl

// Kind identifies a field's wire type, the way protoreflect.Kind
// identifies a protobuf field's wire type. It is deliberately named and
// shaped so that a caller holding a real protobuf descriptor can adapt it
// into this package's schema without touching the codec engine.
type Kind int

const (
	KindInvalid Kind = iota
	KindBool
	KindVarInt  // unsigned/signed integer of a declared bit width
	KindFixed   // fixed-width integer
	KindEnum
	KindFloat
	KindString
	KindBytes
	KindMessage // nested MessageDescriptor
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindVarInt:
		return "varint"
	case KindFixed:
		return "fixed"
	case KindEnum:
		return "enum"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindMessage:
		return "message"
	default:
		return "invalid"
	}
}

// Label is a field's cardinality, mirroring protoreflect.Cardinality's
// singular/repeated distinction (spec §3: "a singular/repeated label").
type Label int

const (
	LabelSingular Label = iota
	LabelRepeated
)

// Options carries the per-field codec options enumerated in spec §6.
type Options struct {
	Codec       string  // explicit codec name override
	CodecGroup  string  // inherited group; empty means "inherit from parent"
	Min         float64 // inclusive numeric lower bound
	Max         float64 // inclusive numeric upper bound
	Precision   int     // decimal digits of precision for float codecs
	NumBits     uint    // explicit bit width (varint/fixed codecs)
	InHead      bool    // field belongs to the header portion
	OmitIf      string  // predicate source; empty means "never omit"
	RequiredIf  string  // predicate source; empty means "never required"
	OnlyIf      string  // synonym: sets both OmitIf (negated) and RequiredIf
	StaticValue any     // value substituted when the field is entirely static
	MaxCount    int     // repeated fields: maximum number of elements
	LengthBits  int     // repeated fields: bits used for an explicit count prefix; 0 means derive from MaxCount
}

// EnumValue is one declared value of an enum-kind field.
type EnumValue struct {
	Name   string
	Number int64
}

// FieldDescriptor describes one field of a MessageDescriptor.
type FieldDescriptor struct {
	Name  string
	Tag   int    // 1-based
	Kind  Kind
	Label Label

	// Message is non-nil when Kind == KindMessage.
	Message *MessageDescriptor

	// Enum lists the declared values when Kind == KindEnum.
	Enum []EnumValue

	// Oneof is non-empty when this field is one alternative of a tagged
	// union; it names the union declaration it belongs to.
	Oneof string

	Options Options

	// parent is set by NewMessageDescriptor and lets a
	// field codec walk back up the schema without a caller-supplied
	// context; ancestor *values* still come from the traversal context,
	// never from here.
	parent *MessageDescriptor
}

// FullName returns a dotted path from the root descriptor to this field,
// used in error messages and Info().
func (f *FieldDescriptor) FullName() string {
	if f.parent == nil || f.parent.Name == "" {
		return f.Name
	}
	return f.parent.FullName() + "." + f.Name
}

// EffectiveGroup resolves the codec group this field's children inherit,
// applying spec §4.2's "groups default downward" rule: a child message
// inherits the group of the field through which it was reached unless
// explicitly overridden.
func (f *FieldDescriptor) EffectiveGroup(inherited string) string {
	if f.Options.CodecGroup != "" {
		return f.Options.CodecGroup
	}
	return inherited
}

// Oneof is a tagged-union declaration: at most one of Fields is present.
type Oneof struct {
	Name   string
	Fields []*FieldDescriptor
}

// CaseBits is the number of bits needed for this union's case
// enumerator: ceil(log2(N+1)), per spec §3's invariant.
func (o *Oneof) CaseBits() int {
	return bitsForRange(uint64(len(o.Fields) + 1))
}

// MessageDescriptor describes a structured message type: an ordered list
// of fields, possibly grouped into oneof declarations, possibly
// referencing other MessageDescriptors (forming a directed, possibly
// cyclic, reference graph per spec §3).
type MessageDescriptor struct {
	Name   string
	ID     uint64 // schema identity, written as the identity prefix
	Fields []*FieldDescriptor
	Oneofs []*Oneof

	byName map[string]*FieldDescriptor
}

// NewMessageDescriptor constructs a descriptor and wires parent pointers
// and the by-name index. oneofs is stored as given: the caller lists each
// union's alternatives in Oneof.Fields and sets the matching
// FieldDescriptor.Oneof name; the constructor does not derive or
// cross-check one from the other.
func NewMessageDescriptor(name string, id uint64, fields []*FieldDescriptor, oneofs []*Oneof) *MessageDescriptor {
	md := &MessageDescriptor{
		Name:   name,
		ID:     id,
		Fields: fields,
		Oneofs: oneofs,
		byName: make(map[string]*FieldDescriptor, len(fields)),
	}
	for _, f := range fields {
		f.parent = md
		md.byName[f.Name] = f
	}
	return md
}

// FullName mirrors FieldDescriptor.FullName for the top-level case.
func (m *MessageDescriptor) FullName() string { return m.Name }

// FieldByName looks up a direct field of this message by name; used by
// predicate evaluation to resolve sibling references.
func (m *MessageDescriptor) FieldByName(name string) (*FieldDescriptor, bool) {
	f, ok := m.byName[name]
	return f, ok
}

