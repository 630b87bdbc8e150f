// Copyright 2026 The DCCL Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dccl

import "fmt"

// defaultGroup is the fallback codec group consulted when a more
// specific group has no registration for a given kind or name, mirroring
// the teacher's single shared FieldCoder set in ts/fieldcoder.go widened
// to the spec's per-group scoping (spec §4.2).
const defaultGroup = ""

// CodecFactory builds a FieldCodec bound to a specific field descriptor.
// Binding at resolution time (rather than registering a single shared
// instance) lets a codec read the field's options — bit width, min/max,
// precision — into closures once, at Load, instead of re-deriving them
// on every Size/Encode/Decode call.
type CodecFactory func(f *FieldDescriptor) (*FieldCodec, error)

// Registry resolves a field descriptor to a concrete FieldCodec (spec
// §4.2). It is conceptually process-wide but parameterized by codec
// group: two schemas sharing group names share the same registered
// factories (spec §5 "Registry lifecycle").
type Registry struct {
	named  map[string]map[string]CodecFactory
	byKind map[string]map[Kind]CodecFactory
}

// NewRegistry returns a registry pre-seeded, under the default group,
// with the standard leaf codec factories (bool, varint, fixed, enum,
// float, string, bytes) plus the "presence" wrapper by name only (it is
// never a kind default — a field opts into it explicitly via
// Options.Codec = "presence").
func NewRegistry() *Registry {
	r := &Registry{
		named:  make(map[string]map[string]CodecFactory),
		byKind: make(map[string]map[Kind]CodecFactory),
	}
	r.RegisterKindDefault(defaultGroup, KindBool, newBoolCodec)
	r.RegisterKindDefault(defaultGroup, KindVarInt, newVarIntCodec)
	r.RegisterKindDefault(defaultGroup, KindFixed, newFixedCodec)
	r.RegisterKindDefault(defaultGroup, KindEnum, newEnumCodec)
	r.RegisterKindDefault(defaultGroup, KindFloat, newFloatCodec)
	r.RegisterKindDefault(defaultGroup, KindString, newStringCodec)
	r.RegisterKindDefault(defaultGroup, KindBytes, newBytesCodec)

	r.RegisterNamed(defaultGroup, "bool", newBoolCodec)
	r.RegisterNamed(defaultGroup, "varint", newVarIntCodec)
	r.RegisterNamed(defaultGroup, "fixed", newFixedCodec)
	r.RegisterNamed(defaultGroup, "enum", newEnumCodec)
	r.RegisterNamed(defaultGroup, "float", newFloatCodec)
	r.RegisterNamed(defaultGroup, "string", newStringCodec)
	r.RegisterNamed(defaultGroup, "bytes", newBytesCodec)
	r.RegisterNamed(defaultGroup, "presence", newPresenceCodecNamed(r))
	return r
}

// RegisterNamed registers a factory under an explicit codec name within
// group, reachable when a field sets Options.Codec to that name.
func (r *Registry) RegisterNamed(group, name string, f CodecFactory) {
	m, ok := r.named[group]
	if !ok {
		m = make(map[string]CodecFactory)
		r.named[group] = m
	}
	m[name] = f
}

// RegisterKindDefault registers the factory used for fields of the given
// Kind within group when no explicit codec name is set.
func (r *Registry) RegisterKindDefault(group string, kind Kind, f CodecFactory) {
	m, ok := r.byKind[group]
	if !ok {
		m = make(map[Kind]CodecFactory)
		r.byKind[group] = m
	}
	m[kind] = f
}

// lookupNamed resolves a codec name within group, falling back to
// defaultGroup.
func (r *Registry) lookupNamed(group, name string) (CodecFactory, bool) {
	if m, ok := r.named[group]; ok {
		if f, ok := m[name]; ok {
			return f, true
		}
	}
	if group != defaultGroup {
		if m, ok := r.named[defaultGroup]; ok {
			if f, ok := m[name]; ok {
				return f, true
			}
		}
	}
	return nil, false
}

// lookupKind resolves the kind-default factory within group, falling
// back to defaultGroup.
func (r *Registry) lookupKind(group string, kind Kind) (CodecFactory, bool) {
	if m, ok := r.byKind[group]; ok {
		if f, ok := m[kind]; ok {
			return f, true
		}
	}
	if group != defaultGroup {
		if m, ok := r.byKind[defaultGroup]; ok {
			if f, ok := m[kind]; ok {
				return f, true
			}
		}
	}
	return nil, false
}

// Resolve implements spec §4.2's first-match-wins resolution order:
//  1. an explicit Options.Codec name on the field;
//  2. the codec name defaulted per wire type within the group;
//  3. for message-typed fields, the group's default message codec
//     wrapper (handled by the caller — message_codec.go — since it needs
//     the registry itself to recurse into children).
func (r *Registry) Resolve(group string, f *FieldDescriptor) (*FieldCodec, error) {
	if f.Options.Codec != "" {
		factory, ok := r.lookupNamed(group, f.Options.Codec)
		if !ok {
			return nil, wrapField(ErrUnknownCodec, f.FullName())
		}
		return factory(f)
	}
	factory, ok := r.lookupKind(group, f.Kind)
	if !ok {
		return nil, wrapFieldCause(ErrUnknownCodec, f.FullName(), fmt.Errorf("no default codec for kind %s in group %q", f.Kind, group))
	}
	return factory(f)
}
