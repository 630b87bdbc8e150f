// Copyright 2026 The DCCL Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package schemas defines the sample message descriptors dcclctl ships
// with, grounded on the GobyMessage/Header pair exercised end-to-end in
// original_source/src/test/acomms/queue3/test.cpp: a routing header
// (time, source/destination platform, destination type) carried in the
// head portion, and a short free-text telegram body.
package schemas

import "github.com/dfenucci/dccl/dccl"

// Destination type values for Header.dest_type, matching the original
// Header::PUBLISH_OTHER / Header::PUBLISH_ALL enumerators.
const (
	DestOther = 0
	DestAll   = 1
)

// Header is the routing envelope every GobyMessage carries in its head
// portion: time is always present, source_platform is required,
// dest_platform is only meaningful (and only encoded) when addressed to
// a single platform rather than broadcast.
var Header = dccl.NewMessageDescriptor("Header", 2, []*dccl.FieldDescriptor{
	{
		Name: "time", Tag: 1, Kind: dccl.KindString, Label: dccl.LabelSingular,
		Options: dccl.Options{Max: 32, InHead: true},
	},
	{
		Name: "source_platform", Tag: 2, Kind: dccl.KindString, Label: dccl.LabelSingular,
		Options: dccl.Options{Max: 16, InHead: true},
	},
	{
		Name: "dest_type", Tag: 4, Kind: dccl.KindEnum, Label: dccl.LabelSingular,
		Enum: []dccl.EnumValue{
			{Name: "PUBLISH_OTHER", Number: DestOther},
			{Name: "PUBLISH_ALL", Number: DestAll},
		},
		Options: dccl.Options{InHead: true},
	},
	{
		// Declared after dest_type: a decode evaluates omit_if against the
		// fields already decoded on this message, so a predicate can only
		// see sibling fields that precede it in schema order.
		Name: "dest_platform", Tag: 3, Kind: dccl.KindString, Label: dccl.LabelSingular,
		Options: dccl.Options{Max: 16, InHead: true, OmitIf: "self.dest_type == 1"},
	},
}, nil)

// GobyMessage is the demo body schema: a routed header plus a short
// telegram string, the DCCL-native analogue of the protobuf message the
// original test.cpp pushes through QueueManager.
var GobyMessage = dccl.NewMessageDescriptor("GobyMessage", 1, []*dccl.FieldDescriptor{
	{
		Name: "header", Tag: 1, Kind: dccl.KindMessage, Label: dccl.LabelSingular,
		Message: Header, Options: dccl.Options{InHead: true},
	},
	{
		Name: "telegram", Tag: 2, Kind: dccl.KindString, Label: dccl.LabelSingular,
		Options: dccl.Options{Max: 160},
	},
}, nil)

// All is every demo schema, in the order dcclctl loads them.
var All = []*dccl.MessageDescriptor{Header, GobyMessage}

// ByName looks up a demo schema by its descriptor name.
func ByName(name string) (*dccl.MessageDescriptor, bool) {
	for _, d := range All {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}
