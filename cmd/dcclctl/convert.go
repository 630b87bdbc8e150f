// Copyright 2026 The DCCL Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/base64"
	"fmt"

	"github.com/dfenucci/dccl/dccl"
)

// messageFromJSON builds a dccl.Message of the given schema from a
// generic JSON object (as produced by encoding/json.Unmarshal into
// map[string]interface{}), converting each field's JSON representation
// into the WireValue its Kind expects.
func messageFromJSON(desc *dccl.MessageDescriptor, data map[string]interface{}) (*dccl.Message, error) {
	msg := dccl.NewMessage(desc)
	for _, f := range desc.Fields {
		raw, ok := data[f.Name]
		if !ok {
			continue
		}
		if f.Label == dccl.LabelRepeated {
			items, ok := raw.([]interface{})
			if !ok {
				return nil, fmt.Errorf("field %s: expected array, got %T", f.Name, raw)
			}
			vs := make([]dccl.WireValue, len(items))
			for i, item := range items {
				v, err := jsonValueToWire(f, item)
				if err != nil {
					return nil, fmt.Errorf("field %s[%d]: %w", f.Name, i, err)
				}
				vs[i] = v
			}
			msg.SetRepeated(f.Name, vs)
			continue
		}
		v, err := jsonValueToWire(f, raw)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		msg.Set(f.Name, v)
	}
	return msg, nil
}

func jsonValueToWire(f *dccl.FieldDescriptor, raw interface{}) (dccl.WireValue, error) {
	switch f.Kind {
	case dccl.KindBool:
		b, ok := raw.(bool)
		if !ok {
			return dccl.WireValue{}, fmt.Errorf("expected bool, got %T", raw)
		}
		return dccl.BoolValue(b), nil
	case dccl.KindVarInt, dccl.KindFixed:
		n, ok := raw.(float64)
		if !ok {
			return dccl.WireValue{}, fmt.Errorf("expected number, got %T", raw)
		}
		return dccl.IntValue(int64(n)), nil
	case dccl.KindEnum:
		name, ok := raw.(string)
		if !ok {
			return dccl.WireValue{}, fmt.Errorf("expected enum name string, got %T", raw)
		}
		for _, ev := range f.Enum {
			if ev.Name == name {
				return dccl.IntValue(ev.Number), nil
			}
		}
		return dccl.WireValue{}, fmt.Errorf("unknown enum value %q", name)
	case dccl.KindFloat:
		n, ok := raw.(float64)
		if !ok {
			return dccl.WireValue{}, fmt.Errorf("expected number, got %T", raw)
		}
		return dccl.FloatValue(n), nil
	case dccl.KindString:
		s, ok := raw.(string)
		if !ok {
			return dccl.WireValue{}, fmt.Errorf("expected string, got %T", raw)
		}
		return dccl.StringValue(s), nil
	case dccl.KindBytes:
		s, ok := raw.(string)
		if !ok {
			return dccl.WireValue{}, fmt.Errorf("expected base64 string, got %T", raw)
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return dccl.WireValue{}, fmt.Errorf("decoding base64: %w", err)
		}
		return dccl.BytesValue(b), nil
	case dccl.KindMessage:
		nested, ok := raw.(map[string]interface{})
		if !ok {
			return dccl.WireValue{}, fmt.Errorf("expected object, got %T", raw)
		}
		sub, err := messageFromJSON(f.Message, nested)
		if err != nil {
			return dccl.WireValue{}, err
		}
		return dccl.MessageValue(sub), nil
	default:
		return dccl.WireValue{}, fmt.Errorf("unsupported kind %s", f.Kind)
	}
}

// messageToJSON renders a decoded dccl.Message back into a plain
// JSON-marshalable value.
func messageToJSON(msg *dccl.Message) map[string]interface{} {
	out := make(map[string]interface{})
	for _, f := range msg.Desc.Fields {
		if f.Label == dccl.LabelRepeated {
			vs, ok := msg.Repeated(f.Name)
			if !ok {
				continue
			}
			items := make([]interface{}, len(vs))
			for i, v := range vs {
				items[i] = wireValueToJSON(f, v)
			}
			out[f.Name] = items
			continue
		}
		v, ok := msg.Get(f.Name)
		if !ok || !v.IsValid() {
			continue
		}
		out[f.Name] = wireValueToJSON(f, v)
	}
	return out
}

func wireValueToJSON(f *dccl.FieldDescriptor, v dccl.WireValue) interface{} {
	switch f.Kind {
	case dccl.KindEnum:
		n, _ := v.Int()
		for _, ev := range f.Enum {
			if ev.Number == n {
				return ev.Name
			}
		}
		return n
	case dccl.KindBytes:
		b, _ := v.Bytes()
		return base64.StdEncoding.EncodeToString(b)
	case dccl.KindMessage:
		m, _ := v.Msg()
		return messageToJSON(m)
	default:
		return v.Native()
	}
}
