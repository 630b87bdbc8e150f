// Copyright 2026 The DCCL Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package queuecfg loads queue admission policy from an XML
// configuration file, the same surface the original implementation
// parsed with Xerces callbacks keyed on start/end tags (see
// queue_xml_callbacks.cpp: tag_ack, tag_blackout_time, tag_max_queue,
// tag_newest_first, tag_id, tag_name, tag_ttl, tag_value_base).
// encoding/xml's struct-tag unmarshaling replaces the SAX callback
// dispatch with a single Unmarshal call.
package queuecfg

import (
	"encoding/xml"
	"fmt"
	"os"
	"time"
)

// Config is the root of a queue configuration file: zero or more named
// message queues, each with its own admission and eviction policy.
type Config struct {
	XMLName xml.Name     `xml:"queues"`
	ModemID int          `xml:"modem_id"`
	Queue   []QueueEntry `xml:"queue"`
}

// QueueEntry mirrors one <queue> block's fields from the original XML
// schema, widened with SchemaID so it binds to a loaded dccl schema
// rather than a DCCL protobuf message key.
type QueueEntry struct {
	Name string `xml:"name"`

	// SchemaID binds this queue to a MessageDescriptor.ID loaded into the
	// facade; the original used a (type, id) QueueKey, collapsed here
	// since every schema in this package already carries a unique ID.
	SchemaID uint64 `xml:"id"`

	Ack          bool    `xml:"ack"`
	NewestFirst  bool    `xml:"newest_first"`
	MaxQueue     int     `xml:"max_queue"`
	BlackoutTime int     `xml:"blackout_time"` // seconds
	TTL          int     `xml:"ttl"`           // seconds; 0 means no expiry
	ValueBase    float64 `xml:"value_base"`
}

// Blackout returns the configured blackout interval as a time.Duration.
func (q QueueEntry) Blackout() time.Duration {
	return time.Duration(q.BlackoutTime) * time.Second
}

// Expiry returns the configured time-to-live as a time.Duration; ok is
// false when no TTL was configured (ttl of 0 in the original schema
// also meant "never expires").
func (q QueueEntry) Expiry() (d time.Duration, ok bool) {
	if q.TTL <= 0 {
		return 0, false
	}
	return time.Duration(q.TTL) * time.Second, true
}

// Load reads and parses a queue configuration file from disk.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("queuecfg: reading %s: %w", path, err)
	}
	return Parse(b)
}

// Parse decodes a queue configuration document from memory.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := xml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("queuecfg: parsing: %w", err)
	}
	for i, q := range cfg.Queue {
		if q.Name == "" {
			return nil, fmt.Errorf("queuecfg: queue %d: missing name", i)
		}
		if q.MaxQueue < 0 {
			return nil, fmt.Errorf("queuecfg: queue %q: max_queue must be >= 0", q.Name)
		}
	}
	return &cfg, nil
}

// ByName returns the entry with the given name, if any.
func (c *Config) ByName(name string) (QueueEntry, bool) {
	for _, q := range c.Queue {
		if q.Name == name {
			return q, true
		}
	}
	return QueueEntry{}, false
}

// BySchemaID returns the entry bound to the given schema id, if any.
func (c *Config) BySchemaID(id uint64) (QueueEntry, bool) {
	for _, q := range c.Queue {
		if q.SchemaID == id {
			return q, true
		}
	}
	return QueueEntry{}, false
}
