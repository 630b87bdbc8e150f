// Copyright 2026 The DCCL Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package queuecfg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `<?xml version="1.0"?>
<queues>
  <modem_id>3</modem_id>
  <queue>
    <name>telegram</name>
    <id>1</id>
    <ack>true</ack>
    <newest_first>false</newest_first>
    <max_queue>16</max_queue>
    <blackout_time>5</blackout_time>
    <ttl>60</ttl>
    <value_base>1.0</value_base>
  </queue>
  <queue>
    <name>header</name>
    <id>2</id>
    <max_queue>4</max_queue>
  </queue>
</queues>`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.ModemID)
	require.Len(t, cfg.Queue, 2)

	telegram, ok := cfg.ByName("telegram")
	require.True(t, ok)
	assert.True(t, telegram.Ack)
	assert.Equal(t, 16, telegram.MaxQueue)
	assert.Equal(t, uint64(1), telegram.SchemaID)

	header, ok := cfg.BySchemaID(2)
	require.True(t, ok)
	assert.Equal(t, "header", header.Name)
	assert.False(t, header.Ack)
}

func TestBlackoutAndExpiry(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	telegram, _ := cfg.ByName("telegram")
	assert.Equal(t, 5*time.Second, telegram.Blackout())
	d, ok := telegram.Expiry()
	require.True(t, ok)
	assert.Equal(t, 60*time.Second, d)

	header, _ := cfg.ByName("header")
	assert.Equal(t, time.Duration(0), header.Blackout())
	_, ok = header.Expiry()
	assert.False(t, ok)
}

func TestParseRejectsMissingName(t *testing.T) {
	_, err := Parse([]byte(`<queues><queue><id>1</id></queue></queues>`))
	require.Error(t, err)
}

func TestParseRejectsNegativeMaxQueue(t *testing.T) {
	_, err := Parse([]byte(`<queues><queue><name>x</name><max_queue>-1</max_queue></queue></queues>`))
	require.Error(t, err)
}

func TestLoadFromDisk(t *testing.T) {
	cfg, err := Load("../../testdata/queues.xml")
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.ModemID)

	telegram, ok := cfg.ByName("telegram")
	require.True(t, ok)
	assert.Equal(t, 32, telegram.MaxQueue)
	d, ok := telegram.Expiry()
	require.True(t, ok)
	assert.Equal(t, 300*time.Second, d)
}

func TestByNameMiss(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)
	_, ok := cfg.ByName("nope")
	assert.False(t, ok)
}
