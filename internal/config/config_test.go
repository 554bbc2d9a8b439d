// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadConfig(t *testing.T) {
	r := require.New(t)
	configContents := `[bsp-indexer]
repo = "/tmp/bsp-testrepo"
network = "testnet"
node = "localhost:18232"
api = ":8090"
debuglis = ":6060"
nojournal = "off"
`
	configPath := filepath.Join(t.TempDir(), "bsp-indexer.toml")
	err := os.WriteFile(configPath, []byte(configContents), 0700)
	r.NoError(err, "write config file")

	configFromDisk, exists := ReadConfigIndexer(configPath)
	r.True(exists)
	r.EqualValues("/tmp/bsp-testrepo", configFromDisk.Repo)
	r.EqualValues("testnet", configFromDisk.Network)
	r.EqualValues("localhost:18232", configFromDisk.NodeAddress)
	r.EqualValues(":8090", configFromDisk.APIAddress)
	r.EqualValues(":6060", configFromDisk.MetricsAddress)
	r.EqualValues(false, bool(configFromDisk.NoJournal))

	// presence tells a zero value apart from an absent key
	r.True(configFromDisk.Has("nojournal"))
	r.False(configFromDisk.Has("loglevel"))
}

func TestReadConfigMissingFile(t *testing.T) {
	r := require.New(t)
	_, exists := ReadConfigIndexer(filepath.Join(t.TempDir(), "nope.toml"))
	r.False(exists)
}

func TestReadConfigExpandsRepo(t *testing.T) {
	r := require.New(t)
	configContents := `[bsp-indexer]
repo = "~/.bsp-elsewhere"
`
	configPath := filepath.Join(t.TempDir(), "bsp-indexer.toml")
	r.NoError(os.WriteFile(configPath, []byte(configContents), 0700))

	configFromDisk, exists := ReadConfigIndexer(configPath)
	r.True(exists)
	home, err := os.UserHomeDir()
	r.NoError(err)
	r.EqualValues(filepath.Join(home, ".bsp-elsewhere"), configFromDisk.Repo)
}

func TestUnmarshalConfig(t *testing.T) {
	r := require.New(t)
	conf := IndexerConfig{
		Repo:           "/tmp/bsp-testrepo",
		Network:        "regtest",
		NodeAddress:    "localhost:18444",
		APIAddress:     ":8090",
		MetricsAddress: ":6060",
		NoJournal:      true,
	}
	b, err := json.MarshalIndent(conf, "", "  ")
	r.NoError(err)
	configStr := string(b)
	expectedValues := strings.Split(strings.TrimSpace(`"repo": "/tmp/bsp-testrepo",
  "network": "regtest",
  "node": "localhost:18444",
  "api": ":8090",
  "debuglis": ":6060",
  "nojournal": true
	`), "\n")
	for _, expected := range expectedValues {
		r.True(strings.Contains(configStr, expected), expected)
	}
}
