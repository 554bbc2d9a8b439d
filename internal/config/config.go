// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

// Package config reads the optional bsp-indexer.toml. The file is
// decoded twice, once into the typed struct and once into a plain map,
// so flag handling can tell "set to zero value" apart from "absent".
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	loglib "log"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-kit/kit/log/level"
	"github.com/komkom/toml"

	"github.com/botcash/go-bsp/internal/testutils"
)

type ConfigBool bool

type IndexerConfig struct {
	Repo    string `json:"repo,omitempty"`
	Network string `json:"network,omitempty"`

	NodeAddress    string `json:"node,omitempty"`
	APIAddress     string `json:"api,omitempty"`
	MetricsAddress string `json:"debuglis,omitempty"`

	NoJournal ConfigBool `json:"nojournal"`

	Presence map[string]interface{}
}

type wrappedConfig struct {
	Indexer IndexerConfig `json:"bsp-indexer"`
}

func (config IndexerConfig) Has(flagname string) bool {
	_, ok := config.Presence[flagname]
	return ok
}

func ReadConfigIndexer(configPath string) (IndexerConfig, bool) {
	var conf wrappedConfig

	// setup logger if not yet setup (used for tests)
	log := testutils.NewRelativeTimeLogger(nil)

	data, err := os.ReadFile(configPath)
	if err != nil {
		level.Info(log).Log("event", "read config", "msg", "no config detected", "path", configPath)
		return conf.Indexer, false
	}

	level.Info(log).Log("event", "read config", "msg", "config detected", "path", configPath)

	// 1) first we unmarshal into struct for type checks
	decoder := json.NewDecoder(toml.New(bytes.NewBuffer(data)))
	err = decoder.Decode(&conf)
	check(err, "decode into struct")

	// 2) then we unmarshal into a map for presence check (to make sure bools are treated correctly)
	presence := make(map[string]interface{})
	decoder = json.NewDecoder(toml.New(bytes.NewBuffer(data)))
	err = decoder.Decode(&presence)
	check(err, "decode into presence map")
	if presence["bsp-indexer"] != nil {
		conf.Indexer.Presence = presence["bsp-indexer"].(map[string]interface{})
	} else {
		level.Warn(log).Log("event", "read config", "msg", "no [bsp-indexer] section detected in config file - I am not reading anything from the config file", "path", configPath)
		conf.Indexer.Presence = make(map[string]interface{})
	}

	// help repo path's default to align with common user expectations
	if conf.Indexer.Repo != "" {
		conf.Indexer.Repo = ExpandPath(conf.Indexer.Repo)
	}

	return conf.Indexer, true
}

// ensure the following type of path expansions take place:
// * ~/.bsp       => /home/<user>/.bsp
// * .bsp         => /home/<user>/.bsp
// * /stuff/.bsp  => /stuff/.bsp
func ExpandPath(p string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		loglib.Fatalln("could not get user home directory (os.UserHomeDir()")
	}

	if strings.HasPrefix(p, "~") {
		p = strings.Replace(p, "~", home, 1)
	}

	// not relative path, not absolute path =>
	// place relative to home dir "~/<here>"
	if !filepath.IsAbs(p) {
		p = filepath.Join(home, p)
	}

	return p
}

func (booly ConfigBool) MarshalJSON() ([]byte, error) {
	temp := (bool)(booly)
	b, err := json.Marshal(temp)
	return b, err
}

func (booly *ConfigBool) UnmarshalJSON(b []byte) error {
	// unmarshal into interface{} first, as a bool can't be unmarshaled into a string
	var v interface{}
	err := json.Unmarshal(b, &v)
	if err != nil {
		return eout(err, "unmarshal config bool")
	}

	// go through a type assertion dance, capturing the two cases:
	// 1. if the config value is a proper boolean, and
	// 2. if the config value is a boolish string (e.g. "true" or "1")
	var temp bool
	if val, ok := v.(bool); ok {
		temp = val
	} else if s, ok := v.(string); ok {
		temp = booleanIsTrue(s)
		if !temp {
			// catch strings that cause a false value, but which aren't boolish
			if s != "false" && s != "0" && s != "no" && s != "off" {
				return errors.New("non-boolean string found when unmarshaling boolish values")
			}
		}
	}
	*booly = (ConfigBool)(temp)

	return nil
}

func booleanIsTrue(s string) bool {
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

func eout(err error, msg string, args ...interface{}) error {
	if err != nil {
		msg = fmt.Sprintf(msg, args...)
		return fmt.Errorf("%s (%w)", msg, err)
	}
	return nil
}

func check(err error, msg string, args ...interface{}) {
	if err = eout(err, msg, args...); err != nil {
		loglib.Fatalln(err)
	}
}
