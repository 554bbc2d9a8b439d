// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package main

import (
	"os"

	"github.com/botcash/go-bsp/internal/config"
)

func readEnvironmentVariables(conf *config.IndexerConfig) {
	if val := os.Getenv("BSP_DATA_DIR"); val != "" {
		conf.Repo = config.ExpandPath(val)
		conf.Presence["repo"] = true
	}

	if val := os.Getenv("BSP_NETWORK"); val != "" {
		conf.Network = val
		conf.Presence["network"] = true
	}

	if val := os.Getenv("BSP_NODE_ADDRESS"); val != "" {
		conf.NodeAddress = val
		conf.Presence["node"] = true
	}

	if val := os.Getenv("BSP_API_ADDRESS"); val != "" {
		conf.APIAddress = val
		conf.Presence["api"] = true
	}

	if val := os.Getenv("BSP_PROMETHEUS_ADDRESS"); val != "" {
		conf.MetricsAddress = val
		conf.Presence["debuglis"] = true
	}

	if val := os.Getenv("BSP_JOURNAL_DISABLED"); val != "" {
		conf.NoJournal = config.ConfigBool(booleanIsTrue(val))
		conf.Presence["nojournal"] = true
	}
}

func booleanIsTrue(s string) bool {
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

func readConfigAndEnv(configPath string) (config.IndexerConfig, bool) {
	conf, exists := config.ReadConfigIndexer(configPath)
	if conf.Presence == nil {
		conf.Presence = make(map[string]interface{})
	}
	readEnvironmentVariables(&conf)
	return conf, exists
}
