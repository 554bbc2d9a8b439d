// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package main

import (
	"net/http"

	"github.com/go-kit/kit/log/level"
	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/botcash/go-bsp/ingest"
)

// startDebug registers the pipeline counters and serves /metrics on
// debugAddr.
func startDebug(debugAddr string) ingest.Metrics {
	m := ingest.Metrics{
		BlocksApplied: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: "bsp",
			Subsystem: "pipeline",
			Name:      "blocks_applied_total",
		}, nil),
		BlocksRolledBack: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: "bsp",
			Subsystem: "pipeline",
			Name:      "blocks_rolled_back_total",
		}, nil),
		EnvsAccepted: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: "bsp",
			Subsystem: "pipeline",
			Name:      "envelopes_accepted_total",
		}, nil),
		EnvsRejected: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: "bsp",
			Subsystem: "pipeline",
			Name:      "envelopes_rejected_total",
		}, nil),
		MemosMalformed: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: "bsp",
			Subsystem: "pipeline",
			Name:      "memos_malformed_total",
		}, nil),
		TipLag: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: "bsp",
			Subsystem: "pipeline",
			Name:      "tip_lag_blocks",
		}, nil),
	}

	go func() {
		http.Handle("/metrics", promhttp.Handler())
		level.Info(log).Log("starting", "metrics", "addr", debugAddr)
		if err := http.ListenAndServe(debugAddr, nil); err != nil {
			level.Error(log).Log("event", "metrics listener failed", "err", err)
		}
	}()

	return m
}
