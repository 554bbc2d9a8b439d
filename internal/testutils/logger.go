// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

// Package testutils has small test helpers shared across the packages.
package testutils

import (
	"io"
	"os"
	"time"

	"github.com/go-kit/kit/log"
)

// NewRelativeTimeLogger returns a logfmt logger whose "t" field is the
// time elapsed since the logger was created, which reads better than
// wall clock timestamps in test output. A nil writer means stderr.
func NewRelativeTimeLogger(w io.Writer) log.Logger {
	if w == nil {
		w = os.Stderr
	}
	start := time.Now()
	l := log.NewLogfmtLogger(log.NewSyncWriter(w))
	return log.With(l, "t", log.Valuer(func() interface{} {
		return time.Since(start).Round(time.Microsecond)
	}))
}
