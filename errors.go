// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package bsp

import (
	"errors"
	"fmt"
)

// ErrShuttingDown is returned by blocking operations once the indexer
// begins shutdown.
var ErrShuttingDown = errors.New("bsp: shutting down")

// ReorgError is the only non-recoverable failure category. It means the
// undo log no longer matches canonical history and the derived state can
// not be trusted; ingestion halts and the operator has to rebuild.
type ReorgError struct {
	Height Height
	Reason string
}

func (e ReorgError) Error() string {
	return fmt.Sprintf("bsp: reorg state inconsistent at height %d: %s", e.Height, e.Reason)
}

// IsReorgError reports whether err is (or wraps) a ReorgError.
func IsReorgError(err error) bool {
	var re ReorgError
	return errors.As(err, &re)
}
