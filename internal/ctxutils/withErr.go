// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

// Package ctxutils adds a context variant that reports a chosen error
// instead of context.Canceled, so shutdown is distinguishable from
// cancellation in the errors that bubble up.
package ctxutils

import (
	"context"
	"sync"
	"time"
)

type withErrCtx struct {
	parent context.Context
	done   chan struct{}

	mu  sync.Mutex
	err error
}

func (c *withErrCtx) Deadline() (time.Time, bool)       { return c.parent.Deadline() }
func (c *withErrCtx) Done() <-chan struct{}             { return c.done }
func (c *withErrCtx) Value(key interface{}) interface{} { return c.parent.Value(key) }

func (c *withErrCtx) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// WithError derives a context that fails with err once the returned
// cancel runs. Cancellation of the parent still surfaces as the
// parent's error, whichever comes first.
func WithError(parent context.Context, err error) (context.Context, context.CancelFunc) {
	c := &withErrCtx{parent: parent, done: make(chan struct{})}

	var once sync.Once
	fail := func(cause error) {
		once.Do(func() {
			c.mu.Lock()
			c.err = cause
			c.mu.Unlock()
			close(c.done)
		})
	}

	go func() {
		select {
		case <-parent.Done():
			fail(parent.Err())
		case <-c.done:
		}
	}()

	return c, func() { fail(err) }
}
