// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package indexer

import (
	"io"
	"sync"

	"github.com/hashicorp/go-multierror"
)

type multiCloser struct {
	cs []io.Closer
	l  sync.Mutex
}

func (mc *multiCloser) addCloser(c io.Closer) {
	mc.l.Lock()
	defer mc.l.Unlock()

	mc.cs = append(mc.cs, c)
}

// Close closes in reverse add order, so the pipeline's consumers go
// before the stores they read.
func (mc *multiCloser) Close() error {
	mc.l.Lock()
	defer mc.l.Unlock()

	var err *multierror.Error
	for i := len(mc.cs) - 1; i >= 0; i-- {
		err = multierror.Append(err, mc.cs[i].Close())
	}
	mc.cs = nil
	return err.ErrorOrNil()
}
