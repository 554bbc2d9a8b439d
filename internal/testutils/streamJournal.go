// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package testutils

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/ssbc/go-luigi"
	"github.com/stretchr/testify/require"

	"github.com/botcash/go-bsp/ledger"
	"github.com/botcash/go-bsp/repo"
)

// StreamJournal dumps a journal for debugging a failing test.
func StreamJournal(t *testing.T, j *repo.Journal) {
	r := require.New(t)

	src, err := j.Query()
	r.NoError(err)

	seq := j.Seq()
	i := int64(0)

	for {
		v, err := src.Next(context.TODO())
		if luigi.IsEOS(err) {
			break
		}
		r.NoError(err)

		env, ok := v.(*ledger.Envelope)
		r.True(ok, "expected %T to be an envelope (wrong log type?)", v)

		t.Logf("journal seq: %d - h%d %s vout %d (%s)",
			i,
			env.Height,
			env.TxID,
			env.OutputIndex,
			env.From)

		b := env.Msg.Payload
		if n := len(b); n > 128 {
			t.Log("truncating", n, " to last 32 bytes")
			b = b[len(b)-32:]
		}
		t.Logf("\n%s", hex.Dump(b))

		i++
	}

	// margaret is 0-indexed
	seq += 1
	if seq != i {
		t.Errorf("seq differs from iterated count: %d vs %d", seq, i)
	}
}
