// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package chain

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStreamSource(t *testing.T) {
	r := require.New(t)

	feed := `{"kind":"connect","block":{"height":1,"hash":"a1","txs":[{"id":"t1","from":"B1alice","outputs":[{"index":0,"value":100,"memo":"AAEC"}]}]}}
{"kind":"connect","block":{"height":2,"hash":"a2"}}
{"kind":"disconnect","fork":1}
{"kind":"connect","block":{"height":2,"hash":"b2"}}
`
	src := NewStreamSource(strings.NewReader(feed))
	ctx := context.Background()

	ev, err := src.Next(ctx)
	r.NoError(err)
	r.Equal(Connect, ev.Kind)
	r.EqualValues(1, ev.Block.Height)
	r.Len(ev.Block.Txs, 1)
	r.Equal([]byte{0, 1, 2}, ev.Block.Txs[0].Outputs[0].Memo)

	ev, err = src.Next(ctx)
	r.NoError(err)
	r.EqualValues(2, src.Tip())

	ev, err = src.Next(ctx)
	r.NoError(err)
	r.Equal(Disconnect, ev.Kind)
	r.EqualValues(1, ev.ForkHeight)
	r.EqualValues(1, src.Tip(), "tip retreats to the fork")

	ev, err = src.Next(ctx)
	r.NoError(err)
	r.Equal("b2", ev.Block.Hash)
	r.EqualValues(2, src.Tip())

	_, err = src.Next(ctx)
	r.ErrorIs(err, io.EOF)
}

func TestStreamSourceRejectsBadEvents(t *testing.T) {
	r := require.New(t)

	src := NewStreamSource(strings.NewReader(`{"kind":"connect"}`))
	_, err := src.Next(context.Background())
	r.Error(err)

	src = NewStreamSource(strings.NewReader(`{"kind":"merge"}`))
	_, err = src.Next(context.Background())
	r.Error(err)
}

func TestStreamSourceHonorsContext(t *testing.T) {
	r := require.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := NewStreamSource(strings.NewReader(""))
	_, err := src.Next(ctx)
	r.ErrorIs(err, context.Canceled)
}
