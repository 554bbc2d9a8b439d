// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package chain

import (
	"context"
	"fmt"
	"io"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/botcash/go-bsp"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func (k EventKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *EventKind) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch s {
	case "connect":
		*k = Connect
	case "disconnect":
		*k = Disconnect
	default:
		return fmt.Errorf("chain: unknown event kind %q", s)
	}
	return nil
}

// StreamSource reads newline-delimited JSON events from a node-facing
// collaborator, usually a pipe or a TCP connection. It does no chain
// validation of its own beyond the event shape; ordering is the
// producer's contract.
//
// Next blocks inside the reader. Cancel it by closing the underlying
// reader, the context alone cannot interrupt a pending read.
type StreamSource struct {
	dec *jsoniter.Decoder

	mu  sync.Mutex
	tip bsp.Height
}

func NewStreamSource(r io.Reader) *StreamSource {
	return &StreamSource{dec: json.NewDecoder(r)}
}

func (s *StreamSource) Next(ctx context.Context) (Event, error) {
	if err := ctx.Err(); err != nil {
		return Event{}, err
	}

	// jsoniter's Decoder only reports io.EOF when its buffer is empty
	// before the call; a trailing newline left in the buffer makes the
	// next Decode fail on the padding instead. More skips whitespace.
	if !s.dec.More() {
		return Event{}, io.EOF
	}

	var ev Event
	if err := s.dec.Decode(&ev); err != nil {
		if err == io.EOF {
			return Event{}, io.EOF
		}
		if cerr := ctx.Err(); cerr != nil {
			return Event{}, cerr
		}
		return Event{}, fmt.Errorf("chain: decode event: %w", err)
	}

	switch ev.Kind {
	case Connect:
		if ev.Block == nil {
			return Event{}, fmt.Errorf("chain: connect event without block")
		}
		s.mu.Lock()
		if ev.Block.Height > s.tip {
			s.tip = ev.Block.Height
		}
		s.mu.Unlock()
	case Disconnect:
		s.mu.Lock()
		if s.tip > ev.ForkHeight {
			s.tip = ev.ForkHeight
		}
		s.mu.Unlock()
	}
	return ev, nil
}

func (s *StreamSource) Tip() bsp.Height {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tip
}
