// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package wire

import (
	"fmt"

	"github.com/botcash/go-bsp"
)

// Payment channel bodies (0xC0-0xC3).

// MaxChannelParties bounds the party list of one channel.
const MaxChannelParties = 10

// ChannelOpen opens a layer-2 channel between parties. The output value is
// the deposit.
// Layout: [count:1][party:len8]xcount [deposit:8][timeout_blocks:4]
type ChannelOpen struct {
	Parties       []bsp.Address
	Deposit       uint64
	TimeoutBlocks uint32
}

func (ChannelOpen) Kind() MessageType { return TypeChannelOpen }

func (c ChannelOpen) encodePayload() []byte {
	var out []byte
	out = append(out, byte(len(c.Parties)))
	for _, p := range c.Parties {
		putAddr(p, &out)
	}
	putU64(c.Deposit, &out)
	putU32(c.TimeoutBlocks, &out)
	return out
}

func parseChannelOpen(payload []byte) (ChannelOpen, error) {
	r := newPayloadReader(payload)
	count := int(r.u8())
	if count == 0 || count > MaxChannelParties {
		return ChannelOpen{}, fmt.Errorf("invalid party count %d", count)
	}
	c := ChannelOpen{}
	for i := 0; i < count; i++ {
		c.Parties = append(c.Parties, r.addr())
	}
	c.Deposit = r.u64()
	c.TimeoutBlocks = r.u32()
	return c, r.done()
}

// ChannelClose starts a cooperative close and the dispute countdown.
// Layout: [channel_id:32][final_seq:4]
type ChannelClose struct {
	ChannelID string
	FinalSeq  uint32
}

func (ChannelClose) Kind() MessageType { return TypeChannelClose }

func (c ChannelClose) encodePayload() []byte {
	var out []byte
	putHex32(c.ChannelID, &out)
	putU32(c.FinalSeq, &out)
	return out
}

func parseChannelClose(payload []byte) (ChannelClose, error) {
	r := newPayloadReader(payload)
	c := ChannelClose{
		ChannelID: r.hex32(),
		FinalSeq:  r.u32(),
	}
	return c, r.done()
}

// ChannelSettle finalizes a channel with a message hash proof.
// Layout: [channel_id:32][final_seq:4][message_hash:32]
type ChannelSettle struct {
	ChannelID   string
	FinalSeq    uint32
	MessageHash string
}

func (ChannelSettle) Kind() MessageType { return TypeChannelSettle }

func (c ChannelSettle) encodePayload() []byte {
	var out []byte
	putHex32(c.ChannelID, &out)
	putU32(c.FinalSeq, &out)
	putHex32(c.MessageHash, &out)
	return out
}

func parseChannelSettle(payload []byte) (ChannelSettle, error) {
	r := newPayloadReader(payload)
	c := ChannelSettle{
		ChannelID: r.hex32(),
		FinalSeq:  r.u32(),
	}
	c.MessageHash = r.hex32()
	return c, r.done()
}

// ChannelDispute freezes settlement pending arbitration.
// Layout: [channel_id:32][evidence:rest]
type ChannelDispute struct {
	ChannelID string
	Evidence  []byte
}

func (ChannelDispute) Kind() MessageType { return TypeChannelDispute }

func (c ChannelDispute) encodePayload() []byte {
	var out []byte
	putHex32(c.ChannelID, &out)
	out = append(out, c.Evidence...)
	return out
}

func parseChannelDispute(payload []byte) (ChannelDispute, error) {
	r := newPayloadReader(payload)
	c := ChannelDispute{ChannelID: r.hex32()}
	c.Evidence = r.remaining()
	return c, r.err
}
