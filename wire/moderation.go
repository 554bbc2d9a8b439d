// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package wire

import (
	"github.com/botcash/go-bsp"
)

// Moderation bodies (0xD0-0xD1). 0xD2 and 0xD3 stay reserved within the
// moderation range.

// TrustLevel is a signed trust weight from -2 (strong distrust) to +2
// (strong trust).
type TrustLevel int8

const (
	TrustStrongDistrust TrustLevel = -2
	TrustDistrust       TrustLevel = -1
	TrustNeutral        TrustLevel = 0
	TrustTrust          TrustLevel = 1
	TrustStrongTrust    TrustLevel = 2
)

// Defined reports whether l is a known trust level.
func (l TrustLevel) Defined() bool { return l >= TrustStrongDistrust && l <= TrustStrongTrust }

// Trust declares a trust (or distrust) edge towards another address.
// Layout: [target:len8][level:1 signed][reason:len8]
type Trust struct {
	Target bsp.Address
	Level  TrustLevel
	Reason string
}

func (Trust) Kind() MessageType { return TypeTrust }

func (t Trust) encodePayload() []byte {
	var out []byte
	putAddr(t.Target, &out)
	out = append(out, byte(t.Level))
	putBytes8([]byte(t.Reason), &out)
	return out
}

func parseTrust(payload []byte) (Trust, error) {
	r := newPayloadReader(payload)
	t := Trust{
		Target: r.addr(),
		Level:  TrustLevel(r.u8()),
		Reason: r.string8(),
	}
	return t, r.done()
}

// ReportCategory classifies a content report.
type ReportCategory uint8

const (
	ReportSpam ReportCategory = iota
	ReportScam
	ReportIllegal
	ReportImpersonation
	ReportOther
)

func (c ReportCategory) String() string {
	switch c {
	case ReportSpam:
		return "spam"
	case ReportScam:
		return "scam"
	case ReportIllegal:
		return "illegal"
	case ReportImpersonation:
		return "impersonation"
	case ReportOther:
		return "other"
	}
	return "unknown"
}

// Defined reports whether c is a known report category.
func (c ReportCategory) Defined() bool { return c <= ReportOther }

// Report flags content, staking value behind the claim.
// Layout: [target:32][category:1][stake:8][evidence:len16]
type Report struct {
	Target   bsp.TxID
	Category ReportCategory
	Stake    uint64
	Evidence string
}

func (Report) Kind() MessageType { return TypeReport }

func (rep Report) encodePayload() []byte {
	var out []byte
	putHex32(string(rep.Target), &out)
	out = append(out, byte(rep.Category))
	putU64(rep.Stake, &out)
	putBytes16([]byte(rep.Evidence), &out)
	return out
}

func parseReport(payload []byte) (Report, error) {
	r := newPayloadReader(payload)
	rep := Report{
		Target:   bsp.TxID(r.hex32()),
		Category: ReportCategory(r.u8()),
		Stake:    r.u64(),
		Evidence: r.string16(),
	}
	return rep, r.done()
}
