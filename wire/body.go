// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package wire

import (
	"encoding/hex"
	"fmt"

	"github.com/botcash/go-bsp"
)

// Body is a typed message payload. Every defined non-batch type has one
// Body implementation.
type Body interface {
	Kind() MessageType
	encodePayload() []byte
}

// Compose frames a typed body at the current protocol version.
func Compose(b Body) (Message, error) {
	m := Message{Type: b.Kind(), Version: ProtocolVersion, Payload: b.encodePayload()}
	if len(m.Payload) > MaxPayload {
		return Message{}, ErrOversize
	}
	return m, nil
}

// MustCompose is Compose for statically sized bodies in tests and tools.
func MustCompose(b Body) Message {
	m, err := Compose(b)
	if err != nil {
		panic(err)
	}
	return m
}

// Body parses the payload into the typed struct for the message type.
// Batch frames have no single body; use DecodeBatch.
func (m Message) Body() (Body, error) {
	var (
		b   Body
		err error
	)
	switch m.Type {
	case TypeLegacyPost:
		return Post{Content: string(m.Payload)}, nil
	case TypeLegacyFollow:
		return Follow{Target: bsp.Address(m.Payload)}, nil

	case TypeProfile:
		b, err = parseProfile(m.Payload)
	case TypePost:
		b, err = parsePost(m.Payload)
	case TypeComment:
		b, err = parseComment(m.Payload)
	case TypeUpvote:
		b, err = parseUpvote(m.Payload)
	case TypeFollow:
		b, err = parseFollow(m.Payload)
	case TypeUnfollow:
		b, err = parseUnfollow(m.Payload)
	case TypeDM:
		b, err = parseDM(m.Payload)
	case TypeGroupDM:
		b, err = parseGroupDM(m.Payload)
	case TypeTip:
		b, err = parseTip(m.Payload)
	case TypeBounty:
		b, err = parseBounty(m.Payload)
	case TypeAttentionBoost:
		b, err = parseAttentionBoost(m.Payload)
	case TypeCreditTip:
		b, err = parseCreditTip(m.Payload)
	case TypeCreditClaim:
		b, err = parseCreditClaim(m.Payload)
	case TypeMedia:
		b, err = parseMedia(m.Payload)
	case TypePoll:
		b, err = parsePoll(m.Payload)
	case TypePollVote:
		b, err = parsePollVote(m.Payload)

	case TypeBridgeLink:
		b, err = parseBridgeLink(m.Payload)
	case TypeBridgeUnlink:
		b, err = parseBridgeUnlink(m.Payload)
	case TypeBridgePost:
		b, err = parseBridgePost(m.Payload)
	case TypeBridgeVerify:
		b, err = parseBridgeVerify(m.Payload)

	case TypeChannelOpen:
		b, err = parseChannelOpen(m.Payload)
	case TypeChannelClose:
		b, err = parseChannelClose(m.Payload)
	case TypeChannelSettle:
		b, err = parseChannelSettle(m.Payload)
	case TypeChannelDispute:
		b, err = parseChannelDispute(m.Payload)

	case TypeTrust:
		b, err = parseTrust(m.Payload)
	case TypeReport:
		b, err = parseReport(m.Payload)

	case TypePropose:
		b, err = parsePropose(m.Payload)
	case TypeVote:
		b, err = parseVote(m.Payload)

	case TypeRecoveryConfig:
		b, err = parseRecoveryConfig(m.Payload)
	case TypeRecoveryRequest:
		b, err = parseRecoveryRequest(m.Payload)
	case TypeRecoveryApprove:
		b, err = parseRecoveryApprove(m.Payload)
	case TypeRecoveryCancel:
		b, err = parseRecoveryCancel(m.Payload)
	case TypeKeyRotation:
		b, err = parseKeyRotation(m.Payload)
	case TypeMultisigSetup:
		b, err = parseMultisigSetup(m.Payload)
	case TypeMultisigAction:
		b, err = parseMultisigAction(m.Payload)

	case TypeBatch:
		return nil, fmt.Errorf("wire: batch frames have no single body")
	default:
		return nil, UnknownTypeError{Type: m.Type}
	}
	if err != nil {
		return nil, MalformedPayloadError{Type: m.Type, Reason: "field parse", Err: err}
	}
	return b, nil
}

// 32-byte id helpers. Ids travel as raw bytes on the wire and as lowercase
// hex strings everywhere above the codec.

func putHex32(s string, data *[]byte) {
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != 32 {
		raw = make([]byte, 32)
	}
	*data = append(*data, raw...)
}

func (r *payloadReader) hex32() string {
	b := r.take(32)
	if b == nil {
		return ""
	}
	return hex.EncodeToString(b)
}

func putHex33(s string, data *[]byte) {
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != 33 {
		raw = make([]byte, 33)
	}
	*data = append(*data, raw...)
}

func (r *payloadReader) hex33() string {
	b := r.take(33)
	if b == nil {
		return ""
	}
	return hex.EncodeToString(b)
}

func putHex64(s string, data *[]byte) {
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != 64 {
		raw = make([]byte, 64)
	}
	*data = append(*data, raw...)
}

func (r *payloadReader) hex64() string {
	b := r.take(64)
	if b == nil {
		return ""
	}
	return hex.EncodeToString(b)
}
