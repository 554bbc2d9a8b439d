// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botcash/go-bsp"
)

func TestDecodeSimplePost(t *testing.T) {
	r := require.New(t)

	memo := []byte{byte(TypePost), 0x01, 0x00, 0x02, 'h', 'i'}
	msg, err := Decode(memo)
	r.NoError(err)
	r.Equal(TypePost, msg.Type)
	r.EqualValues(1, msg.Version)

	body, err := msg.Body()
	r.NoError(err)
	post, ok := body.(Post)
	r.True(ok, "expected a Post body, got %T", body)
	r.Equal("hi", post.Content)
}

func TestDecodeStripsMemoPadding(t *testing.T) {
	r := require.New(t)

	memo := make([]byte, bsp.MemoSize)
	copy(memo, []byte{byte(TypePost), 0x01, 0x00, 0x02, 'h', 'i'})

	msg, err := Decode(memo)
	r.NoError(err)
	r.Equal([]byte("hi"), msg.Payload)
}

func TestDecodePayloadEndingInZeros(t *testing.T) {
	r := require.New(t)

	// declared length covers the trailing zero bytes, padding begins after
	memo := make([]byte, bsp.MemoSize)
	copy(memo, []byte{byte(TypeUpvote), 0x01, 0x00, 32})
	// 32 zero bytes of target id are the payload

	msg, err := Decode(memo)
	r.NoError(err)
	r.Len(msg.Payload, 32)
}

func TestRoundTripAllBodies(t *testing.T) {
	bodies := []Body{
		Profile{DisplayName: "agent", Bio: "just a bot", AvatarURI: "ipfs://x"},
		Post{Content: "hello botcash"},
		Comment{Parent: bsp.TxID(hexID(0xAB)), Content: "nice"},
		Upvote{Target: bsp.TxID(hexID(0xCD))},
		Follow{Target: "B1alice"},
		Unfollow{Target: "B1alice"},
		DM{Recipient: "B1bob", Ciphertext: []byte{1, 2, 3}},
		GroupDM{Recipients: []bsp.Address{"B1bob", "B1carol"}, Ciphertext: []byte{4, 5}},
		Tip{Target: bsp.TxID(hexID(0x11)), Note: "thanks"},
		Bounty{Description: "write docs", Reward: 5000, ExpiryBlocks: 1440},
		AttentionBoost{Target: bsp.TxID(hexID(0x22)), DurationBlocks: 1440, Category: 1},
		CreditTip{Target: bsp.TxID(hexID(0x33)), Amount: 800},
		CreditClaim{Epoch: 42},
		Media{ContentHash: hexID(0x44), MimeType: "image/png", URI: "https://x/y.png"},
		Poll{Question: "ship it?", Options: []string{"yes", "no"}, DurationBlocks: 720},
		PollVote{Poll: bsp.TxID(hexID(0x55)), Option: 1},

		BridgeLink{Platform: "nostr", PlatformID: "npub1xyz", Challenge: hexID(0x66)},
		BridgeUnlink{Platform: "nostr", PlatformID: "npub1xyz"},
		BridgePost{Platform: "telegram", OriginalID: "msg123", Content: "crossposted"},
		BridgeVerify{Platform: "nostr", PlatformID: "npub1xyz", Response: hexID(0x77)},

		ChannelOpen{Parties: []bsp.Address{"B1a", "B1b"}, Deposit: 100_000, TimeoutBlocks: 1440},
		ChannelClose{ChannelID: hexID(0x88), FinalSeq: 7},
		ChannelSettle{ChannelID: hexID(0x88), FinalSeq: 7, MessageHash: hexID(0x99)},
		ChannelDispute{ChannelID: hexID(0x88), Evidence: []byte("signed state 6")},

		Trust{Target: "B1bob", Level: TrustStrongTrust, Reason: "long history"},
		Report{Target: bsp.TxID(hexID(0xAA)), Category: ReportSpam, Stake: 1_000_000, Evidence: "dup content"},

		Propose{ProposalType: ProposalParameter, Title: "raise rate", Description: "to 85%"},
		Vote{Proposal: hexID(0xBB), Choice: VoteYes, Weight: 12},

		RecoveryConfig{GuardianHashes: []string{hexID(0x01), hexID(0x02), hexID(0x03)}, Threshold: 2, TimelockBlocks: 10_080},
		RecoveryRequest{RequestID: hexID(0x04), TargetOwner: "B1owner", NewPubkey: hexPub(0x05)},
		RecoveryApprove{RequestID: hexID(0x04), EncryptedShare: []byte("share")},
		RecoveryCancel{RequestID: hexID(0x04)},
		KeyRotation{NewPubkey: hexPub(0x06), EffectiveHeight: 9000},
		MultisigSetup{Pubkeys: []string{hexPub(0x07), hexPub(0x08), hexPub(0x09)}, Threshold: 2},
		MultisigAction{
			ActionType: TypePost,
			Action:     []byte{byte(TypePost), 1, 0, 2, 'h', 'i'},
			Signatures: []MultisigSig{{KeyIndex: 0, Signature: hexSig(0x0A)}},
		},
	}

	for _, b := range bodies {
		b := b
		t.Run(b.Kind().String(), func(t *testing.T) {
			r := require.New(t)

			msg, err := Compose(b)
			r.NoError(err)

			frame, err := msg.Encode()
			r.NoError(err)
			r.LessOrEqual(len(frame), bsp.MemoSize)

			decoded, err := Decode(frame)
			r.NoError(err)
			r.Equal(msg.Type, decoded.Type)
			r.Equal(msg.Version, decoded.Version)

			got, err := decoded.Body()
			r.NoError(err)
			r.Equal(b, got)
		})
	}
}

func TestDecodeLengthMismatch(t *testing.T) {
	a := assert.New(t)

	// declared 5 but only 2 bytes follow
	_, err := Decode([]byte{byte(TypePost), 0x01, 0x00, 0x05, 'h', 'i'})
	a.Error(err)
	var lm LengthMismatchError
	a.ErrorAs(err, &lm)
	a.Equal(5, lm.Declared)
	a.Equal(2, lm.Remaining)
	a.True(IsCodecError(err))
}

func TestDecodeLenCapped(t *testing.T) {
	a := assert.New(t)

	// declared length beyond the 508 byte cap is rejected before any read
	memo := []byte{byte(TypePost), 0x01, 0xFF, 0xFF}
	_, err := Decode(memo)
	a.Error(err)
	var lm LengthMismatchError
	a.ErrorAs(err, &lm)
}

func TestDecodeReservedAndUnknown(t *testing.T) {
	a := assert.New(t)

	// 0x03 is in the reserved core range but not a defined legacy type
	_, err := Decode([]byte{0x03, 0x01, 0x00, 0x00})
	var rt ReservedTypeError
	a.ErrorAs(err, &rt)
	a.True(IsCodecError(err))

	// 0x90 is outside every defined range
	_, err = Decode([]byte{0x90, 0x01, 0x00, 0x00})
	var ut UnknownTypeError
	a.ErrorAs(err, &ut)
	a.True(IsCodecError(err))

	// 0x23 is inside the social range but not a defined type
	_, err = Decode([]byte{0x23, 0x01, 0x00, 0x00})
	a.ErrorAs(err, &ut)
}

func TestDecodeEmptyAndShort(t *testing.T) {
	a := assert.New(t)

	_, err := Decode(nil)
	a.ErrorIs(err, ErrEmpty)

	_, err = Decode(make([]byte, bsp.MemoSize)) // all padding
	a.ErrorIs(err, ErrEmpty)

	_, err = Decode([]byte{byte(TypePost), 0x01})
	a.ErrorIs(err, ErrTooShort)
}

func TestDecodeUnsupportedVersion(t *testing.T) {
	a := assert.New(t)

	_, err := Decode([]byte{byte(TypePost), 99, 0x00, 0x02, 'h', 'i'})
	var uv UnsupportedVersionError
	a.ErrorAs(err, &uv)
	a.EqualValues(99, uv.Found)
}

func TestLegacyDecodeOnly(t *testing.T) {
	r := require.New(t)

	msg, err := Decode([]byte{byte(TypeLegacyPost), 'o', 'l', 'd'})
	r.NoError(err)
	r.Equal(TypeLegacyPost, msg.Type)
	r.EqualValues(0, msg.Version)

	body, err := msg.Body()
	r.NoError(err)
	r.Equal(Post{Content: "old"}, body)

	// legacy types are read-only
	_, err = Message{Type: TypeLegacyPost, Payload: []byte("x")}.Encode()
	r.Error(err)
}

func TestPayloadTruncation(t *testing.T) {
	a := assert.New(t)

	// upvote payload needs 32 bytes of target id
	short := Message{Type: TypeUpvote, Version: 1, Payload: []byte{0xAB, 0xCD}}
	_, err := short.Body()
	a.Error(err)
	var mp MalformedPayloadError
	a.ErrorAs(err, &mp)
	a.Equal(TypeUpvote, mp.Type)
	a.True(IsCodecError(err))
}

func TestPayloadTrailingBytes(t *testing.T) {
	a := assert.New(t)

	payload := make([]byte, 33) // one byte too many for an upvote
	_, err := Message{Type: TypeUpvote, Version: 1, Payload: payload}.Body()
	a.Error(err)
	var mp MalformedPayloadError
	a.ErrorAs(err, &mp)
}

func TestAddressCharsetEnforced(t *testing.T) {
	r := require.New(t)

	// a ':' or other separator inside an address would splice into the
	// ':'-joined index keys downstream, so the decoder refuses it
	for _, bad := range []bsp.Address{"B1a:x", "B1 a", ""} {
		msg := MustCompose(Follow{Target: bad})
		_, err := msg.Body()
		r.Error(err, "address %q must not parse", bad)
	}

	body, err := MustCompose(Follow{Target: "B1ok"}).Body()
	r.NoError(err)
	r.Equal(bsp.Address("B1ok"), body.(Follow).Target)
}

func TestEncodeOversize(t *testing.T) {
	a := assert.New(t)

	big := Message{Type: TypePost, Version: 1, Payload: make([]byte, MaxPayload+1)}
	_, err := big.Encode()
	a.ErrorIs(err, ErrOversize)

	_, err = Compose(Post{Content: string(make([]byte, MaxPayload+1))})
	a.ErrorIs(err, ErrOversize)
}

// test id helpers

func hexID(fill byte) string {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = fill
	}
	return hexEncode(raw)
}

func hexPub(fill byte) string {
	raw := make([]byte, 33)
	for i := range raw {
		raw[i] = fill
	}
	return hexEncode(raw)
}

func hexSig(fill byte) string {
	raw := make([]byte, 64)
	for i := range raw {
		raw[i] = fill
	}
	return hexEncode(raw)
}

func hexEncode(b []byte) string {
	const digits = "0123456789abcdef"
	out := make([]byte, 0, len(b)*2)
	for _, c := range b {
		out = append(out, digits[c>>4], digits[c&0xF])
	}
	return string(out)
}
