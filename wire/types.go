// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

// Package wire implements the BSP memo codec: the versioned binary framing
// of a single message, the typed payload layouts, and the batch container.
//
// Every memo carries at most one frame:
//
//	[type:1][version:1][len:2 big-endian][payload:len]
//
// with len capped at 508 so the frame fits the 512-byte memo. Payload
// internals use little-endian integers and length-prefixed addresses.
// Decoding is pure; it never mutates state and never panics on adversarial
// input.
package wire

// ProtocolVersion is the current BSP protocol version.
const ProtocolVersion uint8 = 1

// HeaderSize is the size of the frame header (type, version, len).
const HeaderSize = 4

// MaxPayload is the largest payload that fits a 512-byte memo.
const MaxPayload = 512 - HeaderSize

// MaxBatchActions is the most sub-messages one batch may carry.
const MaxBatchActions = 5

// MessageType is the byte tag of a BSP message. The byte space is
// partitioned into reserved ranges; a byte outside every defined range is
// a decode failure, never a panic.
type MessageType uint8

const (
	// Legacy pre-versioning types (read-only compat, never produced).
	TypeLegacyPost   MessageType = 0x01
	TypeLegacyFollow MessageType = 0x02

	// Standard social range (0x10-0x7F).
	TypeProfile        MessageType = 0x10
	TypePost           MessageType = 0x20
	TypeComment        MessageType = 0x21
	TypeUpvote         MessageType = 0x22
	TypeFollow         MessageType = 0x30
	TypeUnfollow       MessageType = 0x31
	TypeDM             MessageType = 0x40
	TypeGroupDM        MessageType = 0x41
	TypeTip            MessageType = 0x50
	TypeBounty         MessageType = 0x51
	TypeAttentionBoost MessageType = 0x52
	TypeCreditTip      MessageType = 0x53
	TypeCreditClaim    MessageType = 0x54
	TypeMedia          MessageType = 0x60
	TypePoll           MessageType = 0x70
	TypePollVote       MessageType = 0x71

	// Batch container.
	TypeBatch MessageType = 0x80

	// Platform bridges (0xB0-0xB3).
	TypeBridgeLink   MessageType = 0xB0
	TypeBridgeUnlink MessageType = 0xB1
	TypeBridgePost   MessageType = 0xB2
	TypeBridgeVerify MessageType = 0xB3

	// Payment channels (0xC0-0xC3).
	TypeChannelOpen    MessageType = 0xC0
	TypeChannelClose   MessageType = 0xC1
	TypeChannelSettle  MessageType = 0xC2
	TypeChannelDispute MessageType = 0xC3

	// Moderation (0xD0-0xD3; 0xD2/0xD3 reserved).
	TypeTrust  MessageType = 0xD0
	TypeReport MessageType = 0xD1

	// Governance (0xE0-0xE1).
	TypePropose MessageType = 0xE0
	TypeVote    MessageType = 0xE1

	// Recovery and multisig (0xF0-0xF6).
	TypeRecoveryConfig  MessageType = 0xF0
	TypeRecoveryRequest MessageType = 0xF1
	TypeRecoveryApprove MessageType = 0xF2
	TypeRecoveryCancel  MessageType = 0xF3
	TypeKeyRotation     MessageType = 0xF4
	TypeMultisigSetup   MessageType = 0xF5
	TypeMultisigAction  MessageType = 0xF6
)

var typeNames = map[MessageType]string{
	TypeLegacyPost:   "LegacyPost",
	TypeLegacyFollow: "LegacyFollow",

	TypeProfile:        "Profile",
	TypePost:           "Post",
	TypeComment:        "Comment",
	TypeUpvote:         "Upvote",
	TypeFollow:         "Follow",
	TypeUnfollow:       "Unfollow",
	TypeDM:             "DM",
	TypeGroupDM:        "GroupDM",
	TypeTip:            "Tip",
	TypeBounty:         "Bounty",
	TypeAttentionBoost: "AttentionBoost",
	TypeCreditTip:      "CreditTip",
	TypeCreditClaim:    "CreditClaim",
	TypeMedia:          "Media",
	TypePoll:           "Poll",
	TypePollVote:       "PollVote",

	TypeBatch: "Batch",

	TypeBridgeLink:   "BridgeLink",
	TypeBridgeUnlink: "BridgeUnlink",
	TypeBridgePost:   "BridgePost",
	TypeBridgeVerify: "BridgeVerify",

	TypeChannelOpen:    "ChannelOpen",
	TypeChannelClose:   "ChannelClose",
	TypeChannelSettle:  "ChannelSettle",
	TypeChannelDispute: "ChannelDispute",

	TypeTrust:  "Trust",
	TypeReport: "Report",

	TypePropose: "Propose",
	TypeVote:    "Vote",

	TypeRecoveryConfig:  "RecoveryConfig",
	TypeRecoveryRequest: "RecoveryRequest",
	TypeRecoveryApprove: "RecoveryApprove",
	TypeRecoveryCancel:  "RecoveryCancel",
	TypeKeyRotation:     "KeyRotation",
	TypeMultisigSetup:   "MultisigSetup",
	TypeMultisigAction:  "MultisigAction",
}

func (t MessageType) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return "Unknown"
}

// Defined reports whether t is a defined message type.
func (t MessageType) Defined() bool {
	_, ok := typeNames[t]
	return ok
}

// Legacy reports whether t is a pre-versioning single-byte type. Legacy
// frames carry no version or length field; the payload is the rest of the
// memo. They are decoded for backward read compat but never encoded.
func (t MessageType) Legacy() bool {
	return t == TypeLegacyPost || t == TypeLegacyFollow
}

// ReservedCore reports whether t falls in the reserved core range
// (0x00-0x0F) without being one of the explicitly defined legacy types.
func (t MessageType) ReservedCore() bool {
	return t <= 0x0F && !t.Legacy()
}

// Social reports whether t is in the standard social range.
func (t MessageType) Social() bool { return t >= 0x10 && t <= 0x7F }

// Bridge reports whether t is a platform bridge type.
func (t MessageType) Bridge() bool { return t >= 0xB0 && t <= 0xB3 }

// Channel reports whether t is a payment channel type.
func (t MessageType) Channel() bool { return t >= 0xC0 && t <= 0xC3 }

// Moderation reports whether t is a moderation type.
func (t MessageType) Moderation() bool { return t >= 0xD0 && t <= 0xD3 }

// Governance reports whether t is a governance type.
func (t MessageType) Governance() bool { return t == TypePropose || t == TypeVote }

// Recovery reports whether t is a recovery or multisig type.
func (t MessageType) Recovery() bool { return t >= 0xF0 && t <= 0xF6 }

// ValueTransfer reports whether messages of this type ride on a value
// carrying output.
func (t MessageType) ValueTransfer() bool {
	switch t {
	case TypeUpvote, TypeTip, TypeBounty, TypeAttentionBoost, TypeCreditTip, TypeCreditClaim:
		return true
	}
	return false
}

// AttentionMarket reports whether t belongs to the attention market.
func (t MessageType) AttentionMarket() bool {
	switch t {
	case TypeAttentionBoost, TypeCreditTip, TypeCreditClaim:
		return true
	}
	return false
}
