// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package wire

import (
	"fmt"

	"github.com/botcash/go-bsp"
)

// Recovery and multisig bodies (0xF0-0xF6).

// MaxGuardians bounds the guardian set of one recovery config.
const MaxGuardians = 15

// MaxMultisigKeys bounds the key set of one multisig identity.
const MaxMultisigKeys = 15

// RecoveryConfig designates guardians for the sender's address. A newer
// config fully replaces the previous one; there is no merging.
// Layout: [count:1][threshold:1][timelock_blocks:4][guardian_hash:32]xcount
type RecoveryConfig struct {
	GuardianHashes []string
	Threshold      uint8
	TimelockBlocks uint32
}

func (RecoveryConfig) Kind() MessageType { return TypeRecoveryConfig }

func (c RecoveryConfig) encodePayload() []byte {
	var out []byte
	out = append(out, byte(len(c.GuardianHashes)), c.Threshold)
	putU32(c.TimelockBlocks, &out)
	for _, h := range c.GuardianHashes {
		putHex32(h, &out)
	}
	return out
}

func parseRecoveryConfig(payload []byte) (RecoveryConfig, error) {
	r := newPayloadReader(payload)
	count := int(r.u8())
	c := RecoveryConfig{
		Threshold:      r.u8(),
		TimelockBlocks: r.u32(),
	}
	if count == 0 || count > MaxGuardians {
		return RecoveryConfig{}, fmt.Errorf("invalid guardian count %d", count)
	}
	for i := 0; i < count; i++ {
		c.GuardianHashes = append(c.GuardianHashes, r.hex32())
	}
	return c, r.done()
}

// RecoveryRequest starts a recovery attempt from a new device. The
// request id is chosen by the requester; the timelock starts immediately.
// Layout: [request_id:32][target_owner:len8][new_pubkey:33]
type RecoveryRequest struct {
	RequestID   string
	TargetOwner bsp.Address
	NewPubkey   string
}

func (RecoveryRequest) Kind() MessageType { return TypeRecoveryRequest }

func (q RecoveryRequest) encodePayload() []byte {
	var out []byte
	putHex32(q.RequestID, &out)
	putAddr(q.TargetOwner, &out)
	putHex33(q.NewPubkey, &out)
	return out
}

func parseRecoveryRequest(payload []byte) (RecoveryRequest, error) {
	r := newPayloadReader(payload)
	q := RecoveryRequest{
		RequestID:   r.hex32(),
		TargetOwner: r.addr(),
		NewPubkey:   r.hex33(),
	}
	return q, r.done()
}

// RecoveryApprove is a guardian's approval carrying their encrypted key
// share. A repeat approval from the same guardian overwrites the share.
// Layout: [request_id:32][share:len16]
type RecoveryApprove struct {
	RequestID      string
	EncryptedShare []byte
}

func (RecoveryApprove) Kind() MessageType { return TypeRecoveryApprove }

func (a RecoveryApprove) encodePayload() []byte {
	var out []byte
	putHex32(a.RequestID, &out)
	putBytes16(a.EncryptedShare, &out)
	return out
}

func parseRecoveryApprove(payload []byte) (RecoveryApprove, error) {
	r := newPayloadReader(payload)
	a := RecoveryApprove{RequestID: r.hex32()}
	a.EncryptedShare = r.bytes16()
	return a, r.done()
}

// RecoveryCancel voids a request. Only the original owner's key may do
// this; it works unconditionally until external execution.
// Layout: [request_id:32]
type RecoveryCancel struct {
	RequestID string
}

func (RecoveryCancel) Kind() MessageType { return TypeRecoveryCancel }

func (c RecoveryCancel) encodePayload() []byte {
	var out []byte
	putHex32(c.RequestID, &out)
	return out
}

func parseRecoveryCancel(payload []byte) (RecoveryCancel, error) {
	r := newPayloadReader(payload)
	c := RecoveryCancel{RequestID: r.hex32()}
	return c, r.done()
}

// KeyRotation announces a proactive key change by the owner.
// Layout: [new_pubkey:33][effective_height:4]
type KeyRotation struct {
	NewPubkey       string
	EffectiveHeight uint32
}

func (KeyRotation) Kind() MessageType { return TypeKeyRotation }

func (k KeyRotation) encodePayload() []byte {
	var out []byte
	putHex33(k.NewPubkey, &out)
	putU32(k.EffectiveHeight, &out)
	return out
}

func parseKeyRotation(payload []byte) (KeyRotation, error) {
	r := newPayloadReader(payload)
	k := KeyRotation{
		NewPubkey:       r.hex33(),
		EffectiveHeight: r.u32(),
	}
	return k, r.done()
}

// MultisigSetup configures the sender's address as an M-of-N identity.
// Layout: [count:1][pubkey:33]xcount [threshold:1]
type MultisigSetup struct {
	Pubkeys   []string
	Threshold uint8
}

func (MultisigSetup) Kind() MessageType { return TypeMultisigSetup }

func (s MultisigSetup) encodePayload() []byte {
	var out []byte
	out = append(out, byte(len(s.Pubkeys)))
	for _, k := range s.Pubkeys {
		putHex33(k, &out)
	}
	out = append(out, s.Threshold)
	return out
}

func parseMultisigSetup(payload []byte) (MultisigSetup, error) {
	r := newPayloadReader(payload)
	count := int(r.u8())
	if count < 2 || count > MaxMultisigKeys {
		return MultisigSetup{}, fmt.Errorf("invalid multisig key count %d", count)
	}
	s := MultisigSetup{}
	for i := 0; i < count; i++ {
		s.Pubkeys = append(s.Pubkeys, r.hex33())
	}
	s.Threshold = r.u8()
	return s, r.done()
}

// MultisigSig is one co-signer signature inside a MultisigAction.
type MultisigSig struct {
	KeyIndex  uint8
	Signature string
}

// MultisigAction wraps an inner social action with co-signer signatures.
// Layout: [action_type:1][action:len16][count:1]([key_index:1][sig:64])xcount
type MultisigAction struct {
	ActionType MessageType
	Action     []byte
	Signatures []MultisigSig
}

func (MultisigAction) Kind() MessageType { return TypeMultisigAction }

func (a MultisigAction) encodePayload() []byte {
	var out []byte
	out = append(out, byte(a.ActionType))
	putBytes16(a.Action, &out)
	out = append(out, byte(len(a.Signatures)))
	for _, s := range a.Signatures {
		out = append(out, s.KeyIndex)
		putHex64(s.Signature, &out)
	}
	return out
}

func parseMultisigAction(payload []byte) (MultisigAction, error) {
	r := newPayloadReader(payload)
	a := MultisigAction{ActionType: MessageType(r.u8())}
	a.Action = r.bytes16()
	count := int(r.u8())
	if count > MaxMultisigKeys {
		return MultisigAction{}, fmt.Errorf("invalid signature count %d", count)
	}
	for i := 0; i < count; i++ {
		a.Signatures = append(a.Signatures, MultisigSig{
			KeyIndex:  r.u8(),
			Signature: r.hex64(),
		})
	}
	return a, r.done()
}
