// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package ledger

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/botcash/go-bsp"
	"github.com/botcash/go-bsp/wire"
)

// Social account recovery. An owner publishes a guardian set as address
// hashes; recovery needs both enough guardian approvals and an elapsed
// timelock, and the owner can cancel at any point before execution.

// RecoveryConfigRecord is an owner's published guardian set.
type RecoveryConfigRecord struct {
	GuardianHashes []string   `json:"guardian_hashes"`
	Threshold      uint8      `json:"threshold"`
	Timelock       uint32     `json:"timelock"`
	UpdatedAt      bsp.Height `json:"updated_at"`
}

func (c RecoveryConfigRecord) guardian(hash string) bool {
	for _, g := range c.GuardianHashes {
		if g == hash {
			return true
		}
	}
	return false
}

type RecoveryState string

const (
	RecoveryPending   RecoveryState = "pending"
	RecoveryCancelled RecoveryState = "cancelled"
)

// RecoveryRequestRecord is one in-flight recovery attempt.
type RecoveryRequestRecord struct {
	Owner     bsp.Address   `json:"owner"`
	Initiator bsp.Address   `json:"initiator"`
	NewPubkey string        `json:"new_pubkey"`
	CreatedAt bsp.Height    `json:"created_at"`
	Timelock  uint32        `json:"timelock"`
	Threshold uint8         `json:"threshold"`
	Approvals uint8         `json:"approvals"`
	State     RecoveryState `json:"state"`
}

// Executable reports the dual gate: enough approvals and elapsed
// timelock. Neither alone is sufficient.
func (r RecoveryRequestRecord) Executable(h bsp.Height) bool {
	return r.State == RecoveryPending &&
		r.Approvals >= r.Threshold &&
		h >= r.CreatedAt+bsp.Height(r.Timelock)
}

// GuardianHash is how guardians appear in configs: the hash of their
// address, so the set stays private until a guardian approves.
func GuardianHash(a bsp.Address) string {
	sum := blake2b.Sum256([]byte(a))
	return hex.EncodeToString(sum[:])
}

func applyRecoveryConfig(t *Tx, env *Envelope, c wire.RecoveryConfig) error {
	n := len(c.GuardianHashes)
	if n < MinGuardians || n > MaxGuardians {
		return reject("recovery-config", fmt.Errorf("%d guardians outside [%d,%d]", n, MinGuardians, MaxGuardians))
	}
	if c.Threshold == 0 || int(c.Threshold) > n {
		return reject("recovery-config", fmt.Errorf("threshold %d outside [1,%d]", c.Threshold, n))
	}
	timelock := c.TimelockBlocks
	if timelock == 0 {
		timelock = RecoveryTimelockDefault
	}
	if timelock < RecoveryTimelockMin || timelock > RecoveryTimelockMax {
		return reject("recovery-config", fmt.Errorf("timelock %d outside [%d,%d]", timelock, RecoveryTimelockMin, RecoveryTimelockMax))
	}
	return t.Set(keyRecovCfg(env.From), RecoveryConfigRecord{
		GuardianHashes: c.GuardianHashes,
		Threshold:      c.Threshold,
		Timelock:       timelock,
		UpdatedAt:      env.Height,
	})
}

func applyRecoveryRequest(t *Tx, env *Envelope, q wire.RecoveryRequest) error {
	var cfg RecoveryConfigRecord
	ok, err := t.Get(keyRecovCfg(q.TargetOwner), &cfg)
	if err != nil {
		return err
	}
	if !ok {
		return reject("recovery-request", fmt.Errorf("%w: no guardian config for %s", ErrUnknownID, q.TargetOwner))
	}
	if ok, err := t.Has(keyRecovReq(q.RequestID)); err != nil {
		return err
	} else if ok {
		return reject("recovery-request", fmt.Errorf("%w: request %s", ErrDuplicate, q.RequestID))
	}
	return t.Set(keyRecovReq(q.RequestID), RecoveryRequestRecord{
		Owner:     q.TargetOwner,
		Initiator: env.From,
		NewPubkey: q.NewPubkey,
		CreatedAt: env.Height,
		Timelock:  cfg.Timelock,
		Threshold: cfg.Threshold,
		State:     RecoveryPending,
	})
}

func applyRecoveryApprove(t *Tx, env *Envelope, a wire.RecoveryApprove) error {
	var req RecoveryRequestRecord
	ok, err := t.Get(keyRecovReq(a.RequestID), &req)
	if err != nil {
		return err
	}
	if !ok {
		return reject("recovery-approve", fmt.Errorf("%w: request %s", ErrUnknownID, a.RequestID))
	}
	if req.State != RecoveryPending {
		return reject("recovery-approve", fmt.Errorf("%w: request is %s", ErrBadTransition, req.State))
	}

	var cfg RecoveryConfigRecord
	if _, err := t.Get(keyRecovCfg(req.Owner), &cfg); err != nil {
		return err
	}
	hash := GuardianHash(env.From)
	if !cfg.guardian(hash) {
		return reject("recovery-approve", fmt.Errorf("%w: not a guardian of %s", ErrNotAParty, req.Owner))
	}
	repeat, err := t.Has(keyRecovAppr(a.RequestID, hash))
	if err != nil {
		return err
	}

	// a repeat approval refreshes the stored share without counting the
	// guardian twice
	if err := t.Set(keyRecovAppr(a.RequestID, hash), GuardianApproval{
		Share:    a.EncryptedShare,
		Approved: env.Height,
	}); err != nil {
		return err
	}
	if repeat {
		return nil
	}
	req.Approvals++
	return t.Set(keyRecovReq(a.RequestID), req)
}

// GuardianApproval is one guardian's approval of a request and the
// encrypted key share it delivered.
type GuardianApproval struct {
	Share    []byte     `json:"share"`
	Approved bsp.Height `json:"approved"`
}

// RecoveryApprovals returns the shares collected for a request, keyed by
// guardian hash.
func RecoveryApprovals(t *Tx, requestID string) (map[string]GuardianApproval, error) {
	out := make(map[string]GuardianApproval)
	prefix := prefixRecovAppr(requestID)
	err := t.Iterate(prefix, func(k, raw []byte) (bool, error) {
		var ap GuardianApproval
		if err := json.Unmarshal(raw, &ap); err != nil {
			return false, err
		}
		out[string(k[len(prefix):])] = ap
		return false, nil
	})
	return out, err
}

func applyRecoveryCancel(t *Tx, env *Envelope, c wire.RecoveryCancel) error {
	var req RecoveryRequestRecord
	ok, err := t.Get(keyRecovReq(c.RequestID), &req)
	if err != nil {
		return err
	}
	if !ok {
		return reject("recovery-cancel", fmt.Errorf("%w: request %s", ErrUnknownID, c.RequestID))
	}
	if env.From != req.Owner {
		return reject("recovery-cancel", fmt.Errorf("%w: only the owner cancels", ErrNotAParty))
	}
	if req.State != RecoveryPending {
		return reject("recovery-cancel", fmt.Errorf("%w: request is %s", ErrBadTransition, req.State))
	}
	req.State = RecoveryCancelled
	return t.Set(keyRecovReq(c.RequestID), req)
}

// KeyRotationRecord is the latest announced key handover.
type KeyRotationRecord struct {
	NewPubkey   string     `json:"new_pubkey"`
	EffectiveAt bsp.Height `json:"effective_at"`
	AnnouncedAt bsp.Height `json:"announced_at"`
}

func applyKeyRotation(t *Tx, env *Envelope, k wire.KeyRotation) error {
	if k.NewPubkey == "" {
		return reject("key-rotation", fmt.Errorf("empty pubkey"))
	}
	effective := bsp.Height(k.EffectiveHeight)
	if effective < env.Height {
		effective = env.Height
	}
	return t.Set(keyRotation(env.From), KeyRotationRecord{
		NewPubkey:   k.NewPubkey,
		EffectiveAt: effective,
		AnnouncedAt: env.Height,
	})
}

// MultisigRecord is an address's published co-signer set.
type MultisigRecord struct {
	Pubkeys   []string   `json:"pubkeys"`
	Threshold uint8      `json:"threshold"`
	UpdatedAt bsp.Height `json:"updated_at"`
	Actions   uint64     `json:"actions,omitempty"`
}

func applyMultisigSetup(t *Tx, env *Envelope, s wire.MultisigSetup) error {
	n := len(s.Pubkeys)
	if n < 2 || n > wire.MaxMultisigKeys {
		return reject("multisig-setup", fmt.Errorf("%d keys outside [2,%d]", n, wire.MaxMultisigKeys))
	}
	if s.Threshold == 0 || int(s.Threshold) > n {
		return reject("multisig-setup", fmt.Errorf("threshold %d outside [1,%d]", s.Threshold, n))
	}
	return t.Set(keyMultisig(env.From), MultisigRecord{
		Pubkeys:   s.Pubkeys,
		Threshold: s.Threshold,
		UpdatedAt: env.Height,
	})
}

// applyMultisigAction checks the signature count against the sender's
// setup and counts the action. Signature verification is the wallet's
// job; the indexer only tracks that a sufficiently signed action exists.
func applyMultisigAction(t *Tx, env *Envelope, a wire.MultisigAction) error {
	var rec MultisigRecord
	ok, err := t.Get(keyMultisig(env.From), &rec)
	if err != nil {
		return err
	}
	if !ok {
		return reject("multisig-action", fmt.Errorf("%w: no multisig setup for %s", ErrUnknownID, env.From))
	}
	if len(a.Signatures) < int(rec.Threshold) {
		return reject("multisig-action", fmt.Errorf("%w: %d of %d signatures", ErrThresholdNotMet, len(a.Signatures), rec.Threshold))
	}
	seen := make(map[uint8]bool, len(a.Signatures))
	for _, sig := range a.Signatures {
		if int(sig.KeyIndex) >= len(rec.Pubkeys) {
			return reject("multisig-action", fmt.Errorf("key index %d out of range", sig.KeyIndex))
		}
		if seen[sig.KeyIndex] {
			return reject("multisig-action", fmt.Errorf("%w: key index %d signed twice", ErrDuplicate, sig.KeyIndex))
		}
		seen[sig.KeyIndex] = true
	}
	rec.Actions++
	return t.Set(keyMultisig(env.From), rec)
}
