// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package ledger

import (
	"errors"
	"fmt"
)

// State errors. All of them reject a single envelope; the pipeline records
// the rejection and moves on. Only storage failures abort a block.

var (
	// ErrUnknownID is returned when an envelope references state that does
	// not exist (channel, proposal, recovery request, poll).
	ErrUnknownID = errors.New("ledger: unknown id")

	// ErrDuplicate is returned when an envelope re-creates state that must
	// be unique (second upvote, second vote, taken bridge identity).
	ErrDuplicate = errors.New("ledger: duplicate")

	// ErrBadTransition is returned when an envelope is valid in isolation
	// but not against the current state (settle on an open channel,
	// dispute on a settled one).
	ErrBadTransition = errors.New("ledger: invalid state transition")

	// ErrThresholdNotMet is returned when an attached value or count is
	// below a protocol minimum (boost, channel deposit, proposal deposit,
	// report stake).
	ErrThresholdNotMet = errors.New("ledger: below protocol threshold")

	// ErrQuorumNotMet marks a proposal whose voting window closed without
	// reaching quorum.
	ErrQuorumNotMet = errors.New("ledger: quorum not met")

	// ErrInsufficientCredit is returned when a credit spend exceeds the
	// sender's unexpired grant balance.
	ErrInsufficientCredit = errors.New("ledger: insufficient attention credit")

	// ErrTimeoutNotElapsed is returned for a channel settle before the
	// dispute window has passed.
	ErrTimeoutNotElapsed = errors.New("ledger: timeout not elapsed")

	// ErrNotAParty is returned when the sender has no standing for the
	// operation (not a channel party, not a guardian, not the owner).
	ErrNotAParty = errors.New("ledger: sender is not a party")

	// ErrWindowClosed is returned for an envelope that arrives outside its
	// validity window (late vote, late poll vote, expired bounty).
	ErrWindowClosed = errors.New("ledger: window closed")
)

// RejectError carries the rejected envelope's position for logging.
type RejectError struct {
	Op  string
	Err error
}

func (e RejectError) Error() string { return fmt.Sprintf("ledger: %s: %s", e.Op, e.Err) }

func (e RejectError) Unwrap() error { return e.Err }

func reject(op string, err error) error { return RejectError{Op: op, Err: err} }

// IsReject reports whether err is an envelope rejection rather than a
// storage failure.
func IsReject(err error) bool {
	var re RejectError
	return errors.As(err, &re)
}
