// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

// Package ledger is the derived-state store of the indexer. It turns a
// deterministic stream of decoded memo envelopes into keyed state under
// badger, one transaction per block, with a per-block undo log so any
// suffix of blocks can be reversed on reorg.
package ledger

import (
	"fmt"

	"github.com/dgraph-io/badger/v3"

	"github.com/botcash/go-bsp"
	"github.com/botcash/go-bsp/wire"
)

// Envelope is one memo output in block context, already decoded. From is
// the sender the chain source attributes the spend to; Value is the
// zatoshi amount on the memo's output.
type Envelope struct {
	Height      bsp.Height  `json:"height"`
	BlockHash   string      `json:"block"`
	TxID        bsp.TxID    `json:"txid"`
	OutputIndex uint16      `json:"vout"`
	From        bsp.Address `json:"from"`
	Value       uint64      `json:"value"`
	Msg         wire.Message `json:"msg"`

	// Body is derived from Msg; the journal re-parses it on read.
	Body wire.Body `json:"-"`
}

// Ref is the envelope's unique output reference.
func (e *Envelope) Ref() bsp.OutputRef {
	return bsp.OutputRef{Tx: e.TxID, Index: e.OutputIndex}
}

// Checkpoint is the last block fully applied to the store.
type Checkpoint struct {
	Height bsp.Height `json:"height"`
	Hash   string     `json:"hash"`
}

// Ledger owns the badger keyspace.
type Ledger struct {
	db *badger.DB
}

func New(db *badger.DB) *Ledger { return &Ledger{db: db} }

// Checkpoint returns the applied tip. The bool is false on a fresh store.
func (l *Ledger) Checkpoint() (Checkpoint, bool, error) {
	var cp Checkpoint
	found := false
	err := l.db.View(func(btx *badger.Txn) error {
		item, err := btx.Get([]byte(metaCheckpoint))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(raw []byte) error {
			return json.Unmarshal(raw, &cp)
		})
	})
	if err != nil {
		return Checkpoint{}, false, fmt.Errorf("ledger: read checkpoint: %w", err)
	}
	return cp, found, nil
}

// View runs fn against a read-only snapshot.
func (l *Ledger) View(fn func(*Tx) error) error {
	return l.db.View(func(btx *badger.Txn) error {
		return fn(newTx(btx, false))
	})
}

// BlockTx applies one block. All mutations, the undo log and the
// checkpoint move commit in a single badger transaction, so readers see
// block boundaries only.
type BlockTx struct {
	tx     *Tx
	height bsp.Height
	hash   string

	// from is the first height this transaction covers. Live blocks
	// cover exactly one height; replayed blocks may span the empty
	// heights since the checkpoint.
	from bsp.Height
}

// BeginBlock opens the block at h. It must be the checkpoint's direct
// successor; the pipeline handles reorgs before calling.
func (l *Ledger) BeginBlock(h bsp.Height, hash string) (*BlockTx, error) {
	cp, found, err := l.Checkpoint()
	if err != nil {
		return nil, err
	}
	if found && h != cp.Height+1 {
		return nil, bsp.ReorgError{Height: h, Reason: fmt.Sprintf("block does not extend checkpoint %d", cp.Height)}
	}

	b := &BlockTx{
		tx:     newTx(l.db.NewTransaction(true), true),
		height: h,
		hash:   hash,
		from:   h,
	}
	if err := b.tx.Set(keyBlock(h), hash); err != nil {
		b.Discard()
		return nil, err
	}
	return b, nil
}

// Apply processes one envelope. An apply function validates everything
// before its first mutation: a rejected envelope leaves no trace in the
// block. Rejections come back as RejectError; anything else is a storage
// failure and the block must be discarded.
func (b *BlockTx) Apply(env *Envelope) error {
	if !env.From.Valid() {
		return reject("apply", fmt.Errorf("invalid sender address %q", env.From))
	}
	if err := b.applyBody(env); err != nil {
		return err
	}
	if env.Value == 0 {
		return nil
	}
	// the value an accepted envelope moved is the sender's balance
	// signal, one of the two voting power inputs
	_, err := b.tx.AddU64(keyBalance(env.From), env.Value)
	return err
}

func (b *BlockTx) applyBody(env *Envelope) error {
	t := b.tx
	switch body := env.Body.(type) {
	case wire.Profile:
		return applyProfile(t, env, body)
	case wire.Post:
		return applyPost(t, env, body)
	case wire.Comment:
		return applyComment(t, env, body)
	case wire.Upvote:
		return applyUpvote(t, env, body)
	case wire.Follow:
		return applyFollow(t, env, body)
	case wire.Unfollow:
		return applyUnfollow(t, env, body)
	case wire.DM:
		return applyDM(t, env, body)
	case wire.GroupDM:
		return applyGroupDM(t, env, body)
	case wire.Tip:
		return applyTip(t, env, body)
	case wire.Bounty:
		return applyBounty(t, env, body)
	case wire.Media:
		return applyMedia(t, env, body)
	case wire.Poll:
		return applyPoll(t, env, body)
	case wire.PollVote:
		return applyPollVote(t, env, body)

	case wire.AttentionBoost:
		return applyBoost(t, env, body)
	case wire.CreditTip:
		return applyCreditTip(t, env, body)
	case wire.CreditClaim:
		return applyCreditClaim(t, env, body)

	case wire.ChannelOpen:
		return applyChannelOpen(t, env, body)
	case wire.ChannelClose:
		return applyChannelClose(t, env, body)
	case wire.ChannelSettle:
		return applyChannelSettle(t, env, body)
	case wire.ChannelDispute:
		return applyChannelDispute(t, env, body)

	case wire.Propose:
		return applyPropose(t, env, body)
	case wire.Vote:
		return applyVote(t, env, body)

	case wire.RecoveryConfig:
		return applyRecoveryConfig(t, env, body)
	case wire.RecoveryRequest:
		return applyRecoveryRequest(t, env, body)
	case wire.RecoveryApprove:
		return applyRecoveryApprove(t, env, body)
	case wire.RecoveryCancel:
		return applyRecoveryCancel(t, env, body)
	case wire.KeyRotation:
		return applyKeyRotation(t, env, body)
	case wire.MultisigSetup:
		return applyMultisigSetup(t, env, body)
	case wire.MultisigAction:
		return applyMultisigAction(t, env, body)

	case wire.BridgeLink:
		return applyBridgeLink(t, env, body)
	case wire.BridgeUnlink:
		return applyBridgeUnlink(t, env, body)
	case wire.BridgePost:
		return applyBridgePost(t, env, body)
	case wire.BridgeVerify:
		return applyBridgeVerify(t, env, body)

	case wire.Trust:
		return applyTrust(t, env, body)
	case wire.Report:
		return applyReport(t, env, body)

	case nil:
		return reject("apply", fmt.Errorf("envelope without body"))
	default:
		return reject("apply", fmt.Errorf("no state transition for %s", env.Msg.Type))
	}
}

// EndBlock runs the block's scheduled work: epoch closure when an epoch
// ends within the covered range, and proposal tallies whose voting
// window ends in it.
func (b *BlockTx) EndBlock() error {
	first := (uint64(b.from) + EpochBlocks - 1) / EpochBlocks
	if first == 0 {
		first = 1
	}
	for k := first; k*EpochBlocks <= uint64(b.height); k++ {
		if err := closeEpoch(b.tx, k-1, bsp.Height(k*EpochBlocks)); err != nil {
			return err
		}
	}
	if b.from == b.height {
		return tallyDueProposals(b.tx, b.height)
	}
	return tallyDueThrough(b.tx, b.height)
}

// Commit seals the undo log, moves the checkpoint and commits.
// Replayed blocks record no undo, their seal is skipped.
func (b *BlockTx) Commit() error {
	if b.tx.record {
		if err := b.tx.sealUndo(b.height); err != nil {
			b.Discard()
			return err
		}
	}
	cp, err := json.Marshal(Checkpoint{Height: b.height, Hash: b.hash})
	if err != nil {
		b.Discard()
		return err
	}
	// direct write: the checkpoint move is rewritten, not undone, on reorg
	if err := b.tx.btx.Set([]byte(metaCheckpoint), cp); err != nil {
		b.Discard()
		return fmt.Errorf("ledger: move checkpoint to %d: %w", b.height, err)
	}
	if err := b.tx.btx.Commit(); err != nil {
		return fmt.Errorf("ledger: commit block %d: %w", b.height, err)
	}
	return nil
}

// Discard drops the open block without committing.
func (b *BlockTx) Discard() { b.tx.btx.Discard() }

// Tx exposes the block's transaction for auxiliary indexes maintained
// by the pipeline; writes through it share the block's undo log.
func (b *BlockTx) Tx() *Tx { return b.tx }

// Height is the block being applied.
func (b *BlockTx) Height() bsp.Height { return b.height }

// Rollback reverses the checkpoint block and moves the checkpoint down.
// Called once per orphaned block, tip first.
func (l *Ledger) Rollback() (Checkpoint, error) {
	cp, found, err := l.Checkpoint()
	if err != nil {
		return Checkpoint{}, err
	}
	if !found {
		return Checkpoint{}, bsp.ReorgError{Height: 0, Reason: "rollback on empty store"}
	}

	btx := l.db.NewTransaction(true)
	defer btx.Discard()

	if err := rollbackHeight(btx, cp.Height); err != nil {
		return Checkpoint{}, err
	}

	prev := Checkpoint{}
	if cp.Height > 0 {
		prev.Height = cp.Height - 1
		item, err := btx.Get(keyBlock(prev.Height))
		if err == nil {
			var h string
			verr := item.Value(func(raw []byte) error { return json.Unmarshal(raw, &h) })
			if verr != nil {
				return Checkpoint{}, fmt.Errorf("ledger: read block hash %d: %w", prev.Height, verr)
			}
			prev.Hash = h
		} else if err != badger.ErrKeyNotFound {
			return Checkpoint{}, fmt.Errorf("ledger: read block hash %d: %w", prev.Height, err)
		}
	}

	raw, err := json.Marshal(prev)
	if err != nil {
		return Checkpoint{}, err
	}
	if err := btx.Set([]byte(metaCheckpoint), raw); err != nil {
		return Checkpoint{}, fmt.Errorf("ledger: move checkpoint to %d: %w", prev.Height, err)
	}
	if err := btx.Commit(); err != nil {
		return Checkpoint{}, fmt.Errorf("ledger: commit rollback of %d: %w", cp.Height, err)
	}
	return prev, nil
}

// PruneUndo drops undo logs and block hashes at or below h. Blocks deeper
// than the chain's reorg horizon can no longer be reversed.
func (l *Ledger) PruneUndo(h bsp.Height) error {
	return l.db.Update(func(btx *badger.Txn) error {
		for _, prefix := range [][]byte{[]byte(kpUndo), []byte(kpBlock)} {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			opts.PrefetchValues = false
			it := btx.NewIterator(opts)
			var doomed [][]byte
			for it.Rewind(); it.Valid(); it.Next() {
				k := it.Item().KeyCopy(nil)
				if heightFromKey(k, len(prefix)) <= h {
					doomed = append(doomed, k)
				}
			}
			it.Close()
			for _, k := range doomed {
				if err := btx.Delete(k); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func heightFromKey(k []byte, prefixLen int) bsp.Height {
	if len(k) < prefixLen+8 {
		return 0
	}
	var h uint64
	for _, b := range k[prefixLen : prefixLen+8] {
		h = h<<8 | uint64(b)
	}
	return bsp.Height(h)
}
