// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package repo

import (
	"fmt"
	"io"

	"github.com/ssbc/go-luigi"
	"github.com/ssbc/margaret"
	"github.com/ssbc/margaret/offset2"

	jsoniter "github.com/json-iterator/go"

	"github.com/botcash/go-bsp/ledger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const journalPath = "journal"

// Journal is the append-only archive of accepted envelopes, one entry
// per applied memo, in application order. It is not authoritative: a
// reorg may leave orphaned entries behind, and readers resolve liveness
// against the ledger. Sequence numbers feed the per-author feed index.
type journalLog interface {
	margaret.Log
	io.Closer
}

type Journal struct {
	log journalLog
}

// OpenJournal opens (or creates) the journal under the repo.
func OpenJournal(r Interface) (*Journal, error) {
	pth := r.GetPath(journalPath)
	if err := mkdirFor(pth); err != nil {
		return nil, fmt.Errorf("repo: make journal dir: %w", err)
	}
	log, err := offset2.Open(pth, envelopeCodec{})
	if err != nil {
		return nil, fmt.Errorf("repo: open journal at %s: %w", pth, err)
	}
	return &Journal{log: log}, nil
}

// Append stores one accepted envelope and returns its sequence.
func (j *Journal) Append(env *ledger.Envelope) (int64, error) {
	seq, err := j.log.Append(env)
	if err != nil {
		return margaret.SeqEmpty, fmt.Errorf("repo: journal append: %w", err)
	}
	return seq, nil
}

// Get loads the envelope at seq.
func (j *Journal) Get(seq int64) (*ledger.Envelope, error) {
	v, err := j.log.Get(seq)
	if err != nil {
		return nil, fmt.Errorf("repo: journal get %d: %w", seq, err)
	}
	env, ok := v.(*ledger.Envelope)
	if !ok {
		return nil, fmt.Errorf("repo: journal holds %T at %d", v, seq)
	}
	return env, nil
}

// Seq is the sequence of the latest entry.
func (j *Journal) Seq() int64 { return j.log.Seq() }

// Query exposes the underlying margaret query interface for streaming
// readers.
func (j *Journal) Query(specs ...margaret.QuerySpec) (luigi.Source, error) {
	return j.log.Query(specs...)
}

func (j *Journal) Close() error { return j.log.Close() }

// envelopeCodec frames ledger envelopes for the offset2 log.
type envelopeCodec struct{}

func (envelopeCodec) Marshal(v interface{}) ([]byte, error) {
	env, ok := v.(*ledger.Envelope)
	if !ok {
		return nil, fmt.Errorf("repo: journal codec: not an envelope: %T", v)
	}
	return json.Marshal(env)
}

func (envelopeCodec) Unmarshal(raw []byte) (interface{}, error) {
	var env ledger.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	// Body is not serialized, it re-parses from the message frame
	body, err := env.Msg.Body()
	if err != nil {
		return nil, fmt.Errorf("repo: journal codec: reparse body: %w", err)
	}
	env.Body = body
	return &env, nil
}

func (c envelopeCodec) NewEncoder(w io.Writer) margaret.Encoder { return envEncoder{w: w} }
func (c envelopeCodec) NewDecoder(r io.Reader) margaret.Decoder { return envDecoder{r: r} }

type envEncoder struct{ w io.Writer }

func (e envEncoder) Encode(v interface{}) error {
	raw, err := envelopeCodec{}.Marshal(v)
	if err != nil {
		return err
	}
	_, err = e.w.Write(raw)
	return err
}

type envDecoder struct{ r io.Reader }

func (d envDecoder) Decode() (interface{}, error) {
	raw, err := io.ReadAll(d.r)
	if err != nil {
		return nil, err
	}
	return envelopeCodec{}.Unmarshal(raw)
}
