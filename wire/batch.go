// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Batch container (0x80). The batch payload is
//
//	[count:u8][frame]xcount
//
// where each frame is a complete non-batch message frame. Decoding is
// atomic: if any inner frame fails, the whole batch fails and no prefix of
// actions is returned.

// Batch errors.

var (
	// ErrBatchEmpty is returned for a batch with zero actions.
	ErrBatchEmpty = errors.New("wire: batch contains no actions")

	// ErrBatchTooMany is returned when a batch exceeds MaxBatchActions.
	ErrBatchTooMany = errors.New("wire: too many actions in batch")

	// ErrBatchNested is returned when an action is itself a batch.
	ErrBatchNested = errors.New("wire: nested batch not allowed")

	// ErrNotBatch is returned when DecodeBatch is called on a non-batch
	// frame.
	ErrNotBatch = errors.New("wire: not a batch message")
)

// BatchActionError wraps the decode failure of one inner action.
type BatchActionError struct {
	Index int
	Err   error
}

func (e BatchActionError) Error() string {
	return fmt.Sprintf("wire: batch action %d: %s", e.Index, e.Err)
}

func (e BatchActionError) Unwrap() error { return e.Err }

// IsBatchError reports whether err belongs to the batch error taxonomy.
func IsBatchError(err error) bool {
	if errors.Is(err, ErrBatchEmpty) || errors.Is(err, ErrBatchTooMany) ||
		errors.Is(err, ErrBatchNested) || errors.Is(err, ErrNotBatch) {
		return true
	}
	var ae BatchActionError
	return errors.As(err, &ae)
}

// EncodeBatch frames up to MaxBatchActions messages into one batch memo.
func EncodeBatch(actions []Message) ([]byte, error) {
	if len(actions) == 0 {
		return nil, ErrBatchEmpty
	}
	if len(actions) > MaxBatchActions {
		return nil, ErrBatchTooMany
	}

	payload := []byte{byte(len(actions))}
	for i, a := range actions {
		if a.Type == TypeBatch {
			return nil, fmt.Errorf("%w (action %d)", ErrBatchNested, i)
		}
		frame, err := a.Encode()
		if err != nil {
			return nil, BatchActionError{Index: i, Err: err}
		}
		payload = append(payload, frame...)
	}

	batch := Message{Type: TypeBatch, Version: ProtocolVersion, Payload: payload}
	return batch.Encode()
}

// DecodeBatch parses the actions of a decoded batch frame. Callers must
// not apply a partial prefix: on any error the returned slice is nil.
func DecodeBatch(m Message) ([]Message, error) {
	if m.Type != TypeBatch {
		return nil, ErrNotBatch
	}
	if len(m.Payload) < 1 {
		return nil, ErrBatchEmpty
	}

	count := int(m.Payload[0])
	if count == 0 {
		return nil, ErrBatchEmpty
	}
	if count > MaxBatchActions {
		return nil, ErrBatchTooMany
	}

	actions := make([]Message, 0, count)
	rest := m.Payload[1:]
	for i := 0; i < count; i++ {
		if len(rest) < HeaderSize {
			return nil, BatchActionError{Index: i, Err: ErrTooShort}
		}
		if MessageType(rest[0]) == TypeBatch {
			return nil, fmt.Errorf("%w (action %d)", ErrBatchNested, i)
		}
		// legacy frames predate batching and have no length field to walk by
		if MessageType(rest[0]).Legacy() {
			return nil, BatchActionError{Index: i, Err: ReservedTypeError{Type: MessageType(rest[0])}}
		}

		declared := int(binary.BigEndian.Uint16(rest[2:4]))
		frameLen := HeaderSize + declared
		if declared > MaxPayload || frameLen > len(rest) {
			return nil, BatchActionError{Index: i, Err: TruncatedError{Need: frameLen, Have: len(rest)}}
		}

		action, err := Decode(rest[:frameLen])
		if err != nil {
			return nil, BatchActionError{Index: i, Err: err}
		}
		actions = append(actions, action)
		rest = rest[frameLen:]
	}

	if len(rest) != 0 {
		return nil, BatchActionError{Index: count, Err: TrailingBytesError{Extra: len(rest)}}
	}
	return actions, nil
}
