// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package wire

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/botcash/go-bsp"
)

// Message is one decoded memo frame. Payload is the raw payload slice;
// Body() parses it into the typed struct for the message type.
type Message struct {
	Type    MessageType
	Version uint8
	Payload []byte
}

// Codec errors. All of them are per-message: the pipeline records them and
// skips the memo, they never abort a block.

var (
	// ErrEmpty is returned for an all-zero or zero-length memo.
	ErrEmpty = errors.New("wire: empty memo")

	// ErrTooShort is returned when the buffer can not hold a frame header.
	ErrTooShort = errors.New("wire: memo shorter than frame header")

	// ErrOversize is returned at encode time when the frame would exceed
	// the memo size.
	ErrOversize = errors.New("wire: message does not fit a memo")
)

// LengthMismatchError is returned when the declared payload length does
// not exactly match the bytes remaining after the header.
type LengthMismatchError struct {
	Declared  int
	Remaining int
}

func (e LengthMismatchError) Error() string {
	return fmt.Sprintf("wire: declared payload length %d but %d bytes remain", e.Declared, e.Remaining)
}

// ReservedTypeError is returned for an undefined byte inside the reserved
// core range (0x00-0x0F).
type ReservedTypeError struct{ Type MessageType }

func (e ReservedTypeError) Error() string {
	return fmt.Sprintf("wire: reserved core type 0x%02X", uint8(e.Type))
}

// UnknownTypeError is returned for a byte outside every defined range.
type UnknownTypeError struct{ Type MessageType }

func (e UnknownTypeError) Error() string {
	return fmt.Sprintf("wire: unknown message type 0x%02X", uint8(e.Type))
}

// UnsupportedVersionError is returned when a frame claims a protocol
// version newer than this codec.
type UnsupportedVersionError struct{ Found, Max uint8 }

func (e UnsupportedVersionError) Error() string {
	return fmt.Sprintf("wire: unsupported version %d (max %d)", e.Found, e.Max)
}

// TruncatedError is returned when a payload ends before a declared field.
type TruncatedError struct{ Need, Have int }

func (e TruncatedError) Error() string {
	return fmt.Sprintf("wire: truncated payload: need %d bytes, have %d", e.Need, e.Have)
}

// TrailingBytesError is returned when a payload has bytes left over after
// all declared fields.
type TrailingBytesError struct{ Extra int }

func (e TrailingBytesError) Error() string {
	return fmt.Sprintf("wire: %d trailing bytes after payload fields", e.Extra)
}

// MalformedPayloadError wraps a field-level failure with the message type.
type MalformedPayloadError struct {
	Type   MessageType
	Reason string
	Err    error
}

func (e MalformedPayloadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("wire: malformed %s payload: %s: %s", e.Type, e.Reason, e.Err)
	}
	return fmt.Sprintf("wire: malformed %s payload: %s", e.Type, e.Reason)
}

func (e MalformedPayloadError) Unwrap() error { return e.Err }

// IsCodecError reports whether err belongs to the codec error taxonomy.
func IsCodecError(err error) bool {
	if errors.Is(err, ErrEmpty) || errors.Is(err, ErrTooShort) || errors.Is(err, ErrOversize) {
		return true
	}
	var (
		lm LengthMismatchError
		rt ReservedTypeError
		ut UnknownTypeError
		uv UnsupportedVersionError
		tr TruncatedError
		tb TrailingBytesError
		mp MalformedPayloadError
	)
	return errors.As(err, &lm) || errors.As(err, &rt) || errors.As(err, &ut) ||
		errors.As(err, &uv) || errors.As(err, &tr) || errors.As(err, &tb) ||
		errors.As(err, &mp)
}

// Encode frames m for a memo. Legacy types and undefined types are
// rejected; the result is always the 4-byte header plus the payload.
func (m Message) Encode() ([]byte, error) {
	if !m.Type.Defined() {
		return nil, UnknownTypeError{Type: m.Type}
	}
	if m.Type.Legacy() {
		return nil, fmt.Errorf("wire: refusing to encode legacy type %s", m.Type)
	}
	if len(m.Payload) > MaxPayload {
		return nil, ErrOversize
	}
	out := make([]byte, 0, HeaderSize+len(m.Payload))
	out = append(out, byte(m.Type), m.Version)
	var l [2]byte
	binary.BigEndian.PutUint16(l[:], uint16(len(m.Payload)))
	out = append(out, l[:]...)
	out = append(out, m.Payload...)
	return out, nil
}

// Decode parses one memo into a Message. Trailing zero padding (memos are
// fixed 512 bytes on the wire) is stripped before framing rules apply.
func Decode(memo []byte) (Message, error) {
	content := trimPadding(memo)
	if len(content) == 0 {
		return Message{}, ErrEmpty
	}

	t := MessageType(content[0])

	// Legacy frames predate the version and length fields.
	if t.Legacy() {
		return Message{Type: t, Version: 0, Payload: content[1:]}, nil
	}

	if t.ReservedCore() {
		return Message{}, ReservedTypeError{Type: t}
	}
	if !t.Defined() {
		return Message{}, UnknownTypeError{Type: t}
	}
	if len(content) < HeaderSize {
		return Message{}, ErrTooShort
	}

	version := content[1]
	if version > ProtocolVersion {
		return Message{}, UnsupportedVersionError{Found: version, Max: ProtocolVersion}
	}

	declared := int(binary.BigEndian.Uint16(content[2:4]))
	if declared > MaxPayload {
		return Message{}, LengthMismatchError{Declared: declared, Remaining: len(content) - HeaderSize}
	}
	if declared != len(content)-HeaderSize {
		return Message{}, LengthMismatchError{Declared: declared, Remaining: len(content) - HeaderSize}
	}

	return Message{Type: t, Version: version, Payload: content[HeaderSize:]}, nil
}

// trimPadding drops trailing zero bytes. A memo is a fixed-size field; an
// encoder writes the frame and leaves the rest zeroed.
//
// A frame whose payload legitimately ends in zero bytes survives this
// because the declared length is checked against the trimmed content; only
// padding beyond the declared length is dropped.
func trimPadding(memo []byte) []byte {
	end := len(memo)
	if end > bsp.MemoSize {
		end = bsp.MemoSize
	}
	if allZero(memo[:end]) {
		return nil
	}
	// keep bytes covered by the declared frame, if one parses
	if end >= HeaderSize {
		declared := int(binary.BigEndian.Uint16(memo[2:4]))
		if frame := HeaderSize + declared; declared <= MaxPayload && frame <= end {
			if allZero(memo[frame:end]) {
				return memo[:frame]
			}
		}
	}
	for end > 0 && memo[end-1] == 0 {
		end--
	}
	return memo[:end]
}

func allZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
