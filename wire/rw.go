// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/botcash/go-bsp"
)

// Payload read/write helpers. Integers inside payloads are little-endian,
// addresses and other variable fields carry a one- or two-byte length
// prefix. The reader tracks a sticky error so payload parsers can chain
// reads and check once at the end.

func putU16(v uint16, data *[]byte) {
	*data = append(*data, byte(v), byte(v>>8))
}

func putU32(v uint32, data *[]byte) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	*data = append(*data, b[:]...)
}

func putU64(v uint64, data *[]byte) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	*data = append(*data, b[:]...)
}

func putBytes8(b []byte, data *[]byte) {
	if len(b) > 0xFF {
		b = b[:0xFF]
	}
	*data = append(*data, byte(len(b)))
	*data = append(*data, b...)
}

func putBytes16(b []byte, data *[]byte) {
	if len(b) > 0xFFFF {
		b = b[:0xFFFF]
	}
	putU16(uint16(len(b)), data)
	*data = append(*data, b...)
}

func putAddr(a bsp.Address, data *[]byte) {
	putBytes8([]byte(a), data)
}

type payloadReader struct {
	buf []byte
	off int
	err error
}

func newPayloadReader(buf []byte) *payloadReader {
	return &payloadReader{buf: buf}
}

func (r *payloadReader) fail(need int) {
	if r.err == nil {
		r.err = TruncatedError{Need: need, Have: len(r.buf) - r.off}
	}
}

func (r *payloadReader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.off+n > len(r.buf) {
		r.fail(n)
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *payloadReader) u8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *payloadReader) u16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *payloadReader) u32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *payloadReader) u64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *payloadReader) bytes8() []byte {
	n := int(r.u8())
	return r.take(n)
}

func (r *payloadReader) bytes16() []byte {
	n := int(r.u16())
	return r.take(n)
}

func (r *payloadReader) addr() bsp.Address {
	a := bsp.Address(r.bytes8())
	if r.err == nil && !a.Valid() {
		r.err = fmt.Errorf("invalid address %q", a)
	}
	return a
}

func (r *payloadReader) string8() string {
	return string(r.bytes8())
}

func (r *payloadReader) string16() string {
	return string(r.bytes16())
}

// remaining returns everything left in the buffer.
func (r *payloadReader) remaining() []byte {
	if r.err != nil {
		return nil
	}
	b := r.buf[r.off:]
	r.off = len(r.buf)
	return b
}

// done checks that the whole payload was consumed.
func (r *payloadReader) done() error {
	if r.err != nil {
		return r.err
	}
	if r.off != len(r.buf) {
		return TrailingBytesError{Extra: len(r.buf) - r.off}
	}
	return nil
}
