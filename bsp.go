// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

// Package bsp holds the core types of the Botcash Social Protocol (BSP)
// indexer: chain-facing identifiers and the shared vocabulary the wire,
// ledger and ingest packages build on.
//
// BSP is an application-layer protocol carried inside the 512-byte
// encrypted memo field of shielded transactions. The chain treats memos as
// opaque ciphertext; everything here is derived state maintained by an
// off-chain indexer.
package bsp

import "fmt"

// Address is a shielded address acting as a durable actor identity.
// There are no usernames; every relationship is an edge between addresses.
type Address string

// Valid reports whether a can act as an identity. Addresses are
// bech32-style strings, so anything outside [0-9A-Za-z] never appears in
// one; the restriction also keeps addresses unambiguous as segments of
// ':'-joined index keys.
func (a Address) Valid() bool {
	if len(a) == 0 {
		return false
	}
	for i := 0; i < len(a); i++ {
		c := a[i]
		switch {
		case '0' <= c && c <= '9':
		case 'a' <= c && c <= 'z':
		case 'A' <= c && c <= 'Z':
		default:
			return false
		}
	}
	return true
}

// Height is a block height. The protocol only ever compares heights and
// adds block-count offsets to them.
type Height uint32

// TxID is the hex-encoded transaction id carrying a memo.
type TxID string

// OutputRef identifies one shielded output within a transaction.
type OutputRef struct {
	Tx    TxID
	Index uint16
}

func (o OutputRef) String() string {
	return fmt.Sprintf("%s:%d", o.Tx, o.Index)
}

// MemoSize is the fixed size of the shielded memo field.
const MemoSize = 512
