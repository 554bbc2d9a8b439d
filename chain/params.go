// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package chain

import "fmt"

// Params identifies a botcash network and the constants the indexer
// needs from it.
type Params struct {
	Name string `json:"name"`

	// ProtocolStart is the first height that can carry protocol memos;
	// scanning earlier blocks is wasted work.
	ProtocolStart uint32 `json:"protocol_start"`

	// ReorgHorizon is the deepest rollback the indexer keeps undo logs
	// for. A reorg deeper than this forces a rebuild.
	ReorgHorizon uint32 `json:"reorg_horizon"`

	// TargetSpacing is the block target spacing in seconds.
	TargetSpacing uint32 `json:"target_spacing"`

	// AddressPrefix is the expected human-readable prefix of sender
	// addresses on this network.
	AddressPrefix string `json:"address_prefix"`
}

var (
	MainNet = Params{
		Name:          "main",
		ProtocolStart: 419_200,
		ReorgHorizon:  100,
		TargetSpacing: 60,
		AddressPrefix: "B1",
	}

	TestNet = Params{
		Name:          "test",
		ProtocolStart: 280_000,
		ReorgHorizon:  100,
		TargetSpacing: 60,
		AddressPrefix: "BT",
	}

	// RegTest has no activation gate and a tiny horizon, for tests.
	RegTest = Params{
		Name:          "regtest",
		ProtocolStart: 0,
		ReorgHorizon:  10,
		TargetSpacing: 60,
		AddressPrefix: "BR",
	}
)

// ByName resolves a configured network name.
func ByName(name string) (Params, error) {
	switch name {
	case "", "main", "mainnet":
		return MainNet, nil
	case "test", "testnet":
		return TestNet, nil
	case "regtest":
		return RegTest, nil
	}
	return Params{}, fmt.Errorf("chain: unknown network %q", name)
}
