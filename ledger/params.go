// SPDX-FileCopyrightText: 2026 The Botcash Authors
//
// SPDX-License-Identifier: MIT

package ledger

// Protocol parameters. Block counts assume the 60 second target spacing,
// so 1440 blocks is roughly one day.
const (
	// EpochBlocks is the length of one attention market epoch.
	EpochBlocks = 1_440

	// RedistributionPercent of each epoch's boost pool is redistributed
	// to the payers pro rata by what each paid in; the rest is burned.
	RedistributionPercent = 80

	// CreditTTLBlocks is how long an epoch's credit grants stay spendable
	// after the epoch closes.
	CreditTTLBlocks = 10_080

	// TipWeightTenths is the attention unit weight of a tipped zatoshi,
	// in tenths. Paid upvotes weigh 10 (1.0), tips weigh 20 (2.0).
	TipWeightTenths = 20

	// MinBoostZat is the smallest accepted attention boost payment.
	MinBoostZat = 100_000
)

// Payment channel parameters.
const (
	ChannelMinDepositZat  = 100_000
	ChannelMinParties     = 2
	ChannelMaxParties     = 10
	ChannelDefaultTimeout = 1_440
)

// Governance parameters. The phases are consecutive: a proposal sits in
// discussion for GovDiscussionBlocks after submission, then collects
// votes for GovVotingBlocks, and a passed proposal becomes executable
// GovExecutionDelay blocks after its voting window closes.
const (
	GovDiscussionBlocks = 10_080
	GovVotingBlocks     = 20_160
	GovExecutionDelay   = 43_200

	GovDepositZat      = 1_000_000_000
	GovQuorumPercent   = 20
	GovApprovalPercent = 66
)

// Account recovery parameters.
const (
	RecoveryTimelockDefault = 10_080
	RecoveryTimelockMin     = 1_440
	RecoveryTimelockMax     = 100_800

	MinGuardians = 1
	MaxGuardians = 15
)

// Moderation parameters.
const (
	ReportMinStakeZat  = 1_000_000
	ReportExpiryBlocks = 43_200
)

// Trust propagation parameters used by the query layer.
const (
	TrustMaxDepth = 3
)

// TrustDecay attenuates transitive trust per hop.
const TrustDecay = 0.7

// DecayHalfLifeBlocks is the half life of an attention unit score when
// ranking content.
const DecayHalfLifeBlocks = 1_440

// BoostMultiplierTenths is the ranking multiplier for actively boosted
// content, in tenths (15 = 1.5x).
const BoostMultiplierTenths = 15
