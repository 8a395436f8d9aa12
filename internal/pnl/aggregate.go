// Package pnl rolls settled positions into wallet-level metrics and a
// data-quality confidence grade.
package pnl

import (
	"math"

	"polymarket-pnl/internal/domain"
	"polymarket-pnl/internal/settle"
)

// Confidence thresholds.
const (
	// worstCaseCostBasis prices untracked inventory at the $1.00
	// ceiling, the most conservative cost basis an untracked
	// acquisition could have had.
	worstCaseCostBasis = 1.0

	// potentialErrorPerToken is the expected-value error one untracked
	// token can introduce.
	potentialErrorPerToken = 0.5

	// absoluteErrorFloor in USD below which untracked inventory cannot
	// meaningfully distort the result.
	absoluteErrorFloor = 50.0

	highErrorRatio   = 0.25
	mediumErrorRatio = 0.50
)

// Aggregate sums per-position state into WalletMetrics. sr carries the
// settlement pass output; diagnostics are external-sell records from
// the ledger, truncated to maxDiagnostics (<=0 keeps all).
func Aggregate(
	wallet string,
	positions map[string]*domain.Position,
	sr settle.Result,
	diagnostics []domain.ExternalSellRecord,
	maxDiagnostics int,
	computedAt int64,
) *domain.WalletMetrics {
	m := &domain.WalletMetrics{
		Wallet:          wallet,
		PositionsCount:  len(positions),
		ResolvedCount:   sr.ResolvedCount,
		UnresolvedCount: sr.UnresolvedCount,
		WinCount:        sr.WinCount,
		LossCount:       sr.LossCount,
		UnrealizedPnL:   sr.UnrealizedPnL,
		ComputedAt:      computedAt,
	}

	for _, pos := range positions {
		m.RealizedPnL += pos.RealizedPnL
		m.TotalTrades += pos.TradeCount
		m.VolumeTraded += pos.VolumeUSDC
		m.ExternalSellTokens += pos.ExternalSellTokens
		m.ExternalSellUSDC += pos.ExternalSellUSDC
	}

	// Untracked inventory sold for ExternalSellUSDC; assume it was
	// acquired at the worst-case cost so the adjustment can only pull
	// the result down, never inflate it.
	m.ExternalSellAdjustment = m.ExternalSellUSDC - m.ExternalSellTokens*worstCaseCostBasis
	m.RealizedPnL += m.ExternalSellAdjustment

	m.TotalPnL = m.RealizedPnL + m.UnrealizedPnL
	m.WinRate = winRate(m.WinCount, m.LossCount)
	m.PnLConfidence = scoreConfidence(m.ExternalSellTokens, m.TotalPnL)

	if maxDiagnostics > 0 && len(diagnostics) > maxDiagnostics {
		diagnostics = diagnostics[:maxDiagnostics]
	}
	m.Diagnostics = diagnostics

	return m
}

// scoreConfidence grades how much the untracked inventory could have
// distorted the total. More external tokens never improve the grade.
func scoreConfidence(externalSellTokens, totalPnL float64) domain.Confidence {
	potentialError := externalSellTokens * potentialErrorPerToken
	if potentialError < absoluteErrorFloor {
		return domain.ConfidenceHigh
	}

	absTotal := math.Abs(totalPnL)
	if absTotal == 0 {
		return domain.ConfidenceLow
	}

	errorRatio := potentialError / absTotal
	switch {
	case errorRatio < highErrorRatio:
		return domain.ConfidenceHigh
	case errorRatio < mediumErrorRatio:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}

// winRate is wins over settled positions with a non-zero outcome.
func winRate(wins, losses int) float64 {
	total := wins + losses
	if total == 0 {
		return 0
	}
	return float64(wins) / float64(total)
}
