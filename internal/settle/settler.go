// Package settle applies end-of-life value to positions still open
// after ledger processing.
package settle

import (
	"polymarket-pnl/internal/domain"
)

// DefaultDustThreshold is the inventory below which a position is
// ignored at settlement. Sub-dust remainders are rounding artifacts of
// fractional fills, not holdings.
const DefaultDustThreshold = 0.01

// Result summarizes one settlement pass.
type Result struct {
	ResolvedCount   int
	UnresolvedCount int
	WinCount        int
	LossCount       int
	UnrealizedPnL   float64
}

// Settler values open inventory at computation time.
type Settler struct {
	dust float64
}

// New creates a Settler. A non-positive dust threshold falls back to
// the default.
func New(dust float64) *Settler {
	if dust <= 0 {
		dust = DefaultDustThreshold
	}
	return &Settler{dust: dust}
}

// Settle walks every position holding more than dust:
//
//   - condition resolved: realize amount*(payout-avgPrice), zero the
//     inventory, classify win/loss by the position's final realized PnL.
//   - unresolved with known metadata: unrealized amount*(0.5-avgPrice)
//     at the neutral mark. Holding tokens of unknown probability is
//     deliberately not rewarded.
//   - unresolved with unknown metadata: zero contribution to either
//     side. Untraceable inventory must not move the result.
//
// Resolved positions are mutated in place; the unrealized total is
// returned in the Result.
func (s *Settler) Settle(
	positions map[string]*domain.Position,
	meta map[string]domain.TokenMeta,
	resolutions map[string]domain.Resolution,
) Result {
	var r Result

	for tokenID, pos := range positions {
		if !pos.HasInventory(s.dust) {
			continue
		}

		m, hasMeta := meta[tokenID]
		res, hasRes := resolutions[tokenID]

		if hasMeta && hasRes && res.IsResolved {
			payout := res.PayoutFractions[m.OutcomeIndex]
			pos.RealizedPnL += pos.Amount * (payout - pos.AvgPrice)
			pos.Amount = 0
			r.ResolvedCount++
			if pos.RealizedPnL > 0 {
				r.WinCount++
			} else if pos.RealizedPnL < 0 {
				r.LossCount++
			}
			continue
		}

		if hasMeta || hasRes {
			r.UnrealizedPnL += pos.Amount * (domain.NeutralMark - pos.AvgPrice)
			r.UnresolvedCount++
			continue
		}

		// Unknown token metadata: counts as a position, contributes
		// nothing.
		r.UnresolvedCount++
	}

	return r
}
