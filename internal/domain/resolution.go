package domain

// NeutralMark is the valuation applied to inventory in unresolved
// markets. Holding tokens of unknown probability earns nothing.
const NeutralMark = 0.5

// Resolution describes the settlement state of a binary condition.
// PayoutFractions sum to 1 when resolved; ties split proportionally.
type Resolution struct {
	ConditionID     string
	PayoutFractions [2]float64
	IsResolved      bool
}

// PayoutFor returns the payout fraction for an outcome index.
// Unresolved conditions value every outcome at the neutral mark.
func (r Resolution) PayoutFor(outcomeIndex int) float64 {
	if !r.IsResolved {
		return NeutralMark
	}
	if outcomeIndex < 0 || outcomeIndex >= len(r.PayoutFractions) {
		return 0
	}
	return r.PayoutFractions[outcomeIndex]
}
