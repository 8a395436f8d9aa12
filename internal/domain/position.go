package domain

// Position tracks running inventory and weighted-average cost for one
// (wallet, token) pair during a single computation. Created lazily on
// first event, discarded when the computation returns.
type Position struct {
	Wallet  string
	TokenID string

	Amount   float64 // current inventory, never negative
	AvgPrice float64 // weighted-average cost of held inventory

	RealizedPnL float64 // cumulative, from capped disposals
	TradeCount  int
	VolumeUSDC  float64 // notional traded through this position

	// Disposals beyond tracked inventory. These never drive Amount
	// negative; they are surfaced for confidence scoring instead.
	ExternalSellTokens float64
	ExternalSellUSDC   float64
}

// HasInventory reports whether the position holds more than dust.
func (p *Position) HasInventory(dust float64) bool {
	return p.Amount > dust
}

// PositionSummary is the per-position view returned for debugging and
// verification against upstream ground truth.
type PositionSummary struct {
	Wallet       string
	ConditionID  string
	OutcomeIndex int
	TokenID      string

	Amount      float64
	AvgPrice    float64
	RealizedPnL float64
	TradeCount  int

	Resolved       bool
	PayoutFraction float64 // valid only when Resolved
	UnrealizedPnL  float64 // neutral-mark valuation when unresolved
}
