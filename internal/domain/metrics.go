package domain

// Confidence grades how much untracked inventory could distort the
// reported PnL.
type Confidence string

// Confidence levels.
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ExternalSellRecord is a structured diagnostic for one disposal that
// exceeded tracked inventory. Returned alongside the result so callers
// can query data-quality issues instead of scraping logs.
type ExternalSellRecord struct {
	TokenID   string
	Timestamp int64
	TxHash    string
	Amount    float64 // untracked portion of the disposal
	Price     float64 // price the untracked portion sold at
}

// WalletMetrics is the wallet-level PnL rollup produced by one
// computation run.
type WalletMetrics struct {
	Wallet string

	RealizedPnL   float64
	UnrealizedPnL float64
	TotalPnL      float64

	PositionsCount  int
	ResolvedCount   int
	UnresolvedCount int

	TotalTrades  int
	VolumeTraded float64

	WinCount  int
	LossCount int
	WinRate   float64

	// Untracked-inventory accounting.
	ExternalSellTokens     float64
	ExternalSellUSDC       float64
	ExternalSellAdjustment float64 // worst-case $1.00 cost basis, folded into RealizedPnL

	PnLConfidence Confidence

	// Diagnostics carries external-sell records, capped by the engine.
	Diagnostics []ExternalSellRecord

	ComputedAt int64 // ms
}
