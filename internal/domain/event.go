package domain

// Side represents the direction of a trade fill.
type Side string

// Side constants.
const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// SettlementType identifies an on-chain conditional-token action.
type SettlementType string

// Settlement type constants.
const (
	SettlementSplit      SettlementType = "Split"
	SettlementMerge      SettlementType = "Merge"
	SettlementRedemption SettlementType = "Redemption"
)

// EventType classifies a unified event by its source.
type EventType string

// Unified event type constants.
const (
	EventCLOB       EventType = "clob"
	EventSplit      EventType = "split"
	EventMerge      EventType = "merge"
	EventRedemption EventType = "redemption"
)

// RawTradeEvent is an order-book fill as recorded in the warehouse.
// Immutable, externally sourced.
type RawTradeEvent struct {
	EventID     string  // unique fill identifier
	TokenID     string  // outcome token traded
	Side        Side    // buy or sell from the wallet's perspective
	TokenAmount float64 // outcome tokens filled
	USDCAmount  float64 // collateral exchanged
	Timestamp   int64   // fill time (ms)
	TxHash      string  // settlement transaction
	Maker       string  // executing address (EOA or proxy contract)
}

// RawSettlementEvent is an on-chain conditional-token action
// (position split, position merge, payout redemption).
// Immutable, externally sourced.
type RawSettlementEvent struct {
	EventID     string         // unique event identifier
	Type        SettlementType // Split, Merge or Redemption
	ConditionID string         // market condition acted on
	TokenAmount float64        // tokens minted, burned or redeemed per outcome
	Timestamp   int64          // block time (ms)
	TxHash      string         // transaction hash
	UserAddress string         // acting wallet
}

// UnifiedEvent is the single shape every raw event is normalized into
// before ledger processing. Price is observed for CLOB fills and
// canonical otherwise: 0.50 for split/merge legs, the resolution payout
// fraction for redemption legs.
type UnifiedEvent struct {
	Type      EventType
	TokenID   string
	Side      Side
	Amount    float64 // outcome tokens
	Price     float64 // USD per token, in [0,1]
	Timestamp int64   // ms
	EventID   string
	TxHash    string
}

// TokenPair maps a binary condition to its two outcome token ids.
// Token0 is outcome index 0 (YES by convention), Token1 is index 1.
type TokenPair struct {
	ConditionID string
	Token0      string
	Token1      string
}

// TokenAt returns the token id for an outcome index.
func (p TokenPair) TokenAt(outcomeIndex int) string {
	if outcomeIndex == 0 {
		return p.Token0
	}
	return p.Token1
}

// IndexOf returns the outcome index of tokenID within the pair,
// or -1 if the token does not belong to the condition.
func (p TokenPair) IndexOf(tokenID string) int {
	switch tokenID {
	case p.Token0:
		return 0
	case p.Token1:
		return 1
	}
	return -1
}
