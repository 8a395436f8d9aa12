package storage

import (
	"context"

	"polymarket-pnl/internal/domain"
)

// TradeSource provides order-book fills for a wallet. Implementations
// query the warehouse; the engine never talks to a store directly.
type TradeSource interface {
	// GetTradesByWallet retrieves all fills attributable to a wallet,
	// including fills executed by its proxy contracts. Order is not
	// guaranteed; the engine sequences events itself.
	GetTradesByWallet(ctx context.Context, wallet string) ([]*domain.RawTradeEvent, error)
}

// SettlementSource provides on-chain split/merge/redemption events for
// a wallet.
type SettlementSource interface {
	// GetSettlementsByWallet retrieves all conditional-token actions
	// performed by a wallet. Order is not guaranteed.
	GetSettlementsByWallet(ctx context.Context, wallet string) ([]*domain.RawSettlementEvent, error)
}

// MarketSource maps conditions to their outcome token ids.
type MarketSource interface {
	// GetTokenPairs resolves condition ids to outcome token pairs.
	// Conditions that cannot be resolved are absent from the result,
	// not an error.
	GetTokenPairs(ctx context.Context, conditionIDs []string) (map[string]domain.TokenPair, error)
}

// ResolutionSource provides settlement state for outcome tokens.
type ResolutionSource interface {
	// GetResolutions resolves token ids to their condition's resolution
	// state. Tokens with unknown metadata are absent from the result,
	// not an error.
	GetResolutions(ctx context.Context, tokenIDs []string) (map[string]domain.Resolution, error)
}

// WalletMetricsStore persists computed wallet metrics. The engine is
// pure; persistence is the caller's concern.
type WalletMetricsStore interface {
	// Upsert stores metrics for a wallet, replacing any prior row.
	Upsert(ctx context.Context, m *domain.WalletMetrics) error

	// GetByWallet retrieves the last stored metrics for a wallet.
	// Returns ErrNotFound if the wallet was never computed.
	GetByWallet(ctx context.Context, wallet string) (*domain.WalletMetrics, error)
}
