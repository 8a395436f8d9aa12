// Package memory provides in-memory source and store implementations,
// used by tests and fixture-backed CLI runs.
package memory

import (
	"context"
	"sync"

	"polymarket-pnl/internal/domain"
	"polymarket-pnl/internal/storage"
)

// TradeSource is an in-memory implementation of storage.TradeSource.
type TradeSource struct {
	mu   sync.RWMutex
	data map[string][]*domain.RawTradeEvent // keyed by wallet
}

// NewTradeSource creates an empty in-memory trade source.
func NewTradeSource() *TradeSource {
	return &TradeSource{data: make(map[string][]*domain.RawTradeEvent)}
}

// Compile-time interface check.
var _ storage.TradeSource = (*TradeSource)(nil)

// Add registers fills for a wallet.
func (s *TradeSource) Add(wallet string, trades ...*domain.RawTradeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[wallet] = append(s.data[wallet], trades...)
}

// GetTradesByWallet retrieves all fills recorded for a wallet.
func (s *TradeSource) GetTradesByWallet(_ context.Context, wallet string) ([]*domain.RawTradeEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.RawTradeEvent, 0, len(s.data[wallet]))
	for _, t := range s.data[wallet] {
		copy := *t
		out = append(out, &copy)
	}
	return out, nil
}

// SettlementSource is an in-memory implementation of
// storage.SettlementSource.
type SettlementSource struct {
	mu   sync.RWMutex
	data map[string][]*domain.RawSettlementEvent
}

// NewSettlementSource creates an empty in-memory settlement source.
func NewSettlementSource() *SettlementSource {
	return &SettlementSource{data: make(map[string][]*domain.RawSettlementEvent)}
}

// Compile-time interface check.
var _ storage.SettlementSource = (*SettlementSource)(nil)

// Add registers settlement events for a wallet.
func (s *SettlementSource) Add(wallet string, events ...*domain.RawSettlementEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[wallet] = append(s.data[wallet], events...)
}

// GetSettlementsByWallet retrieves all settlement events for a wallet.
func (s *SettlementSource) GetSettlementsByWallet(_ context.Context, wallet string) ([]*domain.RawSettlementEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.RawSettlementEvent, 0, len(s.data[wallet]))
	for _, e := range s.data[wallet] {
		copy := *e
		out = append(out, &copy)
	}
	return out, nil
}

// MarketSource is an in-memory implementation of storage.MarketSource.
type MarketSource struct {
	mu    sync.RWMutex
	pairs map[string]domain.TokenPair
}

// NewMarketSource creates an empty in-memory market source.
func NewMarketSource() *MarketSource {
	return &MarketSource{pairs: make(map[string]domain.TokenPair)}
}

// Compile-time interface check.
var _ storage.MarketSource = (*MarketSource)(nil)

// AddPair registers a condition's outcome token pair.
func (s *MarketSource) AddPair(pair domain.TokenPair) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pairs[pair.ConditionID] = pair
}

// GetTokenPairs resolves condition ids to outcome token pairs.
func (s *MarketSource) GetTokenPairs(_ context.Context, conditionIDs []string) (map[string]domain.TokenPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]domain.TokenPair, len(conditionIDs))
	for _, id := range conditionIDs {
		if p, ok := s.pairs[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

// ResolutionSource is an in-memory implementation of
// storage.ResolutionSource.
type ResolutionSource struct {
	mu   sync.RWMutex
	data map[string]domain.Resolution // keyed by token id
}

// NewResolutionSource creates an empty in-memory resolution source.
func NewResolutionSource() *ResolutionSource {
	return &ResolutionSource{data: make(map[string]domain.Resolution)}
}

// Compile-time interface check.
var _ storage.ResolutionSource = (*ResolutionSource)(nil)

// AddResolution registers a token's resolution state.
func (s *ResolutionSource) AddResolution(tokenID string, res domain.Resolution) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[tokenID] = res
}

// GetResolutions resolves token ids to their resolution state.
func (s *ResolutionSource) GetResolutions(_ context.Context, tokenIDs []string) (map[string]domain.Resolution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]domain.Resolution, len(tokenIDs))
	for _, id := range tokenIDs {
		if r, ok := s.data[id]; ok {
			out[id] = r
		}
	}
	return out, nil
}
