package memory

import (
	"context"
	"sync"

	"polymarket-pnl/internal/domain"
	"polymarket-pnl/internal/storage"
)

// WalletMetricsStore is an in-memory implementation of
// storage.WalletMetricsStore.
type WalletMetricsStore struct {
	mu   sync.RWMutex
	data map[string]*domain.WalletMetrics
}

// NewWalletMetricsStore creates an empty in-memory metrics store.
func NewWalletMetricsStore() *WalletMetricsStore {
	return &WalletMetricsStore{data: make(map[string]*domain.WalletMetrics)}
}

// Compile-time interface check.
var _ storage.WalletMetricsStore = (*WalletMetricsStore)(nil)

// Upsert stores metrics for a wallet, replacing any prior row.
func (s *WalletMetricsStore) Upsert(_ context.Context, m *domain.WalletMetrics) error {
	if m == nil || m.Wallet == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *m
	s.data[m.Wallet] = &copy
	return nil
}

// GetByWallet retrieves the last stored metrics for a wallet.
func (s *WalletMetricsStore) GetByWallet(_ context.Context, wallet string) (*domain.WalletMetrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.data[wallet]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copy := *m
	return &copy, nil
}
