package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"polymarket-pnl/internal/domain"
	"polymarket-pnl/internal/storage"
)

// WalletMetricsStore implements storage.WalletMetricsStore using
// PostgreSQL. One row per wallet, replaced on each recomputation.
type WalletMetricsStore struct {
	pool *Pool
}

// NewWalletMetricsStore creates a new WalletMetricsStore.
func NewWalletMetricsStore(pool *Pool) *WalletMetricsStore {
	return &WalletMetricsStore{pool: pool}
}

// Compile-time interface check.
var _ storage.WalletMetricsStore = (*WalletMetricsStore)(nil)

// Upsert stores metrics for a wallet, replacing any prior row.
func (s *WalletMetricsStore) Upsert(ctx context.Context, m *domain.WalletMetrics) error {
	if m == nil || m.Wallet == "" {
		return storage.ErrInvalidInput
	}

	diagnostics, err := json.Marshal(m.Diagnostics)
	if err != nil {
		return fmt.Errorf("marshal diagnostics: %w", err)
	}

	query := `
		INSERT INTO wallet_metrics (
			wallet, realized_pnl, unrealized_pnl, total_pnl,
			positions_count, resolved_count, unresolved_count,
			total_trades, volume_traded, win_count, loss_count, win_rate,
			external_sell_tokens, external_sell_usdc, external_sell_adjustment,
			pnl_confidence, diagnostics, computed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (wallet) DO UPDATE SET
			realized_pnl = EXCLUDED.realized_pnl,
			unrealized_pnl = EXCLUDED.unrealized_pnl,
			total_pnl = EXCLUDED.total_pnl,
			positions_count = EXCLUDED.positions_count,
			resolved_count = EXCLUDED.resolved_count,
			unresolved_count = EXCLUDED.unresolved_count,
			total_trades = EXCLUDED.total_trades,
			volume_traded = EXCLUDED.volume_traded,
			win_count = EXCLUDED.win_count,
			loss_count = EXCLUDED.loss_count,
			win_rate = EXCLUDED.win_rate,
			external_sell_tokens = EXCLUDED.external_sell_tokens,
			external_sell_usdc = EXCLUDED.external_sell_usdc,
			external_sell_adjustment = EXCLUDED.external_sell_adjustment,
			pnl_confidence = EXCLUDED.pnl_confidence,
			diagnostics = EXCLUDED.diagnostics,
			computed_at = EXCLUDED.computed_at
	`

	_, err = s.pool.Exec(ctx, query,
		m.Wallet, m.RealizedPnL, m.UnrealizedPnL, m.TotalPnL,
		m.PositionsCount, m.ResolvedCount, m.UnresolvedCount,
		m.TotalTrades, m.VolumeTraded, m.WinCount, m.LossCount, m.WinRate,
		m.ExternalSellTokens, m.ExternalSellUSDC, m.ExternalSellAdjustment,
		string(m.PnLConfidence), diagnostics, m.ComputedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert wallet metrics: %w", err)
	}
	return nil
}

// GetByWallet retrieves the last stored metrics for a wallet.
// Returns storage.ErrNotFound if the wallet was never computed.
func (s *WalletMetricsStore) GetByWallet(ctx context.Context, wallet string) (*domain.WalletMetrics, error) {
	query := `
		SELECT wallet, realized_pnl, unrealized_pnl, total_pnl,
			positions_count, resolved_count, unresolved_count,
			total_trades, volume_traded, win_count, loss_count, win_rate,
			external_sell_tokens, external_sell_usdc, external_sell_adjustment,
			pnl_confidence, diagnostics, computed_at
		FROM wallet_metrics
		WHERE wallet = $1
	`

	var (
		m           domain.WalletMetrics
		confidence  string
		diagnostics []byte
	)
	err := s.pool.QueryRow(ctx, query, wallet).Scan(
		&m.Wallet, &m.RealizedPnL, &m.UnrealizedPnL, &m.TotalPnL,
		&m.PositionsCount, &m.ResolvedCount, &m.UnresolvedCount,
		&m.TotalTrades, &m.VolumeTraded, &m.WinCount, &m.LossCount, &m.WinRate,
		&m.ExternalSellTokens, &m.ExternalSellUSDC, &m.ExternalSellAdjustment,
		&confidence, &diagnostics, &m.ComputedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("query wallet metrics: %w", err)
	}

	m.PnLConfidence = domain.Confidence(confidence)
	if len(diagnostics) > 0 {
		if err := json.Unmarshal(diagnostics, &m.Diagnostics); err != nil {
			return nil, fmt.Errorf("unmarshal diagnostics: %w", err)
		}
	}
	return &m, nil
}
