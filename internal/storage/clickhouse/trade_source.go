package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"polymarket-pnl/internal/domain"
	"polymarket-pnl/internal/storage"
)

// TradeSource implements storage.TradeSource against the warehouse
// trades table. The table is append-only; rows may repeat across
// ingestion runs, so the engine deduplicates by event id.
type TradeSource struct {
	conn *Conn
}

// NewTradeSource creates a new TradeSource.
func NewTradeSource(conn *Conn) *TradeSource {
	return &TradeSource{conn: conn}
}

// Compile-time interface check.
var _ storage.TradeSource = (*TradeSource)(nil)

// GetTradesByWallet retrieves all fills attributable to a wallet,
// including fills executed by its known proxy contracts (the warehouse
// attributes both to the wallet column).
func (s *TradeSource) GetTradesByWallet(ctx context.Context, wallet string) ([]*domain.RawTradeEvent, error) {
	query := `
		SELECT event_id, token_id, side, token_amount, usdc_amount, timestamp_ms, tx_hash, maker
		FROM trades
		WHERE wallet = ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, wallet)
	if err != nil {
		return nil, fmt.Errorf("query trades by wallet: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

func scanTrades(rows driver.Rows) ([]*domain.RawTradeEvent, error) {
	var out []*domain.RawTradeEvent
	for rows.Next() {
		var (
			t           domain.RawTradeEvent
			side        string
			timestampMs uint64
		)
		if err := rows.Scan(
			&t.EventID, &t.TokenID, &side, &t.TokenAmount,
			&t.USDCAmount, &timestampMs, &t.TxHash, &t.Maker,
		); err != nil {
			return nil, fmt.Errorf("scan trade row: %w", err)
		}
		t.Side = domain.Side(side)
		t.Timestamp = int64(timestampMs)
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade rows: %w", err)
	}
	return out, nil
}
