package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"polymarket-pnl/internal/domain"
	"polymarket-pnl/internal/storage"
)

// SettlementSource implements storage.SettlementSource against the
// warehouse settlements table.
type SettlementSource struct {
	conn *Conn
}

// NewSettlementSource creates a new SettlementSource.
func NewSettlementSource(conn *Conn) *SettlementSource {
	return &SettlementSource{conn: conn}
}

// Compile-time interface check.
var _ storage.SettlementSource = (*SettlementSource)(nil)

// GetSettlementsByWallet retrieves all conditional-token actions
// performed by a wallet.
func (s *SettlementSource) GetSettlementsByWallet(ctx context.Context, wallet string) ([]*domain.RawSettlementEvent, error) {
	query := `
		SELECT event_id, event_type, condition_id, token_amount, timestamp_ms, tx_hash, user_address
		FROM settlements
		WHERE user_address = ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, wallet)
	if err != nil {
		return nil, fmt.Errorf("query settlements by wallet: %w", err)
	}
	defer rows.Close()

	return scanSettlements(rows)
}

func scanSettlements(rows driver.Rows) ([]*domain.RawSettlementEvent, error) {
	var out []*domain.RawSettlementEvent
	for rows.Next() {
		var (
			e           domain.RawSettlementEvent
			eventType   string
			timestampMs uint64
		)
		if err := rows.Scan(
			&e.EventID, &eventType, &e.ConditionID, &e.TokenAmount,
			&timestampMs, &e.TxHash, &e.UserAddress,
		); err != nil {
			return nil, fmt.Errorf("scan settlement row: %w", err)
		}
		e.Type = domain.SettlementType(eventType)
		e.Timestamp = int64(timestampMs)
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate settlement rows: %w", err)
	}
	return out, nil
}
