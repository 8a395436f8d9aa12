// Package ledger maintains per-position inventory and weighted-average
// cost basis over an ordered event stream.
package ledger

import (
	"polymarket-pnl/internal/domain"
)

// Ledger folds unified events into positions. State lives for one
// computation run: fresh map in, positions out.
//
// Invariants:
//   - Position.Amount never goes negative; disposals are capped at
//     tracked inventory before application.
//   - AvgPrice changes only on buys, via weighted average.
//   - The untracked remainder of an over-sized disposal accumulates in
//     external-sell counters at the event's price.
type Ledger struct {
	wallet    string
	positions map[string]*domain.Position

	externalSells []domain.ExternalSellRecord
}

// New creates an empty ledger for one wallet.
func New(wallet string) *Ledger {
	return &Ledger{
		wallet:    wallet,
		positions: make(map[string]*domain.Position),
	}
}

// Apply processes one event in sequencer order. Events with a
// non-positive amount are no-ops.
func (l *Ledger) Apply(e *domain.UnifiedEvent) {
	if e.Amount <= 0 {
		return
	}

	pos := l.position(e.TokenID)
	pos.TradeCount++
	pos.VolumeUSDC += e.Amount * e.Price

	if e.Side == domain.SideBuy {
		l.applyBuy(pos, e)
		return
	}
	l.applySell(pos, e)
}

// applyBuy folds an acquisition into the weighted-average cost.
func (l *Ledger) applyBuy(pos *domain.Position, e *domain.UnifiedEvent) {
	total := pos.Amount + e.Amount
	pos.AvgPrice = (pos.AvgPrice*pos.Amount + e.Price*e.Amount) / total
	pos.Amount = total
}

// applySell disposes inventory, capped at what the ledger tracks.
// Realized PnL moves only by the tracked portion; the remainder is
// flagged as an external sell, never applied.
func (l *Ledger) applySell(pos *domain.Position, e *domain.UnifiedEvent) {
	disposed := e.Amount
	if disposed > pos.Amount {
		disposed = pos.Amount
	}
	if disposed > 0 {
		pos.RealizedPnL += disposed * (e.Price - pos.AvgPrice)
		pos.Amount -= disposed
	}

	external := e.Amount - disposed
	if external > 0 {
		pos.ExternalSellTokens += external
		pos.ExternalSellUSDC += external * e.Price
		l.externalSells = append(l.externalSells, domain.ExternalSellRecord{
			TokenID:   e.TokenID,
			Timestamp: e.Timestamp,
			TxHash:    e.TxHash,
			Amount:    external,
			Price:     e.Price,
		})
	}
}

// Positions returns the live position map, keyed by token id.
func (l *Ledger) Positions() map[string]*domain.Position {
	return l.positions
}

// Position returns the position for a token, or nil if no event
// touched it.
func (l *Ledger) Position(tokenID string) *domain.Position {
	return l.positions[tokenID]
}

// ExternalSells returns diagnostic records for every disposal that
// exceeded tracked inventory, in application order.
func (l *Ledger) ExternalSells() []domain.ExternalSellRecord {
	return l.externalSells
}

func (l *Ledger) position(tokenID string) *domain.Position {
	pos, ok := l.positions[tokenID]
	if !ok {
		pos = &domain.Position{Wallet: l.wallet, TokenID: tokenID}
		l.positions[tokenID] = pos
	}
	return pos
}
