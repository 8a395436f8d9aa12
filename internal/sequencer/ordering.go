// Package sequencer orders the unified event stream deterministically.
//
// On-chain timestamps have second-level resolution, so a split and the
// CLOB sell funded by it frequently share a timestamp. Naive ordering
// can apply the disposal before its paired acquisition and flag the
// inventory as untracked. Ties therefore break on direction rank:
// inventory creators apply before inventory destroyers.
package sequencer

import (
	"errors"
	"sort"

	"polymarket-pnl/internal/domain"
)

// ErrInvalidOrdering is returned when events are not properly ordered.
var ErrInvalidOrdering = errors.New("events are not in deterministic order")

// Direction ranks. Lower ranks apply first on timestamp ties.
const (
	rankSplit      = 0
	rankBuy        = 1
	rankSell       = 2
	rankMerge      = 3
	rankRedemption = 4
)

// Sort orders events by (timestamp ASC, direction rank ASC,
// tx_hash ASC, event_id ASC).
func Sort(events []*domain.UnifiedEvent) {
	sort.Slice(events, func(i, j int) bool {
		return compareEvents(events[i], events[j]) < 0
	})
}

// Validate checks that events are in deterministic order.
// Returns ErrInvalidOrdering if not.
func Validate(events []*domain.UnifiedEvent) error {
	for i := 1; i < len(events); i++ {
		if compareEvents(events[i-1], events[i]) > 0 {
			return ErrInvalidOrdering
		}
	}
	return nil
}

// directionRank maps an event to its tie-break rank.
func directionRank(e *domain.UnifiedEvent) int {
	switch e.Type {
	case domain.EventSplit:
		return rankSplit
	case domain.EventMerge:
		return rankMerge
	case domain.EventRedemption:
		return rankRedemption
	}
	if e.Side == domain.SideBuy {
		return rankBuy
	}
	return rankSell
}

// compareEvents returns:
//   - negative if a < b
//   - zero if a == b
//   - positive if a > b
//
// Order: (timestamp ASC, direction rank ASC, tx_hash ASC, event_id ASC)
func compareEvents(a, b *domain.UnifiedEvent) int {
	if a.Timestamp != b.Timestamp {
		if a.Timestamp < b.Timestamp {
			return -1
		}
		return 1
	}
	ra, rb := directionRank(a), directionRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	if a.TxHash != b.TxHash {
		if a.TxHash < b.TxHash {
			return -1
		}
		return 1
	}
	if a.EventID != b.EventID {
		if a.EventID < b.EventID {
			return -1
		}
		return 1
	}
	return 0
}
