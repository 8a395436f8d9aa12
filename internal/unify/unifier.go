// Package unify normalizes heterogeneous raw events into the single
// event shape the ledger consumes.
package unify

import (
	"fmt"

	"github.com/rs/zerolog"

	"polymarket-pnl/internal/domain"
	"polymarket-pnl/internal/observability"
)

// SettlementPrice is the canonical per-token price of a split or merge:
// locking $1.00 of collateral mints one token per outcome of a binary
// condition, so each token is acquired (or given up) at $0.50.
const SettlementPrice = 0.5

// Unifier translates raw trades and settlement events into unified
// events. Settlements whose condition cannot be mapped to both outcome
// tokens are dropped and logged; under-counting is preferred to
// mis-attribution.
type Unifier struct {
	logger zerolog.Logger
}

// New creates a Unifier.
func New(logger zerolog.Logger) *Unifier {
	return &Unifier{logger: logger}
}

// Unify converts one wallet's raw events. pairs maps condition id to
// outcome tokens; resolutions is keyed by token id and prices
// redemption legs.
func (u *Unifier) Unify(
	trades []*domain.RawTradeEvent,
	settlements []*domain.RawSettlementEvent,
	pairs map[string]domain.TokenPair,
	resolutions map[string]domain.Resolution,
) []*domain.UnifiedEvent {
	events := make([]*domain.UnifiedEvent, 0, len(trades)+2*len(settlements))

	for _, t := range trades {
		events = append(events, unifyTrade(t))
	}

	for _, s := range settlements {
		pair, ok := pairs[s.ConditionID]
		if !ok || pair.Token0 == "" || pair.Token1 == "" {
			u.logger.Warn().
				Str("condition_id", s.ConditionID).
				Str("type", string(s.Type)).
				Str("tx_hash", s.TxHash).
				Msg("dropping settlement event: condition has no token pair mapping")
			observability.RecordSettlementUnmapped()
			continue
		}

		switch s.Type {
		case domain.SettlementSplit:
			events = append(events, settlementLegs(s, pair, domain.EventSplit, domain.SideBuy)...)
		case domain.SettlementMerge:
			events = append(events, settlementLegs(s, pair, domain.EventMerge, domain.SideSell)...)
		case domain.SettlementRedemption:
			legs := u.redemptionLegs(s, pair, resolutions)
			events = append(events, legs...)
		default:
			u.logger.Warn().
				Str("type", string(s.Type)).
				Str("tx_hash", s.TxHash).
				Msg("dropping settlement event: unknown type")
		}
	}

	return events
}

// unifyTrade converts a CLOB fill. Price is the observed fill price;
// a zero token amount yields price 0, which is a no-op downstream.
func unifyTrade(t *domain.RawTradeEvent) *domain.UnifiedEvent {
	price := 0.0
	if t.TokenAmount > 0 {
		price = t.USDCAmount / t.TokenAmount
	}
	return &domain.UnifiedEvent{
		Type:      domain.EventCLOB,
		TokenID:   t.TokenID,
		Side:      t.Side,
		Amount:    t.TokenAmount,
		Price:     price,
		Timestamp: t.Timestamp,
		EventID:   t.EventID,
		TxHash:    t.TxHash,
	}
}

// settlementLegs expands a split or merge into one leg per outcome
// token at the canonical $0.50 price.
func settlementLegs(s *domain.RawSettlementEvent, pair domain.TokenPair, typ domain.EventType, side domain.Side) []*domain.UnifiedEvent {
	legs := make([]*domain.UnifiedEvent, 0, 2)
	for idx, tokenID := range []string{pair.Token0, pair.Token1} {
		legs = append(legs, &domain.UnifiedEvent{
			Type:      typ,
			TokenID:   tokenID,
			Side:      side,
			Amount:    s.TokenAmount,
			Price:     SettlementPrice,
			Timestamp: s.Timestamp,
			EventID:   legEventID(s.EventID, idx),
			TxHash:    s.TxHash,
		})
	}
	return legs
}

// redemptionLegs expands a redemption into one sell per outcome with a
// positive payout, priced at that payout fraction. Losing outcomes
// redeem for nothing and produce no leg.
func (u *Unifier) redemptionLegs(s *domain.RawSettlementEvent, pair domain.TokenPair, resolutions map[string]domain.Resolution) []*domain.UnifiedEvent {
	res, ok := resolutions[pair.Token0]
	if !ok {
		res, ok = resolutions[pair.Token1]
	}
	if !ok || !res.IsResolved {
		u.logger.Warn().
			Str("condition_id", s.ConditionID).
			Str("tx_hash", s.TxHash).
			Msg("dropping redemption event: no resolution for condition")
		return nil
	}

	legs := make([]*domain.UnifiedEvent, 0, 2)
	for idx, tokenID := range []string{pair.Token0, pair.Token1} {
		payout := res.PayoutFractions[idx]
		if payout <= 0 {
			continue
		}
		legs = append(legs, &domain.UnifiedEvent{
			Type:      domain.EventRedemption,
			TokenID:   tokenID,
			Side:      domain.SideSell,
			Amount:    s.TokenAmount,
			Price:     payout,
			Timestamp: s.Timestamp,
			EventID:   legEventID(s.EventID, idx),
			TxHash:    s.TxHash,
		})
	}
	return legs
}

// legEventID derives a leg id from the source event id so derived legs
// stay unique and traceable to their settlement event.
func legEventID(eventID string, outcomeIndex int) string {
	return fmt.Sprintf("%s-%d", eventID, outcomeIndex)
}
