// Package phantom strips synthetic trade legs from atomic
// multi-outcome transactions.
//
// A wallet can execute, atomically within one transaction, a CLOB buy
// of outcome A and a sell of outcome B on the same condition with
// matching amounts and prices summing to ~$1.00. Economically that is a
// split or merge, not two independent trades; left alone it
// double-counts volume and manufactures untracked-inventory artifacts.
package phantom

import (
	"github.com/rs/zerolog"

	"polymarket-pnl/internal/domain"
)

// Pairing tolerances.
const (
	// amountTolerance is the max token-amount difference between the
	// two legs, as a fraction of their average.
	amountTolerance = 0.01

	// priceSumTolerance is how far the legs' price sum may deviate
	// from $1.00.
	priceSumTolerance = 0.05
)

// Normalizer detects phantom pairs and removes one leg of each.
type Normalizer struct {
	logger zerolog.Logger
}

// New creates a Normalizer.
func New(logger zerolog.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize returns trades with phantom legs removed, plus the number
// of legs dropped. meta maps token id to its condition and outcome
// index; splitTxs is the set of tx hashes containing an on-chain Split.
//
// For every unmatched pair in the same (tx, condition) group with
// opposite outcome index, opposite side, near-equal amounts and prices
// summing to ~$1.00, one leg is dropped:
//   - the tx also contains a Split: the buy leg is synthetic (the
//     inventory really came from the Split, which is already
//     represented); the sell leg survives.
//   - no accompanying Split: no real minting occurred, so the sell leg
//     is synthetic; the buy leg survives.
func (n *Normalizer) Normalize(
	trades []*domain.RawTradeEvent,
	meta map[string]domain.TokenMeta,
	splitTxs map[string]bool,
) ([]*domain.RawTradeEvent, int) {
	type groupKey struct {
		txHash      string
		conditionID string
	}

	groups := make(map[groupKey][]*domain.RawTradeEvent)
	for _, t := range trades {
		m, ok := meta[t.TokenID]
		if !ok {
			continue // unknown token, cannot pair
		}
		k := groupKey{txHash: t.TxHash, conditionID: m.ConditionID}
		groups[k] = append(groups[k], t)
	}

	drop := make(map[string]bool)
	for k, group := range groups {
		if len(group) < 2 {
			continue
		}
		matched := make([]bool, len(group))
		for i := 0; i < len(group); i++ {
			if matched[i] {
				continue
			}
			for j := i + 1; j < len(group); j++ {
				if matched[j] {
					continue
				}
				if !isPhantomPair(group[i], group[j], meta) {
					continue
				}
				matched[i], matched[j] = true, true

				victim := pickVictim(group[i], group[j], splitTxs[k.txHash])
				drop[victim.EventID] = true
				n.logger.Debug().
					Str("tx_hash", k.txHash).
					Str("condition_id", k.conditionID).
					Str("event_id", victim.EventID).
					Str("side", string(victim.Side)).
					Bool("has_split", splitTxs[k.txHash]).
					Msg("dropping phantom trade leg")
				break
			}
		}
	}

	if len(drop) == 0 {
		return trades, 0
	}

	kept := make([]*domain.RawTradeEvent, 0, len(trades)-len(drop))
	for _, t := range trades {
		if !drop[t.EventID] {
			kept = append(kept, t)
		}
	}
	return kept, len(drop)
}

// isPhantomPair reports whether two fills in the same (tx, condition)
// group form a synthetic split/merge pair.
func isPhantomPair(a, b *domain.RawTradeEvent, meta map[string]domain.TokenMeta) bool {
	ma, mb := meta[a.TokenID], meta[b.TokenID]
	if ma.OutcomeIndex == mb.OutcomeIndex {
		return false
	}
	if a.Side == b.Side {
		return false
	}

	avg := (a.TokenAmount + b.TokenAmount) / 2
	if avg <= 0 {
		return false
	}
	diff := a.TokenAmount - b.TokenAmount
	if diff < 0 {
		diff = -diff
	}
	if diff > avg*amountTolerance {
		return false
	}

	sum := fillPrice(a) + fillPrice(b)
	if sum < 1-priceSumTolerance || sum > 1+priceSumTolerance {
		return false
	}
	return true
}

// pickVictim chooses which leg of a phantom pair to drop.
func pickVictim(a, b *domain.RawTradeEvent, txHasSplit bool) *domain.RawTradeEvent {
	buy, sell := a, b
	if a.Side == domain.SideSell {
		buy, sell = b, a
	}
	if txHasSplit {
		return buy
	}
	return sell
}

// fillPrice is the observed per-token price of a fill.
func fillPrice(t *domain.RawTradeEvent) float64 {
	if t.TokenAmount <= 0 {
		return 0
	}
	return t.USDCAmount / t.TokenAmount
}
