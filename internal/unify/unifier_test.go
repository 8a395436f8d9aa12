package unify

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polymarket-pnl/internal/domain"
)

var testPairs = map[string]domain.TokenPair{
	"cond1": {ConditionID: "cond1", Token0: "yes", Token1: "no"},
}

func newTestUnifier() *Unifier {
	return New(zerolog.Nop())
}

func TestUnify_TradePriceFromFill(t *testing.T) {
	trades := []*domain.RawTradeEvent{
		{EventID: "t1", TokenID: "yes", Side: domain.SideBuy, TokenAmount: 100, USDCAmount: 42, Timestamp: 1000, TxHash: "tx1"},
	}

	events := newTestUnifier().Unify(trades, nil, testPairs, nil)

	require.Len(t, events, 1)
	e := events[0]
	assert.Equal(t, domain.EventCLOB, e.Type)
	assert.Equal(t, domain.SideBuy, e.Side)
	assert.InDelta(t, 100.0, e.Amount, 1e-9)
	assert.InDelta(t, 0.42, e.Price, 1e-9)
	assert.Equal(t, "t1", e.EventID)
}

func TestUnify_ZeroTokenAmountYieldsZeroPrice(t *testing.T) {
	trades := []*domain.RawTradeEvent{
		{EventID: "t1", TokenID: "yes", Side: domain.SideSell, TokenAmount: 0, USDCAmount: 10, Timestamp: 1000},
	}

	events := newTestUnifier().Unify(trades, nil, testPairs, nil)

	require.Len(t, events, 1)
	assert.Zero(t, events[0].Price)
}

func TestUnify_SplitMintsBothOutcomesAtHalf(t *testing.T) {
	settlements := []*domain.RawSettlementEvent{
		{EventID: "s1", Type: domain.SettlementSplit, ConditionID: "cond1", TokenAmount: 40, Timestamp: 1000, TxHash: "tx1"},
	}

	events := newTestUnifier().Unify(nil, settlements, testPairs, nil)

	require.Len(t, events, 2)
	for i, e := range events {
		assert.Equal(t, domain.EventSplit, e.Type)
		assert.Equal(t, domain.SideBuy, e.Side)
		assert.InDelta(t, 40.0, e.Amount, 1e-9)
		assert.InDelta(t, SettlementPrice, e.Price, 1e-9)
		assert.Equal(t, "tx1", e.TxHash)
		assert.NotEqual(t, events[1-i].EventID, e.EventID)
	}
	assert.Equal(t, "yes", events[0].TokenID)
	assert.Equal(t, "no", events[1].TokenID)
}

func TestUnify_MergeSellsBothOutcomesAtHalf(t *testing.T) {
	settlements := []*domain.RawSettlementEvent{
		{EventID: "s1", Type: domain.SettlementMerge, ConditionID: "cond1", TokenAmount: 15, Timestamp: 1000, TxHash: "tx1"},
	}

	events := newTestUnifier().Unify(nil, settlements, testPairs, nil)

	require.Len(t, events, 2)
	for _, e := range events {
		assert.Equal(t, domain.EventMerge, e.Type)
		assert.Equal(t, domain.SideSell, e.Side)
		assert.InDelta(t, SettlementPrice, e.Price, 1e-9)
	}
}

func TestUnify_RedemptionSellsOnlyWinningOutcome(t *testing.T) {
	settlements := []*domain.RawSettlementEvent{
		{EventID: "s1", Type: domain.SettlementRedemption, ConditionID: "cond1", TokenAmount: 30, Timestamp: 1000, TxHash: "tx1"},
	}
	resolutions := map[string]domain.Resolution{
		"yes": {ConditionID: "cond1", PayoutFractions: [2]float64{1, 0}, IsResolved: true},
	}

	events := newTestUnifier().Unify(nil, settlements, testPairs, resolutions)

	require.Len(t, events, 1)
	e := events[0]
	assert.Equal(t, domain.EventRedemption, e.Type)
	assert.Equal(t, "yes", e.TokenID)
	assert.Equal(t, domain.SideSell, e.Side)
	assert.InDelta(t, 1.0, e.Price, 1e-9)
	assert.InDelta(t, 30.0, e.Amount, 1e-9)
}

func TestUnify_TieRedemptionSellsBothAtFraction(t *testing.T) {
	settlements := []*domain.RawSettlementEvent{
		{EventID: "s1", Type: domain.SettlementRedemption, ConditionID: "cond1", TokenAmount: 30, Timestamp: 1000},
	}
	resolutions := map[string]domain.Resolution{
		"yes": {ConditionID: "cond1", PayoutFractions: [2]float64{0.5, 0.5}, IsResolved: true},
	}

	events := newTestUnifier().Unify(nil, settlements, testPairs, resolutions)

	require.Len(t, events, 2)
	for _, e := range events {
		assert.InDelta(t, 0.5, e.Price, 1e-9)
	}
}

func TestUnify_RedemptionWithoutResolutionDropped(t *testing.T) {
	settlements := []*domain.RawSettlementEvent{
		{EventID: "s1", Type: domain.SettlementRedemption, ConditionID: "cond1", TokenAmount: 30, Timestamp: 1000},
	}

	events := newTestUnifier().Unify(nil, settlements, testPairs, nil)

	assert.Empty(t, events)
}

func TestUnify_UnmappedConditionDropped(t *testing.T) {
	settlements := []*domain.RawSettlementEvent{
		{EventID: "s1", Type: domain.SettlementSplit, ConditionID: "unknown", TokenAmount: 40, Timestamp: 1000},
	}

	events := newTestUnifier().Unify(nil, settlements, testPairs, nil)

	assert.Empty(t, events)
}
