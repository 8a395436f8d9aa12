package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polymarket-pnl/internal/domain"
	"polymarket-pnl/internal/storage"
)

func TestTradeSource_ReturnsCopies(t *testing.T) {
	s := NewTradeSource()
	s.Add("0xwallet", &domain.RawTradeEvent{EventID: "t1", TokenID: "tok", TokenAmount: 10})

	first, err := s.GetTradesByWallet(context.Background(), "0xwallet")
	require.NoError(t, err)
	require.Len(t, first, 1)

	first[0].TokenAmount = 999

	second, err := s.GetTradesByWallet(context.Background(), "0xwallet")
	require.NoError(t, err)
	assert.InDelta(t, 10.0, second[0].TokenAmount, 1e-9, "callers must not share backing data")
}

func TestTradeSource_UnknownWalletIsEmpty(t *testing.T) {
	s := NewTradeSource()

	out, err := s.GetTradesByWallet(context.Background(), "0xnobody")

	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSettlementSource_AddAndGet(t *testing.T) {
	s := NewSettlementSource()
	s.Add("0xwallet",
		&domain.RawSettlementEvent{EventID: "s1", Type: domain.SettlementSplit, ConditionID: "cond1"},
		&domain.RawSettlementEvent{EventID: "s2", Type: domain.SettlementMerge, ConditionID: "cond1"},
	)

	out, err := s.GetSettlementsByWallet(context.Background(), "0xwallet")

	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "s1", out[0].EventID)
	assert.Equal(t, "s2", out[1].EventID)
}

func TestMarketSource_ReturnsOnlyKnownConditions(t *testing.T) {
	s := NewMarketSource()
	s.AddPair(domain.TokenPair{ConditionID: "cond1", Token0: "yes", Token1: "no"})

	out, err := s.GetTokenPairs(context.Background(), []string{"cond1", "cond2"})

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "yes", out["cond1"].Token0)
	_, ok := out["cond2"]
	assert.False(t, ok)
}

func TestResolutionSource_ReturnsOnlyKnownTokens(t *testing.T) {
	s := NewResolutionSource()
	s.AddResolution("yes", domain.Resolution{ConditionID: "cond1", PayoutFractions: [2]float64{1, 0}, IsResolved: true})

	out, err := s.GetResolutions(context.Background(), []string{"yes", "mystery"})

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, out["yes"].IsResolved)
}

func TestWalletMetricsStore_RoundTrip(t *testing.T) {
	s := NewWalletMetricsStore()

	err := s.Upsert(context.Background(), &domain.WalletMetrics{Wallet: "0xwallet", TotalPnL: 12.5})
	require.NoError(t, err)

	got, err := s.GetByWallet(context.Background(), "0xwallet")
	require.NoError(t, err)
	assert.InDelta(t, 12.5, got.TotalPnL, 1e-9)

	_, err = s.GetByWallet(context.Background(), "0xnobody")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestWalletMetricsStore_RejectsInvalidInput(t *testing.T) {
	s := NewWalletMetricsStore()

	assert.ErrorIs(t, s.Upsert(context.Background(), nil), storage.ErrInvalidInput)
	assert.ErrorIs(t, s.Upsert(context.Background(), &domain.WalletMetrics{}), storage.ErrInvalidInput)
}
