package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polymarket-pnl/internal/domain"
	"polymarket-pnl/internal/storage/memory"
)

const wallet = "0xwallet"

type fixture struct {
	trades      *memory.TradeSource
	settlements *memory.SettlementSource
	markets     *memory.MarketSource
	resolutions *memory.ResolutionSource
}

func newFixture() *fixture {
	return &fixture{
		trades:      memory.NewTradeSource(),
		settlements: memory.NewSettlementSource(),
		markets:     memory.NewMarketSource(),
		resolutions: memory.NewResolutionSource(),
	}
}

func (f *fixture) engine(opts ...func(*Options)) *Engine {
	o := Options{
		Trades:      f.trades,
		Settlements: f.settlements,
		Markets:     f.markets,
		Resolutions: f.resolutions,
		Logger:      zerolog.Nop(),
	}
	for _, fn := range opts {
		fn(&o)
	}
	return New(o)
}

func (f *fixture) addBinaryMarket(conditionID, token0, token1 string) {
	f.markets.AddPair(domain.TokenPair{ConditionID: conditionID, Token0: token0, Token1: token1})
}

func (f *fixture) resolve(conditionID string, fractions [2]float64, tokens ...string) {
	for _, tok := range tokens {
		f.resolutions.AddResolution(tok, domain.Resolution{
			ConditionID:     conditionID,
			PayoutFractions: fractions,
			IsResolved:      true,
		})
	}
}

func TestCompute_ResolvedMarketEndToEnd(t *testing.T) {
	f := newFixture()
	f.addBinaryMarket("cond1", "yes", "no")
	f.resolve("cond1", [2]float64{1, 0}, "yes", "no")
	f.trades.Add(wallet,
		&domain.RawTradeEvent{EventID: "t1", TokenID: "yes", Side: domain.SideBuy, TokenAmount: 100, USDCAmount: 40, Timestamp: 1000, TxHash: "tx1"},
		&domain.RawTradeEvent{EventID: "t2", TokenID: "yes", Side: domain.SideSell, TokenAmount: 60, USDCAmount: 33, Timestamp: 2000, TxHash: "tx2"},
	)

	m, err := f.engine().Compute(context.Background(), wallet)
	require.NoError(t, err)

	// Sell realizes 60*(0.55-0.40)=9; settlement of the remaining 40 at
	// the $1.00 payout realizes 40*(1.00-0.40)=24.
	assert.InDelta(t, 33.0, m.RealizedPnL, 1e-9)
	assert.Zero(t, m.UnrealizedPnL)
	assert.InDelta(t, 33.0, m.TotalPnL, 1e-9)
	assert.Equal(t, 2, m.TotalTrades)
	assert.InDelta(t, 73.0, m.VolumeTraded, 1e-9)
	assert.Equal(t, 1, m.ResolvedCount)
	assert.Equal(t, 1, m.WinCount)
	assert.InDelta(t, 1.0, m.WinRate, 1e-9)
	assert.Equal(t, domain.ConfidenceHigh, m.PnLConfidence)
	assert.Zero(t, m.ExternalSellTokens)
}

func TestCompute_UnresolvedMarketMarksAtNeutral(t *testing.T) {
	f := newFixture()
	f.addBinaryMarket("cond1", "yes", "no")
	f.trades.Add(wallet,
		&domain.RawTradeEvent{EventID: "t1", TokenID: "yes", Side: domain.SideBuy, TokenAmount: 100, USDCAmount: 30, Timestamp: 1000, TxHash: "tx1"},
	)
	// Without a resolution the trade token cannot be mapped to its
	// condition, so a settlement event provides the link.
	f.settlements.Add(wallet,
		&domain.RawSettlementEvent{EventID: "s1", Type: domain.SettlementSplit, ConditionID: "cond1", TokenAmount: 10, Timestamp: 500, TxHash: "tx0"},
	)

	m, err := f.engine().Compute(context.Background(), wallet)
	require.NoError(t, err)

	// yes: 110 tokens avg (10*0.50+100*0.30)/110 = 0.31818...
	// no: 10 tokens at 0.50. Neutral mark values both at 0.50:
	// 110*(0.50-0.318181..) + 10*0 = 20.
	assert.Zero(t, m.RealizedPnL)
	assert.InDelta(t, 20.0, m.UnrealizedPnL, 1e-6)
	assert.Equal(t, 2, m.UnresolvedCount)
	assert.Zero(t, m.ResolvedCount)
}

func TestCompute_SplitThenSellSameTimestamp(t *testing.T) {
	// The split must apply before the sell it funds even when both carry
	// the same timestamp.
	f := newFixture()
	f.addBinaryMarket("cond1", "yes", "no")
	f.trades.Add(wallet,
		&domain.RawTradeEvent{EventID: "t1", TokenID: "yes", Side: domain.SideSell, TokenAmount: 100, USDCAmount: 80, Timestamp: 1000, TxHash: "tx1"},
	)
	f.settlements.Add(wallet,
		&domain.RawSettlementEvent{EventID: "s1", Type: domain.SettlementSplit, ConditionID: "cond1", TokenAmount: 100, Timestamp: 1000, TxHash: "tx1"},
	)

	m, err := f.engine().Compute(context.Background(), wallet)
	require.NoError(t, err)

	// 100 minted at 0.50, sold at 0.80: realized 30, nothing external.
	assert.InDelta(t, 30.0, m.RealizedPnL, 1e-9)
	assert.Zero(t, m.ExternalSellTokens)
	assert.Zero(t, m.ExternalSellAdjustment)
}

func TestCompute_ExternalSellLowersConfidence(t *testing.T) {
	f := newFixture()
	f.addBinaryMarket("cond1", "yes", "no")
	f.resolve("cond1", [2]float64{1, 0}, "yes", "no")
	// 500 tokens sold with no tracked acquisition: potential error $250.
	f.trades.Add(wallet,
		&domain.RawTradeEvent{EventID: "t1", TokenID: "yes", Side: domain.SideSell, TokenAmount: 500, USDCAmount: 300, Timestamp: 1000, TxHash: "tx1"},
	)

	m, err := f.engine().Compute(context.Background(), wallet)
	require.NoError(t, err)

	assert.InDelta(t, 500.0, m.ExternalSellTokens, 1e-9)
	// Adjustment: 300 - 500*1.00 = -200.
	assert.InDelta(t, -200.0, m.ExternalSellAdjustment, 1e-9)
	assert.InDelta(t, -200.0, m.RealizedPnL, 1e-9)
	assert.Equal(t, domain.ConfidenceLow, m.PnLConfidence)
	require.Len(t, m.Diagnostics, 1)
	assert.InDelta(t, 500.0, m.Diagnostics[0].Amount, 1e-9)
}

func TestCompute_SystemWalletRejected(t *testing.T) {
	f := newFixture()
	eng := f.engine(func(o *Options) {
		o.SystemWallets = []string{"0xSystem"}
	})

	_, err := eng.Compute(context.Background(), "0xsystem")

	assert.ErrorIs(t, err, ErrSystemWallet)
}

func TestCompute_EmptyWalletYieldsZeroMetrics(t *testing.T) {
	f := newFixture()

	m, err := f.engine().Compute(context.Background(), wallet)
	require.NoError(t, err)

	assert.Zero(t, m.TotalPnL)
	assert.Zero(t, m.PositionsCount)
	assert.Equal(t, domain.ConfidenceHigh, m.PnLConfidence)
}

type failingTradeSource struct{}

func (failingTradeSource) GetTradesByWallet(context.Context, string) ([]*domain.RawTradeEvent, error) {
	return nil, errors.New("clickhouse unavailable")
}

func TestCompute_FetchFailureReturnsFetchError(t *testing.T) {
	f := newFixture()
	eng := f.engine(func(o *Options) {
		o.Trades = failingTradeSource{}
	})

	_, err := eng.Compute(context.Background(), wallet)

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, wallet, fe.Wallet)
	assert.Equal(t, "trades", fe.Stage)
}

func TestComputePosition_ReturnsSummary(t *testing.T) {
	f := newFixture()
	f.addBinaryMarket("cond1", "yes", "no")
	f.resolve("cond1", [2]float64{1, 0}, "yes", "no")
	f.trades.Add(wallet,
		&domain.RawTradeEvent{EventID: "t1", TokenID: "yes", Side: domain.SideBuy, TokenAmount: 100, USDCAmount: 40, Timestamp: 1000, TxHash: "tx1"},
	)

	s, err := f.engine().ComputePosition(context.Background(), wallet, "cond1", 0)
	require.NoError(t, err)
	require.NotNil(t, s)

	assert.Equal(t, "yes", s.TokenID)
	assert.InDelta(t, 100.0, s.Amount, 1e-9)
	assert.InDelta(t, 0.40, s.AvgPrice, 1e-9)
	assert.True(t, s.Resolved)
	assert.InDelta(t, 1.0, s.PayoutFraction, 1e-9)
}

func TestComputePosition_UntouchedOutcomeIsNil(t *testing.T) {
	f := newFixture()
	f.addBinaryMarket("cond1", "yes", "no")

	s, err := f.engine().ComputePosition(context.Background(), wallet, "cond1", 1)

	require.NoError(t, err)
	assert.Nil(t, s)
}
