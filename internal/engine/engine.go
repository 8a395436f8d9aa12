// Package engine reconstructs a wallet's realized and unrealized PnL
// from raw trade fills and on-chain settlement events.
//
// Compute is a pure fold over an ordered event list: fetch, clean,
// normalize phantom legs, unify, sequence, apply to the cost-basis
// ledger, settle open inventory, aggregate. All state is scoped to one
// call; callers own caching and persistence.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"polymarket-pnl/internal/domain"
	"polymarket-pnl/internal/ledger"
	"polymarket-pnl/internal/loader"
	"polymarket-pnl/internal/observability"
	"polymarket-pnl/internal/phantom"
	"polymarket-pnl/internal/pnl"
	"polymarket-pnl/internal/sequencer"
	"polymarket-pnl/internal/settle"
	"polymarket-pnl/internal/storage"
	"polymarket-pnl/internal/unify"
)

// DefaultMaxDiagnostics caps external-sell records carried on a result.
const DefaultMaxDiagnostics = 50

// Options for creating an Engine.
type Options struct {
	// Required sources
	Trades      storage.TradeSource
	Settlements storage.SettlementSource
	Markets     storage.MarketSource
	Resolutions storage.ResolutionSource

	// SystemWallets are protocol contracts rejected outright.
	SystemWallets []string

	// ProxyAllowlist holds proxy contract addresses whose fills are
	// attributed to the end-user wallet (external configuration).
	ProxyAllowlist []string

	// DustThreshold below which open inventory is ignored at
	// settlement. Zero uses the default.
	DustThreshold float64

	// MaxDiagnostics caps external-sell records on the result.
	// Zero uses the default.
	MaxDiagnostics int

	Logger zerolog.Logger
}

// Engine computes wallet PnL. Safe for concurrent use: per-call state
// lives on the stack, and the shared catalog is internally locked.
type Engine struct {
	trades      storage.TradeSource
	settlements storage.SettlementSource
	catalog     *Catalog

	loader     *loader.Loader
	unifier    *unify.Unifier
	normalizer *phantom.Normalizer
	settler    *settle.Settler

	systemWallets  map[string]bool
	maxDiagnostics int
	logger         zerolog.Logger

	now func() time.Time
}

// New creates an Engine.
func New(opts Options) *Engine {
	system := make(map[string]bool, len(opts.SystemWallets))
	for _, w := range opts.SystemWallets {
		system[strings.ToLower(w)] = true
	}

	maxDiag := opts.MaxDiagnostics
	if maxDiag <= 0 {
		maxDiag = DefaultMaxDiagnostics
	}

	return &Engine{
		trades:         opts.Trades,
		settlements:    opts.Settlements,
		catalog:        NewCatalog(opts.Markets, opts.Resolutions),
		loader:         loader.New(opts.Logger, opts.ProxyAllowlist),
		unifier:        unify.New(opts.Logger),
		normalizer:     phantom.New(opts.Logger),
		settler:        settle.New(opts.DustThreshold),
		systemWallets:  system,
		maxDiagnostics: maxDiag,
		logger:         opts.Logger,
		now:            time.Now,
	}
}

// Compute reconstructs wallet-level PnL metrics from source events.
// Soft data problems (missing metadata, malformed events) degrade the
// result and its confidence grade; only fetch failures and system
// wallets return an error.
func (e *Engine) Compute(ctx context.Context, wallet string) (*domain.WalletMetrics, error) {
	started := e.now()

	f, err := e.fold(ctx, wallet)
	if err != nil {
		observability.RecordCompute("error", e.now().Sub(started).Seconds())
		return nil, err
	}

	sr := e.settler.Settle(f.positions.Positions(), f.meta, f.resolutions)

	diags := f.positions.ExternalSells()
	observability.RecordExternalSells(len(diags), sumExternalTokens(diags))

	metrics := pnl.Aggregate(wallet, f.positions.Positions(), sr, diags, e.maxDiagnostics, e.now().UnixMilli())

	observability.RecordCompute("ok", e.now().Sub(started).Seconds())
	e.logger.Debug().
		Str("wallet", wallet).
		Int("positions", metrics.PositionsCount).
		Float64("total_pnl", metrics.TotalPnL).
		Str("confidence", string(metrics.PnLConfidence)).
		Msg("wallet computed")

	return metrics, nil
}

// ComputePosition reconstructs a single position for verification
// against upstream ground truth. Returns (nil, nil) when the wallet
// never touched the outcome token.
func (e *Engine) ComputePosition(ctx context.Context, wallet, conditionID string, outcomeIndex int) (*domain.PositionSummary, error) {
	f, err := e.fold(ctx, wallet)
	if err != nil {
		return nil, err
	}

	pairs, err := e.catalog.TokenPairs(ctx, []string{conditionID})
	if err != nil {
		return nil, &FetchError{Wallet: wallet, Stage: "catalog", Err: err}
	}
	pair, ok := pairs[conditionID]
	if !ok {
		return nil, nil
	}

	tokenID := pair.TokenAt(outcomeIndex)
	pos := f.positions.Position(tokenID)
	if pos == nil {
		return nil, nil
	}

	s := &domain.PositionSummary{
		Wallet:       wallet,
		ConditionID:  conditionID,
		OutcomeIndex: outcomeIndex,
		TokenID:      tokenID,
		Amount:       pos.Amount,
		AvgPrice:     pos.AvgPrice,
		RealizedPnL:  pos.RealizedPnL,
		TradeCount:   pos.TradeCount,
	}

	if res, ok := f.resolutions[tokenID]; ok && res.IsResolved {
		s.Resolved = true
		s.PayoutFraction = res.PayoutFractions[outcomeIndex]
	} else if pos.HasInventory(settle.DefaultDustThreshold) {
		s.UnrealizedPnL = pos.Amount * (domain.NeutralMark - pos.AvgPrice)
	}

	return s, nil
}

// foldResult carries the intermediate state shared by Compute and
// ComputePosition.
type foldResult struct {
	positions   *ledger.Ledger
	meta        map[string]domain.TokenMeta
	resolutions map[string]domain.Resolution
}

// fold runs the pipeline up to (and including) ledger application.
func (e *Engine) fold(ctx context.Context, wallet string) (*foldResult, error) {
	if e.systemWallets[strings.ToLower(wallet)] {
		return nil, fmt.Errorf("%w: %s", ErrSystemWallet, wallet)
	}

	rawTrades, err := e.trades.GetTradesByWallet(ctx, wallet)
	if err != nil {
		return nil, &FetchError{Wallet: wallet, Stage: "trades", Err: err}
	}
	rawSettlements, err := e.settlements.GetSettlementsByWallet(ctx, wallet)
	if err != nil {
		return nil, &FetchError{Wallet: wallet, Stage: "settlements", Err: err}
	}

	settlements := e.loader.PrepareSettlements(rawSettlements)
	walletTxs := loader.WalletTxSet(wallet, rawTrades, settlements)
	trades := e.loader.PrepareTrades(wallet, rawTrades, walletTxs)
	observability.RecordEventsLoaded(len(trades), len(settlements))

	meta, resolutions, pairs, err := e.resolveMetadata(ctx, wallet, trades, settlements)
	if err != nil {
		return nil, err
	}

	trades, phantomDropped := e.normalizer.Normalize(trades, meta, splitTxSet(settlements))
	observability.RecordPhantomLegs(phantomDropped)

	events := e.unifier.Unify(trades, settlements, pairs, resolutions)
	sequencer.Sort(events)

	lgr := ledger.New(wallet)
	for _, ev := range events {
		lgr.Apply(ev)
	}

	return &foldResult{positions: lgr, meta: meta, resolutions: resolutions}, nil
}

// resolveMetadata bulk-loads token pairs and resolutions for every
// condition and token the wallet touched, then builds the token
// metadata map. Tokens the catalog cannot place stay unmapped and are
// handled conservatively downstream.
func (e *Engine) resolveMetadata(
	ctx context.Context,
	wallet string,
	trades []*domain.RawTradeEvent,
	settlements []*domain.RawSettlementEvent,
) (map[string]domain.TokenMeta, map[string]domain.Resolution, map[string]domain.TokenPair, error) {
	tokenSet := make(map[string]bool)
	for _, t := range trades {
		tokenSet[t.TokenID] = true
	}

	tradeTokens := keys(tokenSet)
	tokenRes, err := e.catalog.Resolutions(ctx, tradeTokens)
	if err != nil {
		return nil, nil, nil, &FetchError{Wallet: wallet, Stage: "catalog", Err: err}
	}

	condSet := make(map[string]bool)
	for _, s := range settlements {
		condSet[s.ConditionID] = true
	}
	for _, r := range tokenRes {
		condSet[r.ConditionID] = true
	}

	pairs, err := e.catalog.TokenPairs(ctx, keys(condSet))
	if err != nil {
		return nil, nil, nil, &FetchError{Wallet: wallet, Stage: "catalog", Err: err}
	}

	for _, p := range pairs {
		tokenSet[p.Token0] = true
		tokenSet[p.Token1] = true
	}
	resolutions, err := e.catalog.Resolutions(ctx, keys(tokenSet))
	if err != nil {
		return nil, nil, nil, &FetchError{Wallet: wallet, Stage: "catalog", Err: err}
	}

	meta := make(map[string]domain.TokenMeta, 2*len(pairs))
	for condID, p := range pairs {
		meta[p.Token0] = domain.TokenMeta{ConditionID: condID, OutcomeIndex: 0}
		meta[p.Token1] = domain.TokenMeta{ConditionID: condID, OutcomeIndex: 1}
	}

	return meta, resolutions, pairs, nil
}

// splitTxSet collects tx hashes containing an on-chain Split, used by
// phantom leg selection.
func splitTxSet(settlements []*domain.RawSettlementEvent) map[string]bool {
	txs := make(map[string]bool)
	for _, s := range settlements {
		if s.Type == domain.SettlementSplit {
			txs[s.TxHash] = true
		}
	}
	return txs
}

func sumExternalTokens(records []domain.ExternalSellRecord) float64 {
	var sum float64
	for _, r := range records {
		sum += r.Amount
	}
	return sum
}

func keys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
