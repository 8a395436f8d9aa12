// Package loader prepares raw events for computation: deduplication by
// event id, malformed-event filtering and proxy-trade attribution.
package loader

import (
	"math"
	"strings"

	"github.com/rs/zerolog"

	"polymarket-pnl/internal/domain"
	"polymarket-pnl/internal/observability"
)

// Loader cleans one wallet's raw event set. Stateless across calls;
// the proxy allowlist is external configuration, never hardcoded.
type Loader struct {
	logger  zerolog.Logger
	proxies map[string]bool
}

// New creates a Loader. proxyAllowlist holds addresses of proxy
// contracts (e.g. Safe wallets) whose fills are attributed to the
// end-user wallet when they share a transaction with it.
func New(logger zerolog.Logger, proxyAllowlist []string) *Loader {
	proxies := make(map[string]bool, len(proxyAllowlist))
	for _, p := range proxyAllowlist {
		proxies[normalizeAddress(p)] = true
	}
	return &Loader{logger: logger, proxies: proxies}
}

// PrepareTrades deduplicates, validates and attributes fills.
// walletTxs is the set of tx hashes of the wallet's own on-chain
// activity, used to match proxy fills to the wallet.
//
// A fill survives when its maker is the wallet itself, or an
// allowlisted proxy acting in a transaction the wallet participated in.
// Foreign-maker fills outside the allowlist are dropped.
func (l *Loader) PrepareTrades(wallet string, trades []*domain.RawTradeEvent, walletTxs map[string]bool) []*domain.RawTradeEvent {
	wallet = normalizeAddress(wallet)
	seen := make(map[string]bool, len(trades))
	out := make([]*domain.RawTradeEvent, 0, len(trades))

	for _, t := range trades {
		if seen[t.EventID] {
			continue
		}
		seen[t.EventID] = true

		if !validTrade(t) {
			l.logger.Warn().
				Str("event_id", t.EventID).
				Float64("token_amount", t.TokenAmount).
				Float64("usdc_amount", t.USDCAmount).
				Msg("dropping malformed trade event")
			observability.RecordMalformedEvent("trade")
			continue
		}

		maker := normalizeAddress(t.Maker)
		switch {
		case maker == "" || maker == wallet:
			out = append(out, t)
		case l.proxies[maker] && walletTxs[t.TxHash]:
			out = append(out, t)
		default:
			l.logger.Debug().
				Str("event_id", t.EventID).
				Str("maker", t.Maker).
				Msg("dropping fill from unattributable maker")
		}
	}
	return out
}

// PrepareSettlements deduplicates and validates settlement events.
func (l *Loader) PrepareSettlements(settlements []*domain.RawSettlementEvent) []*domain.RawSettlementEvent {
	seen := make(map[string]bool, len(settlements))
	out := make([]*domain.RawSettlementEvent, 0, len(settlements))

	for _, s := range settlements {
		if seen[s.EventID] {
			continue
		}
		seen[s.EventID] = true

		if !validSettlement(s) {
			l.logger.Warn().
				Str("event_id", s.EventID).
				Str("type", string(s.Type)).
				Float64("token_amount", s.TokenAmount).
				Msg("dropping malformed settlement event")
			observability.RecordMalformedEvent("settlement")
			continue
		}
		out = append(out, s)
	}
	return out
}

// WalletTxSet collects the tx hashes of a wallet's on-chain activity.
func WalletTxSet(wallet string, trades []*domain.RawTradeEvent, settlements []*domain.RawSettlementEvent) map[string]bool {
	wallet = normalizeAddress(wallet)
	txs := make(map[string]bool)
	for _, s := range settlements {
		txs[s.TxHash] = true
	}
	for _, t := range trades {
		if normalizeAddress(t.Maker) == wallet || t.Maker == "" {
			txs[t.TxHash] = true
		}
	}
	return txs
}

func validTrade(t *domain.RawTradeEvent) bool {
	return finite(t.TokenAmount) && t.TokenAmount >= 0 &&
		finite(t.USDCAmount) && t.USDCAmount >= 0 &&
		t.Timestamp > 0 && t.TokenID != ""
}

func validSettlement(s *domain.RawSettlementEvent) bool {
	return finite(s.TokenAmount) && s.TokenAmount >= 0 &&
		s.Timestamp > 0 && s.ConditionID != ""
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// normalizeAddress lowercases EVM hex addresses so attribution is
// checksum-insensitive.
func normalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}
