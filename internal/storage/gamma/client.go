// Package gamma implements market metadata sources against the
// Polymarket Gamma API.
package gamma

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"polymarket-pnl/internal/domain"
	"polymarket-pnl/internal/storage"
)

// Gamma returns list fields (clobTokenIds, outcomePrices) as
// JSON-encoded strings inside the JSON response.
type gammaMarket struct {
	ConditionID   string `json:"conditionId"`
	ClobTokenIDs  string `json:"clobTokenIds"`
	OutcomePrices string `json:"outcomePrices"`
	Closed        bool   `json:"closed"`
}

// Client implements storage.MarketSource and storage.ResolutionSource
// over HTTP. Responses are not cached here; the engine's catalog owns
// caching.
type Client struct {
	http *resty.Client
}

// NewClient creates a Gamma API client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)
	return &Client{http: c}
}

// Compile-time interface checks.
var (
	_ storage.MarketSource     = (*Client)(nil)
	_ storage.ResolutionSource = (*Client)(nil)
)

// GetTokenPairs resolves condition ids to outcome token pairs.
// Conditions the API does not know are absent from the result.
func (c *Client) GetTokenPairs(ctx context.Context, conditionIDs []string) (map[string]domain.TokenPair, error) {
	if len(conditionIDs) == 0 {
		return map[string]domain.TokenPair{}, nil
	}

	markets, err := c.fetchMarkets(ctx, "condition_ids", conditionIDs)
	if err != nil {
		return nil, err
	}

	out := make(map[string]domain.TokenPair, len(markets))
	for _, m := range markets {
		pair, ok := tokenPair(m)
		if !ok {
			continue
		}
		out[m.ConditionID] = pair
	}
	return out, nil
}

// GetResolutions resolves token ids to their condition's resolution
// state. Tokens the API does not know are absent from the result.
func (c *Client) GetResolutions(ctx context.Context, tokenIDs []string) (map[string]domain.Resolution, error) {
	if len(tokenIDs) == 0 {
		return map[string]domain.Resolution{}, nil
	}

	markets, err := c.fetchMarkets(ctx, "clob_token_ids", tokenIDs)
	if err != nil {
		return nil, err
	}

	out := make(map[string]domain.Resolution, len(tokenIDs))
	for _, m := range markets {
		pair, ok := tokenPair(m)
		if !ok {
			continue
		}
		res, ok := resolution(m)
		if !ok {
			continue
		}
		out[pair.Token0] = res
		out[pair.Token1] = res
	}
	return out, nil
}

func (c *Client) fetchMarkets(ctx context.Context, param string, ids []string) ([]gammaMarket, error) {
	values := url.Values{}
	for _, id := range ids {
		values.Add(param, id)
	}

	var markets []gammaMarket
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(values).
		SetResult(&markets).
		Get("/markets")
	if err != nil {
		return nil, fmt.Errorf("gamma markets request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("gamma markets request: status %d", resp.StatusCode())
	}
	return markets, nil
}

// tokenPair decodes the JSON-encoded token id list of a market.
// Markets without exactly two outcome tokens are skipped.
func tokenPair(m gammaMarket) (domain.TokenPair, bool) {
	var tokens []string
	if err := json.Unmarshal([]byte(m.ClobTokenIDs), &tokens); err != nil || len(tokens) != 2 {
		return domain.TokenPair{}, false
	}
	if tokens[0] == "" || tokens[1] == "" {
		return domain.TokenPair{}, false
	}
	return domain.TokenPair{ConditionID: m.ConditionID, Token0: tokens[0], Token1: tokens[1]}, true
}

// resolution decodes the market's outcome prices. A closed market's
// prices are its payout fractions; an open market values at the
// neutral mark downstream.
func resolution(m gammaMarket) (domain.Resolution, bool) {
	res := domain.Resolution{ConditionID: m.ConditionID}
	if !m.Closed {
		return res, true
	}

	var raw []string
	if err := json.Unmarshal([]byte(m.OutcomePrices), &raw); err != nil || len(raw) != 2 {
		return domain.Resolution{}, false
	}

	var fractions [2]float64
	for i, p := range raw {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return domain.Resolution{}, false
		}
		fractions[i] = f
	}

	res.PayoutFractions = fractions
	res.IsResolved = true
	return res, true
}
