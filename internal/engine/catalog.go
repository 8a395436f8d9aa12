package engine

import (
	"context"
	"sync"

	"polymarket-pnl/internal/domain"
	"polymarket-pnl/internal/storage"
)

// Catalog is the shared market-metadata cache: condition to token-pair
// mappings and token resolutions. Entries are bulk-loaded on first
// request and immutable afterwards; unresolvable ids are negatively
// cached so repeated wallets do not re-query them. Safe for concurrent
// use by batch workers.
type Catalog struct {
	markets     storage.MarketSource
	resolutions storage.ResolutionSource

	mu           sync.RWMutex
	pairs        map[string]domain.TokenPair
	res          map[string]domain.Resolution
	missingPairs map[string]bool
	missingRes   map[string]bool
}

// NewCatalog creates an empty catalog over the given sources.
func NewCatalog(markets storage.MarketSource, resolutions storage.ResolutionSource) *Catalog {
	return &Catalog{
		markets:      markets,
		resolutions:  resolutions,
		pairs:        make(map[string]domain.TokenPair),
		res:          make(map[string]domain.Resolution),
		missingPairs: make(map[string]bool),
		missingRes:   make(map[string]bool),
	}
}

// TokenPairs returns pair mappings for the requested conditions,
// fetching unseen ids in one bulk call. Conditions without a mapping
// are absent from the result.
func (c *Catalog) TokenPairs(ctx context.Context, conditionIDs []string) (map[string]domain.TokenPair, error) {
	out := make(map[string]domain.TokenPair, len(conditionIDs))

	c.mu.RLock()
	var missing []string
	for _, id := range conditionIDs {
		if p, ok := c.pairs[id]; ok {
			out[id] = p
		} else if !c.missingPairs[id] {
			missing = append(missing, id)
		}
	}
	c.mu.RUnlock()

	if len(missing) == 0 {
		return out, nil
	}

	fetched, err := c.markets.GetTokenPairs(ctx, missing)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	for _, id := range missing {
		if p, ok := fetched[id]; ok {
			c.pairs[id] = p
			out[id] = p
		} else {
			c.missingPairs[id] = true
		}
	}
	c.mu.Unlock()

	return out, nil
}

// Resolutions returns resolution state for the requested tokens,
// fetching unseen ids in one bulk call. Tokens with unknown metadata
// are absent from the result.
func (c *Catalog) Resolutions(ctx context.Context, tokenIDs []string) (map[string]domain.Resolution, error) {
	out := make(map[string]domain.Resolution, len(tokenIDs))

	c.mu.RLock()
	var missing []string
	for _, id := range tokenIDs {
		if r, ok := c.res[id]; ok {
			out[id] = r
		} else if !c.missingRes[id] {
			missing = append(missing, id)
		}
	}
	c.mu.RUnlock()

	if len(missing) == 0 {
		return out, nil
	}

	fetched, err := c.resolutions.GetResolutions(ctx, missing)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	for _, id := range missing {
		if r, ok := fetched[id]; ok {
			c.res[id] = r
			out[id] = r
		} else {
			c.missingRes[id] = true
		}
	}
	c.mu.Unlock()

	return out, nil
}
