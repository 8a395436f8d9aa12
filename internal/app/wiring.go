// Package app wires configured backends into a ready engine.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"polymarket-pnl/internal/config"
	"polymarket-pnl/internal/engine"
	"polymarket-pnl/internal/observability"
	"polymarket-pnl/internal/storage"
	"polymarket-pnl/internal/storage/clickhouse"
	"polymarket-pnl/internal/storage/gamma"
	"polymarket-pnl/internal/storage/migrations"
	"polymarket-pnl/internal/storage/postgres"
)

// App holds the wired components and their teardown.
type App struct {
	Engine       *engine.Engine
	MetricsStore storage.WalletMetricsStore // nil without a postgres DSN
	Logger       zerolog.Logger

	closers []func()
}

// Build connects to the configured backends and assembles the engine.
// ClickHouse provides raw events; the Gamma API provides market
// metadata; Postgres (optional) persists results.
func Build(ctx context.Context, cfg *config.Config, component string) (*App, error) {
	logger := observability.NewLogger(component, cfg.Logging.Level, cfg.Logging.Format)

	a := &App{Logger: logger}

	if cfg.Stores.ClickhouseDSN == "" {
		return nil, fmt.Errorf("clickhouse_dsn is required")
	}
	conn, err := migrations.RunClickhouseMigrations(ctx, cfg.Stores.ClickhouseDSN)
	if err != nil {
		return nil, fmt.Errorf("clickhouse: %w", err)
	}
	a.closers = append(a.closers, func() { conn.Close() })

	gammaClient := gamma.NewClient(cfg.Stores.Gamma.BaseURL, cfg.Stores.Gamma.Timeout)

	if cfg.Stores.PostgresDSN != "" {
		pool, err := postgres.NewPool(ctx, cfg.Stores.PostgresDSN)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("postgres: %w", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			a.Close()
			return nil, fmt.Errorf("postgres migrations: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		a.MetricsStore = postgres.NewWalletMetricsStore(pool)
	}

	a.Engine = engine.New(engine.Options{
		Trades:         clickhouse.NewTradeSource(conn),
		Settlements:    clickhouse.NewSettlementSource(conn),
		Markets:        gammaClient,
		Resolutions:    gammaClient,
		SystemWallets:  cfg.Engine.SystemWallets,
		ProxyAllowlist: cfg.Engine.ProxyAllowlist,
		DustThreshold:  cfg.Engine.DustThreshold,
		MaxDiagnostics: cfg.Engine.MaxDiagnostics,
		Logger:         logger,
	})

	if cfg.Metrics.Enabled {
		go serveMetrics(cfg.Metrics.Addr, logger)
	}

	return a, nil
}

// Close tears down connections in reverse wiring order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func serveMetrics(addr string, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error().Err(err).Str("addr", addr).Msg("metrics endpoint failed")
	}
}
