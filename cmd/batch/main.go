// Command batch computes PnL for a list of wallets (one address per
// line on stdin or in -wallets-file) over a bounded worker pool,
// persisting results when Postgres is configured.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"polymarket-pnl/internal/app"
	"polymarket-pnl/internal/batch"
	"polymarket-pnl/internal/config"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to YAML config")
	walletsFile := flag.String("wallets-file", "", "File with one wallet address per line (default: stdin)")
	concurrency := flag.Int("concurrency", 0, "Worker pool size (default: config value)")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nreceived signal, finishing in-flight wallets...")
		cancel()
	}()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if *concurrency > 0 {
		cfg.Batch.Concurrency = *concurrency
	}

	wallets, err := readWallets(*walletsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read wallets: %v\n", err)
		os.Exit(1)
	}
	if len(wallets) == 0 {
		fmt.Fprintln(os.Stderr, "no wallets to compute")
		os.Exit(2)
	}

	a, err := app.Build(ctx, cfg, "batch")
	if err != nil {
		fmt.Fprintf(os.Stderr, "wiring error: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	runner := batch.NewRunner(batch.Options{
		Engine:      a.Engine,
		Concurrency: cfg.Batch.Concurrency,
		Store:       a.MetricsStore,
		Logger:      a.Logger,
	})

	result, runErr := runner.Run(ctx, wallets, func(done, total int, wallet string, err error) {
		status := "ok"
		if err != nil {
			status = "FAILED"
		}
		fmt.Printf("[%d/%d] %s %s\n", done, total, wallet, status)
	})

	fmt.Printf("run %s: %d computed, %d failed in %s\n",
		result.RunID, len(result.Metrics), len(result.Failures), result.Duration)
	for _, f := range result.Failures {
		fmt.Printf("  %s: %v\n", f.Wallet, f.Err)
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "batch interrupted: %v\n", runErr)
		os.Exit(1)
	}
}

func readWallets(path string) ([]string, error) {
	var r io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var wallets []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		wallets = append(wallets, line)
	}
	return wallets, scanner.Err()
}
