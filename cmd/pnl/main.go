// Command pnl computes realized and unrealized PnL for one wallet and
// prints the result as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"polymarket-pnl/internal/app"
	"polymarket-pnl/internal/config"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to YAML config")
	wallet := flag.String("wallet", "", "Wallet address to compute")
	flag.Parse()

	if *wallet == "" {
		fmt.Fprintln(os.Stderr, "missing required -wallet flag")
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	a, err := app.Build(ctx, cfg, "pnl")
	if err != nil {
		fmt.Fprintf(os.Stderr, "wiring error: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	metrics, err := a.Engine.Compute(ctx, *wallet)
	if err != nil {
		fmt.Fprintf(os.Stderr, "compute error: %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(metrics, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
