// Command position reconstructs a single wallet position for
// verification against upstream ground truth.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"polymarket-pnl/internal/app"
	"polymarket-pnl/internal/config"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to YAML config")
	wallet := flag.String("wallet", "", "Wallet address")
	conditionID := flag.String("condition", "", "Condition id")
	outcomeIndex := flag.Int("outcome", 0, "Outcome index (0 or 1)")
	flag.Parse()

	if *wallet == "" || *conditionID == "" {
		fmt.Fprintln(os.Stderr, "missing required -wallet or -condition flag")
		os.Exit(2)
	}

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	a, err := app.Build(ctx, cfg, "position")
	if err != nil {
		fmt.Fprintf(os.Stderr, "wiring error: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	summary, err := a.Engine.ComputePosition(ctx, *wallet, *conditionID, *outcomeIndex)
	if err != nil {
		fmt.Fprintf(os.Stderr, "compute error: %v\n", err)
		os.Exit(1)
	}
	if summary == nil {
		fmt.Println("no position for this wallet and outcome")
		return
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
