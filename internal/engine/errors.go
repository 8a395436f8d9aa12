package engine

import (
	"errors"
	"fmt"
)

// ErrSystemWallet is returned when PnL is requested for a known
// protocol or system contract. Those addresses hold inventory for the
// exchange itself; treating them as user wallets produces garbage.
var ErrSystemWallet = errors.New("system wallet is not a tradable user wallet")

// FetchError wraps a failure loading one wallet's data. In a batch it
// fails only that wallet's entry.
type FetchError struct {
	Wallet string
	Stage  string // "trades", "settlements", "catalog"
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s for wallet %s: %v", e.Stage, e.Wallet, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
