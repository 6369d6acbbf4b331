package host

import (
	"errors"
	"fmt"
	"sync"

	sdkmath "cosmossdk.io/math"

	"github.com/Cogwheel-Validator/spectra-contracts/wasm/types"
)

var ErrInsufficientFunds = errors.New("insufficient funds")

// Bank is a minimal balance ledger used for supply and balance queries and for
// moving the funds attached to execute calls.
type Bank struct {
	mu       sync.RWMutex
	balances map[string]map[string]sdkmath.Uint
	supply   map[string]sdkmath.Uint
}

func NewBank() *Bank {
	return &Bank{
		balances: make(map[string]map[string]sdkmath.Uint),
		supply:   make(map[string]sdkmath.Uint),
	}
}

// Mint creates coins for addr and grows the total supply.
func (b *Bank) Mint(addr string, coins ...types.Coin) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, c := range coins {
		supply, err := types.CheckedAdd(b.supply[c.Denom], c.Amount)
		if err != nil {
			return fmt.Errorf("failed to mint %s: %w", c, err)
		}
		bal, err := types.CheckedAdd(b.balanceLocked(addr, c.Denom), c.Amount)
		if err != nil {
			return fmt.Errorf("failed to mint %s: %w", c, err)
		}
		b.supply[c.Denom] = supply
		b.setLocked(addr, c.Denom, bal)
	}
	return nil
}

// Send moves coins between accounts; nothing moves if any coin is short.
func (b *Bank) Send(from, to string, coins types.Coins) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, c := range coins {
		if b.balanceLocked(from, c.Denom).LT(types.OrZero(c.Amount)) {
			return fmt.Errorf("%s has less than %s: %w", from, c, ErrInsufficientFunds)
		}
	}
	for _, c := range coins {
		fromBal, err := types.CheckedSub(b.balanceLocked(from, c.Denom), c.Amount)
		if err != nil {
			return fmt.Errorf("%s has less than %s: %w", from, c, ErrInsufficientFunds)
		}
		toBal, err := types.CheckedAdd(b.balanceLocked(to, c.Denom), c.Amount)
		if err != nil {
			return fmt.Errorf("failed to credit %s: %w", to, err)
		}
		b.setLocked(from, c.Denom, fromBal)
		b.setLocked(to, c.Denom, toBal)
	}
	return nil
}

func (b *Bank) Balance(addr, denom string) types.Coin {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return types.Coin{Denom: denom, Amount: b.balanceLocked(addr, denom)}
}

func (b *Bank) Supply(denom string) types.Coin {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return types.Coin{Denom: denom, Amount: types.OrZero(b.supply[denom])}
}

func (b *Bank) balanceLocked(addr, denom string) sdkmath.Uint {
	return types.OrZero(b.balances[addr][denom])
}

func (b *Bank) setLocked(addr, denom string, amount sdkmath.Uint) {
	if b.balances[addr] == nil {
		b.balances[addr] = make(map[string]sdkmath.Uint)
	}
	b.balances[addr][denom] = amount
}

type bankSnapshot struct {
	balances map[string]map[string]sdkmath.Uint
	supply   map[string]sdkmath.Uint
}

func (b *Bank) snapshot() bankSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	snap := bankSnapshot{
		balances: make(map[string]map[string]sdkmath.Uint, len(b.balances)),
		supply:   make(map[string]sdkmath.Uint, len(b.supply)),
	}
	for addr, denoms := range b.balances {
		cp := make(map[string]sdkmath.Uint, len(denoms))
		for d, amt := range denoms {
			cp[d] = amt
		}
		snap.balances[addr] = cp
	}
	for d, amt := range b.supply {
		snap.supply[d] = amt
	}
	return snap
}

// restore rolls the ledger back after a failed call.
func (b *Bank) restore(snap bankSnapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances = snap.balances
	b.supply = snap.supply
}
