// Package genesis seeds a fresh contract host from a fixture: it mints the
// listed balances and instantiates each contract kind in order.
package genesis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/rs/zerolog"

	"github.com/Cogwheel-Validator/spectra-contracts/contracthost/chainreg"
	"github.com/Cogwheel-Validator/spectra-contracts/contracthost/config"
	"github.com/Cogwheel-Validator/spectra-contracts/contracts/affiliateswap"
	"github.com/Cogwheel-Validator/spectra-contracts/contracts/crosschainswaps"
	"github.com/Cogwheel-Validator/spectra-contracts/contracts/ratelimiter"
	"github.com/Cogwheel-Validator/spectra-contracts/contracts/registry"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/host"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/types"
)

var Logger zerolog.Logger

func init() {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	Logger = zerolog.New(output).With().Timestamp().Str("component", "genesis").Logger()
}

// SetLogger allows setting a custom logger
func SetLogger(l zerolog.Logger) {
	Logger = l
}

var (
	ErrUnknownKind  = errors.New("unknown contract kind")
	ErrUnknownLabel = errors.New("unknown contract label")
)

var placeholder = regexp.MustCompile(`\$([A-Za-z0-9_\-]+)`)

// NewContract returns a fresh contract for a fixture kind.
func NewContract(kind string) (host.Contract, error) {
	switch kind {
	case "ratelimiter":
		return ratelimiter.New(), nil
	case "registry":
		return registry.New(), nil
	case "affiliateswap":
		return affiliateswap.New(), nil
	case "crosschainswaps":
		return crosschainswaps.New(), nil
	default:
		return nil, fmt.Errorf("%q: %w", kind, ErrUnknownKind)
	}
}

// Apply mints the fixture balances and instantiates its contracts in order.
// "$label" in a sender, msg or execute expands to the address of a contract
// instantiated earlier in the same fixture.
func Apply(ctx context.Context, h *host.Host, fixture *config.Fixture) error {
	for _, b := range fixture.Balances {
		amount, err := types.ParseAmount(b.Amount)
		if err != nil {
			return fmt.Errorf("balance of %s: %w", b.Address, err)
		}
		if err := h.Bank().Mint(b.Address, types.Coin{Denom: b.Denom, Amount: amount}); err != nil {
			return err
		}
	}

	for _, c := range fixture.Contracts {
		contract, err := NewContract(c.Kind)
		if err != nil {
			return fmt.Errorf("contract %s: %w", c.Label, err)
		}
		sender, err := expand(h, c.Sender)
		if err != nil {
			return fmt.Errorf("contract %s: %w", c.Label, err)
		}
		msg, err := expand(h, c.Msg)
		if err != nil {
			return fmt.Errorf("contract %s: %w", c.Label, err)
		}
		addr, _, err := h.Instantiate(ctx, c.Label, contract, sender, nil, []byte(msg))
		if err != nil {
			return fmt.Errorf("failed to instantiate %s: %w", c.Label, err)
		}
		Logger.Info().Str("label", c.Label).Str("kind", c.Kind).Str("address", addr).Msg("instantiated contract")

		for i, e := range c.Executes {
			exec, err := expand(h, e)
			if err != nil {
				return fmt.Errorf("contract %s execute %d: %w", c.Label, i, err)
			}
			if _, err := h.Execute(ctx, addr, sender, nil, []byte(exec)); err != nil {
				return fmt.Errorf("contract %s execute %d: %w", c.Label, i, err)
			}
		}
	}

	if fixture.ChainRegistry != nil {
		return seedRegistry(ctx, h, fixture.ChainRegistry)
	}
	return nil
}

func seedRegistry(ctx context.Context, h *host.Host, cr *config.ChainRegistryFixture) error {
	addr, ok := h.Address(cr.Registry)
	if !ok {
		return fmt.Errorf("chain registry seed: %s: %w", cr.Registry, ErrUnknownLabel)
	}
	if cr.Source != "" {
		if err := chainreg.Download(ctx, cr.Source, cr.Dir); err != nil {
			return err
		}
	}
	msgs, err := chainreg.Messages(cr.Dir, cr.Chains)
	if err != nil {
		return fmt.Errorf("chain registry seed: %w", err)
	}
	for _, msg := range msgs {
		if _, err := h.Execute(ctx, addr, cr.Sender, nil, msg); err != nil {
			return fmt.Errorf("chain registry seed: %w", err)
		}
	}
	Logger.Info().Strs("chains", cr.Chains).Int("messages", len(msgs)).Msg("seeded registry from chain registry")
	return nil
}

func expand(h *host.Host, s string) (string, error) {
	var missing error
	out := placeholder.ReplaceAllStringFunc(s, func(m string) string {
		label := m[1:]
		addr, ok := h.Address(label)
		if !ok {
			missing = fmt.Errorf("%s: %w", label, ErrUnknownLabel)
			return m
		}
		return addr
	})
	return out, missing
}
