package ratelimiter

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Cogwheel-Validator/spectra-contracts/contracts/registry"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/host"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/storage"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/types"
)

// checkDenomRestriction blocks outbound transfers of a restricted denom
// through any channel outside its allowlist. Inbound transfers and
// unlisted denoms always pass.
func checkDenomRestriction(store storage.KVStore, channel, denom string, direction Direction) error {
	if direction == In {
		return nil
	}
	allowed, found, err := acceptedChannelsForRestrictedDenom.May(store, denom)
	if err != nil {
		return err
	}
	if !found || slices.Contains(allowed, channel) {
		return nil
	}
	return &ChannelBlockedError{Channel: channel, Denom: denom}
}

func setDenomRestrictions(deps host.Deps, denom string, channels []string) (*types.Response, error) {
	if denom == "" {
		return nil, fmt.Errorf("denom is required: %w", ErrInvalidInput)
	}
	for _, ch := range channels {
		if err := registry.ValidateChannelID(ch); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
	}
	if err := acceptedChannelsForRestrictedDenom.Save(deps.Storage, denom, channels); err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("method", "set_denom_restrictions").
		AddAttribute("denom", denom).
		AddAttribute("allowed_channels", strings.Join(channels, ",")), nil
}

func unsetDenomRestrictions(deps host.Deps, denom string) (*types.Response, error) {
	if err := acceptedChannelsForRestrictedDenom.Remove(deps.Storage, denom); err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("method", "unset_denom_restrictions").
		AddAttribute("denom", denom), nil
}
