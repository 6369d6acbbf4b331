package ratelimiter

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/Cogwheel-Validator/spectra-contracts/wasm/host"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/types"
)

// processPacket resolves the path, amount and channel value of a packet and
// runs it through tryTransfer.
func (c *Contract) processPacket(
	deps host.Deps,
	env types.Env,
	packet Packet,
	direction Direction,
	channelValue *sdkmath.Uint,
) (*types.Response, error) {
	path := packet.Path(direction)
	funds, err := packet.Funds()
	if err != nil {
		return nil, err
	}

	if err := checkDenomRestriction(deps.Storage, path.Channel, path.Denom, direction); err != nil {
		return nil, err
	}

	value := channelValue
	if value == nil {
		supply, err := deps.Querier.QuerySupply(path.Denom)
		if err != nil {
			return nil, fmt.Errorf("supply of %s: %w: %w", path.Denom, ErrExternalCallFailed, err)
		}
		amount := types.OrZero(supply.Amount)
		value = &amount
	}

	return c.tryTransfer(deps, env, path, direction, funds, *value)
}

// tryTransfer checks a transfer against the quotas of its path and of the
// wildcard channel for its denom. Either every quota admits it and all of them
// are persisted, or nothing is written.
func (c *Contract) tryTransfer(
	deps host.Deps,
	env types.Env,
	path Path,
	direction Direction,
	funds sdkmath.Uint,
	channelValue sdkmath.Uint,
) (*types.Response, error) {
	anyPath := NewPath(AnyChannel, path.Denom)

	trackers, err := loadTrackers(deps.Storage, path)
	if err != nil {
		return nil, err
	}
	var anyTrackers []RateLimit
	if path.Channel != AnyChannel {
		if anyTrackers, err = loadTrackers(deps.Storage, anyPath); err != nil {
			return nil, err
		}
	}

	res := types.NewResponse().
		AddAttribute("method", "try_transfer").
		AddAttribute("channel_id", path.Channel).
		AddAttribute("denom", path.Denom)

	if len(trackers) == 0 && len(anyTrackers) == 0 {
		return res.AddAttribute("quota", "none"), nil
	}

	now := env.Block.Time
	allow := func(p Path, limits []RateLimit) ([]RateLimit, error) {
		updated := make([]RateLimit, 0, len(limits))
		for _, limit := range limits {
			next, err := limit.AllowTransfer(p, direction, funds, channelValue, now)
			if err != nil {
				return nil, err
			}
			updated = append(updated, next)
		}
		return updated, nil
	}

	anyUpdated, err := allow(anyPath, anyTrackers)
	if err != nil {
		return nil, err
	}
	updated, err := allow(path, trackers)
	if err != nil {
		return nil, err
	}

	if c.verbose {
		for _, limit := range anyUpdated {
			res.AddAttributes(limit.attributes()...)
		}
		for _, limit := range updated {
			res.AddAttributes(limit.attributes()...)
		}
	}

	if len(anyUpdated) > 0 {
		if err := saveTrackers(deps.Storage, anyPath, anyUpdated); err != nil {
			return nil, err
		}
	}
	if len(updated) > 0 {
		if err := saveTrackers(deps.Storage, path, updated); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// undoSend reverts the outflow of a send that failed or timed out, on both the
// packet path and the wildcard path. Period boundaries and channel values stay as they are.
func undoSend(deps host.Deps, packet Packet) (*types.Response, error) {
	path := packet.Path(Out)
	funds, err := packet.Funds()
	if err != nil {
		return nil, err
	}

	paths := []Path{path}
	if path.Channel != AnyChannel {
		paths = append(paths, NewPath(AnyChannel, path.Denom))
	}
	for _, p := range paths {
		trackers, err := loadTrackers(deps.Storage, p)
		if err != nil {
			return nil, err
		}
		if len(trackers) == 0 {
			continue
		}
		for i := range trackers {
			trackers[i].Flow.UndoFlow(Out, funds)
		}
		if err := saveTrackers(deps.Storage, p, trackers); err != nil {
			return nil, err
		}
	}

	return types.NewResponse().
		AddAttribute("method", "undo_send").
		AddAttribute("channel_id", path.Channel).
		AddAttribute("denom", path.Denom).
		AddAttribute("amount", funds.String()), nil
}
