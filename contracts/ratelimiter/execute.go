package ratelimiter

import (
	"fmt"

	"github.com/Cogwheel-Validator/spectra-contracts/wasm/host"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/types"
)

// addNewPaths stores a fresh set of quotas for each path, replacing whatever
// the path tracked before.
func addNewPaths(deps host.Deps, paths []PathMsg, now types.Timestamp) error {
	for _, p := range paths {
		if p.ChannelID == "" || p.Denom == "" {
			return fmt.Errorf("path requires channel_id and denom: %w", ErrInvalidInput)
		}
		limits := make([]RateLimit, 0, len(p.Quotas))
		for _, q := range p.Quotas {
			if err := q.validate(); err != nil {
				return err
			}
			limits = append(limits, NewRateLimit(q, now))
		}
		if err := saveTrackers(deps.Storage, NewPath(p.ChannelID, p.Denom), limits); err != nil {
			return err
		}
	}
	return nil
}

func tryAddRateLimit(deps host.Deps, env types.Env, msg PathMsg) (*types.Response, error) {
	if err := addNewPaths(deps, []PathMsg{msg}, env.Block.Time); err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("method", "try_add_rate_limit").
		AddAttribute("channel_id", msg.ChannelID).
		AddAttribute("denom", msg.Denom), nil
}

func tryRemovePath(deps host.Deps, channelID, denom string) (*types.Response, error) {
	if err := rateLimitTrackers.Remove(deps.Storage, pathKey(NewPath(channelID, denom))); err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("method", "try_remove_rate_limit").
		AddAttribute("channel_id", channelID).
		AddAttribute("denom", denom), nil
}

// tryResetPathQuota starts a new period for the named quota of a path.
func tryResetPathQuota(deps host.Deps, env types.Env, channelID, denom, quotaID string) (*types.Response, error) {
	path := NewPath(channelID, denom)
	_, err := rateLimitTrackers.Update(deps.Storage, pathKey(path), func(limits []RateLimit, found bool) ([]RateLimit, error) {
		if !found {
			return nil, fmt.Errorf("path %s/%s: %w", channelID, denom, ErrQuotaNotFound)
		}
		for i := range limits {
			if limits[i].Quota.Name == quotaID {
				limits[i].Flow.Expire(env.Block.Time, limits[i].Quota.Duration)
			}
		}
		return limits, nil
	})
	if err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("method", "try_reset_channel").
		AddAttribute("channel_id", channelID).
		AddAttribute("denom", denom).
		AddAttribute("quota_id", quotaID), nil
}

// editPathQuota replaces the named quota's limits and keeps its cached channel value.
func editPathQuota(deps host.Deps, channelID, denom string, quota QuotaMsg) (*types.Response, error) {
	if err := quota.validate(); err != nil {
		return nil, err
	}
	path := NewPath(channelID, denom)
	_, err := rateLimitTrackers.Update(deps.Storage, pathKey(path), func(limits []RateLimit, found bool) ([]RateLimit, error) {
		if !found {
			return nil, fmt.Errorf("path %s/%s: %w", channelID, denom, ErrQuotaNotFound)
		}
		for i := range limits {
			if limits[i].Quota.Name != quota.Name {
				continue
			}
			edited := NewQuota(quota)
			edited.ChannelValue = limits[i].Quota.ChannelValue
			limits[i].Quota = edited
		}
		return limits, nil
	})
	if err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("method", "edit_path_quota").
		AddAttribute("channel_id", channelID).
		AddAttribute("denom", denom).
		AddAttribute("quota_id", quota.Name), nil
}
