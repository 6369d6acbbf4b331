package ratelimiter

import (
	"encoding/json"
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/shopspring/decimal"

	"github.com/Cogwheel-Validator/spectra-contracts/wasm/host"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/types"
)

// RoleOwner is one entry of the get_role_owners response.
type RoleOwner struct {
	Owner string `json:"owner"`
	Roles []Role `json:"roles"`
}

func queryQuotas(deps host.Deps, q PathQuery) ([]RateLimit, error) {
	trackers, err := loadTrackers(deps.Storage, NewPath(q.ChannelID, q.Denom))
	if err != nil {
		return nil, err
	}
	if trackers == nil {
		trackers = []RateLimit{}
	}
	return trackers, nil
}

// queryUsage reports each quota's current period as amounts and percentages.
// Quotas whose period already ended report zero usage.
func queryUsage(deps host.Deps, env types.Env, q PathQuery) ([]QuotaUsage, error) {
	trackers, err := loadTrackers(deps.Storage, NewPath(q.ChannelID, q.Denom))
	if err != nil {
		return nil, err
	}
	usage := make([]QuotaUsage, 0, len(trackers))
	for _, limit := range trackers {
		flow := limit.Flow
		if flow.IsExpired(env.Block.Time) {
			flow.Expire(env.Block.Time, limit.Quota.Duration)
		}
		usedIn, usedOut := flow.Balance()
		maxIn, maxOut := limit.Quota.Capacity()
		usage = append(usage, QuotaUsage{
			Name:             limit.Quota.Name,
			UsedIn:           usedIn.String(),
			UsedOut:          usedOut.String(),
			MaxIn:            maxIn.String(),
			MaxOut:           maxOut.String(),
			PercentUsedIn:    percentOf(usedIn, maxIn),
			PercentUsedOut:   percentOf(usedOut, maxOut),
			PeriodEndSeconds: flow.PeriodEnd.Seconds(),
		})
	}
	return usage, nil
}

func percentOf(used, capacity sdkmath.Uint) string {
	zero := decimal.Zero.StringFixed(2)
	if capacity.IsZero() {
		return zero
	}
	u, err := decimal.NewFromString(used.String())
	if err != nil {
		return zero
	}
	c, err := decimal.NewFromString(capacity.String())
	if err != nil {
		return zero
	}
	return u.Mul(decimal.NewFromInt(100)).DivRound(c, 2).StringFixed(2)
}

func queryRoles(deps host.Deps, owner string) ([]Role, error) {
	roles, err := rbacPermissions.Load(deps.Storage, owner)
	if err != nil {
		return nil, fmt.Errorf("roles of %s: %w: %w", owner, ErrNotFound, err)
	}
	return roles, nil
}

func queryRoleOwners(deps host.Deps) ([]RoleOwner, error) {
	owners := []RoleOwner{}
	err := rbacPermissions.Range(deps.Storage, func(owner string, roles []Role) (bool, error) {
		owners = append(owners, RoleOwner{Owner: owner, Roles: roles})
		return true, nil
	})
	return owners, err
}

func queryMessageIDs(deps host.Deps) ([]string, error) {
	queue, _, err := messageQueue.May(deps.Storage)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(queue))
	for _, m := range queue {
		ids = append(ids, m.MessageID)
	}
	return ids, nil
}

func queryMessage(deps host.Deps, id string) (QueuedMessage, error) {
	queue, _, err := messageQueue.May(deps.Storage)
	if err != nil {
		return QueuedMessage{}, err
	}
	for _, m := range queue {
		if m.MessageID == id {
			return m, nil
		}
	}
	return QueuedMessage{}, fmt.Errorf("message %s: %w", id, ErrMessageNotFound)
}

func queryTimelockDelay(deps host.Deps, signer string) (uint64, error) {
	delay, err := timelockDelay.Load(deps.Storage, signer)
	if err != nil {
		return 0, fmt.Errorf("timelock of %s: %w: %w", signer, ErrNotFound, err)
	}
	return delay, nil
}

func queryDenomRestrictions(deps host.Deps, denom string) ([]string, error) {
	channels, err := acceptedChannelsForRestrictedDenom.Load(deps.Storage, denom)
	if err != nil {
		return nil, fmt.Errorf("restrictions of %s: %w: %w", denom, ErrNotFound, err)
	}
	return channels, nil
}

func (c *Contract) matchQuery(deps host.Deps, env types.Env, msg QueryMsg) (any, error) {
	switch {
	case msg.GetQuotas != nil:
		return queryQuotas(deps, *msg.GetQuotas)
	case msg.GetUsage != nil:
		return queryUsage(deps, env, *msg.GetUsage)
	case msg.GetRoles != nil:
		return queryRoles(deps, msg.GetRoles.Owner)
	case msg.GetRoleOwners != nil:
		return queryRoleOwners(deps)
	case msg.GetMessageIDs != nil:
		return queryMessageIDs(deps)
	case msg.GetMessage != nil:
		return queryMessage(deps, msg.GetMessage.ID)
	case msg.GetTimelockDelay != nil:
		return queryTimelockDelay(deps, msg.GetTimelockDelay.Signer)
	case msg.GetDenomRestrictions != nil:
		return queryDenomRestrictions(deps, msg.GetDenomRestrictions.Denom)
	default:
		return nil, ErrUnknownMessage
	}
}

func (c *Contract) Query(deps host.Deps, env types.Env, raw []byte) ([]byte, error) {
	var msg QueryMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if _, err := variant(msg); err != nil {
		return nil, err
	}
	out, err := c.matchQuery(deps, env, msg)
	if err != nil {
		return nil, err
	}
	return json.Marshal(out)
}
