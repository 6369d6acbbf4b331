package ratelimiter

import (
	"strings"

	sdkmath "cosmossdk.io/math"

	"github.com/Cogwheel-Validator/spectra-contracts/wasm/types"
)

// AnyChannel is the wildcard channel: quotas stored under it apply to every
// channel moving the denom.
const AnyChannel = "any"

type Path struct {
	Channel string `json:"channel"`
	Denom   string `json:"denom"`
}

func NewPath(channel, denom string) Path {
	return Path{Channel: channel, Denom: denom}
}

type PathMsg struct {
	ChannelID string     `json:"channel_id"`
	Denom     string     `json:"denom"`
	Quotas    []QuotaMsg `json:"quotas"`
}

// RateLimit pairs a quota with the flow it has admitted so far.
type RateLimit struct {
	Quota Quota `json:"quota"`
	Flow  Flow  `json:"flow"`
}

func NewRateLimit(msg QuotaMsg, now types.Timestamp) RateLimit {
	return RateLimit{
		Quota: NewQuota(msg),
		Flow:  NewFlow(sdkmath.ZeroUint(), sdkmath.ZeroUint(), now, msg.Duration),
	}
}

// AllowTransfer checks a transfer of funds against the quota and returns the
// updated rate limit. On rejection the receiver is left untouched and nothing
// must be persisted.
//
// channelValue is the current total value of the denom as seen by the caller.
// For outbound IBC denoms the transfer module has already burned or escrowed
// the funds, so they are added back before caching.
func (r RateLimit) AllowTransfer(
	path Path,
	direction Direction,
	funds sdkmath.Uint,
	channelValue sdkmath.Uint,
	now types.Timestamp,
) (RateLimit, error) {
	next := r
	initialFlow := r.Flow.BalanceOn(direction)

	expired, err := next.Flow.ApplyTransfer(direction, funds, now, r.Quota.Duration)
	if err != nil {
		return r, err
	}

	if expired || next.Quota.ChannelValue == nil {
		value, err := adjustedChannelValue(path.Denom, direction, funds, channelValue)
		if err != nil {
			return r, err
		}
		next.Quota.ChannelValue = &value
	}

	maxOnDirection := next.Quota.CapacityOn(direction)
	if next.Flow.BalanceOn(direction).GT(maxOnDirection) {
		return r, &RateLimitExceededError{
			Channel:   path.Channel,
			Denom:     path.Denom,
			Amount:    types.OrZero(funds),
			QuotaName: r.Quota.Name,
			Used:      initialFlow,
			Max:       maxOnDirection,
			Reset:     next.Flow.PeriodEnd,
		}
	}
	return next, nil
}

func adjustedChannelValue(denom string, direction Direction, funds, channelValue sdkmath.Uint) (sdkmath.Uint, error) {
	if direction == Out && strings.Contains(denom, "ibc") {
		return types.CheckedAdd(channelValue, funds)
	}
	return types.OrZero(channelValue), nil
}

// attributes summarises the quota state after a transfer.
func (r RateLimit) attributes() []types.Attribute {
	usedIn, usedOut := r.Flow.Balance()
	maxIn, maxOut := r.Quota.Capacity()
	key := r.Quota.Name
	return []types.Attribute{
		{Key: key + "_used_in", Value: usedIn.String()},
		{Key: key + "_used_out", Value: usedOut.String()},
		{Key: key + "_max_in", Value: maxIn.String()},
		{Key: key + "_max_out", Value: maxOut.String()},
		{Key: key + "_period_end", Value: r.Flow.PeriodEnd.String()},
	}
}
