package ratelimiter

import (
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/Cogwheel-Validator/spectra-contracts/wasm/types"
)

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrQuotaNotFound      = errors.New("quota not found")
	ErrInvalidQuota       = errors.New("invalid quota")
	ErrRateLimitExceeded  = errors.New("rate limit exceeded")
	ErrChannelBlocked     = errors.New("channel blocked")
	ErrMessageNotFound    = errors.New("message not found")
	ErrInvalidParameters  = errors.New("invalid parameters")
	ErrUnknownMessage     = errors.New("unknown message")
	ErrExternalCallFailed = errors.New("external call failed")
)

// RateLimitExceededError carries what a client needs to display a rejected transfer.
type RateLimitExceededError struct {
	Channel   string
	Denom     string
	Amount    sdkmath.Uint
	QuotaName string
	Used      sdkmath.Uint
	Max       sdkmath.Uint
	Reset     types.Timestamp
}

func (e *RateLimitExceededError) Error() string {
	return fmt.Sprintf(
		"IBC rate limit exceeded for %s/%s: tried to transfer %s which exceeds capacity on the '%s' quota (%s/%s), try again after %s",
		e.Channel, e.Denom, e.Amount, e.QuotaName, e.Used, e.Max, e.Reset.Time().Format("2006-01-02T15:04:05Z"),
	)
}

func (e *RateLimitExceededError) Unwrap() error {
	return ErrRateLimitExceeded
}

// ChannelBlockedError rejects an outbound transfer of a restricted denom.
type ChannelBlockedError struct {
	Channel string
	Denom   string
}

func (e *ChannelBlockedError) Error() string {
	return fmt.Sprintf("channel %s is not allowed to send restricted denom %s", e.Channel, e.Denom)
}

func (e *ChannelBlockedError) Unwrap() error {
	return ErrChannelBlocked
}
