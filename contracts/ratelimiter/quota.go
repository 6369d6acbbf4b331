package ratelimiter

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/Cogwheel-Validator/spectra-contracts/wasm/types"
)

const maxPercentage = 100

// QuotaMsg is the wire form of a quota. SendRecv holds the send and receive
// percentages, in that order.
type QuotaMsg struct {
	Name     string    `json:"name"`
	Duration uint64    `json:"duration"`
	SendRecv [2]uint32 `json:"send_recv"`
}

func NewQuotaMsg(name string, duration uint64, sendPercentage, recvPercentage uint32) QuotaMsg {
	return QuotaMsg{
		Name:     name,
		Duration: duration,
		SendRecv: [2]uint32{sendPercentage, recvPercentage},
	}
}

// validate rejects durations that cannot describe a period: zero, or longer
// than a block timestamp can represent.
func (m QuotaMsg) validate() error {
	if m.Duration == 0 {
		return fmt.Errorf("quota %s has zero duration: %w", m.Name, ErrInvalidQuota)
	}
	if m.Duration > types.MaxSeconds {
		return fmt.Errorf("quota %s duration %d exceeds %d seconds: %w", m.Name, m.Duration, types.MaxSeconds, ErrInvalidQuota)
	}
	return nil
}

// Quota is one named window applied to a path. ChannelValue is nil until the
// first transfer and is refreshed on every period rollover.
type Quota struct {
	Name              string        `json:"name"`
	MaxPercentageSend uint32        `json:"max_percentage_send"`
	MaxPercentageRecv uint32        `json:"max_percentage_recv"`
	Duration          uint64        `json:"duration"`
	ChannelValue      *sdkmath.Uint `json:"channel_value"`
}

// NewQuota converts a QuotaMsg, clamping both percentages to 100.
func NewQuota(msg QuotaMsg) Quota {
	return Quota{
		Name:              msg.Name,
		MaxPercentageSend: min(msg.SendRecv[0], maxPercentage),
		MaxPercentageRecv: min(msg.SendRecv[1], maxPercentage),
		Duration:          msg.Duration,
	}
}

// Capacity returns (max_in, max_out). A quota without a channel value has no capacity.
func (q Quota) Capacity() (sdkmath.Uint, sdkmath.Uint) {
	if q.ChannelValue == nil {
		return sdkmath.ZeroUint(), sdkmath.ZeroUint()
	}
	maxIn, err := types.MulDivFloor(*q.ChannelValue, uint64(q.MaxPercentageRecv), maxPercentage)
	if err != nil {
		maxIn = sdkmath.ZeroUint()
	}
	maxOut, err := types.MulDivFloor(*q.ChannelValue, uint64(q.MaxPercentageSend), maxPercentage)
	if err != nil {
		maxOut = sdkmath.ZeroUint()
	}
	return maxIn, maxOut
}

func (q Quota) CapacityOn(direction Direction) sdkmath.Uint {
	maxIn, maxOut := q.Capacity()
	if direction == In {
		return maxIn
	}
	return maxOut
}
