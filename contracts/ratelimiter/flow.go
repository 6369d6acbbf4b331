package ratelimiter

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/Cogwheel-Validator/spectra-contracts/wasm/types"
)

type Direction string

const (
	In  Direction = "in"
	Out Direction = "out"
)

// Flow accumulates the value moved through a path during the current period.
type Flow struct {
	Inflow    sdkmath.Uint    `json:"inflow"`
	Outflow   sdkmath.Uint    `json:"outflow"`
	PeriodEnd types.Timestamp `json:"period_end"`
}

// NewFlow starts a period that ends duration seconds after now.
func NewFlow(inflow, outflow sdkmath.Uint, now types.Timestamp, duration uint64) Flow {
	return Flow{
		Inflow:    types.OrZero(inflow),
		Outflow:   types.OrZero(outflow),
		PeriodEnd: now.PlusSeconds(duration),
	}
}

// Balance returns the net (in, out) flow: value moved in one direction is
// cancelled by value moved in the other.
func (f Flow) Balance() (sdkmath.Uint, sdkmath.Uint) {
	return types.SaturatingSub(f.Inflow, f.Outflow), types.SaturatingSub(f.Outflow, f.Inflow)
}

func (f Flow) BalanceOn(direction Direction) sdkmath.Uint {
	in, out := f.Balance()
	if direction == In {
		return in
	}
	return out
}

func (f Flow) IsExpired(now types.Timestamp) bool {
	return now >= f.PeriodEnd
}

// Expire zeroes both accumulators and starts a new period at now.
func (f *Flow) Expire(now types.Timestamp, duration uint64) {
	f.Inflow = sdkmath.ZeroUint()
	f.Outflow = sdkmath.ZeroUint()
	f.PeriodEnd = now.PlusSeconds(duration)
}

func (f *Flow) AddFlow(direction Direction, funds sdkmath.Uint) error {
	var err error
	switch direction {
	case In:
		f.Inflow, err = types.CheckedAdd(f.Inflow, funds)
	case Out:
		f.Outflow, err = types.CheckedAdd(f.Outflow, funds)
	default:
		return fmt.Errorf("direction %q: %w", direction, ErrInvalidInput)
	}
	if err != nil {
		return fmt.Errorf("failed to add %s %s flow: %w", funds, direction, err)
	}
	return nil
}

// UndoFlow removes funds from the accumulator of direction, saturating at zero.
func (f *Flow) UndoFlow(direction Direction, funds sdkmath.Uint) {
	switch direction {
	case In:
		f.Inflow = types.SaturatingSub(f.Inflow, funds)
	case Out:
		f.Outflow = types.SaturatingSub(f.Outflow, funds)
	}
}

// ApplyTransfer rolls the period over first when it already ended, then adds funds.
// It reports whether a rollover happened.
func (f *Flow) ApplyTransfer(direction Direction, funds sdkmath.Uint, now types.Timestamp, duration uint64) (bool, error) {
	expired := f.IsExpired(now)
	if expired {
		f.Expire(now, duration)
	}
	if err := f.AddFlow(direction, funds); err != nil {
		return expired, err
	}
	return expired, nil
}
