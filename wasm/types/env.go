package types

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Timestamp is a point in time in nanoseconds since the unix epoch.
// It is encoded as a decimal string so JSON clients do not lose precision.
type Timestamp uint64

// MaxSeconds is the largest whole number of seconds a Timestamp can hold.
const MaxSeconds = math.MaxUint64 / uint64(time.Second)

func FromTime(t time.Time) Timestamp {
	return Timestamp(t.UnixNano())
}

// FromSeconds saturates at the largest Timestamp instead of wrapping.
func FromSeconds(secs uint64) Timestamp {
	if secs > MaxSeconds {
		return math.MaxUint64
	}
	return Timestamp(secs * uint64(time.Second))
}

func (t Timestamp) Seconds() uint64 {
	return uint64(t) / uint64(time.Second)
}

func (t Timestamp) Nanos() uint64 {
	return uint64(t)
}

// PlusSeconds saturates at the largest Timestamp instead of wrapping.
func (t Timestamp) PlusSeconds(secs uint64) Timestamp {
	d := FromSeconds(secs)
	if d > math.MaxUint64-t {
		return math.MaxUint64
	}
	return t + d
}

func (t Timestamp) Time() time.Time {
	return time.Unix(0, int64(t)).UTC()
}

func (t Timestamp) String() string {
	return strconv.FormatUint(uint64(t), 10)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("cannot unmarshal timestamp: %w", err)
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("cannot parse timestamp %q: %w", s, err)
	}
	*t = Timestamp(v)
	return nil
}

// Env is the execution environment handed to every entry point.
type Env struct {
	Block       BlockInfo        `json:"block"`
	Transaction *TransactionInfo `json:"transaction,omitempty"`
	Contract    ContractInfo     `json:"contract"`
}

type BlockInfo struct {
	Height  uint64    `json:"height"`
	Time    Timestamp `json:"time"`
	ChainID string    `json:"chain_id"`
}

type TransactionInfo struct {
	// Position of the transaction in the block, starting at 0
	Index uint32 `json:"index"`
}

type ContractInfo struct {
	Address string `json:"address"`
}

// MessageInfo carries the sender and attached funds of an execute call.
type MessageInfo struct {
	Sender string `json:"sender"`
	Funds  Coins  `json:"funds"`
}
