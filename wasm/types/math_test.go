package types_test

import (
	"encoding/json"
	"errors"
	"math"
	"math/big"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/zeebo/assert"

	"github.com/Cogwheel-Validator/spectra-contracts/wasm/types"
)

func maxUint256() sdkmath.Uint {
	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	return sdkmath.NewUintFromBigInt(max)
}

func TestCheckedAdd_Overflow(t *testing.T) {
	_, err := types.CheckedAdd(maxUint256(), sdkmath.NewUint(1))
	assert.True(t, errors.Is(err, types.ErrOverflow))

	sum, err := types.CheckedAdd(sdkmath.NewUint(40), sdkmath.NewUint(2))
	assert.NoError(t, err)
	assert.Equal(t, sum.String(), "42")
}

func TestCheckedSub_Underflow(t *testing.T) {
	_, err := types.CheckedSub(sdkmath.NewUint(1), sdkmath.NewUint(2))
	assert.True(t, errors.Is(err, types.ErrUnderflow))
	assert.True(t, types.SaturatingSub(sdkmath.NewUint(1), sdkmath.NewUint(2)).IsZero())
}

func TestCheckedAdd_NilIsZero(t *testing.T) {
	sum, err := types.CheckedAdd(sdkmath.Uint{}, sdkmath.NewUint(7))
	assert.NoError(t, err)
	assert.Equal(t, sum.String(), "7")
}

func TestMulDivFloor(t *testing.T) {
	tests := []struct {
		amount uint64
		num    uint64
		denom  uint64
		want   string
	}{
		{1000, 10, 100, "100"},
		{999, 10, 100, "99"},
		{1000, 250, 10000, "25"},
		{3, 1, 2, "1"},
	}
	for _, tt := range tests {
		got, err := types.MulDivFloor(sdkmath.NewUint(tt.amount), tt.num, tt.denom)
		assert.NoError(t, err)
		assert.Equal(t, got.String(), tt.want)
	}

	// the intermediate product may exceed 256 bits
	got, err := types.MulDivFloor(maxUint256(), 100, 100)
	assert.NoError(t, err)
	assert.True(t, got.Equal(maxUint256()))

	_, err = types.MulDivFloor(sdkmath.NewUint(1), 1, 0)
	assert.True(t, errors.Is(err, types.ErrDivByZero))
}

func TestParseAmount(t *testing.T) {
	v, err := types.ParseAmount("125000000000011250")
	assert.NoError(t, err)
	assert.Equal(t, v.String(), "125000000000011250")

	_, err = types.ParseAmount("-1")
	assert.Error(t, err)
	_, err = types.ParseAmount("abc")
	assert.Error(t, err)
}

func TestCoinAmountIsJSONString(t *testing.T) {
	raw, err := json.Marshal(types.NewCoin("uosmo", 1000))
	assert.NoError(t, err)
	assert.Equal(t, string(raw), `{"denom":"uosmo","amount":"1000"}`)

	raw, err = json.Marshal(types.Coins(nil))
	assert.NoError(t, err)
	assert.Equal(t, string(raw), `[]`)
}

func TestTimestampJSON(t *testing.T) {
	ts := types.FromSeconds(1_571_797_419)
	raw, err := json.Marshal(ts)
	assert.NoError(t, err)
	assert.Equal(t, string(raw), `"1571797419000000000"`)

	var back types.Timestamp
	assert.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, back, ts)
	assert.Equal(t, back.PlusSeconds(10).Seconds(), uint64(1_571_797_429))
}

func TestTimestamp_SecondsSaturate(t *testing.T) {
	assert.Equal(t, types.FromSeconds(types.MaxSeconds).Seconds(), types.MaxSeconds)
	assert.Equal(t, types.FromSeconds(types.MaxSeconds+1), types.Timestamp(math.MaxUint64))

	start := types.FromSeconds(1_700_000_000)
	assert.Equal(t, start.PlusSeconds(types.MaxSeconds), types.Timestamp(math.MaxUint64))
	assert.Equal(t, start.PlusSeconds(18_446_744_074), types.Timestamp(math.MaxUint64))
	assert.Equal(t, types.Timestamp(math.MaxUint64).PlusSeconds(1), types.Timestamp(math.MaxUint64))
	assert.True(t, start.PlusSeconds(types.MaxSeconds-1_700_000_001) > start)
}
