package types

import (
	"errors"
	"fmt"
	"math/big"

	sdkmath "cosmossdk.io/math"
)

const maxUintBits = 256

var (
	ErrOverflow  = errors.New("uint256 overflow")
	ErrUnderflow = errors.New("uint256 underflow")
	ErrDivByZero = errors.New("division by zero")
)

// OrZero returns u, or zero when u was never initialised (e.g. a missing JSON field).
func OrZero(u sdkmath.Uint) sdkmath.Uint {
	if u.IsNil() {
		return sdkmath.ZeroUint()
	}
	return u
}

func fromBig(i *big.Int) (sdkmath.Uint, error) {
	if i.Sign() < 0 {
		return sdkmath.Uint{}, ErrUnderflow
	}
	if i.BitLen() > maxUintBits {
		return sdkmath.Uint{}, ErrOverflow
	}
	return sdkmath.NewUintFromBigInt(i), nil
}

// CheckedAdd returns a+b or ErrOverflow.
func CheckedAdd(a, b sdkmath.Uint) (sdkmath.Uint, error) {
	sum := new(big.Int).Add(OrZero(a).BigInt(), OrZero(b).BigInt())
	return fromBig(sum)
}

// CheckedSub returns a-b or ErrUnderflow.
func CheckedSub(a, b sdkmath.Uint) (sdkmath.Uint, error) {
	diff := new(big.Int).Sub(OrZero(a).BigInt(), OrZero(b).BigInt())
	return fromBig(diff)
}

// SaturatingSub returns a-b, or zero when b > a.
func SaturatingSub(a, b sdkmath.Uint) sdkmath.Uint {
	diff, err := CheckedSub(a, b)
	if err != nil {
		return sdkmath.ZeroUint()
	}
	return diff
}

// MulDivFloor computes floor(a * num / denom). The intermediate product is
// unbounded, so only the final quotient has to fit in 256 bits.
func MulDivFloor(a sdkmath.Uint, num, denom uint64) (sdkmath.Uint, error) {
	if denom == 0 {
		return sdkmath.Uint{}, ErrDivByZero
	}
	prod := new(big.Int).Mul(OrZero(a).BigInt(), new(big.Int).SetUint64(num))
	return fromBig(prod.Quo(prod, new(big.Int).SetUint64(denom)))
}

// ParseAmount parses a decimal string into a 256-bit amount.
func ParseAmount(s string) (sdkmath.Uint, error) {
	i, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return sdkmath.Uint{}, fmt.Errorf("invalid amount %q", s)
	}
	u, err := fromBig(i)
	if err != nil {
		return sdkmath.Uint{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return u, nil
}
