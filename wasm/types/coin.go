package types

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
)

type Coin struct {
	Denom  string       `json:"denom"`
	Amount sdkmath.Uint `json:"amount"`
}

func NewCoin(denom string, amount uint64) Coin {
	return Coin{Denom: denom, Amount: sdkmath.NewUint(amount)}
}

func (c Coin) String() string {
	return fmt.Sprintf("%s%s", OrZero(c.Amount).String(), c.Denom)
}

func (c Coin) Equal(o Coin) bool {
	return c.Denom == o.Denom && OrZero(c.Amount).Equal(OrZero(o.Amount))
}

// Coins is a list of coins that always encodes as a JSON array, never null.
type Coins []Coin

func (cs Coins) MarshalJSON() ([]byte, error) {
	if cs == nil {
		return []byte("[]"), nil
	}
	type plain []Coin
	return marshalJSON(plain(cs))
}
