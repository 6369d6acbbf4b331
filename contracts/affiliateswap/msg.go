package affiliateswap

import (
	sdkmath "cosmossdk.io/math"

	"github.com/Cogwheel-Validator/spectra-contracts/wasm/types"
)

type InstantiateMsg struct {
	SwapContract  string `json:"swap_contract"`
	AffiliateAddr string `json:"affiliate_addr"`
	AffiliateBps  uint64 `json:"affiliate_bps"`
}

type ExecuteMsg struct {
	SwapWithFee *SwapWithFeeMsg `json:"swap_with_fee,omitempty"`
}

// SwapRoute is one pool hop of a swap.
type SwapRoute struct {
	PoolID        uint64 `json:"pool_id"`
	TokenOutDenom string `json:"token_out_denom"`
}

type SwapWithFeeMsg struct {
	Routes            []SwapRoute  `json:"routes"`
	TokenIn           types.Coin   `json:"token_in"`
	TokenOutMinAmount sdkmath.Uint `json:"token_out_min_amount"`
}

// SwapExactAmountIn is sent to the swap contract with token_in attached.
type SwapExactAmountIn struct {
	Sender            string       `json:"sender"`
	Routes            []SwapRoute  `json:"routes"`
	TokenIn           types.Coin   `json:"token_in"`
	TokenOutMinAmount sdkmath.Uint `json:"token_out_min_amount"`
}

type swapExecuteMsg struct {
	SwapExactAmountIn SwapExactAmountIn `json:"swap_exact_amount_in"`
}

// SwapResponse is the reply data of the swap contract. Older pools report
// token_out_amount instead of amount_out.
type SwapResponse struct {
	AmountOut      sdkmath.Uint `json:"amount_out"`
	TokenOutAmount sdkmath.Uint `json:"token_out_amount"`
}

type QueryMsg struct {
	Config      *struct{} `json:"config,omitempty"`
	PendingSwap *struct{} `json:"pending_swap,omitempty"`
}
