package affiliateswap

import (
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/storage"
)

const (
	SwapReplyID uint64 = 1

	// BpsDenominator is 100%.
	BpsDenominator uint64 = 10_000
)

type Config struct {
	SwapContract  string `json:"swap_contract"`
	AffiliateAddr string `json:"affiliate_addr"`
	AffiliateBps  uint64 `json:"affiliate_bps"`
}

// PendingSwap correlates the swap reply with the caller that paid for it.
type PendingSwap struct {
	OriginalSender string            `json:"original_sender"`
	SwapMsg        SwapExactAmountIn `json:"swap_msg"`
}

var (
	config = storage.NewItem[Config]("config")

	// swapReplyState holds at most one pending swap. A second swap_with_fee
	// before the reply overwrites it.
	swapReplyState = storage.NewItem[PendingSwap]("swap_reply_state")
)
