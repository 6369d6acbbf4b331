package affiliateswap

import (
	"encoding/json"
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/Cogwheel-Validator/spectra-contracts/wasm/host"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/types"
)

// swapWithFee forwards the attached coin to the swap contract and remembers
// who to pay once the swap replies.
func swapWithFee(deps host.Deps, info types.MessageInfo, msg SwapWithFeeMsg) (*types.Response, error) {
	if len(msg.Routes) == 0 {
		return nil, fmt.Errorf("at least one route is required: %w", ErrInvalidInput)
	}
	if types.OrZero(msg.TokenIn.Amount).IsZero() {
		return nil, fmt.Errorf("token_in amount must be positive: %w", ErrInvalidInput)
	}
	if len(info.Funds) != 1 || !info.Funds[0].Equal(msg.TokenIn) {
		return nil, fmt.Errorf("expected exactly %s, got %v: %w", msg.TokenIn, info.Funds, ErrInsufficientFunds)
	}

	cfg, err := config.Load(deps.Storage)
	if err != nil {
		return nil, err
	}

	swap := SwapExactAmountIn{
		Sender:            info.Sender,
		Routes:            msg.Routes,
		TokenIn:           msg.TokenIn,
		TokenOutMinAmount: types.OrZero(msg.TokenOutMinAmount),
	}
	if err := swapReplyState.Save(deps.Storage, PendingSwap{OriginalSender: info.Sender, SwapMsg: swap}); err != nil {
		return nil, err
	}

	wasmMsg, err := types.NewWasmExecute(cfg.SwapContract, swapExecuteMsg{SwapExactAmountIn: swap}, types.Coins{msg.TokenIn})
	if err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("method", "swap_with_fee").
		AddAttribute("sender", info.Sender).
		AddAttribute("token_in", msg.TokenIn.String()).
		AddSubMessage(types.ReplyOnSuccess(SwapReplyID, wasmMsg)), nil
}

// handleSwapReply splits the swap output between the affiliate and the original sender.
func handleSwapReply(deps host.Deps, reply types.Reply) (*types.Response, error) {
	pending, found, err := swapReplyState.May(deps.Storage)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("no pending swap for reply %d: %w", reply.ID, ErrNotFound)
	}
	if err := swapReplyState.Remove(deps.Storage); err != nil {
		return nil, err
	}

	if reply.Result.Ok == nil {
		return nil, fmt.Errorf("swap failed: %s: %w", reply.Result.Err, ErrExternalCallFailed)
	}
	amountOut, err := decodeAmountOut(reply.Result.Ok.Data)
	if err != nil {
		return nil, err
	}
	denom := pending.SwapMsg.Routes[len(pending.SwapMsg.Routes)-1].TokenOutDenom

	cfg, err := config.Load(deps.Storage)
	if err != nil {
		return nil, err
	}
	affiliateAmount, err := types.MulDivFloor(amountOut, cfg.AffiliateBps, BpsDenominator)
	if err != nil {
		return nil, err
	}
	userAmount, err := types.CheckedSub(amountOut, affiliateAmount)
	if err != nil {
		return nil, err
	}

	res := types.NewResponse().
		AddAttribute("method", "handle_swap_reply").
		AddAttribute("token_out_denom", denom).
		AddAttribute("amount_out", amountOut.String()).
		AddAttribute("affiliate_amount", affiliateAmount.String()).
		AddAttribute("user_amount", userAmount.String())
	if !affiliateAmount.IsZero() {
		res.AddMessage(types.NewBankSend(cfg.AffiliateAddr, types.Coin{Denom: denom, Amount: affiliateAmount}))
	}
	if !userAmount.IsZero() {
		res.AddMessage(types.NewBankSend(pending.OriginalSender, types.Coin{Denom: denom, Amount: userAmount}))
	}

	Logger.Debug().
		Str("sender", pending.OriginalSender).
		Str("denom", denom).
		Str("affiliate_amount", affiliateAmount.String()).
		Str("user_amount", userAmount.String()).
		Msg("swap output split")
	return res, nil
}

func decodeAmountOut(data []byte) (sdkmath.Uint, error) {
	if len(data) == 0 {
		return sdkmath.Uint{}, fmt.Errorf("swap reply carries no data: %w", ErrExternalCallFailed)
	}
	var res SwapResponse
	if err := json.Unmarshal(data, &res); err != nil {
		return sdkmath.Uint{}, fmt.Errorf("decoding swap reply: %w: %w", ErrExternalCallFailed, err)
	}
	switch {
	case !res.AmountOut.IsNil():
		return res.AmountOut, nil
	case !res.TokenOutAmount.IsNil():
		return res.TokenOutAmount, nil
	default:
		return sdkmath.Uint{}, fmt.Errorf("swap reply has no output amount: %w", ErrExternalCallFailed)
	}
}
