package crosschainswaps

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Cogwheel-Validator/spectra-contracts/contracts/registry"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/host"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/types"
)

// swapAndForward swaps the attached coin and, once the swap replies, sends
// the output over IBC to the receiver.
func swapAndForward(deps host.Deps, env types.Env, info types.MessageInfo, msg OsmosisSwapMsg) (*types.Response, error) {
	if len(info.Funds) != 1 || types.OrZero(info.Funds[0].Amount).IsZero() {
		return nil, fmt.Errorf("exactly one non-zero coin is required, got %v: %w", info.Funds, ErrInvalidFunds)
	}
	if msg.OutputDenom == "" {
		return nil, fmt.Errorf("output_denom is required: %w", ErrInvalidInput)
	}
	if addr := msg.OnFailedDelivery.LocalRecoveryAddr; addr != "" {
		if err := deps.API.AddrValidate(addr); err != nil {
			return nil, fmt.Errorf("recovery address: %w: %w", ErrInvalidInput, err)
		}
	}
	cfg, err := config.Load(deps.Storage)
	if err != nil {
		return nil, err
	}

	swapCoin := info.Funds[0]
	swap := SwapMsg{Swap: SwapParams{
		InputCoin:   swapCoin,
		OutputDenom: msg.OutputDenom,
		Slippage:    Slippage{MinOutputAmount: types.OrZero(msg.Slippage.MinOutputAmount)},
	}}
	wasmMsg, err := types.NewWasmExecute(cfg.SwapContract, swap, types.Coins{swapCoin})
	if err != nil {
		return nil, err
	}

	channel, err := validateReceiver(deps, env, cfg, msg.Receiver)
	if err != nil {
		return nil, err
	}
	if len(msg.NextMemo) > 0 {
		if err := ensureKeyMissing(msg.NextMemo, CallbackKey); err != nil {
			return nil, err
		}
	}

	// a pending swap means a contract we called is calling back into us
	locked, err := swapReplyState.Exists(deps.Storage)
	if err != nil {
		return nil, err
	}
	if locked {
		return nil, fmt.Errorf("already waiting for a swap reply: %w", ErrContractLocked)
	}
	if err := swapReplyState.Save(deps.Storage, SwapMsgReplyState{
		SwapMsg:      swap,
		BlockTime:    env.Block.Time,
		ContractAddr: env.Contract.Address,
		ForwardTo: ForwardTo{
			Channel:          channel,
			Receiver:         msg.Receiver,
			NextMemo:         msg.NextMemo,
			OnFailedDelivery: msg.OnFailedDelivery,
		},
	}); err != nil {
		return nil, err
	}

	return types.NewResponse().
		AddAttribute("method", "osmosis_swap").
		AddAttribute("channel", channel).
		AddAttribute("receiver", msg.Receiver).
		AddSubMessage(types.ReplyOnSuccess(SwapReplyID, wasmMsg)), nil
}

// handleSwapReply turns the swap output into an IBC transfer to the receiver.
func handleSwapReply(deps host.Deps, reply types.Reply) (*types.Response, error) {
	state, found, err := swapReplyState.May(deps.Storage)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("no pending swap: %w", ErrNotFound)
	}
	if err := swapReplyState.Remove(deps.Storage); err != nil {
		return nil, err
	}

	swapped, err := parseSwapReply(reply)
	if err != nil {
		return nil, err
	}

	timeout := state.BlockTime.PlusSeconds(registry.PacketLifetime)
	memo, err := buildMemo(state.ForwardTo.NextMemo, state.ContractAddr)
	if err != nil {
		return nil, err
	}
	amount := types.Coin{Denom: swapped.TokenOutDenom, Amount: swapped.Amount}
	transfer := types.NewIBCTransfer(state.ForwardTo.Channel, state.ForwardTo.Receiver, amount, timeout, memo)

	locked, err := forwardReplyState.Exists(deps.Storage)
	if err != nil {
		return nil, err
	}
	if locked {
		return nil, fmt.Errorf("already waiting for a forward reply: %w", ErrContractLocked)
	}
	if err := forwardReplyState.Save(deps.Storage, ForwardMsgReplyState{
		ChannelID:        state.ForwardTo.Channel,
		ToAddress:        state.ForwardTo.Receiver,
		Amount:           swapped.Amount,
		Denom:            swapped.TokenOutDenom,
		OnFailedDelivery: state.ForwardTo.OnFailedDelivery,
	}); err != nil {
		return nil, err
	}

	return types.NewResponse().
		AddAttribute("status", "ibc_message_created").
		AddAttribute("amount", amount.String()).
		AddAttribute("channel", state.ForwardTo.Channel).
		AddAttribute("timeout", timeout.String()).
		AddSubMessage(types.ReplyOnSuccess(ForwardReplyID, transfer)), nil
}

func parseSwapReply(reply types.Reply) (SwapResponse, error) {
	if reply.Result.Ok == nil || len(reply.Result.Ok.Data) == 0 {
		return SwapResponse{}, fmt.Errorf("swap reply without data: %s: %w", reply.Result.Err, ErrExternalCallFailed)
	}
	var res SwapResponse
	if err := json.Unmarshal(reply.Result.Ok.Data, &res); err != nil {
		return SwapResponse{}, fmt.Errorf("decoding swap reply: %w: %w", ErrExternalCallFailed, err)
	}
	if res.TokenOutDenom == "" || types.OrZero(res.Amount).IsZero() {
		return SwapResponse{}, fmt.Errorf("swap reply has no output: %w", ErrExternalCallFailed)
	}
	return res, nil
}

// handleForwardReply records the sent packet so a failed delivery can be
// recovered, when the user asked for it.
func handleForwardReply(deps host.Deps, reply types.Reply) (*types.Response, error) {
	if reply.Result.Ok == nil || len(reply.Result.Ok.Data) == 0 {
		return nil, fmt.Errorf("failed reply: %s: %w", reply.Result.Err, ErrFailedIBCTransfer)
	}
	var sent TransferResponse
	if err := json.Unmarshal(reply.Result.Ok.Data, &sent); err != nil {
		return nil, fmt.Errorf("could not decode response %q: %w", reply.Result.Ok.Data, ErrFailedIBCTransfer)
	}

	state, found, err := forwardReplyState.May(deps.Storage)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("no pending forward: %w", ErrNotFound)
	}
	if err := forwardReplyState.Remove(deps.Storage); err != nil {
		return nil, err
	}

	if addr := state.OnFailedDelivery.LocalRecoveryAddr; addr != "" {
		packet := IBCTransfer{
			RecoveryAddr: addr,
			ChannelID:    state.ChannelID,
			Sequence:     sent.Sequence,
			Amount:       state.Amount,
			Denom:        state.Denom,
			Status:       StatusSent,
		}
		if err := inflightPackets.Save(deps.Storage, packet.key(), packet); err != nil {
			return nil, err
		}
	}

	res := types.NewResponse().
		AddAttribute("status", "ibc_message_created").
		AddAttribute("amount", state.Amount.String()).
		AddAttribute("denom", state.Denom).
		AddAttribute("channel", state.ChannelID).
		AddAttribute("receiver", state.ToAddress).
		AddAttribute("sequence", strconv.FormatUint(sent.Sequence, 10))
	if err := res.SetData(CrosschainSwapResponse{
		SentAmount:     state.Amount,
		Denom:          state.Denom,
		ChannelID:      state.ChannelID,
		Receiver:       state.ToAddress,
		PacketSequence: sent.Sequence,
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// recoverFunds sends every recoverable packet of sender back to it.
func recoverFunds(deps host.Deps, sender string) (*types.Response, error) {
	recoveries, _, err := recoveryStates.May(deps.Storage, sender)
	if err != nil {
		return nil, err
	}
	if err := recoveryStates.Remove(deps.Storage, sender); err != nil {
		return nil, err
	}

	res := types.NewResponse().
		AddAttribute("method", "recover").
		AddAttribute("recovered", strconv.Itoa(len(recoveries)))
	for _, r := range recoveries {
		res.AddMessage(types.NewBankSend(r.RecoveryAddr, types.Coin{Denom: r.Denom, Amount: r.Amount}))
	}
	return res, nil
}

func transferOwnership(deps host.Deps, sender, newGovernor string) (*types.Response, error) {
	cfg, err := checkIsGovernor(deps, sender)
	if err != nil {
		return nil, err
	}
	if err := deps.API.AddrValidate(newGovernor); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	cfg.Governor = newGovernor
	if err := config.Save(deps.Storage, cfg); err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("method", "transfer_ownership").
		AddAttribute("new_governor", newGovernor), nil
}

func setSwapContract(deps host.Deps, sender, newContract string) (*types.Response, error) {
	cfg, err := checkIsGovernor(deps, sender)
	if err != nil {
		return nil, err
	}
	if err := deps.API.AddrValidate(newContract); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	cfg.SwapContract = newContract
	if err := config.Save(deps.Storage, cfg); err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("method", "set_swap_contract").
		AddAttribute("swap_contract", newContract), nil
}
