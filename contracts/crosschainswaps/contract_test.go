package crosschainswaps_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/zeebo/assert"

	"github.com/Cogwheel-Validator/spectra-contracts/contracts/crosschainswaps"
	"github.com/Cogwheel-Validator/spectra-contracts/contracts/registry"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/host"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/storage"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/types"
)

type suite struct {
	h        *host.Host
	addr     string
	registry string
	router   string
	governor string
	alice    string
	bob      string
}

func setupCrosschainSwaps(t *testing.T) *suite {
	t.Helper()
	ctx := context.Background()
	s := &suite{
		h:        host.NewHost(storage.NewMemStore(), host.DefaultConfig()),
		router:   host.ContractAddress("osmo", "swaprouter"),
		governor: host.MockAddress("osmo", "governor"),
		alice:    host.MockAddress("osmo", "alice"),
		bob:      host.MockAddress("cosmos", "bob"),
	}

	raw, err := json.Marshal(registry.InstantiateMsg{Owner: s.governor})
	assert.NoError(t, err)
	s.registry, _, err = s.h.Instantiate(ctx, "registry", registry.New(), s.governor, nil, raw)
	assert.NoError(t, err)

	channel := "channel-0"
	raw, err = json.Marshal(registry.ExecuteMsg{ModifyChainChannelLinks: &registry.ConnectionOperations{
		Operations: []registry.ConnectionInput{{
			Operation:        registry.OperationSet,
			SourceChain:      "osmosis",
			DestinationChain: "cosmoshub",
			ChannelID:        &channel,
		}},
	}})
	assert.NoError(t, err)
	_, err = s.h.Execute(ctx, s.registry, s.governor, nil, raw)
	assert.NoError(t, err)

	raw, err = json.Marshal(registry.ExecuteMsg{ModifyBech32Prefixes: &registry.Bech32PrefixOperations{
		Operations: []registry.ChainToBech32PrefixInput{
			{Operation: registry.OperationSet, ChainName: "osmosis", Prefix: "osmo"},
			{Operation: registry.OperationSet, ChainName: "cosmoshub", Prefix: "cosmos"},
			{Operation: registry.OperationSet, ChainName: "juno", Prefix: "juno"},
		},
	}})
	assert.NoError(t, err)
	_, err = s.h.Execute(ctx, s.registry, s.governor, nil, raw)
	assert.NoError(t, err)

	raw, err = json.Marshal(crosschainswaps.InstantiateMsg{
		Governor:         s.governor,
		SwapContract:     s.router,
		RegistryContract: s.registry,
	})
	assert.NoError(t, err)
	s.addr, _, err = s.h.Instantiate(ctx, "crosschain-swaps", crosschainswaps.New(), s.governor, nil, raw)
	assert.NoError(t, err)

	assert.NoError(t, s.h.Bank().Mint(s.alice, types.NewCoin("uosmo", 1_000_000)))
	return s
}

func swapTo(receiver, recovery, memo string) crosschainswaps.ExecuteMsg {
	msg := &crosschainswaps.OsmosisSwapMsg{
		OutputDenom:      "uatom",
		Slippage:         crosschainswaps.Slippage{MinOutputAmount: sdkmath.NewUint(400)},
		Receiver:         receiver,
		OnFailedDelivery: crosschainswaps.FailedDeliveryAction{LocalRecoveryAddr: recovery},
	}
	if memo != "" {
		msg.NextMemo = json.RawMessage(memo)
	}
	return crosschainswaps.ExecuteMsg{OsmosisSwap: msg}
}

func (s *suite) execute(t *testing.T, sender string, msg crosschainswaps.ExecuteMsg, funds types.Coins) (*types.Response, error) {
	t.Helper()
	raw, err := json.Marshal(msg)
	assert.NoError(t, err)
	return s.h.Execute(context.Background(), s.addr, sender, funds, raw)
}

func (s *suite) swap(t *testing.T, msg crosschainswaps.ExecuteMsg) (*types.Response, error) {
	t.Helper()
	return s.execute(t, s.alice, msg, types.Coins{types.NewCoin("uosmo", 1000)})
}

func (s *suite) reply(t *testing.T, id uint64, data any) (*types.Response, error) {
	t.Helper()
	raw, err := json.Marshal(data)
	assert.NoError(t, err)
	return s.h.Reply(context.Background(), s.addr, types.Reply{
		ID:     id,
		Result: types.SubMsgResult{Ok: &types.SubMsgResponse{Data: raw}},
	})
}

func (s *suite) sudo(t *testing.T, msg crosschainswaps.SudoMsg) (*types.Response, error) {
	t.Helper()
	raw, err := json.Marshal(msg)
	assert.NoError(t, err)
	return s.h.Sudo(context.Background(), s.addr, raw)
}

func (s *suite) query(t *testing.T, msg crosschainswaps.QueryMsg, out any) error {
	t.Helper()
	raw, err := json.Marshal(msg)
	assert.NoError(t, err)
	res, err := s.h.Query(context.Background(), s.addr, raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(res, out)
}

func (s *suite) recoverable(t *testing.T, addr string) []crosschainswaps.IBCTransfer {
	t.Helper()
	var out []crosschainswaps.IBCTransfer
	assert.NoError(t, s.query(t, crosschainswaps.QueryMsg{Recoverable: &crosschainswaps.RecoverableQuery{Addr: addr}}, &out))
	return out
}

// forward runs a swap through both replies; the transfer is sent as sequence.
func (s *suite) forward(t *testing.T, recovery string, sequence uint64) {
	t.Helper()
	_, err := s.swap(t, swapTo(s.bob, recovery, ""))
	assert.NoError(t, err)
	_, err = s.reply(t, crosschainswaps.SwapReplyID, crosschainswaps.SwapResponse{
		OriginalSender: s.addr,
		TokenOutDenom:  "uatom",
		Amount:         sdkmath.NewUint(500),
	})
	assert.NoError(t, err)
	_, err = s.reply(t, crosschainswaps.ForwardReplyID, crosschainswaps.TransferResponse{Sequence: sequence})
	assert.NoError(t, err)
}

func ack(channel string, sequence uint64, success bool) crosschainswaps.SudoMsg {
	return crosschainswaps.SudoMsg{IBCLifecycleComplete: &crosschainswaps.IBCLifecycleComplete{
		IBCAck: &crosschainswaps.IBCAck{Channel: channel, Sequence: sequence, Ack: "{}", Success: success},
	}}
}

func timeout(channel string, sequence uint64) crosschainswaps.SudoMsg {
	return crosschainswaps.SudoMsg{IBCLifecycleComplete: &crosschainswaps.IBCLifecycleComplete{
		IBCTimeout: &crosschainswaps.IBCTimeout{Channel: channel, Sequence: sequence},
	}}
}

func TestOsmosisSwap_SwapForwardAndRecover(t *testing.T) {
	s := setupCrosschainSwaps(t)
	_, blockTime := s.h.Block()

	res, err := s.swap(t, swapTo(s.bob, s.alice, `{"wasm":{"contract":"juno1xyz"}}`))
	assert.NoError(t, err)
	assert.Equal(t, len(res.Messages), 1)
	assert.Equal(t, res.Messages[0].ID, crosschainswaps.SwapReplyID)
	execute := res.Messages[0].Msg.Wasm.Execute
	assert.Equal(t, execute.ContractAddr, s.router)
	assert.Equal(t, execute.Funds[0].String(), "1000uosmo")
	channel, _ := res.Attr("channel")
	assert.Equal(t, channel, "channel-0")

	res, err = s.reply(t, crosschainswaps.SwapReplyID, crosschainswaps.SwapResponse{
		OriginalSender: s.addr,
		TokenOutDenom:  "uatom",
		Amount:         sdkmath.NewUint(500),
	})
	assert.NoError(t, err)
	assert.Equal(t, len(res.Messages), 1)
	assert.Equal(t, res.Messages[0].ID, crosschainswaps.ForwardReplyID)
	transfer := res.Messages[0].Msg.IBC.Transfer
	assert.Equal(t, transfer.ChannelID, "channel-0")
	assert.Equal(t, transfer.ToAddress, s.bob)
	assert.Equal(t, transfer.Amount.String(), "500uatom")
	assert.Equal(t, *transfer.Timeout.Timestamp, blockTime.PlusSeconds(registry.PacketLifetime))

	var memo map[string]json.RawMessage
	assert.NoError(t, json.Unmarshal([]byte(transfer.Memo), &memo))
	assert.Equal(t, string(memo["ibc_callback"]), `"`+s.addr+`"`)
	assert.Equal(t, string(memo["wasm"]), `{"contract":"juno1xyz"}`)

	res, err = s.reply(t, crosschainswaps.ForwardReplyID, crosschainswaps.TransferResponse{Sequence: 7})
	assert.NoError(t, err)
	var data crosschainswaps.CrosschainSwapResponse
	assert.NoError(t, json.Unmarshal(res.Data, &data))
	assert.Equal(t, data.PacketSequence, uint64(7))
	assert.Equal(t, data.Receiver, s.bob)
	assert.Equal(t, data.SentAmount.String(), "500")

	var inflight crosschainswaps.IBCTransfer
	assert.NoError(t, s.query(t, crosschainswaps.QueryMsg{Inflight: &crosschainswaps.InflightQuery{Channel: "channel-0", Sequence: 7}}, &inflight))
	assert.Equal(t, inflight.RecoveryAddr, s.alice)
	assert.Equal(t, inflight.Status, crosschainswaps.StatusSent)

	_, err = s.sudo(t, ack("channel-0", 7, false))
	assert.NoError(t, err)
	err = s.query(t, crosschainswaps.QueryMsg{Inflight: &crosschainswaps.InflightQuery{Channel: "channel-0", Sequence: 7}}, &inflight)
	assert.True(t, errors.Is(err, crosschainswaps.ErrNotFound))

	recoveries := s.recoverable(t, s.alice)
	assert.Equal(t, len(recoveries), 1)
	assert.Equal(t, recoveries[0].Status, crosschainswaps.StatusAckFailure)

	res, err = s.execute(t, s.alice, crosschainswaps.ExecuteMsg{Recover: &struct{}{}}, nil)
	assert.NoError(t, err)
	assert.Equal(t, len(res.Messages), 1)
	send := res.Messages[0].Msg.Bank.Send
	assert.Equal(t, send.ToAddress, s.alice)
	assert.Equal(t, send.Amount[0].String(), "500uatom")
	assert.Equal(t, len(s.recoverable(t, s.alice)), 0)
}

func TestLifecycle_Outcomes(t *testing.T) {
	tests := []struct {
		name        string
		msg         crosschainswaps.SudoMsg
		recoverable int
		status      crosschainswaps.PacketLifecycleStatus
	}{
		{"ack success", ack("channel-0", 3, true), 0, crosschainswaps.StatusAckSuccess},
		{"ack failure", ack("channel-0", 3, false), 1, crosschainswaps.StatusAckFailure},
		{"timeout", timeout("channel-0", 3), 1, crosschainswaps.StatusTimedOut},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupCrosschainSwaps(t)
			s.forward(t, s.alice, 3)

			res, err := s.sudo(t, tt.msg)
			assert.NoError(t, err)
			status, _ := res.Attr("status")
			assert.Equal(t, status, string(tt.status))
			recoveries := s.recoverable(t, s.alice)
			assert.Equal(t, len(recoveries), tt.recoverable)
			if tt.recoverable > 0 {
				assert.Equal(t, recoveries[0].Status, tt.status)
				assert.Equal(t, recoveries[0].Sequence, uint64(3))
			}
		})
	}
}

func TestLifecycle_RecoveriesAccumulate(t *testing.T) {
	s := setupCrosschainSwaps(t)
	s.forward(t, s.alice, 1)
	s.forward(t, s.alice, 2)

	_, err := s.sudo(t, timeout("channel-0", 1))
	assert.NoError(t, err)
	_, err = s.sudo(t, ack("channel-0", 2, false))
	assert.NoError(t, err)
	assert.Equal(t, len(s.recoverable(t, s.alice)), 2)

	res, err := s.execute(t, s.alice, crosschainswaps.ExecuteMsg{Recover: &struct{}{}}, nil)
	assert.NoError(t, err)
	assert.Equal(t, len(res.Messages), 2)
}

func TestLifecycle_UnexpectedPacket(t *testing.T) {
	s := setupCrosschainSwaps(t)

	res, err := s.sudo(t, ack("channel-5", 99, false))
	assert.NoError(t, err)
	msg, _ := res.Attr("msg")
	assert.Equal(t, msg, "unexpected ack")

	res, err = s.sudo(t, timeout("channel-5", 99))
	assert.NoError(t, err)
	msg, _ = res.Attr("msg")
	assert.Equal(t, msg, "unexpected timeout")
	assert.Equal(t, len(s.recoverable(t, s.alice)), 0)
}

func TestLifecycle_DoNothingIsNotTracked(t *testing.T) {
	s := setupCrosschainSwaps(t)
	s.forward(t, "", 4)

	var inflight crosschainswaps.IBCTransfer
	err := s.query(t, crosschainswaps.QueryMsg{Inflight: &crosschainswaps.InflightQuery{Channel: "channel-0", Sequence: 4}}, &inflight)
	assert.True(t, errors.Is(err, crosschainswaps.ErrNotFound))

	res, err := s.sudo(t, timeout("channel-0", 4))
	assert.NoError(t, err)
	msg, _ := res.Attr("msg")
	assert.Equal(t, msg, "unexpected timeout")
}

func TestRecover_Empty(t *testing.T) {
	s := setupCrosschainSwaps(t)
	res, err := s.execute(t, s.alice, crosschainswaps.ExecuteMsg{Recover: &struct{}{}}, nil)
	assert.NoError(t, err)
	assert.Equal(t, len(res.Messages), 0)
}

func TestOsmosisSwap_LockedWhileSwapPending(t *testing.T) {
	s := setupCrosschainSwaps(t)
	_, err := s.swap(t, swapTo(s.bob, s.alice, ""))
	assert.NoError(t, err)

	_, err = s.swap(t, swapTo(s.bob, s.alice, ""))
	assert.True(t, errors.Is(err, crosschainswaps.ErrContractLocked))
}

func TestOsmosisSwap_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		msg   func(s *suite) crosschainswaps.ExecuteMsg
		funds types.Coins
		err   error
	}{
		{
			name:  "callback key in memo",
			msg:   func(s *suite) crosschainswaps.ExecuteMsg { return swapTo(s.bob, s.alice, `{"ibc_callback":"x"}`) },
			funds: types.Coins{types.NewCoin("uosmo", 1000)},
			err:   crosschainswaps.ErrInvalidMemo,
		},
		{
			name:  "memo is not an object",
			msg:   func(s *suite) crosschainswaps.ExecuteMsg { return swapTo(s.bob, s.alice, `["a"]`) },
			funds: types.Coins{types.NewCoin("uosmo", 1000)},
			err:   crosschainswaps.ErrInvalidMemo,
		},
		{
			name: "receiver chain without channel",
			msg: func(s *suite) crosschainswaps.ExecuteMsg {
				return swapTo(host.MockAddress("juno", "carol"), s.alice, "")
			},
			funds: types.Coins{types.NewCoin("uosmo", 1000)},
			err:   crosschainswaps.ErrInvalidReceiver,
		},
		{
			name: "unknown prefix",
			msg: func(s *suite) crosschainswaps.ExecuteMsg {
				return swapTo(host.MockAddress("stars", "dave"), s.alice, "")
			},
			funds: types.Coins{types.NewCoin("uosmo", 1000)},
			err:   registry.ErrPrefixDoesNotExist,
		},
		{
			name:  "foreign recovery address",
			msg:   func(s *suite) crosschainswaps.ExecuteMsg { return swapTo(s.bob, s.bob, "") },
			funds: types.Coins{types.NewCoin("uosmo", 1000)},
			err:   crosschainswaps.ErrInvalidInput,
		},
		{
			name:  "no funds",
			msg:   func(s *suite) crosschainswaps.ExecuteMsg { return swapTo(s.bob, s.alice, "") },
			funds: nil,
			err:   crosschainswaps.ErrInvalidFunds,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupCrosschainSwaps(t)
			_, err := s.execute(t, s.alice, tt.msg(s), tt.funds)
			assert.True(t, errors.Is(err, tt.err))
		})
	}
}

func TestReply_Errors(t *testing.T) {
	s := setupCrosschainSwaps(t)

	_, err := s.reply(t, 9, struct{}{})
	assert.True(t, errors.Is(err, crosschainswaps.ErrUnknownReply))

	_, err = s.reply(t, crosschainswaps.SwapReplyID, crosschainswaps.SwapResponse{TokenOutDenom: "uatom", Amount: sdkmath.NewUint(1)})
	assert.True(t, errors.Is(err, crosschainswaps.ErrNotFound))

	_, err = s.h.Reply(context.Background(), s.addr, types.Reply{
		ID:     crosschainswaps.ForwardReplyID,
		Result: types.SubMsgResult{Err: "channel closed"},
	})
	assert.True(t, errors.Is(err, crosschainswaps.ErrFailedIBCTransfer))
}

func TestGovernor(t *testing.T) {
	s := setupCrosschainSwaps(t)
	newGovernor := host.MockAddress("osmo", "new-governor")
	newRouter := host.ContractAddress("osmo", "swaprouter-v2")

	_, err := s.execute(t, s.alice, crosschainswaps.ExecuteMsg{
		TransferOwnership: &crosschainswaps.TransferOwnershipMsg{NewGovernor: s.alice},
	}, nil)
	assert.True(t, errors.Is(err, crosschainswaps.ErrUnauthorized))

	_, err = s.execute(t, s.governor, crosschainswaps.ExecuteMsg{
		SetSwapContract: &crosschainswaps.SetSwapContractMsg{NewContract: newRouter},
	}, nil)
	assert.NoError(t, err)

	_, err = s.execute(t, s.governor, crosschainswaps.ExecuteMsg{
		TransferOwnership: &crosschainswaps.TransferOwnershipMsg{NewGovernor: newGovernor},
	}, nil)
	assert.NoError(t, err)

	_, err = s.execute(t, s.governor, crosschainswaps.ExecuteMsg{
		SetSwapContract: &crosschainswaps.SetSwapContractMsg{NewContract: s.router},
	}, nil)
	assert.True(t, errors.Is(err, crosschainswaps.ErrUnauthorized))

	var cfg crosschainswaps.Config
	assert.NoError(t, s.query(t, crosschainswaps.QueryMsg{Config: &struct{}{}}, &cfg))
	assert.Equal(t, cfg.Governor, newGovernor)
	assert.Equal(t, cfg.SwapContract, newRouter)
}
