package crosschainswaps

import (
	"bytes"
	"encoding/json"
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/Cogwheel-Validator/spectra-contracts/wasm/storage"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/types"
)

type InstantiateMsg struct {
	Governor         string `json:"governor"`
	SwapContract     string `json:"swap_contract"`
	RegistryContract string `json:"registry_contract"`
}

type ExecuteMsg struct {
	OsmosisSwap       *OsmosisSwapMsg       `json:"osmosis_swap,omitempty"`
	Recover           *struct{}             `json:"recover,omitempty"`
	TransferOwnership *TransferOwnershipMsg `json:"transfer_ownership,omitempty"`
	SetSwapContract   *SetSwapContractMsg   `json:"set_swap_contract,omitempty"`
}

type OsmosisSwapMsg struct {
	OutputDenom      string               `json:"output_denom"`
	Slippage         Slippage             `json:"slippage"`
	Receiver         string               `json:"receiver"`
	OnFailedDelivery FailedDeliveryAction `json:"on_failed_delivery"`
	NextMemo         json.RawMessage      `json:"next_memo,omitempty"`
}

type Slippage struct {
	MinOutputAmount sdkmath.Uint `json:"min_output_amount"`
}

// FailedDeliveryAction is either "do_nothing" or {"local_recovery_addr": addr}.
type FailedDeliveryAction struct {
	LocalRecoveryAddr string
}

func (a FailedDeliveryAction) MarshalJSON() ([]byte, error) {
	if a.LocalRecoveryAddr == "" {
		return json.Marshal("do_nothing")
	}
	return json.Marshal(map[string]string{"local_recovery_addr": a.LocalRecoveryAddr})
}

func (a *FailedDeliveryAction) UnmarshalJSON(data []byte) error {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte(`"`)) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s != "do_nothing" {
			return fmt.Errorf("unknown failed delivery action %q", s)
		}
		*a = FailedDeliveryAction{}
		return nil
	}
	var v struct {
		LocalRecoveryAddr string `json:"local_recovery_addr"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.LocalRecoveryAddr == "" {
		return fmt.Errorf("local_recovery_addr is empty")
	}
	a.LocalRecoveryAddr = v.LocalRecoveryAddr
	return nil
}

type TransferOwnershipMsg struct {
	NewGovernor string `json:"new_governor"`
}

type SetSwapContractMsg struct {
	NewContract string `json:"new_contract"`
}

// SwapMsg is the swap contract's entry point.
type SwapMsg struct {
	Swap SwapParams `json:"swap"`
}

type SwapParams struct {
	InputCoin   types.Coin `json:"input_coin"`
	OutputDenom string     `json:"output_denom"`
	Slippage    Slippage   `json:"slippage"`
}

// SwapResponse is the reply data of a successful swap.
type SwapResponse struct {
	OriginalSender string       `json:"original_sender"`
	TokenOutDenom  string       `json:"token_out_denom"`
	Amount         sdkmath.Uint `json:"amount"`
}

// TransferResponse is the reply data of an IBC transfer.
type TransferResponse struct {
	Sequence uint64 `json:"sequence"`
}

// CrosschainSwapResponse is set as the data of the forward reply.
type CrosschainSwapResponse struct {
	SentAmount     sdkmath.Uint `json:"sent_amount"`
	Denom          string       `json:"denom"`
	ChannelID      string       `json:"channel_id"`
	Receiver       string       `json:"receiver"`
	PacketSequence uint64       `json:"packet_sequence"`
}

type SudoMsg struct {
	IBCLifecycleComplete *IBCLifecycleComplete `json:"ibc_lifecycle_complete,omitempty"`
}

type IBCLifecycleComplete struct {
	IBCAck     *IBCAck     `json:"ibc_ack,omitempty"`
	IBCTimeout *IBCTimeout `json:"ibc_timeout,omitempty"`
}

type IBCAck struct {
	Channel  string `json:"channel"`
	Sequence uint64 `json:"sequence"`
	Ack      string `json:"ack"`
	Success  bool   `json:"success"`
}

type IBCTimeout struct {
	Channel  string `json:"channel"`
	Sequence uint64 `json:"sequence"`
}

type QueryMsg struct {
	Config      *struct{}         `json:"config,omitempty"`
	Recoverable *RecoverableQuery `json:"recoverable,omitempty"`
	Inflight    *InflightQuery    `json:"inflight,omitempty"`
}

type RecoverableQuery struct {
	Addr string `json:"addr"`
}

type InflightQuery struct {
	Channel  string `json:"channel"`
	Sequence uint64 `json:"sequence"`
}

func (q InflightQuery) key() storage.ChannelSeq {
	return storage.ChannelSeq{Channel: q.Channel, Sequence: q.Sequence}
}
