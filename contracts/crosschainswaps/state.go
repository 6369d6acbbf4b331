package crosschainswaps

import (
	"encoding/json"

	sdkmath "cosmossdk.io/math"

	"github.com/Cogwheel-Validator/spectra-contracts/wasm/storage"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/types"
)

const (
	SwapReplyID    uint64 = 1
	ForwardReplyID uint64 = 2

	// CallbackKey is the memo key ibc hooks read to notify this contract of the packet outcome.
	CallbackKey = "ibc_callback"
)

type Config struct {
	Governor         string `json:"governor"`
	SwapContract     string `json:"swap_contract"`
	RegistryContract string `json:"registry_contract"`
}

type ForwardTo struct {
	Channel          string               `json:"channel"`
	Receiver         string               `json:"receiver"`
	NextMemo         json.RawMessage      `json:"next_memo,omitempty"`
	OnFailedDelivery FailedDeliveryAction `json:"on_failed_delivery"`
}

// SwapMsgReplyState is held while the swap sub-message is pending.
type SwapMsgReplyState struct {
	SwapMsg      SwapMsg         `json:"swap_msg"`
	BlockTime    types.Timestamp `json:"block_time"`
	ContractAddr string          `json:"contract_addr"`
	ForwardTo    ForwardTo       `json:"forward_to"`
}

// ForwardMsgReplyState is held while the IBC transfer sub-message is pending.
type ForwardMsgReplyState struct {
	ChannelID        string               `json:"channel_id"`
	ToAddress        string               `json:"to_address"`
	Amount           sdkmath.Uint         `json:"amount"`
	Denom            string               `json:"denom"`
	OnFailedDelivery FailedDeliveryAction `json:"on_failed_delivery"`
}

type PacketLifecycleStatus string

const (
	StatusSent       PacketLifecycleStatus = "sent"
	StatusAckSuccess PacketLifecycleStatus = "ack_success"
	StatusAckFailure PacketLifecycleStatus = "ack_failure"
	StatusTimedOut   PacketLifecycleStatus = "timed_out"
)

// IBCTransfer is a forwarded packet whose funds can be recovered by RecoveryAddr.
type IBCTransfer struct {
	RecoveryAddr string                `json:"recovery_addr"`
	ChannelID    string                `json:"channel_id"`
	Sequence     uint64                `json:"sequence"`
	Amount       sdkmath.Uint          `json:"amount"`
	Denom        string                `json:"denom"`
	Status       PacketLifecycleStatus `json:"status"`
}

var (
	config            = storage.NewItem[Config]("config")
	swapReplyState    = storage.NewItem[SwapMsgReplyState]("swap_reply_state")
	forwardReplyState = storage.NewItem[ForwardMsgReplyState]("forward_reply_state")

	inflightPackets = storage.NewMap[storage.ChannelSeq, IBCTransfer]("inflight", storage.ChannelSeqKey)
	recoveryStates  = storage.NewMap[string, []IBCTransfer]("recovery", storage.StringKey)
)

func (t IBCTransfer) key() storage.ChannelSeq {
	return storage.ChannelSeq{Channel: t.ChannelID, Sequence: t.Sequence}
}
