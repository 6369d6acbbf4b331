package types

import (
	"encoding/json"
	"fmt"
)

// CosmosMsg is the tagged union of effects a contract can ask the host to run.
// Exactly one field is set.
type CosmosMsg struct {
	Bank *BankMsg `json:"bank,omitempty"`
	Wasm *WasmMsg `json:"wasm,omitempty"`
	IBC  *IBCMsg  `json:"ibc,omitempty"`
}

type BankMsg struct {
	Send *SendMsg `json:"send,omitempty"`
}

type SendMsg struct {
	ToAddress string `json:"to_address"`
	Amount    Coins  `json:"amount"`
}

type WasmMsg struct {
	Execute *ExecuteMsg `json:"execute,omitempty"`
}

// ExecuteMsg calls another contract with a raw JSON message.
type ExecuteMsg struct {
	ContractAddr string          `json:"contract_addr"`
	Msg          json.RawMessage `json:"msg"`
	Funds        Coins           `json:"funds"`
}

type IBCMsg struct {
	Transfer *TransferMsg `json:"transfer,omitempty"`
}

type TransferMsg struct {
	ChannelID string     `json:"channel_id"`
	ToAddress string     `json:"to_address"`
	Amount    Coin       `json:"amount"`
	Timeout   IBCTimeout `json:"timeout"`
	Memo      string     `json:"memo,omitempty"`
}

type IBCTimeout struct {
	Block     *IBCTimeoutBlock `json:"block,omitempty"`
	Timestamp *Timestamp       `json:"timestamp,omitempty"`
}

type IBCTimeoutBlock struct {
	Revision uint64 `json:"revision"`
	Height   uint64 `json:"height"`
}

func NewBankSend(to string, coins ...Coin) CosmosMsg {
	return CosmosMsg{Bank: &BankMsg{Send: &SendMsg{ToAddress: to, Amount: coins}}}
}

// NewWasmExecute encodes msg and wraps it into a contract call.
func NewWasmExecute(contract string, msg any, funds Coins) (CosmosMsg, error) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return CosmosMsg{}, fmt.Errorf("failed to encode wasm message: %w", err)
	}
	return CosmosMsg{Wasm: &WasmMsg{Execute: &ExecuteMsg{
		ContractAddr: contract,
		Msg:          raw,
		Funds:        funds,
	}}}, nil
}

func NewIBCTransfer(channel, to string, amount Coin, timeout Timestamp, memo string) CosmosMsg {
	return CosmosMsg{IBC: &IBCMsg{Transfer: &TransferMsg{
		ChannelID: channel,
		ToAddress: to,
		Amount:    amount,
		Timeout:   IBCTimeout{Timestamp: &timeout},
		Memo:      memo,
	}}}
}

func marshalJSON(v any) ([]byte, error) {
	return json.Marshal(v)
}
