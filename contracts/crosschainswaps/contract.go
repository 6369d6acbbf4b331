// Package crosschainswaps swaps tokens on this chain and forwards the output
// over IBC, keeping failed or timed out deliveries recoverable by a local
// address.
package crosschainswaps

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/Cogwheel-Validator/spectra-contracts/wasm/host"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/types"
)

var Logger zerolog.Logger

func init() {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	Logger = zerolog.New(out).With().Timestamp().Str("component", "crosschainswaps").Logger()
}

// SetLogger allows setting a custom logger
func SetLogger(l zerolog.Logger) {
	Logger = l.With().Str("component", "crosschainswaps").Logger()
}

type Contract struct{}

func New() *Contract {
	return &Contract{}
}

func (c *Contract) Instantiate(deps host.Deps, _ types.Env, _ types.MessageInfo, raw []byte) (*types.Response, error) {
	var msg InstantiateMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	for _, addr := range []string{msg.Governor, msg.SwapContract, msg.RegistryContract} {
		if err := deps.API.AddrValidate(addr); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
	}
	if err := config.Save(deps.Storage, Config(msg)); err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("method", "instantiate").
		AddAttribute("governor", msg.Governor), nil
}

func (c *Contract) Execute(deps host.Deps, env types.Env, info types.MessageInfo, raw []byte) (*types.Response, error) {
	var msg ExecuteMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	switch {
	case msg.OsmosisSwap != nil:
		return swapAndForward(deps, env, info, *msg.OsmosisSwap)
	case msg.Recover != nil:
		return recoverFunds(deps, info.Sender)
	case msg.TransferOwnership != nil:
		return transferOwnership(deps, info.Sender, msg.TransferOwnership.NewGovernor)
	case msg.SetSwapContract != nil:
		return setSwapContract(deps, info.Sender, msg.SetSwapContract.NewContract)
	default:
		return nil, ErrUnknownMessage
	}
}

func (c *Contract) Reply(deps host.Deps, _ types.Env, reply types.Reply) (*types.Response, error) {
	switch reply.ID {
	case SwapReplyID:
		return handleSwapReply(deps, reply)
	case ForwardReplyID:
		return handleForwardReply(deps, reply)
	default:
		return nil, fmt.Errorf("%d: %w", reply.ID, ErrUnknownReply)
	}
}

func (c *Contract) Sudo(deps host.Deps, _ types.Env, raw []byte) (*types.Response, error) {
	var msg SudoMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if msg.IBCLifecycleComplete == nil {
		return nil, ErrUnknownMessage
	}
	switch lc := msg.IBCLifecycleComplete; {
	case lc.IBCAck != nil:
		return receiveAck(deps, *lc.IBCAck)
	case lc.IBCTimeout != nil:
		return receiveTimeout(deps, *lc.IBCTimeout)
	default:
		return nil, ErrUnknownMessage
	}
}

func (c *Contract) Query(deps host.Deps, _ types.Env, raw []byte) ([]byte, error) {
	var msg QueryMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	var (
		out any
		err error
	)
	switch {
	case msg.Config != nil:
		out, err = config.Load(deps.Storage)
	case msg.Recoverable != nil:
		var recoveries []IBCTransfer
		recoveries, _, err = recoveryStates.May(deps.Storage, msg.Recoverable.Addr)
		if recoveries == nil {
			recoveries = []IBCTransfer{}
		}
		out = recoveries
	case msg.Inflight != nil:
		var found bool
		out, found, err = inflightPackets.May(deps.Storage, msg.Inflight.key())
		if err == nil && !found {
			err = fmt.Errorf("packet %s/%d: %w", msg.Inflight.Channel, msg.Inflight.Sequence, ErrNotFound)
		}
	default:
		err = ErrUnknownMessage
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

var (
	_ host.Contract      = (*Contract)(nil)
	_ host.SudoContract  = (*Contract)(nil)
	_ host.ReplyContract = (*Contract)(nil)
)
