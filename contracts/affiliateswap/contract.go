// Package affiliateswap swaps on behalf of a user through the swap contract and
// splits the output between the user and a fixed affiliate.
package affiliateswap

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Cogwheel-Validator/spectra-contracts/wasm/host"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/types"
)

var Logger zerolog.Logger

func init() {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	Logger = zerolog.New(out).With().Timestamp().Str("component", "affiliateswap").Logger()
}

// SetLogger allows setting a custom logger
func SetLogger(l zerolog.Logger) {
	Logger = l.With().Str("component", "affiliateswap").Logger()
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
	if msg.AffiliateBps > BpsDenominator {
		return nil, fmt.Errorf("affiliate_bps %d exceeds %d: %w", msg.AffiliateBps, BpsDenominator, ErrInvalidInput)
	}
	for _, addr := range []string{msg.SwapContract, msg.AffiliateAddr} {
		if err := deps.API.AddrValidate(addr); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
	}

	cfg := Config(msg)
	if err := config.Save(deps.Storage, cfg); err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("method", "instantiate").
		AddAttribute("swap_contract", cfg.SwapContract).
		AddAttribute("affiliate_addr", cfg.AffiliateAddr).
		AddAttribute("affiliate_fee", feePercent(cfg.AffiliateBps)), nil
}

func (c *Contract) Execute(deps host.Deps, _ types.Env, info types.MessageInfo, raw []byte) (*types.Response, error) {
	var msg ExecuteMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	switch {
	case msg.SwapWithFee != nil:
		return swapWithFee(deps, info, *msg.SwapWithFee)
	default:
		return nil, ErrUnknownMessage
	}
}

func (c *Contract) Reply(deps host.Deps, _ types.Env, reply types.Reply) (*types.Response, error) {
	switch reply.ID {
	case SwapReplyID:
		return handleSwapReply(deps, reply)
	default:
		return nil, fmt.Errorf("%d: %w", reply.ID, ErrUnknownReply)
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
	case msg.PendingSwap != nil:
		pending, found, mayErr := swapReplyState.May(deps.Storage)
		if mayErr != nil {
			return nil, mayErr
		}
		if found {
			out = &pending
		} else {
			out = (*PendingSwap)(nil)
		}
	default:
		err = ErrUnknownMessage
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

// feePercent renders bps as a percentage with two decimals, e.g. 250 as "2.50".
func feePercent(bps uint64) string {
	return decimal.NewFromUint64(bps).Div(decimal.NewFromInt(100)).StringFixed(2)
}

var (
	_ host.Contract      = (*Contract)(nil)
	_ host.ReplyContract = (*Contract)(nil)
)
