// Package ratelimiter caps the net value of each denom that may move over an
// IBC channel during a rolling period, expressed as a percentage of the
// denom's value at the start of the period.
package ratelimiter

import (
	"encoding/json"
	"errors"
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
	Logger = zerolog.New(out).With().Timestamp().Str("component", "ratelimiter").Logger()
}

// SetLogger allows setting a custom logger
func SetLogger(l zerolog.Logger) {
	Logger = l.With().Str("component", "ratelimiter").Logger()
}

type Contract struct {
	verbose bool
}

type Option func(*Contract)

// WithVerboseAttributes controls whether try_transfer reports the state of
// every quota it touched. On by default.
func WithVerboseAttributes(verbose bool) Option {
	return func(c *Contract) { c.verbose = verbose }
}

func New(opts ...Option) *Contract {
	c := &Contract{verbose: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Contract) Instantiate(deps host.Deps, env types.Env, _ types.MessageInfo, raw []byte) (*types.Response, error) {
	var msg InstantiateMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	for _, addr := range []string{msg.GovModule, msg.IBCModule} {
		if err := deps.API.AddrValidate(addr); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
	}

	if err := govModule.Save(deps.Storage, msg.GovModule); err != nil {
		return nil, err
	}
	if err := ibcModule.Save(deps.Storage, msg.IBCModule); err != nil {
		return nil, err
	}
	if err := rbacPermissions.Save(deps.Storage, msg.GovModule, append([]Role(nil), AllRoles...)); err != nil {
		return nil, err
	}
	if err := addNewPaths(deps, msg.Paths, env.Block.Time); err != nil {
		return nil, err
	}

	return types.NewResponse().
		AddAttribute("method", "instantiate").
		AddAttribute("ibc_module", msg.IBCModule).
		AddAttribute("gov_module", msg.GovModule), nil
}

// Execute checks the sender's role, then either runs the message or, when the
// sender is behind a timelock, queues it.
func (c *Contract) Execute(deps host.Deps, env types.Env, info types.MessageInfo, raw []byte) (*types.Response, error) {
	var msg ExecuteMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if _, err := variant(msg); err != nil {
		return nil, err
	}
	if err := canInvokeMessage(deps.Storage, info, msg); err != nil {
		return nil, err
	}

	if msg.ProcessMessages == nil {
		queued, err := mustQueueMessage(deps, info)
		if err != nil {
			return nil, err
		}
		if queued {
			return queueMessage(deps, env, info, msg)
		}
	}
	return c.matchExecute(deps, env, msg)
}

func (c *Contract) matchExecute(deps host.Deps, env types.Env, msg ExecuteMsg) (*types.Response, error) {
	switch {
	case msg.AddRateLimit != nil:
		return tryAddRateLimit(deps, env, *msg.AddRateLimit)
	case msg.RemoveRateLimit != nil:
		return tryRemovePath(deps, msg.RemoveRateLimit.ChannelID, msg.RemoveRateLimit.Denom)
	case msg.ResetPathQuota != nil:
		m := msg.ResetPathQuota
		return tryResetPathQuota(deps, env, m.ChannelID, m.Denom, m.QuotaID)
	case msg.EditPathQuota != nil:
		m := msg.EditPathQuota
		return editPathQuota(deps, m.ChannelID, m.Denom, m.Quota)
	case msg.GrantRole != nil:
		return grantRole(deps, msg.GrantRole.Signer, msg.GrantRole.Roles)
	case msg.RevokeRole != nil:
		return revokeRole(deps, msg.RevokeRole.Signer, msg.RevokeRole.Roles)
	case msg.RemoveMessage != nil:
		return removeMessage(deps, msg.RemoveMessage.MessageID)
	case msg.SetTimelockDelay != nil:
		return setTimelockDelay(deps, msg.SetTimelockDelay.Signer, msg.SetTimelockDelay.Hours)
	case msg.SetDenomRestrictions != nil:
		return setDenomRestrictions(deps, msg.SetDenomRestrictions.Denom, msg.SetDenomRestrictions.AllowedChannels)
	case msg.UnsetDenomRestrictions != nil:
		return unsetDenomRestrictions(deps, msg.UnsetDenomRestrictions.Denom)
	case msg.ProcessMessages != nil:
		return c.processMessageQueue(deps, env, msg.ProcessMessages.Count, msg.ProcessMessages.MessageIDs)
	default:
		return nil, ErrUnknownMessage
	}
}

// Sudo is the IBC middleware hook: every packet sent or received passes
// through it, as does every send that has to be reverted.
func (c *Contract) Sudo(deps host.Deps, env types.Env, raw []byte) (*types.Response, error) {
	var msg SudoMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if _, err := variant(msg); err != nil {
		return nil, err
	}

	var (
		res *types.Response
		err error
	)
	switch {
	case msg.SendPacket != nil:
		res, err = c.processPacket(deps, env, msg.SendPacket.Packet, Out, msg.SendPacket.ChannelValue)
	case msg.RecvPacket != nil:
		res, err = c.processPacket(deps, env, msg.RecvPacket.Packet, In, msg.RecvPacket.ChannelValue)
	case msg.UndoSend != nil:
		res, err = undoSend(deps, msg.UndoSend.Packet)
	}

	var exceeded *RateLimitExceededError
	if errors.As(err, &exceeded) {
		Logger.Info().
			Str("channel", exceeded.Channel).
			Str("denom", exceeded.Denom).
			Str("quota", exceeded.QuotaName).
			Str("amount", exceeded.Amount.String()).
			Msg("transfer rejected")
	}
	return res, err
}

var (
	_ host.Contract     = (*Contract)(nil)
	_ host.SudoContract = (*Contract)(nil)
)
