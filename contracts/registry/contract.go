// Package registry maps contract aliases, chain channel links and bech32
// prefixes so other contracts can route by chain name instead of hardcoding
// addresses and channels.
package registry

import (
	"encoding/json"
	"fmt"

	"github.com/Cogwheel-Validator/spectra-contracts/wasm/host"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/types"
)

type Contract struct{}

func New() *Contract {
	return &Contract{}
}

func (c *Contract) Instantiate(deps host.Deps, _ types.Env, _ types.MessageInfo, raw []byte) (*types.Response, error) {
	var msg InstantiateMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := deps.API.AddrValidate(msg.Owner); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := config.Save(deps.Storage, Config{Owner: msg.Owner}); err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("method", "instantiate").
		AddAttribute("owner", msg.Owner), nil
}

func (c *Contract) Execute(deps host.Deps, _ types.Env, info types.MessageInfo, raw []byte) (*types.Response, error) {
	var msg ExecuteMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	switch {
	case msg.ModifyContractAlias != nil:
		return contractAliasOperations(deps, info.Sender, msg.ModifyContractAlias.Operations)
	case msg.ModifyChainChannelLinks != nil:
		return connectionOperations(deps, info.Sender, msg.ModifyChainChannelLinks.Operations)
	case msg.ModifyBech32Prefixes != nil:
		return prefixOperations(deps, info.Sender, msg.ModifyBech32Prefixes.Operations)
	case msg.ModifyAuthorizedAddresses != nil:
		return authorizedAddressOperations(deps, info.Sender, msg.ModifyAuthorizedAddresses.Operations)
	case msg.RegisterDenomTraces != nil:
		return registerDenomTraces(deps, info.Sender, msg.RegisterDenomTraces.Paths)
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
	case msg.GetAddressFromAlias != nil:
		out, err = queryAddressFromAlias(deps, msg.GetAddressFromAlias.ContractAlias)
	case msg.GetChannelFromChainPair != nil:
		out, err = queryChannelFromChainPair(deps, *msg.GetChannelFromChainPair)
	case msg.GetDestinationChainFromSourceChainViaChannel != nil:
		out, err = queryDestinationChain(deps, *msg.GetDestinationChainFromSourceChainViaChannel)
	case msg.GetBech32PrefixFromChainName != nil:
		out, err = queryPrefixFromChainName(deps, msg.GetBech32PrefixFromChainName.ChainName)
	case msg.GetChainNameFromBech32Prefix != nil:
		out, err = queryChainNameFromPrefix(deps, msg.GetChainNameFromBech32Prefix.Prefix)
	case msg.GetDenomTrace != nil:
		out, err = queryDenomTrace(deps, msg.GetDenomTrace.IBCDenom)
	case msg.HashDenomTrace != nil:
		out = HashDenomTrace(msg.HashDenomTrace.Path)
	case msg.GetAuthorizedAddress != nil:
		out, err = queryAuthorizedAddress(deps, *msg.GetAuthorizedAddress)
	case msg.Config != nil:
		out, err = config.Load(deps.Storage)
	default:
		err = ErrUnknownMessage
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

var _ host.Contract = (*Contract)(nil)
