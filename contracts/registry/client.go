package registry

import (
	"encoding/json"
	"fmt"

	"github.com/btcsuite/btcutil/bech32"

	"github.com/Cogwheel-Validator/spectra-contracts/wasm/host"
)

// PacketLifetime is how long, in seconds, a forwarded packet may stay in flight.
const PacketLifetime uint64 = 604_800

// Client queries a registry instance from another contract.
type Client struct {
	querier  host.Querier
	contract string
}

func NewClient(deps host.Deps, contract string) (Client, error) {
	if err := deps.API.AddrValidate(contract); err != nil {
		return Client{}, fmt.Errorf("registry contract: %w", err)
	}
	return Client{querier: deps.Querier, contract: contract}, nil
}

func (c Client) query(msg QueryMsg, out any) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	res, err := c.querier.QuerySmart(c.contract, raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(res, out)
}

// ContractAddress resolves a contract alias.
func (c Client) ContractAddress(alias string) (string, error) {
	var res AddressResponse
	err := c.query(QueryMsg{GetAddressFromAlias: &AliasQuery{ContractAlias: alias}}, &res)
	return res.Address, err
}

// ConnectedChain returns the chain reached from onChain through viaChannel.
func (c Client) ConnectedChain(onChain, viaChannel string) (string, error) {
	var chain string
	err := c.query(QueryMsg{GetDestinationChainFromSourceChainViaChannel: &ViaChannelQuery{
		OnChain:    onChain,
		ViaChannel: viaChannel,
	}}, &chain)
	return chain, err
}

// Channel returns the channel on onChain that leads to forChain.
func (c Client) Channel(forChain, onChain string) (string, error) {
	var channel string
	err := c.query(QueryMsg{GetChannelFromChainPair: &ChainPairQuery{
		SourceChain:      onChain,
		DestinationChain: forChain,
	}}, &channel)
	return channel, err
}

func (c Client) Bech32Prefix(chain string) (string, error) {
	var prefix string
	err := c.query(QueryMsg{GetBech32PrefixFromChainName: &ChainNameQuery{ChainName: chain}}, &prefix)
	return prefix, err
}

func (c Client) ChainName(prefix string) (string, error) {
	var chain string
	err := c.query(QueryMsg{GetChainNameFromBech32Prefix: &PrefixQuery{Prefix: prefix}}, &chain)
	return chain, err
}

// ReceiverChannel validates a receiver on a remote chain and returns the
// channel on onChain that reaches it, resolved through the receiver's bech32 prefix.
func (c Client) ReceiverChannel(onChain, receiver string) (string, error) {
	prefix, err := host.Bech32Prefix(receiver)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	chain, err := c.ChainName(prefix)
	if err != nil {
		return "", err
	}
	return c.Channel(chain, onChain)
}

// EncodeAddressForChain re-encodes addr under the bech32 prefix registered for chain.
func (c Client) EncodeAddressForChain(addr, chain string) (string, error) {
	prefix, err := c.Bech32Prefix(chain)
	if err != nil {
		return "", err
	}
	_, data, err := bech32.Decode(addr)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w: %w", addr, ErrInvalidInput, err)
	}
	return bech32.Encode(prefix, data)
}
