package registry

import (
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/storage"
)

type Config struct {
	Owner string `json:"owner"`
}

// ChannelLink is the channel a source chain uses to reach a destination chain.
type ChannelLink struct {
	ChannelID string `json:"channel_id"`
	Enabled   bool   `json:"enabled"`
}

// ChainLink is the chain reached through a channel on a source chain.
type ChainLink struct {
	DestinationChain string `json:"destination_chain"`
	Enabled          bool   `json:"enabled"`
}

type PrefixEntry struct {
	Prefix  string `json:"prefix"`
	Enabled bool   `json:"enabled"`
}

type ChainEntry struct {
	ChainName string `json:"chain_name"`
	Enabled   bool   `json:"enabled"`
}

var (
	config = storage.NewItem[Config]("config")

	contractAliases = storage.NewMap[string, string]("aliases", storage.StringKey)

	// (source_chain, destination_chain) -> channel on source_chain
	chainToChainChannel = storage.NewMap[storage.Pair, ChannelLink]("chain_to_chain_channel", storage.PairKey)
	// (channel_id, source_chain) -> destination_chain
	channelOnChainChain = storage.NewMap[storage.Pair, ChainLink]("channel_on_chain_chain", storage.PairKey)

	chainToPrefix = storage.NewMap[string, PrefixEntry]("chain_to_bech32_prefix", storage.StringKey)
	prefixToChain = storage.NewMap[string, ChainEntry]("bech32_prefix_to_chain", storage.StringKey)

	// (permission, source_chain) -> address; global admins use an empty chain
	authorizedAddresses = storage.NewMap[storage.Pair, string]("authorized_addresses", storage.PairKey)

	// ibc denom -> trace
	denomTraces = storage.NewMap[string, DenomTrace]("denom_traces", storage.StringKey)
)

func chainPair(source, destination string) storage.Pair {
	return storage.Pair{First: source, Second: destination}
}

func channelPair(channel, source string) storage.Pair {
	return storage.Pair{First: channel, Second: source}
}
