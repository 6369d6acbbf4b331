package chainreg

// IBCData is one _IBC/<chain_1>-<chain_2>.json file of the cosmos chain registry.
type IBCData struct {
	Schema   string        `json:"$schema"`
	Chain1   IBCChainData  `json:"chain_1"`
	Chain2   IBCChainData  `json:"chain_2"`
	Channels []ChannelData `json:"channels"`
}

type IBCChainData struct {
	ChainName    string `json:"chain_name"`
	ClientID     string `json:"client_id"`
	ConnectionID string `json:"connection_id"`
}

type ChannelData struct {
	Chain1   ChannelEnd  `json:"chain_1"`
	Chain2   ChannelEnd  `json:"chain_2"`
	Ordering string      `json:"ordering"`
	Version  string      `json:"version"`
	Tags     ChannelTags `json:"tags"`
}

type ChannelEnd struct {
	ChannelID string `json:"channel_id"`
	PortID    string `json:"port_id"`
}

type ChannelTags struct {
	Preferred bool   `json:"preferred"`
	Status    string `json:"status"`
}

// ChainData is the subset of <chain>/chain.json the registry contract needs.
type ChainData struct {
	ChainName    string `json:"chain_name"`
	ChainID      string `json:"chain_id"`
	Bech32Prefix string `json:"bech32_prefix"`
	Status       string `json:"status"`
}
