package registry

type Operation string

const (
	OperationSet     Operation = "set"
	OperationChange  Operation = "change"
	OperationRemove  Operation = "remove"
	OperationEnable  Operation = "enable"
	OperationDisable Operation = "disable"
)

type InstantiateMsg struct {
	Owner string `json:"owner"`
}

type ExecuteMsg struct {
	ModifyContractAlias       *ContractAliasOperations     `json:"modify_contract_alias,omitempty"`
	ModifyChainChannelLinks   *ConnectionOperations        `json:"modify_chain_channel_links,omitempty"`
	ModifyBech32Prefixes      *Bech32PrefixOperations      `json:"modify_bech32_prefixes,omitempty"`
	ModifyAuthorizedAddresses *AuthorizedAddressOperations `json:"modify_authorized_addresses,omitempty"`
	RegisterDenomTraces       *RegisterDenomTracesMsg      `json:"register_denom_traces,omitempty"`
}

type ContractAliasOperations struct {
	Operations []ContractAliasInput `json:"operations"`
}

type ContractAliasInput struct {
	Operation Operation `json:"operation"`
	Alias     string    `json:"alias"`
	Address   *string   `json:"address,omitempty"`
	NewAlias  *string   `json:"new_alias,omitempty"`
}

type ConnectionOperations struct {
	Operations []ConnectionInput `json:"operations"`
}

type ConnectionInput struct {
	Operation           Operation `json:"operation"`
	SourceChain         string    `json:"source_chain"`
	DestinationChain    string    `json:"destination_chain"`
	ChannelID           *string   `json:"channel_id,omitempty"`
	NewSourceChain      *string   `json:"new_source_chain,omitempty"`
	NewDestinationChain *string   `json:"new_destination_chain,omitempty"`
	NewChannelID        *string   `json:"new_channel_id,omitempty"`
}

type Bech32PrefixOperations struct {
	Operations []ChainToBech32PrefixInput `json:"operations"`
}

type ChainToBech32PrefixInput struct {
	Operation Operation `json:"operation"`
	ChainName string    `json:"chain_name"`
	Prefix    string    `json:"prefix"`
	NewPrefix *string   `json:"new_prefix,omitempty"`
}

type AuthorizedAddressOperations struct {
	Operations []AuthorizedAddressInput `json:"operations"`
}

type AuthorizedAddressInput struct {
	Operation   Operation  `json:"operation"`
	Permission  Permission `json:"permission"`
	SourceChain string     `json:"source_chain"`
	Address     string     `json:"address"`
	NewAddress  *string    `json:"new_address,omitempty"`
}

type RegisterDenomTracesMsg struct {
	Paths []string `json:"paths"`
}

type QueryMsg struct {
	GetAddressFromAlias                          *AliasQuery      `json:"get_address_from_alias,omitempty"`
	GetChannelFromChainPair                      *ChainPairQuery  `json:"get_channel_from_chain_pair,omitempty"`
	GetDestinationChainFromSourceChainViaChannel *ViaChannelQuery `json:"get_destination_chain_from_source_chain_via_channel,omitempty"`
	GetBech32PrefixFromChainName                 *ChainNameQuery  `json:"get_bech32_prefix_from_chain_name,omitempty"`
	GetChainNameFromBech32Prefix                 *PrefixQuery     `json:"get_chain_name_from_bech32_prefix,omitempty"`
	GetDenomTrace                                *DenomTraceQuery `json:"get_denom_trace,omitempty"`
	HashDenomTrace                               *HashDenomQuery  `json:"hash_denom_trace,omitempty"`
	GetAuthorizedAddress                         *AuthorizedQuery `json:"get_authorized_address,omitempty"`
	Config                                       *struct{}        `json:"config,omitempty"`
}

type AliasQuery struct {
	ContractAlias string `json:"contract_alias"`
}

type ChainPairQuery struct {
	SourceChain      string `json:"source_chain"`
	DestinationChain string `json:"destination_chain"`
}

type ViaChannelQuery struct {
	OnChain    string `json:"on_chain"`
	ViaChannel string `json:"via_channel"`
}

type ChainNameQuery struct {
	ChainName string `json:"chain_name"`
}

type PrefixQuery struct {
	Prefix string `json:"prefix"`
}

type DenomTraceQuery struct {
	IBCDenom string `json:"ibc_denom"`
}

type HashDenomQuery struct {
	Path string `json:"path"`
}

type AuthorizedQuery struct {
	Permission  Permission `json:"permission"`
	SourceChain string     `json:"source_chain"`
}

type AddressResponse struct {
	Address string `json:"address"`
}
