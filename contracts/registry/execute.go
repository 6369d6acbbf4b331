package registry

import (
	"fmt"
	"strings"

	"github.com/Cogwheel-Validator/spectra-contracts/wasm/host"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/types"
)

// contractAliasOperations sets, renames or removes contract aliases. Only
// global admins manage aliases.
func contractAliasOperations(deps host.Deps, sender string, ops []ContractAliasInput) (*types.Response, error) {
	if err := checkIsGlobalAdmin(deps, sender); err != nil {
		return nil, err
	}
	res := types.NewResponse().AddAttribute("method", "modify_contract_alias")
	for _, op := range ops {
		switch op.Operation {
		case OperationSet:
			exists, err := contractAliases.Has(deps.Storage, op.Alias)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, fmt.Errorf("%s: %w", op.Alias, ErrAliasAlreadyExists)
			}
			if op.Address == nil {
				return nil, fmt.Errorf("address is required to set alias %s: %w", op.Alias, ErrInvalidInput)
			}
			if err := deps.API.AddrValidate(*op.Address); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
			}
			if err := contractAliases.Save(deps.Storage, op.Alias, *op.Address); err != nil {
				return nil, err
			}
			res.AddAttribute("set_contract_alias", op.Alias)

		case OperationChange:
			address, found, err := contractAliases.May(deps.Storage, op.Alias)
			if err != nil {
				return nil, err
			}
			if !found {
				return nil, fmt.Errorf("%s: %w", op.Alias, ErrAliasDoesNotExist)
			}
			if op.NewAlias == nil || *op.NewAlias == "" {
				return nil, fmt.Errorf("new_alias is required to change alias %s: %w", op.Alias, ErrInvalidInput)
			}
			taken, err := contractAliases.Has(deps.Storage, *op.NewAlias)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, fmt.Errorf("%s: %w", *op.NewAlias, ErrAliasAlreadyExists)
			}
			if err := contractAliases.Remove(deps.Storage, op.Alias); err != nil {
				return nil, err
			}
			if err := contractAliases.Save(deps.Storage, *op.NewAlias, address); err != nil {
				return nil, err
			}
			res.AddAttribute("change_contract_alias", op.Alias)

		case OperationRemove:
			exists, err := contractAliases.Has(deps.Storage, op.Alias)
			if err != nil {
				return nil, err
			}
			if !exists {
				return nil, fmt.Errorf("%s: %w", op.Alias, ErrAliasDoesNotExist)
			}
			if err := contractAliases.Remove(deps.Storage, op.Alias); err != nil {
				return nil, err
			}
			res.AddAttribute("remove_contract_alias", op.Alias)

		default:
			return nil, fmt.Errorf("operation %q on aliases: %w", op.Operation, ErrInvalidInput)
		}
	}
	return res, nil
}

// connectionOperations maintains the channel links between chains and the
// reverse channel lookup. Chain names and channel ids are stored lowercase.
func connectionOperations(deps host.Deps, sender string, ops []ConnectionInput) (*types.Response, error) {
	res := types.NewResponse().AddAttribute("method", "modify_chain_channel_links")
	for _, op := range ops {
		source := strings.ToLower(op.SourceChain)
		destination := strings.ToLower(op.DestinationChain)

		perm, err := checkIsAuthorized(deps, sender, source)
		if err != nil {
			return nil, err
		}
		if err := checkActionPermission(op.Operation, perm); err != nil {
			return nil, err
		}

		connection := source + "-" + destination
		switch op.Operation {
		case OperationSet:
			if op.ChannelID == nil {
				return nil, fmt.Errorf("channel_id is required to set %s: %w", connection, ErrInvalidInput)
			}
			channel := strings.ToLower(*op.ChannelID)
			if err := ValidateChannelID(channel); err != nil {
				return nil, err
			}
			if err := setConnection(deps, source, destination, channel); err != nil {
				return nil, err
			}
			res.AddAttribute("set_connection", connection)

		case OperationChange:
			if err := changeConnection(deps, source, destination, op); err != nil {
				return nil, err
			}
			res.AddAttribute("change_connection", connection)

		case OperationRemove:
			link, err := loadChannelLink(deps, source, destination)
			if err != nil {
				return nil, err
			}
			if err := chainToChainChannel.Remove(deps.Storage, chainPair(source, destination)); err != nil {
				return nil, err
			}
			if err := channelOnChainChain.Remove(deps.Storage, channelPair(link.ChannelID, source)); err != nil {
				return nil, err
			}
			res.AddAttribute("remove_connection", connection)

		case OperationEnable, OperationDisable:
			enabled := op.Operation == OperationEnable
			link, err := loadChannelLink(deps, source, destination)
			if err != nil {
				return nil, err
			}
			link.Enabled = enabled
			if err := chainToChainChannel.Save(deps.Storage, chainPair(source, destination), link); err != nil {
				return nil, err
			}
			if err := channelOnChainChain.Save(deps.Storage, channelPair(link.ChannelID, source), ChainLink{
				DestinationChain: destination,
				Enabled:          enabled,
			}); err != nil {
				return nil, err
			}
			res.AddAttribute(string(op.Operation)+"_connection", connection)

		default:
			return nil, fmt.Errorf("operation %q on connections: %w", op.Operation, ErrInvalidInput)
		}
	}
	return res, nil
}

func loadChannelLink(deps host.Deps, source, destination string) (ChannelLink, error) {
	link, found, err := chainToChainChannel.May(deps.Storage, chainPair(source, destination))
	if err != nil {
		return ChannelLink{}, err
	}
	if !found {
		return ChannelLink{}, fmt.Errorf("%s-%s: %w", source, destination, ErrChannelLinkNotFound)
	}
	return link, nil
}

func setConnection(deps host.Deps, source, destination, channel string) error {
	exists, err := chainToChainChannel.Has(deps.Storage, chainPair(source, destination))
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%s-%s: %w", source, destination, ErrChannelLinkExists)
	}
	exists, err = channelOnChainChain.Has(deps.Storage, channelPair(channel, source))
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%s on %s: %w", channel, source, ErrChannelLinkExists)
	}
	if err := chainToChainChannel.Save(deps.Storage, chainPair(source, destination), ChannelLink{
		ChannelID: channel,
		Enabled:   true,
	}); err != nil {
		return err
	}
	return channelOnChainChain.Save(deps.Storage, channelPair(channel, source), ChainLink{
		DestinationChain: destination,
		Enabled:          true,
	})
}

// changeConnection moves a link to a new channel, destination or source
// chain. Exactly the first of those that is set is applied.
func changeConnection(deps host.Deps, source, destination string, op ConnectionInput) error {
	link, err := loadChannelLink(deps, source, destination)
	if err != nil {
		return err
	}

	newSource, newDestination, newChannel := source, destination, link.ChannelID
	switch {
	case op.NewChannelID != nil:
		newChannel = strings.ToLower(*op.NewChannelID)
		if err := ValidateChannelID(newChannel); err != nil {
			return err
		}
	case op.NewDestinationChain != nil:
		newDestination = strings.ToLower(*op.NewDestinationChain)
	case op.NewSourceChain != nil:
		newSource = strings.ToLower(*op.NewSourceChain)
	default:
		return fmt.Errorf("one of new_channel_id, new_destination_chain or new_source_chain is required: %w", ErrInvalidInput)
	}

	if err := chainToChainChannel.Remove(deps.Storage, chainPair(source, destination)); err != nil {
		return err
	}
	if err := channelOnChainChain.Remove(deps.Storage, channelPair(link.ChannelID, source)); err != nil {
		return err
	}
	if err := chainToChainChannel.Save(deps.Storage, chainPair(newSource, newDestination), ChannelLink{
		ChannelID: newChannel,
		Enabled:   link.Enabled,
	}); err != nil {
		return err
	}
	return channelOnChainChain.Save(deps.Storage, channelPair(newChannel, newSource), ChainLink{
		DestinationChain: newDestination,
		Enabled:          link.Enabled,
	})
}

// prefixOperations maintains the chain name to bech32 prefix mapping in both directions.
func prefixOperations(deps host.Deps, sender string, ops []ChainToBech32PrefixInput) (*types.Response, error) {
	res := types.NewResponse().AddAttribute("method", "modify_bech32_prefixes")
	for _, op := range ops {
		chain := strings.ToLower(op.ChainName)

		perm, err := checkIsAuthorized(deps, sender, chain)
		if err != nil {
			return nil, err
		}
		if err := checkActionPermission(op.Operation, perm); err != nil {
			return nil, err
		}

		switch op.Operation {
		case OperationSet:
			prefix := strings.ToLower(op.Prefix)
			if prefix == "" {
				return nil, fmt.Errorf("prefix is required for %s: %w", chain, ErrInvalidInput)
			}
			exists, err := chainToPrefix.Has(deps.Storage, chain)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, fmt.Errorf("%s: %w", chain, ErrPrefixAlreadyExists)
			}
			if err := savePrefix(deps, chain, prefix, true); err != nil {
				return nil, err
			}
			res.AddAttribute("set_chain_to_prefix", chain)

		case OperationChange:
			entry, err := loadPrefix(deps, chain)
			if err != nil {
				return nil, err
			}
			if op.NewPrefix == nil || *op.NewPrefix == "" {
				return nil, fmt.Errorf("new_prefix is required to change %s: %w", chain, ErrInvalidInput)
			}
			if err := prefixToChain.Remove(deps.Storage, entry.Prefix); err != nil {
				return nil, err
			}
			if err := savePrefix(deps, chain, strings.ToLower(*op.NewPrefix), entry.Enabled); err != nil {
				return nil, err
			}
			res.AddAttribute("change_chain_to_prefix", chain)

		case OperationRemove:
			entry, err := loadPrefix(deps, chain)
			if err != nil {
				return nil, err
			}
			if err := chainToPrefix.Remove(deps.Storage, chain); err != nil {
				return nil, err
			}
			if err := prefixToChain.Remove(deps.Storage, entry.Prefix); err != nil {
				return nil, err
			}
			res.AddAttribute("remove_chain_to_prefix", chain)

		case OperationEnable, OperationDisable:
			entry, err := loadPrefix(deps, chain)
			if err != nil {
				return nil, err
			}
			if err := savePrefix(deps, chain, entry.Prefix, op.Operation == OperationEnable); err != nil {
				return nil, err
			}
			res.AddAttribute(string(op.Operation)+"_chain_to_prefix", chain)

		default:
			return nil, fmt.Errorf("operation %q on prefixes: %w", op.Operation, ErrInvalidInput)
		}
	}
	return res, nil
}

func loadPrefix(deps host.Deps, chain string) (PrefixEntry, error) {
	entry, found, err := chainToPrefix.May(deps.Storage, chain)
	if err != nil {
		return PrefixEntry{}, err
	}
	if !found {
		return PrefixEntry{}, fmt.Errorf("%s: %w", chain, ErrPrefixDoesNotExist)
	}
	return entry, nil
}

func savePrefix(deps host.Deps, chain, prefix string, enabled bool) error {
	if err := chainToPrefix.Save(deps.Storage, chain, PrefixEntry{Prefix: prefix, Enabled: enabled}); err != nil {
		return err
	}
	return prefixToChain.Save(deps.Storage, prefix, ChainEntry{ChainName: chain, Enabled: enabled})
}

// authorizedAddressOperations grants and revokes permissions. A sender may
// only manage permissions strictly weaker than its own; the owner alone
// manages the global admin.
func authorizedAddressOperations(deps host.Deps, sender string, ops []AuthorizedAddressInput) (*types.Response, error) {
	cfg, err := config.Load(deps.Storage)
	if err != nil {
		return nil, err
	}
	res := types.NewResponse().AddAttribute("method", "modify_authorized_addresses")
	for _, op := range ops {
		if op.Permission.rank() == 0 {
			return nil, fmt.Errorf("permission %q: %w", op.Permission, ErrInvalidInput)
		}
		if op.Permission != GlobalAdmin && op.SourceChain == "" {
			return nil, fmt.Errorf("source_chain is required for %s: %w", op.Permission, ErrInvalidInput)
		}

		if sender != cfg.Owner {
			perm, err := checkIsAuthorized(deps, sender, op.SourceChain)
			if err != nil {
				return nil, err
			}
			if perm.rank() <= op.Permission.rank() {
				return nil, fmt.Errorf("%s may not manage %s: %w", perm, op.Permission, ErrUnauthorized)
			}
		}

		key := authorizedKey(op.Permission, op.SourceChain)
		switch op.Operation {
		case OperationSet:
			if err := deps.API.AddrValidate(op.Address); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
			}
			exists, err := authorizedAddresses.Has(deps.Storage, key)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, fmt.Errorf("%s for %q: %w", op.Permission, op.SourceChain, ErrAuthorizedAddrExists)
			}
			if err := authorizedAddresses.Save(deps.Storage, key, op.Address); err != nil {
				return nil, err
			}

		case OperationChange:
			if op.NewAddress == nil {
				return nil, fmt.Errorf("new_address is required: %w", ErrInvalidInput)
			}
			if err := deps.API.AddrValidate(*op.NewAddress); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
			}
			if _, err := authorizedAddresses.Load(deps.Storage, key); err != nil {
				return nil, fmt.Errorf("%s for %q: %w: %w", op.Permission, op.SourceChain, ErrNotFound, err)
			}
			if err := authorizedAddresses.Save(deps.Storage, key, *op.NewAddress); err != nil {
				return nil, err
			}

		case OperationRemove:
			if _, err := authorizedAddresses.Load(deps.Storage, key); err != nil {
				return nil, fmt.Errorf("%s for %q: %w: %w", op.Permission, op.SourceChain, ErrNotFound, err)
			}
			if err := authorizedAddresses.Remove(deps.Storage, key); err != nil {
				return nil, err
			}

		default:
			return nil, fmt.Errorf("operation %q on authorized addresses: %w", op.Operation, ErrInvalidInput)
		}
		res.AddAttribute(string(op.Operation)+"_"+string(op.Permission), op.SourceChain)
	}
	return res, nil
}

// registerDenomTraces records full traces so their ibc/ denoms can be resolved back.
func registerDenomTraces(deps host.Deps, sender string, paths []string) (*types.Response, error) {
	if err := checkIsGlobalAdmin(deps, sender); err != nil {
		return nil, err
	}
	res := types.NewResponse().AddAttribute("method", "register_denom_traces")
	for _, p := range paths {
		trace := ParseDenomTrace(p)
		if trace.Path == "" {
			return nil, fmt.Errorf("trace %q has no hops: %w", p, ErrInvalidInput)
		}
		denom := trace.IBCDenom()
		if err := denomTraces.Save(deps.Storage, denom, trace); err != nil {
			return nil, err
		}
		res.AddAttribute(denom, trace.FullPath())
	}
	return res, nil
}
