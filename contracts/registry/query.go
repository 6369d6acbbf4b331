package registry

import (
	"fmt"
	"strings"

	"github.com/Cogwheel-Validator/spectra-contracts/wasm/host"
)

func queryAddressFromAlias(deps host.Deps, alias string) (AddressResponse, error) {
	addr, found, err := contractAliases.May(deps.Storage, alias)
	if err != nil {
		return AddressResponse{}, err
	}
	if !found {
		return AddressResponse{}, fmt.Errorf("%s: %w", alias, ErrAliasDoesNotExist)
	}
	return AddressResponse{Address: addr}, nil
}

func queryChannelFromChainPair(deps host.Deps, q ChainPairQuery) (string, error) {
	source, destination := strings.ToLower(q.SourceChain), strings.ToLower(q.DestinationChain)
	link, err := loadChannelLink(deps, source, destination)
	if err != nil {
		return "", err
	}
	if !link.Enabled {
		return "", fmt.Errorf("%s-%s: %w", source, destination, ErrDisabled)
	}
	return link.ChannelID, nil
}

func queryDestinationChain(deps host.Deps, q ViaChannelQuery) (string, error) {
	chain, channel := strings.ToLower(q.OnChain), strings.ToLower(q.ViaChannel)
	link, found, err := channelOnChainChain.May(deps.Storage, channelPair(channel, chain))
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("%s on %s: %w", channel, chain, ErrChannelLinkNotFound)
	}
	if !link.Enabled {
		return "", fmt.Errorf("%s on %s: %w", channel, chain, ErrDisabled)
	}
	return link.DestinationChain, nil
}

func queryPrefixFromChainName(deps host.Deps, chain string) (string, error) {
	entry, err := loadPrefix(deps, strings.ToLower(chain))
	if err != nil {
		return "", err
	}
	if !entry.Enabled {
		return "", fmt.Errorf("%s: %w", chain, ErrDisabled)
	}
	return entry.Prefix, nil
}

func queryChainNameFromPrefix(deps host.Deps, prefix string) (string, error) {
	entry, found, err := prefixToChain.May(deps.Storage, strings.ToLower(prefix))
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("%s: %w", prefix, ErrPrefixDoesNotExist)
	}
	if !entry.Enabled {
		return "", fmt.Errorf("%s: %w", prefix, ErrDisabled)
	}
	return entry.ChainName, nil
}

func queryDenomTrace(deps host.Deps, ibcDenom string) (DenomTrace, error) {
	trace, found, err := denomTraces.May(deps.Storage, ibcDenom)
	if err != nil {
		return DenomTrace{}, err
	}
	if !found {
		return DenomTrace{}, fmt.Errorf("denom trace of %s: %w", ibcDenom, ErrNotFound)
	}
	return trace, nil
}

func queryAuthorizedAddress(deps host.Deps, q AuthorizedQuery) (AddressResponse, error) {
	addr, found, err := authorizedAddresses.May(deps.Storage, authorizedKey(q.Permission, q.SourceChain))
	if err != nil {
		return AddressResponse{}, err
	}
	if !found {
		return AddressResponse{}, fmt.Errorf("%s for %q: %w", q.Permission, q.SourceChain, ErrNotFound)
	}
	return AddressResponse{Address: addr}, nil
}
