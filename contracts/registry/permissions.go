package registry

import (
	"fmt"
	"strings"

	"github.com/Cogwheel-Validator/spectra-contracts/wasm/host"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/storage"
)

type Permission string

const (
	GlobalAdmin     Permission = "global_admin"
	ChainAdmin      Permission = "chain_admin"
	ChainMaintainer Permission = "chain_maintainer"
)

func (p Permission) rank() int {
	switch p {
	case GlobalAdmin:
		return 3
	case ChainAdmin:
		return 2
	case ChainMaintainer:
		return 1
	default:
		return 0
	}
}

// authorizedKey is the storage key of the address holding permission for chain.
func authorizedKey(p Permission, chain string) storage.Pair {
	if p == GlobalAdmin {
		return storage.Pair{First: string(p)}
	}
	return storage.Pair{First: string(p), Second: strings.ToLower(chain)}
}

func holds(deps host.Deps, sender string, p Permission, chain string) (bool, error) {
	addr, found, err := authorizedAddresses.May(deps.Storage, authorizedKey(p, chain))
	if err != nil {
		return false, err
	}
	return found && addr == sender, nil
}

// checkIsAuthorized returns the strongest permission sender holds over
// sourceChain. The contract owner is always a global admin.
func checkIsAuthorized(deps host.Deps, sender, sourceChain string) (Permission, error) {
	cfg, err := config.Load(deps.Storage)
	if err != nil {
		return "", err
	}
	if cfg.Owner == sender {
		return GlobalAdmin, nil
	}
	for _, p := range []Permission{GlobalAdmin, ChainAdmin, ChainMaintainer} {
		if p != GlobalAdmin && sourceChain == "" {
			break
		}
		ok, err := holds(deps, sender, p, sourceChain)
		if err != nil {
			return "", err
		}
		if ok {
			return p, nil
		}
	}
	return "", fmt.Errorf("%s on %q: %w", sender, sourceChain, ErrUnauthorized)
}

// checkActionPermission limits chain maintainers to adding and toggling entries.
func checkActionPermission(op Operation, p Permission) error {
	switch p {
	case GlobalAdmin, ChainAdmin:
		return nil
	case ChainMaintainer:
		if op == OperationSet || op == OperationEnable || op == OperationDisable {
			return nil
		}
	}
	return fmt.Errorf("%s may not %s: %w", p, op, ErrUnauthorized)
}

func checkIsGlobalAdmin(deps host.Deps, sender string) error {
	p, err := checkIsAuthorized(deps, sender, "")
	if err != nil {
		return err
	}
	if p != GlobalAdmin {
		return fmt.Errorf("%s is not a global admin: %w", sender, ErrUnauthorized)
	}
	return nil
}
