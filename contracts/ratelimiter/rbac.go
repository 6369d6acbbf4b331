package ratelimiter

import (
	"fmt"
	"slices"

	"github.com/Cogwheel-Validator/spectra-contracts/wasm/host"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/storage"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/types"
)

type Role string

const (
	RoleAddRateLimit            Role = "AddRateLimit"
	RoleRemoveRateLimit         Role = "RemoveRateLimit"
	RoleResetPathQuota          Role = "ResetPathQuota"
	RoleEditPathQuota           Role = "EditPathQuota"
	RoleGrantRole               Role = "GrantRole"
	RoleRevokeRole              Role = "RevokeRole"
	RoleRemoveMessage           Role = "RemoveMessage"
	RoleSetTimelockDelay        Role = "SetTimelockDelay"
	RoleManageDenomRestrictions Role = "ManageDenomRestrictions"
)

// AllRoles lists every role; the gov module holds all of them after instantiate.
var AllRoles = []Role{
	RoleAddRateLimit,
	RoleRemoveRateLimit,
	RoleResetPathQuota,
	RoleEditPathQuota,
	RoleGrantRole,
	RoleRevokeRole,
	RoleRemoveMessage,
	RoleSetTimelockDelay,
	RoleManageDenomRestrictions,
}

func (r Role) valid() bool {
	return slices.Contains(AllRoles, r)
}

// RequiredPermission returns the role needed to run msg, or false when anyone may run it.
func (m ExecuteMsg) RequiredPermission() (Role, bool) {
	switch {
	case m.AddRateLimit != nil:
		return RoleAddRateLimit, true
	case m.RemoveRateLimit != nil:
		return RoleRemoveRateLimit, true
	case m.ResetPathQuota != nil:
		return RoleResetPathQuota, true
	case m.EditPathQuota != nil:
		return RoleEditPathQuota, true
	case m.GrantRole != nil:
		return RoleGrantRole, true
	case m.RevokeRole != nil:
		return RoleRevokeRole, true
	case m.RemoveMessage != nil:
		return RoleRemoveMessage, true
	case m.SetTimelockDelay != nil:
		return RoleSetTimelockDelay, true
	case m.SetDenomRestrictions != nil, m.UnsetDenomRestrictions != nil:
		return RoleManageDenomRestrictions, true
	default:
		return "", false
	}
}

// canInvokeMessage checks that the sender holds the role msg requires.
func canInvokeMessage(store storage.KVStore, info types.MessageInfo, msg ExecuteMsg) error {
	required, gated := msg.RequiredPermission()
	if !gated {
		return nil
	}
	roles, found, err := rbacPermissions.May(store, info.Sender)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%s has no roles: %w", info.Sender, ErrUnauthorized)
	}
	if !slices.Contains(roles, required) {
		return fmt.Errorf("%s lacks role %s: %w", info.Sender, required, ErrUnauthorized)
	}
	return nil
}

func grantRole(deps host.Deps, signer string, roles []Role) (*types.Response, error) {
	if err := deps.API.AddrValidate(signer); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	for _, r := range roles {
		if !r.valid() {
			return nil, fmt.Errorf("role %q: %w", r, ErrInvalidInput)
		}
	}

	_, err := rbacPermissions.Update(deps.Storage, signer, func(cur []Role, _ bool) ([]Role, error) {
		for _, r := range roles {
			if !slices.Contains(cur, r) {
				cur = append(cur, r)
			}
		}
		slices.Sort(cur)
		return cur, nil
	})
	if err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("method", "grant_role").
		AddAttribute("signer", signer), nil
}

// revokeRole removes roles from signer and drops the entry once no role is left.
func revokeRole(deps host.Deps, signer string, roles []Role) (*types.Response, error) {
	if err := deps.API.AddrValidate(signer); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	cur, found, err := rbacPermissions.May(deps.Storage, signer)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("roles of %s: %w", signer, ErrNotFound)
	}

	remaining := slices.DeleteFunc(cur, func(r Role) bool {
		return slices.Contains(roles, r)
	})
	if len(remaining) == 0 {
		err = rbacPermissions.Remove(deps.Storage, signer)
	} else {
		err = rbacPermissions.Save(deps.Storage, signer, remaining)
	}
	if err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("method", "revoke_role").
		AddAttribute("signer", signer), nil
}

func setTimelockDelay(deps host.Deps, signer string, hours uint64) (*types.Response, error) {
	if err := deps.API.AddrValidate(signer); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := timelockDelay.Save(deps.Storage, signer, hours); err != nil {
		return nil, err
	}
	return types.NewResponse().
		AddAttribute("method", "set_timelock_delay").
		AddAttribute("signer", signer).
		AddAttribute("hours", fmt.Sprintf("%d", hours)), nil
}
