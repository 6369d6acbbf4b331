// Package host runs contracts the way the chain would: it injects storage, a
// querier, the address API and the block environment into every entry point,
// and commits a call's writes only when the call succeeds.
package host

import (
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/storage"
	"github.com/Cogwheel-Validator/spectra-contracts/wasm/types"
)

// Deps is handed to every entry point in place of ambient globals.
type Deps struct {
	Storage storage.KVStore
	Querier Querier
	API     API
}

// Querier performs read-only lookups outside the calling contract.
type Querier interface {
	QuerySmart(contract string, msg []byte) ([]byte, error)
	QuerySupply(denom string) (types.Coin, error)
	QueryBalance(addr, denom string) (types.Coin, error)
}

// Contract is the minimum surface every contract implements.
type Contract interface {
	Instantiate(deps Deps, env types.Env, info types.MessageInfo, msg []byte) (*types.Response, error)
	Execute(deps Deps, env types.Env, info types.MessageInfo, msg []byte) (*types.Response, error)
	Query(deps Deps, env types.Env, msg []byte) ([]byte, error)
}

// SudoContract receives privileged calls from the chain itself.
type SudoContract interface {
	Sudo(deps Deps, env types.Env, msg []byte) (*types.Response, error)
}

// ReplyContract resumes after one of its sub-messages resolved.
type ReplyContract interface {
	Reply(deps Deps, env types.Env, reply types.Reply) (*types.Response, error)
}
