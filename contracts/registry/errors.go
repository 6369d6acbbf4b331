package registry

import "errors"

var (
	ErrUnauthorized         = errors.New("unauthorized")
	ErrInvalidInput         = errors.New("invalid input")
	ErrNotFound             = errors.New("not found")
	ErrUnknownMessage       = errors.New("unknown message")
	ErrAliasAlreadyExists   = errors.New("alias already exists")
	ErrAliasDoesNotExist    = errors.New("alias does not exist")
	ErrChannelLinkExists    = errors.New("channel link already exists")
	ErrChannelLinkNotFound  = errors.New("channel link does not exist")
	ErrPrefixAlreadyExists  = errors.New("bech32 prefix already exists")
	ErrPrefixDoesNotExist   = errors.New("bech32 prefix does not exist")
	ErrAuthorizedAddrExists = errors.New("authorized address already set")
	ErrDisabled             = errors.New("entry is disabled")
)
