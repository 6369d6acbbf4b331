package affiliateswap

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrNotFound           = errors.New("not found")
	ErrUnknownMessage     = errors.New("unknown message")
	ErrUnknownReply       = errors.New("unknown reply id")
	ErrExternalCallFailed = errors.New("external call failed")
)
