package crosschainswaps

import "errors"

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidFunds       = errors.New("invalid funds")
	ErrInvalidMemo        = errors.New("invalid memo")
	ErrInvalidReceiver    = errors.New("invalid receiver")
	ErrContractLocked     = errors.New("contract locked")
	ErrNotFound           = errors.New("not found")
	ErrUnknownMessage     = errors.New("unknown message")
	ErrUnknownReply       = errors.New("unknown reply id")
	ErrFailedIBCTransfer  = errors.New("failed ibc transfer")
	ErrExternalCallFailed = errors.New("external call failed")
)
