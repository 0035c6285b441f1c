package errors

import "errors"

var (
	ErrPortRangeExceeded  = errors.New("no free port within allowed range")
	ErrRendezvous         = errors.New("rendezvous handshake failed")
	ErrNetworkInit        = errors.New("network initialization failed")
	ErrInvalidGroupColumn = errors.New("unsupported group column type")
	ErrEmptyKey           = errors.New("empty key")
	ErrNotFound           = errors.New("not found")
	ErrEntityExists       = errors.New("entity already exists")
	ErrInvalidData        = errors.New("invalid data type")
)
