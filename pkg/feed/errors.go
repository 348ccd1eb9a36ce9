package feed

import (
	"github.com/iov-one/weave/errors"
)

var (
	// Feed errors start from 2100

	// ErrReconnectExhausted is returned when the push channel could not be
	// reestablished within the configured number of attempts.
	ErrReconnectExhausted = errors.Register(2100, "reconnect attempts exhausted")
	ErrMalformedMessage   = errors.Register(2101, "malformed feed message")
)
