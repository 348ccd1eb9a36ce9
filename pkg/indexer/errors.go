package indexer

import (
	"github.com/iov-one/weave/errors"
)

var (
	// Indexer errors start from 2200

	ErrFailedResponse = errors.Register(2200, "failed response")
	ErrUnavailable    = errors.Register(2201, "indexer unavailable")
	ErrDecode         = errors.Register(2202, "cannot decode response")
	ErrNotConfigured  = errors.Register(2203, "endpoint not configured")
)
