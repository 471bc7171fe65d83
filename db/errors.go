package db

import "errors"

var (
	// ErrInvalidConfig reports bad pool parameters or an unusable
	// database path.
	ErrInvalidConfig = errors.New("invalid pool configuration")
	// ErrPoolExhausted reports that no connection became available
	// within the acquire timeout.
	ErrPoolExhausted = errors.New("connection pool exhausted")
	// ErrPoolClosed reports an acquire against a closed pool.
	ErrPoolClosed = errors.New("connection pool closed")
)
