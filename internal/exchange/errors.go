package exchange

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAccount means the user has no active account for the
	// exchange. Execution for that user cannot proceed.
	ErrMissingAccount = errors.New("no active exchange account for user")

	ErrUnsupportedExchange = errors.New("unsupported exchange")

	ErrSymbolNotFound = errors.New("symbol not found")
)

// Error wraps any failure talking to an exchange: network errors,
// non-2xx responses, malformed payloads. The gateway never retries;
// retry policy belongs to the caller.
type Error struct {
	Exchange   string
	Op         string
	StatusCode int // 0 when the request never completed
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s failed with status %d: %s", e.Exchange, e.Op, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s failed: %v", e.Exchange, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s failed: %s", e.Exchange, e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}
