package llm

import (
	"errors"
	"fmt"
)

// Sentinel errors for chat-completion operations.
var (
	ErrNotConfigured = errors.New("llm: api key not configured")
	ErrUnauthorized  = errors.New("llm: unauthorized")
	ErrRateLimited   = errors.New("llm: rate limited by server")
	ErrBadRequest    = errors.New("llm: bad request")
	ErrServer        = errors.New("llm: server error")
	ErrBadResponse   = errors.New("llm: unexpected response format")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op      string // Operation: "complete"
	Status  int    // HTTP status, 0 when no response was received
	Message string // Provider message, if any
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0 && e.Message != "":
		return fmt.Sprintf("llm %s: %d - %s: %v", e.Op, e.Status, e.Message, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("llm %s: %d: %v", e.Op, e.Status, e.Err)
	default:
		return fmt.Sprintf("llm %s: %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapError(op string, status int, message string, err error) error {
	return &Error{Op: op, Status: status, Message: message, Err: err}
}
