package tts

import (
	"errors"
	"fmt"
)

// Sentinel errors for speech operations.
var (
	ErrNotConfigured = errors.New("tts: api key not configured")
	ErrUnauthorized  = errors.New("tts: unauthorized")
	ErrRateLimited   = errors.New("tts: rate limited by server")
	ErrBadRequest    = errors.New("tts: bad request")
	ErrNotFound      = errors.New("tts: voice not found")
	ErrServer        = errors.New("tts: server error")
	ErrEmptyText     = errors.New("tts: text is empty")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op     string // Operation: "listVoices", "synthesize"
	Voice  string // If applicable
	Status int
	Body   string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("tts %s", e.Op)
	if e.Voice != "" {
		msg += " [" + e.Voice + "]"
	}
	if e.Status != 0 {
		msg += fmt.Sprintf(": %d %s", e.Status, e.Body)
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapError(op, voice string, status int, body string, err error) error {
	return &Error{Op: op, Voice: voice, Status: status, Body: body, Err: err}
}

func statusError(status int) error {
	switch {
	case status == 401 || status == 403:
		return ErrUnauthorized
	case status == 404:
		return ErrNotFound
	case status == 429:
		return ErrRateLimited
	case status >= 500:
		return ErrServer
	default:
		return ErrBadRequest
	}
}
