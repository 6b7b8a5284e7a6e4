package domain

import (
	"errors"
	"fmt"
)

const (
	MissingMessage = "No message provided"
	AudioNotFound  = "Audio not found"
)

var (
	ErrInvalidRole     = errors.New("role must be one of user, assistant")
	ErrEmptyText       = errors.New("text cannot be empty")
	ErrInvalidVoice    = errors.New("invalid or unknown voice id")
	ErrRateLimited     = errors.New("rate limit exceeded")
	ErrUnauthorized    = errors.New("invalid API key")
	ErrSpeechDisabled  = errors.New("speech synthesis is disabled")
	ErrEmptyGeneration = errors.New("generation returned no text")
)

// ValidationError is the client's fault and maps to 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// UpstreamError wraps any failure of the generation or speech API.
// Status is zero when no HTTP response was received.
type UpstreamError struct {
	Service string
	Status  int
	Message string
	Cause   error
}

func NewUpstreamError(service string, status int, message string, cause error) *UpstreamError {
	return &UpstreamError{
		Service: service,
		Status:  status,
		Message: message,
		Cause:   cause,
	}
}

func (e *UpstreamError) Error() string {
	msg := e.Service
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("audio artifact %q not found", e.ID)
}
