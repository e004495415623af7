package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("could not validate credentials")
	ErrSessionNotFound    = errors.New("chat session not found")
	ErrQuestionNotFound   = errors.New("exam question not found")

	// Completion provider outcomes. None of these leave a recorded turn.
	ErrProviderTimeout    = errors.New("provider response timed out")
	ErrProviderUnexpected = errors.New("unexpected provider response")

	// Persistence failed after a successful dispatch. The provider has
	// already charged for the exchange, so this is surfaced, never swallowed.
	ErrPersistence = errors.New("failed to persist turn")
)

// ProviderTransportError is a non-success transport status from the provider.
type ProviderTransportError struct {
	Status int
}

func (e *ProviderTransportError) Error() string {
	return fmt.Sprintf("provider returned status %d", e.Status)
}

// ProviderLogicalError is an error payload embedded in a success response.
type ProviderLogicalError struct {
	Message string
}

func (e *ProviderLogicalError) Error() string {
	return fmt.Sprintf("provider error: %s", e.Message)
}
