package domain

import "errors"

var (
	// ErrStoreUnconfigured signals that no vector store address was configured.
	ErrStoreUnconfigured = errors.New("vector store not configured")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrValidation signals rejected request input. Flows translate it into a
	// non-5xx response instead of a request failure.
	ErrValidation = errors.New("validation failed")
)

// ValidationError wraps ErrValidation with a caller-facing message.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidation creates a validation error with the given message.
func NewValidation(msg string) error {
	return &ValidationError{Msg: msg}
}
