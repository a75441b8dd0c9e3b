// File: internal/services/vectorstore/errors.go
package vectorstore

import (
	"fmt"
)

// QdrantError represents a vector store failure.
type QdrantError struct {
	Type    string
	Message string
	Err     error
}

func (e *QdrantError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("qdrant %s error: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("qdrant %s error: %s", e.Type, e.Message)
}

func (e *QdrantError) Unwrap() error {
	return e.Err
}

func NewConnectionError(message string, err error) *QdrantError {
	return &QdrantError{Type: "connection", Message: message, Err: err}
}

func NewOperationError(message string, err error) *QdrantError {
	return &QdrantError{Type: "operation", Message: message, Err: err}
}

func NewConfigError(message string) *QdrantError {
	return &QdrantError{Type: "config", Message: message}
}

func NewValidationError(message string) *QdrantError {
	return &QdrantError{Type: "validation", Message: message}
}

func NewTimeoutError(message string, err error) *QdrantError {
	return &QdrantError{Type: "timeout", Message: message, Err: err}
}

func NewRetryError(message string, err error) *QdrantError {
	return &QdrantError{Type: "retry", Message: message, Err: err}
}
