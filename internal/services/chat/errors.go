// File: internal/services/chat/errors.go
package chat

import "fmt"

type ErrorType string

const (
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeRAG        ErrorType = "RAG"
	ErrTypeRoute      ErrorType = "ROUTE"
	ErrTypeWebSearch  ErrorType = "WEB_SEARCH"
	ErrTypeAgent      ErrorType = "AGENT"
	ErrTypeHistory    ErrorType = "HISTORY"
)

type ChatError struct {
	Type      ErrorType
	Operation string
	Message   string
	Cause     error
}

func (e *ChatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("Chat %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("Chat %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *ChatError) Unwrap() error {
	return e.Cause
}

func NewConfigError(msg string, cause error) *ChatError {
	return &ChatError{Type: ErrTypeConfig, Operation: "config", Message: msg, Cause: cause}
}

func NewValidationError(operation, msg string) *ChatError {
	return &ChatError{Type: ErrTypeValidation, Operation: operation, Message: msg}
}

func NewRAGError(operation, msg string, cause error) *ChatError {
	return &ChatError{Type: ErrTypeRAG, Operation: operation, Message: msg, Cause: cause}
}

func NewRouteError(msg string, cause error) *ChatError {
	return &ChatError{Type: ErrTypeRoute, Operation: "detect_route", Message: msg, Cause: cause}
}

func NewWebSearchError(operation, msg string, cause error) *ChatError {
	return &ChatError{Type: ErrTypeWebSearch, Operation: operation, Message: msg, Cause: cause}
}

func NewAgentError(operation, msg string, cause error) *ChatError {
	return &ChatError{Type: ErrTypeAgent, Operation: operation, Message: msg, Cause: cause}
}

func NewHistoryError(operation, msg string, cause error) *ChatError {
	return &ChatError{Type: ErrTypeHistory, Operation: operation, Message: msg, Cause: cause}
}
