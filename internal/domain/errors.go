package domain

import "fmt"

// ValidationCode identifies the kind of a request validation failure
type ValidationCode string

const (
	InvalidCount        ValidationCode = "invalid_count"
	CountExceedsMax     ValidationCode = "count_exceeds_max"
	InvalidMessagesType ValidationCode = "invalid_messages_type"
	EmptyText           ValidationCode = "empty_text"
	MissingTextField    ValidationCode = "missing_text_field"
	TextTooLong         ValidationCode = "text_too_long"
	InvalidTextType     ValidationCode = "invalid_text_type"
	InvalidMessageID    ValidationCode = "invalid_message_id"
	InvalidBody         ValidationCode = "invalid_body"
)

// ValidationError is a client input failure carrying a human-readable message
type ValidationError struct {
	Code    ValidationCode
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with a formatted message
func NewValidationError(code ValidationCode, format string, args ...any) *ValidationError {
	return &ValidationError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}
