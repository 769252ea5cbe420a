// Package validation checks request parameters of the chat endpoints and
// reports failures as *domain.ValidationError.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"

	"roomchat/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	PositiveIntegerMessage = "The count parameter must be a positive integer"
	MaxCountMessage        = "The count parameter must not be greater than %d"
	MessagesTypesMessage   = "The messages_type parameter must be either 'read' or 'unread'"
	EmptyTextMessage       = "The message text must not be empty"
	TextParamMessage       = "The request body must contain the 'text' field"
	TextTooLongMessage     = "The message text must not be longer than %d characters"
	TextTypeMessage        = "The 'text' field must be a string"
	MessageIDMessage       = "'%s' is not a valid message id"
	InvalidBodyMessage     = "The request body must be a JSON object"
)

var (
	validCount = regexp.MustCompile(`^[1-9]\d*$`)
	validate   = validator.New()
)

// ValidateCount checks an optional count parameter. A nil count is valid.
func ValidateCount(count *string, max int) error {
	if count == nil {
		return nil
	}
	if !validCount.MatchString(*count) {
		return domain.NewValidationError(domain.InvalidCount, PositiveIntegerMessage)
	}
	n, err := strconv.Atoi(*count)
	if err != nil || n > max {
		// Atoi only fails here on overflow, which is above any max as well
		return domain.NewValidationError(domain.CountExceedsMax, MaxCountMessage, max)
	}
	return nil
}

// ParseCount validates count and resolves it to a page size, defaulting to max
func ParseCount(count *string, max int) (int, error) {
	if err := ValidateCount(count, max); err != nil {
		return 0, err
	}
	if count == nil {
		return max, nil
	}
	return strconv.Atoi(*count)
}

// ValidateMessagesType accepts exactly "read" or "unread"
func ValidateMessagesType(messagesType *string) (domain.MessagesType, error) {
	if messagesType != nil {
		switch t := domain.MessagesType(*messagesType); t {
		case domain.MessagesRead, domain.MessagesUnread:
			return t, nil
		}
	}
	return "", domain.NewValidationError(domain.InvalidMessagesType, MessagesTypesMessage)
}

func ValidateMessageText(text string) error {
	if text == "" {
		return domain.NewValidationError(domain.EmptyText, EmptyTextMessage)
	}
	return nil
}

// ValidateTextLength rejects text longer than domain.MaxMessageTextLength characters
func ValidateTextLength(text string) error {
	tag := fmt.Sprintf("max=%d", domain.MaxMessageTextLength)
	if err := validate.Var(text, tag); err != nil {
		return domain.NewValidationError(domain.TextTooLong, TextTooLongMessage, domain.MaxMessageTextLength)
	}
	return nil
}

// DecodeRequestBody reads a JSON object body. An empty body decodes to an
// empty object so that it fails ValidateRequestBody like a body without text.
func DecodeRequestBody(r io.Reader) (map[string]json.RawMessage, error) {
	body := map[string]json.RawMessage{}
	err := json.NewDecoder(r).Decode(&body)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, domain.NewValidationError(domain.InvalidBody, InvalidBodyMessage)
	}
	if body == nil {
		// literal null
		return nil, domain.NewValidationError(domain.InvalidBody, InvalidBodyMessage)
	}
	return body, nil
}

// ValidateRequestBody requires a JSON object with a "text" key. The value is
// checked later by ParseRequestText and ValidateMessageText.
func ValidateRequestBody(body map[string]json.RawMessage) error {
	if _, ok := body["text"]; !ok {
		return domain.NewValidationError(domain.MissingTextField, TextParamMessage)
	}
	return nil
}

// ParseRequestText extracts the "text" value of a validated body.
// JSON null is treated as an empty text.
func ParseRequestText(body map[string]json.RawMessage) (string, error) {
	if err := ValidateRequestBody(body); err != nil {
		return "", err
	}
	var text *string
	if err := json.Unmarshal(body["text"], &text); err != nil {
		return "", domain.NewValidationError(domain.InvalidTextType, TextTypeMessage)
	}
	if text == nil {
		return "", nil
	}
	return *text, nil
}

// ParseMessageID checks that a cursor is a well-formed message id and
// returns it in canonical form
func ParseMessageID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", domain.NewValidationError(domain.InvalidMessageID, MessageIDMessage, id)
	}
	return parsed.String(), nil
}
