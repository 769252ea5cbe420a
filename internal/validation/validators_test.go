package validation

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"roomchat/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func assertValidationCode(t *testing.T, err error, code domain.ValidationCode) {
	t.Helper()
	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr), "expected *domain.ValidationError, got %v", err)
	assert.Equal(t, code, vErr.Code)
}

func TestValidateCount(t *testing.T) {
	tests := []struct {
		name  string
		count *string
		max   int
		code  domain.ValidationCode
	}{
		{"absent", nil, 20, ""},
		{"one", strPtr("1"), 20, ""},
		{"equal_to_max", strPtr("20"), 20, ""},
		{"multi_digit", strPtr("15"), 20, ""},
		{"zero", strPtr("0"), 20, domain.InvalidCount},
		{"negative", strPtr("-1"), 20, domain.InvalidCount},
		{"decimal", strPtr("1.1"), 20, domain.InvalidCount},
		{"empty", strPtr(""), 20, domain.InvalidCount},
		{"leading_zero", strPtr("05"), 20, domain.InvalidCount},
		{"letters", strPtr("ten"), 20, domain.InvalidCount},
		{"trailing_space", strPtr("5 "), 20, domain.InvalidCount},
		{"above_max", strPtr("21"), 20, domain.CountExceedsMax},
		{"overflow", strPtr("999999999999999999999999"), 20, domain.CountExceedsMax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCount(tt.count, tt.max)
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			assertValidationCode(t, err, tt.code)
		})
	}
}

func TestValidateCount_MaxMessage(t *testing.T) {
	err := ValidateCount(strPtr("51"), 50)
	require.Error(t, err)
	assert.Equal(t, "The count parameter must not be greater than 50", err.Error())
}

func TestParseCount(t *testing.T) {
	t.Run("defaults_to_max", func(t *testing.T) {
		n, err := ParseCount(nil, 30)
		require.NoError(t, err)
		assert.Equal(t, 30, n)
	})

	t.Run("parses_value", func(t *testing.T) {
		n, err := ParseCount(strPtr("10"), 30)
		require.NoError(t, err)
		assert.Equal(t, 10, n)
	})

	t.Run("propagates_validation_error", func(t *testing.T) {
		_, err := ParseCount(strPtr("0"), 30)
		assertValidationCode(t, err, domain.InvalidCount)
	})
}

func TestValidateMessagesType(t *testing.T) {
	tests := []struct {
		name    string
		input   *string
		want    domain.MessagesType
		wantErr bool
	}{
		{"read", strPtr("read"), domain.MessagesRead, false},
		{"unread", strPtr("unread"), domain.MessagesUnread, false},
		{"absent", nil, "", true},
		{"empty", strPtr(""), "", true},
		{"uppercase", strPtr("READ"), "", true},
		{"capitalized", strPtr("Unread"), "", true},
		{"other", strPtr("all"), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateMessagesType(tt.input)
			if tt.wantErr {
				assertValidationCode(t, err, domain.InvalidMessagesType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateMessageText(t *testing.T) {
	assert.NoError(t, ValidateMessageText("hello"))
	assert.NoError(t, ValidateMessageText(" "))
	assertValidationCode(t, ValidateMessageText(""), domain.EmptyText)
}

func TestValidateTextLength(t *testing.T) {
	assert.NoError(t, ValidateTextLength(strings.Repeat("a", domain.MaxMessageTextLength)))
	// counted in characters, not bytes
	assert.NoError(t, ValidateTextLength(strings.Repeat("é", domain.MaxMessageTextLength)))
	assertValidationCode(t, ValidateTextLength(strings.Repeat("a", domain.MaxMessageTextLength+1)), domain.TextTooLong)
}

func TestValidateRequestBody(t *testing.T) {
	t.Run("nil_body", func(t *testing.T) {
		assertValidationCode(t, ValidateRequestBody(nil), domain.MissingTextField)
	})

	t.Run("missing_text", func(t *testing.T) {
		body := map[string]json.RawMessage{"message": json.RawMessage(`"hi"`)}
		assertValidationCode(t, ValidateRequestBody(body), domain.MissingTextField)
	})

	t.Run("text_present", func(t *testing.T) {
		body := map[string]json.RawMessage{"text": json.RawMessage(`""`)}
		assert.NoError(t, ValidateRequestBody(body))
	})
}

func TestParseRequestText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		code domain.ValidationCode
	}{
		{"string", `"hello"`, "hello", ""},
		{"empty_string", `""`, "", ""},
		{"null", `null`, "", ""},
		{"number", `42`, "", domain.InvalidTextType},
		{"object", `{"a":1}`, "", domain.InvalidTextType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRequestText(map[string]json.RawMessage{"text": json.RawMessage(tt.raw)})
			if tt.code != "" {
				assertValidationCode(t, err, tt.code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("missing_field", func(t *testing.T) {
		_, err := ParseRequestText(map[string]json.RawMessage{})
		assertValidationCode(t, err, domain.MissingTextField)
	})
}

func TestParseMessageID(t *testing.T) {
	id, err := ParseMessageID("D65D0970-1933-11EB-ADC1-0242AC120002")
	require.NoError(t, err)
	assert.Equal(t, "d65d0970-1933-11eb-adc1-0242ac120002", id)

	_, err = ParseMessageID("not-a-uuid")
	assertValidationCode(t, err, domain.InvalidMessageID)
	assert.Contains(t, err.Error(), "not-a-uuid")

	_, err = ParseMessageID("")
	assertValidationCode(t, err, domain.InvalidMessageID)

	_, err = ParseMessageID("42")
	assertValidationCode(t, err, domain.InvalidMessageID)
}

func TestDecodeRequestBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
		wantLen int
	}{
		{name: "object", body: `{"text":"hi","extra":1}`, wantLen: 2},
		{name: "empty_body", body: ``, wantLen: 0},
		{name: "empty_object", body: `{}`, wantLen: 0},
		{name: "array", body: `["hi"]`, wantErr: true},
		{name: "null", body: `null`, wantErr: true},
		{name: "malformed", body: `{"text":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := DecodeRequestBody(strings.NewReader(tt.body))
			if tt.wantErr {
				assertValidationCode(t, err, domain.InvalidBody)
				return
			}
			require.NoError(t, err)
			assert.Len(t, body, tt.wantLen)
		})
	}
}
