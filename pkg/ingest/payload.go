package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrInvalidPayload is returned by Decode when the body is not a non-empty
// JSON object.
var ErrInvalidPayload = errors.New("invalid JSON payload")

var notBlank = validation.NewStringRuleWithError(
	func(s string) bool { return strings.TrimSpace(s) != "" },
	validation.NewError("validation_not_blank", "must not be blank"),
)

// Payload is the decoded webhook body. Fields that were absent or not JSON
// strings decode to "".
type Payload struct {
	Topic   string `json:"topic"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Key     string `json:"key"`
}

// Decode parses a webhook body.
func Decode(body []byte) (Payload, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return Payload{}, ErrInvalidPayload
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if len(fields) == 0 {
		return Payload{}, ErrInvalidPayload
	}

	return Payload{
		Topic:   stringField(fields, "topic"),
		Title:   stringField(fields, "title"),
		Message: stringField(fields, "message"),
		Key:     stringField(fields, "key"),
	}, nil
}

func stringField(fields map[string]interface{}, name string) string {
	s, _ := fields[name].(string)
	return s
}

// Validate checks that all four fields are present and not blank.
func (p Payload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Topic, validation.Required, notBlank),
		validation.Field(&p.Title, validation.Required, notBlank),
		validation.Field(&p.Message, validation.Required, notBlank),
		validation.Field(&p.Key, validation.Required, notBlank),
	)
}
