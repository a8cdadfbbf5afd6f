// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// GenericMessage is shown for network failures and anything else the
// backend did not explain.
const GenericMessage = "An unexpected error occurred. Please try again."

// Error is a response the backend rejected.
type Error struct {
	Op         string // operation that failed, e.g. "FetchPapers"
	StatusCode int
	Message    string

	// FieldErrors maps a form field to the backend's messages for it.
	FieldErrors map[string][]string
}

func (e *Error) Error() string {
	msg := e.Message
	if len(e.FieldErrors) > 0 {
		msg = strings.TrimSpace(msg + " " + e.fieldSummary())
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %d %s", e.Op, e.StatusCode, msg)
	}
	return fmt.Sprintf("%d %s", e.StatusCode, msg)
}

func (e *Error) fieldSummary() string {
	fields := make([]string, 0, len(e.FieldErrors))
	for f := range e.FieldErrors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + strings.Join(e.FieldErrors[f], " ")
	}
	return strings.Join(parts, "; ")
}

// IsNotFound reports whether err indicates a 404 response.
func IsNotFound(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// IsValidation reports whether err carries field-level validation errors.
func IsValidation(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return len(apiErr.FieldErrors) > 0
	}
	return false
}

// UserMessage turns err into text fit for display. Field errors are
// listed per field, a server message is passed through, and anything
// else becomes GenericMessage.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return GenericMessage
	}
	switch {
	case len(apiErr.FieldErrors) > 0:
		return "Validation error: " + apiErr.fieldSummary()
	case apiErr.Message != "":
		return apiErr.Message
	default:
		return GenericMessage
	}
}

// Keys that carry a message rather than a field error.
var messageKeys = []string{"detail", "error", "message", "non_field_errors"}

// parseError builds an Error from a response body. It understands
// {"detail": ...}, {"error": ...}, {"message": ...} and the field map
// {"title": ["This field is required."]}. Non-JSON bodies fall back to
// the status text.
func parseError(op string, status int, body []byte) *Error {
	e := &Error{Op: op, StatusCode: status}
	body = bytes.TrimSpace(body)

	var fields map[string]json.RawMessage
	if len(body) > 0 && body[0] == '{' && json.Unmarshal(body, &fields) == nil {
		for _, key := range messageKeys {
			if raw, ok := fields[key]; ok {
				if msg := messageText(raw); msg != "" && e.Message == "" {
					e.Message = msg
				}
				delete(fields, key)
			}
		}
		delete(fields, "data")
		delete(fields, "success")
		for name, raw := range fields {
			if msgs := messageList(raw); len(msgs) > 0 {
				if e.FieldErrors == nil {
					e.FieldErrors = make(map[string][]string)
				}
				e.FieldErrors[name] = msgs
			}
		}
	} else if len(body) > 0 && body[0] == '"' {
		e.Message = messageText(body)
	} else if len(body) > 0 && body[0] != '<' && len(body) <= 200 {
		e.Message = string(body)
	}

	if e.Message == "" && len(e.FieldErrors) == 0 {
		e.Message = http.StatusText(status)
	}
	return e
}

// messageText reads a JSON string or list of strings as one message.
func messageText(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return strings.Join(messageList(raw), " ")
}

func messageList(raw json.RawMessage) []string {
	var list []string
	if json.Unmarshal(raw, &list) == nil {
		return list
	}
	var s string
	if json.Unmarshal(raw, &s) == nil && s != "" {
		return []string{s}
	}
	return nil
}
