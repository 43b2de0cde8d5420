package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// ValidationError rejects input before any request is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// parseAPIError builds an APIError from a response body, taking the first
// string among the "error", "detail" and "msg" keys.
func parseAPIError(status int, body []byte) *APIError {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"error", "detail", "msg"} {
			if msg, ok := payload[key].(string); ok && msg != "" {
				return &APIError{Status: status, Message: msg}
			}
		}
	}
	return &APIError{Status: status, Message: fallbackMessage(status)}
}

func fallbackMessage(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "session expired, please log in again"
	case http.StatusForbidden:
		return "you are not allowed to do that"
	case http.StatusNotFound:
		return "not found"
	}
	if status >= 500 {
		return "server error, please try again later"
	}
	return "request failed"
}
