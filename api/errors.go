package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// fallback when the server provides no usable message
const genericErrorMessage = "request failed"

// APIError carries a failed response's status code and the server-provided
// message. Share-link lookup failures (not found, expired, revoked) are
// distinguished only by that message; the server assigns no typed code.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.StatusCode)
}

// Is maps status codes onto the package sentinels, so callers can use
// errors.Is(err, api.ErrUnauthorized) without inspecting status codes.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// errorBody is the wire shape of failure responses. The backend is not
// consistent about the field name.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// responseError builds an *APIError from a non-2xx response, preferring the
// server-provided message over the generic fallback.
func responseError(resp *http.Response) *APIError {
	msg := genericErrorMessage

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err == nil && len(body) > 0 {
		var eb errorBody
		if err := json.Unmarshal(body, &eb); err == nil {
			if eb.Error != "" {
				msg = eb.Error
			} else if eb.Message != "" {
				msg = eb.Message
			}
		}
	}

	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
