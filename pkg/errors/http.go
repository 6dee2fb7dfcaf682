package errors

import (
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"strings"
)

// HTTPError is returned for every non-2xx backend response.
type HTTPError struct {
	Status int
	Body   []byte
	// Detail is the backend's human readable reason, taken from body.detail.
	Detail string
}

// NewHTTPError builds an HTTPError and extracts the detail message when the body carries one.
func NewHTTPError(status int, body []byte) *HTTPError {
	return &HTTPError{Status: status, Body: body, Detail: detailFromBody(body)}
}

func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Detail != "" {
		return fmt.Sprintf("http %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("http %d", e.Status)
}

// Code maps the status onto the shared error codes.
func (e *HTTPError) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return CodeForStatus(e.Status)
}

// AsHTTP returns the HTTPError in err's chain, if any.
func AsHTTP(err error) (*HTTPError, bool) {
	var httpErr *HTTPError
	if stdErrors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	if httpErr, ok := AsHTTP(err); ok {
		return httpErr.Status
	}
	return 0
}

func detailFromBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if len(payload.Detail) > 0 {
		var text string
		if err := json.Unmarshal(payload.Detail, &text); err == nil {
			return strings.TrimSpace(text)
		}
		// validation backends send detail as a list of {msg}
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(payload.Detail, &items); err == nil && len(items) > 0 {
			msgs := make([]string, 0, len(items))
			for _, item := range items {
				if item.Msg != "" {
					msgs = append(msgs, item.Msg)
				}
			}
			return strings.Join(msgs, "; ")
		}
	}
	return strings.TrimSpace(payload.Message)
}
