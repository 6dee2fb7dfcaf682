package types

import "encoding/json"

// Envelope is the success body of every backend endpoint: {message, info}.
type Envelope struct {
	Message string          `json:"message"`
	Info    json.RawMessage `json:"info,omitempty"`
}

// InfoKey returns the raw value stored under info[key] and whether it exists.
func (e *Envelope) InfoKey(key string) (json.RawMessage, bool, error) {
	if e == nil || len(e.Info) == 0 {
		return nil, false, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(e.Info, &fields); err != nil {
		return nil, false, err
	}
	raw, ok := fields[key]
	return raw, ok, nil
}

// ErrorBody is the failure body: {detail, code}. Detail is a string or a list
// of validation entries.
type ErrorBody struct {
	Detail any    `json:"detail"`
	Code   string `json:"code,omitempty"`
}

// FieldIssue is one entry of a list-shaped detail.
type FieldIssue struct {
	Loc []string `json:"loc,omitempty"`
	Msg string   `json:"msg"`
}

// Status is the {success, message} pair returned by mutations without a payload.
type Status struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// PageInfo carries listing metadata alongside a page of results.
type PageInfo struct {
	TotalCount  int  `json:"total_count"`
	CurrentPage int  `json:"current_page"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}
