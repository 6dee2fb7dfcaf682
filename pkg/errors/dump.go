package errors

import (
	"errors"
	"fmt"
)

type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	HTTPStatus int    `json:"http_status,omitempty"`
	HTTPDetail string `json:"http_detail,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	if httpErr, ok := AsHTTP(err); ok {
		d.HTTPStatus = httpErr.Status
		d.HTTPDetail = httpErr.Detail
		if d.Code == "" {
			d.Code = httpErr.Code()
		}
	}

	return d
}

// Fields flattens a dump into logger fields.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{
		"error":       d.TopMessage,
		"error_code":  d.Code,
		"error_chain": d.Chain,
	}
	if d.HTTPStatus != 0 {
		fields["http_status"] = d.HTTPStatus
	}
	if d.HTTPDetail != "" {
		fields["http_detail"] = d.HTTPDetail
	}
	return fields
}
