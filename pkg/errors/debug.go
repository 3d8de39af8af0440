package errors

import (
	"errors"
	"fmt"
)

// UpstreamDetail is implemented by errors originating from the school
// server client so that log entries can carry the HTTP status and the
// structured rejection codes the server returned.
type UpstreamDetail interface {
	HTTPStatus() int
	RejectionCodes() []string
}

type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	UpstreamStatus int      `json:"upstream_status,omitempty"`
	UpstreamCodes  []string `json:"upstream_codes,omitempty"`
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

	var detail UpstreamDetail
	if errors.As(err, &detail) {
		d.UpstreamStatus = detail.HTTPStatus()
		d.UpstreamCodes = detail.RejectionCodes()
	}

	return d
}
