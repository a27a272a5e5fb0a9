package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	dErrors "folio/pkg/domain-errors"
)

var errTrailingData = errors.New("unexpected data after JSON value")

// DecodeJSON decodes a JSON request body into the target type.
// The body must hold exactly one JSON value; anything but whitespace after it
// is rejected, and the whole body is read so a limit set with
// http.MaxBytesReader also covers trailing bytes.
// Bodies cut off by http.MaxBytesReader map to CodePayloadTooLarge; every other
// decode failure maps to CodeBadRequest. Parser detail stays in the wrapped
// cause and is never part of the message.
//
// Usage:
//
//	req, err := httputil.DecodeJSON[models.Submission](r)
//	if err != nil {
//	    httputil.WriteError(w, err)
//	    return
//	}
func DecodeJSON[T any](r *http.Request) (*T, error) {
	var req T
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		return nil, decodeError(err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errTrailingData
		}
		return nil, decodeError(err)
	}
	return &req, nil
}

func decodeError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return dErrors.Wrap(err, dErrors.CodePayloadTooLarge, "Request payload too large")
	}
	return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body")
}
