package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Sentinel errors for server-reported failures. Callers branch with
// errors.Is; the wrapped message carries the server's description.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("authentication required")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrDuplicate          = errors.New("already exists")
	ErrValidation         = errors.New("validation failed")
)

// NetworkError reports a transport-level failure: the request never produced
// an HTTP response. Distinct from the sentinels above, which mean the server
// answered and said no.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

type apiErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// errorFromResponse turns a non-2xx response into one of the sentinel
// errors, keeping the server's message in the wrap.
func errorFromResponse(resp *http.Response) error {
	var body apiErrorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	_ = json.Unmarshal(raw, &body)

	msg := body.Message
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	var sentinel error
	switch resp.StatusCode {
	case http.StatusBadRequest:
		sentinel = ErrValidation
	case http.StatusUnauthorized:
		sentinel = ErrUnauthorized
	case http.StatusForbidden:
		sentinel = ErrForbidden
	case http.StatusNotFound:
		sentinel = ErrNotFound
	case http.StatusConflict:
		sentinel = ErrDuplicate
	default:
		return fmt.Errorf("server error (%d): %s", resp.StatusCode, msg)
	}

	return fmt.Errorf("%w: %s", sentinel, msg)
}
