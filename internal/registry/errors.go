package registry

import (
	"errors"
	"fmt"
	"net/http"

	appErrors "github.com/noah-isme/id-portal/pkg/errors"
)

// ErrorKind classifies why a registry call failed.
type ErrorKind string

const (
	// KindNetwork means the registry could not be reached or did not answer in time.
	KindNetwork ErrorKind = "network"
	// KindAPI means the registry answered with a non-success status.
	KindAPI ErrorKind = "api"
	// KindDecode means the registry answered but the body could not be read.
	KindDecode ErrorKind = "decode"
)

// MessageUnreachable is reported to users for every network failure.
const MessageUnreachable = "Failed to connect to server"

// Error is the only error type returned by Client methods.
type Error struct {
	Kind     ErrorKind
	Status   int
	Message  string
	Endpoint string
	Err      error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("registry %s %s: %s: %v", e.Endpoint, e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("registry %s %s: %s", e.Endpoint, e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// AppError maps the failure onto the portal's HTTP error contract.
func (e *Error) AppError() *appErrors.Error {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case KindNetwork:
		return appErrors.Wrap(e, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, MessageUnreachable)
	case KindAPI:
		status := e.Status
		code := appErrors.ErrUpstream.Code
		switch status {
		case http.StatusBadRequest:
			code = appErrors.ErrValidation.Code
		case http.StatusUnauthorized:
			code = appErrors.ErrUnauthorized.Code
		case http.StatusForbidden:
			code = appErrors.ErrForbidden.Code
		case http.StatusNotFound:
			code = appErrors.ErrNotFound.Code
		case http.StatusConflict:
			code = appErrors.ErrConflict.Code
		}
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		return appErrors.Wrap(e, code, status, e.Message)
	default:
		return appErrors.Wrap(e, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, e.Message)
	}
}

// AsError extracts a registry error from err.
func AsError(err error) (*Error, bool) {
	var regErr *Error
	if errors.As(err, &regErr) {
		return regErr, true
	}
	return nil, false
}

// IsNotFound reports whether the registry answered 404.
func IsNotFound(err error) bool {
	regErr, ok := AsError(err)
	return ok && regErr.Kind == KindAPI && regErr.Status == http.StatusNotFound
}

// IsNetwork reports whether the registry could not be reached.
func IsNetwork(err error) bool {
	regErr, ok := AsError(err)
	return ok && regErr.Kind == KindNetwork
}

// Message returns the text a user should see for err.
func Message(err error) string {
	regErr, ok := AsError(err)
	if !ok {
		if err == nil {
			return ""
		}
		return err.Error()
	}
	return regErr.Message
}
