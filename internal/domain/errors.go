package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized is returned when no usable token exists or the backend rejects it.
var ErrUnauthorized = UnauthorizedError{}

type UnauthorizedError struct {
	Msg string
	Err error
}

func (e UnauthorizedError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "Unauthorized"
}

func (e UnauthorizedError) Unwrap() error { return e.Err }

// Is makes every UnauthorizedError match ErrUnauthorized.
func (e UnauthorizedError) Is(target error) bool {
	_, ok := target.(UnauthorizedError)
	return ok
}

// UpstreamError is a non-2xx answer from the loan backend.
type UpstreamError struct {
	Status  int
	Message string
	Details any
}

func (e UpstreamError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("Server error: %s", http.StatusText(e.Status))
}

// MalformedResponseError wraps a JSON decode failure on a 2xx response.
type MalformedResponseError struct {
	Err error
}

func (e MalformedResponseError) Error() string {
	return "invalid response from server"
}

func (e MalformedResponseError) Unwrap() error { return e.Err }

// NetworkError is a transport failure or timeout; callers may retry.
type NetworkError struct {
	Op  string
	Err error
}

func (e NetworkError) Error() string {
	if e.Op == "" {
		return "network error: " + errString(e.Err)
	}
	return fmt.Sprintf("%s: network error: %s", e.Op, errString(e.Err))
}

func (e NetworkError) Unwrap() error { return e.Err }

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func errString(err error) string {
	if err == nil {
		return "unknown"
	}
	return err.Error()
}

func IsUnauthorized(err error) bool {
	var target UnauthorizedError
	return errors.As(err, &target)
}

func IsUpstream(err error) bool {
	var target UpstreamError
	return errors.As(err, &target)
}

func IsMalformed(err error) bool {
	var target MalformedResponseError
	return errors.As(err, &target)
}

func IsNetwork(err error) bool {
	var target NetworkError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}

// UserMessage is the text shown to a person for err: the server's message when
// one was relayed, otherwise fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var up UpstreamError
	if errors.As(err, &up) && up.Message != "" {
		return up.Message
	}
	switch {
	case IsUnauthorized(err), IsValidation(err), IsNetwork(err):
		return err.Error()
	}
	return fallback
}
