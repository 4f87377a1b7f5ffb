package model

import (
	"errors"
	"fmt"
	"strings"
)

// ========================================
// CLIENT-SIDE FAILURES
// ========================================
// Failure is a closed set: ValidationError, ServerError,
// UnknownResponseError and NetworkError. Call sites switch on the concrete
// type instead of probing a response for a "msg" field.

// Failure is implemented only by the four error kinds in this file.
type Failure interface {
	error
	failure()
}

// ErrMessage is the error body the API returns with every non-2xx response.
type ErrMessage struct {
	Msg string `json:"msg"`
}

// ValidationError lists form fields that failed local validation.
// It never reaches the transport.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "Please check the following fields: " + strings.Join(e.Fields, ", ")
}

// ServerError is a non-2xx response that carried a {msg} body.
type ServerError struct {
	Status int
	Msg    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.Status, e.Msg)
}

// UnknownResponseError is a response the client could not interpret: a
// non-2xx without {msg}, or a 2xx whose body is not a usable book.
type UnknownResponseError struct {
	Status int
	Body   string
}

func (e *UnknownResponseError) Error() string {
	return fmt.Sprintf("unknown response type (status %d)", e.Status)
}

// NetworkError means the request never produced an HTTP response.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "could not connect to server: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (*ValidationError) failure()      {}
func (*ServerError) failure()          {}
func (*UnknownResponseError) failure() {}
func (*NetworkError) failure()         {}

// AsFailure classifies an arbitrary error into the Failure union.
// Errors that are not already a Failure are treated as network failures.
func AsFailure(err error) Failure {
	if err == nil {
		return nil
	}
	var f Failure
	if errors.As(err, &f) {
		return f
	}
	return &NetworkError{Err: err}
}
