// Package envelope defines the single response contract of the service: a success/error
// wrapper, the closed error-code set, and the mapping from codes to HTTP statuses.
package envelope

// Error is the failure half of an Envelope.
// Challenge and Session are only set on the MFA_REQUIRED soft outcome.
type Error struct {
	Code      Code   `json:"code"`
	Message   string `json:"message"`
	Challenge string `json:"challenge,omitempty"`
	Session   string `json:"session,omitempty"`
}

// Envelope is the uniform result of every operation.
// Invariant: IsSuccess == (Error == nil), and Data is nil whenever Error is set.
type Envelope[T any] struct {
	Data      *T     `json:"data,omitempty"`
	IsSuccess bool   `json:"isSuccess"`
	Error     *Error `json:"error,omitempty"`
}

// New builds an envelope. When err is non-nil the data is dropped.
// A nil data with a nil err is a success without content.
func New[T any](data *T, err *Error) Envelope[T] {
	if err != nil {
		e := *err
		return Envelope[T]{IsSuccess: false, Error: &e}
	}
	return Envelope[T]{Data: data, IsSuccess: true}
}

// OK returns a success envelope carrying v.
func OK[T any](v T) Envelope[T] {
	return New(&v, nil)
}

// Fail returns a failed envelope carrying err.
func Fail[T any](err Error) Envelope[T] {
	return New[T](nil, &err)
}

// Failf is Fail with a code and message.
func Failf[T any](code Code, msg string) Envelope[T] {
	return Fail[T](Error{Code: code, Message: msg})
}

// Code returns the error code, or "" for success envelopes.
func (e Envelope[T]) Code() Code {
	if e.Error == nil {
		return ""
	}
	return e.Error.Code
}

// Status returns the HTTP status for this envelope.
func (e Envelope[T]) Status() int {
	return Status(e.IsSuccess, e.Code())
}
