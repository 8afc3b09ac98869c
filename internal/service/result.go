// Package service implements the request-level use cases of the task API.
//
// Every use case returns a Result. Expected failures (bad input, missing
// records, denied actions, unmet preconditions, bad credentials) are reported
// through the Result's Kind; only unexpected store or signing failures are
// returned as a Go error.
package service

// Kind classifies a failed Result. The zero value means success.
type Kind int

const (
	KindNone Kind = iota
	KindValidation
	KindNotFound
	KindForbidden
	KindConflict
	KindUnauthorized
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// MessageValidationFailed is the message of every shape validation failure.
const MessageValidationFailed = "Validation failed"

// Result is the uniform envelope returned by every use case.
type Result[T any] struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    T        `json:"data"`
	Errors  []string `json:"errors"`
	Kind    Kind     `json:"-"`
}

// OK builds a successful result.
func OK[T any](data T, message string) Result[T] {
	return Result[T]{Success: true, Message: message, Data: data, Errors: []string{}}
}

// Fail builds a failed result of the given kind.
func Fail[T any](kind Kind, message string, errs ...string) Result[T] {
	if errs == nil {
		errs = []string{}
	}
	return Result[T]{Message: message, Errors: errs, Kind: kind}
}

func invalid[T any](errs []string) Result[T] {
	return Fail[T](KindValidation, MessageValidationFailed, errs...)
}
