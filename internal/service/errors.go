package service

import "fmt"

// Kind classifies service failures so the route layer can pick an HTTP
// status without string matching.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindConflict
	KindRemoteError
	KindValidation
	KindUnauthorized
)

// Error is the tagged failure every service returns instead of raw errors.
type Error struct {
	Kind         Kind
	Message      string
	RemoteStatus int // upstream status code for KindRemoteError
}

func (e *Error) Error() string { return e.Message }

func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Unauthorizedf(format string, args ...any) *Error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

func RemoteErrorf(status int, format string, args ...any) *Error {
	return &Error{Kind: KindRemoteError, RemoteStatus: status, Message: fmt.Sprintf(format, args...)}
}
