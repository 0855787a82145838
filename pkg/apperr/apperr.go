// Package apperr defines the error taxonomy shared by services, repositories
// and handlers: validation, auth, not-found and store failures, each mapped
// to one HTTP status.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindValidation Kind = iota
	KindAuth
	KindNotFound
	KindStore
)

type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

var (
	ErrTokenMalformed     = &Error{Kind: KindAuth, Msg: "token malformed"}
	ErrBadSignature       = &Error{Kind: KindAuth, Msg: "bad token signature"}
	ErrTokenExpired       = &Error{Kind: KindAuth, Msg: "token expired"}
	ErrAccountNotFound    = &Error{Kind: KindAuth, Msg: "account not found"}
	ErrTokenRevoked       = &Error{Kind: KindAuth, Msg: "token revoked"}
	ErrInvalidCredentials = &Error{Kind: KindAuth, Msg: "invalid credentials"}

	ErrNotFound = &Error{Kind: KindNotFound, Msg: "not found"}
)

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func Storef(format string, args ...any) *Error {
	return &Error{Kind: KindStore, Msg: fmt.Sprintf(format, args...)}
}

// HTTPStatus maps an error to its response status. Unknown errors count as
// store failures. InvalidCredentials is a 400, not a 401: a failed login is a
// bad request, the 401 path is reserved for bearer-token rejection.
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		if errors.Is(err, ErrInvalidCredentials) {
			return http.StatusBadRequest
		}
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
