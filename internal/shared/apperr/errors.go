// Package apperr defines the error taxonomy shared by the catalog, shows,
// reservations and checkout packages. Handlers translate a Kind into an HTTP
// status with HTTPStatus.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindUnknown             Kind = "UNKNOWN"
	KindConfiguration       Kind = "CONFIGURATION"
	KindUnauthorized        Kind = "UNAUTHORIZED"
	KindNotFound            Kind = "NOT_FOUND"
	KindInvalidQuantity     Kind = "INVALID_QUANTITY"
	KindPriceUnavailable    Kind = "PRICE_UNAVAILABLE"
	KindInvalidSignature    Kind = "INVALID_SIGNATURE"
	KindUpstreamUnavailable Kind = "UPSTREAM_UNAVAILABLE"
	KindInvalidRequest      Kind = "INVALID_REQUEST"
)

// Error carries a Kind plus the operation that produced it.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match on Kind alone, e.g. errors.Is(err, apperr.ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons
var (
	ErrConfiguration       = &Error{Kind: KindConfiguration}
	ErrUnauthorized        = &Error{Kind: KindUnauthorized}
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrInvalidQuantity     = &Error{Kind: KindInvalidQuantity}
	ErrPriceUnavailable    = &Error{Kind: KindPriceUnavailable}
	ErrInvalidSignature    = &Error{Kind: KindInvalidSignature}
	ErrUpstreamUnavailable = &Error{Kind: KindUpstreamUnavailable}
	ErrInvalidRequest      = &Error{Kind: KindInvalidRequest}
)

func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

func Wrap(kind Kind, op, message string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

func Configuration(op, format string, args ...any) *Error {
	return New(KindConfiguration, op, fmt.Sprintf(format, args...))
}

func NotFound(op, format string, args ...any) *Error {
	return New(KindNotFound, op, fmt.Sprintf(format, args...))
}

func InvalidQuantity(op, format string, args ...any) *Error {
	return New(KindInvalidQuantity, op, fmt.Sprintf(format, args...))
}

func PriceUnavailable(op, format string, args ...any) *Error {
	return New(KindPriceUnavailable, op, fmt.Sprintf(format, args...))
}

func InvalidSignature(op, format string, args ...any) *Error {
	return New(KindInvalidSignature, op, fmt.Sprintf(format, args...))
}

func InvalidRequest(op, format string, args ...any) *Error {
	return New(KindInvalidRequest, op, fmt.Sprintf(format, args...))
}

func Upstream(op, message string, err error) *Error {
	return Wrap(KindUpstreamUnavailable, op, message, err)
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps a Kind onto the status code the API responds with.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidQuantity, KindPriceUnavailable:
		return http.StatusUnprocessableEntity
	case KindInvalidSignature, KindInvalidRequest:
		return http.StatusBadRequest
	case KindUpstreamUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
