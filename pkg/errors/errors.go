// Package errors defines the coded error type every layer returns. The code
// decides the HTTP status, whether a client may retry, and whether the
// error's own message and details are safe to show.
package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation              Code = "INVALID_INPUT"
	CodeUnauthorized            Code = "UNAUTHORIZED"
	CodeForbidden               Code = "FORBIDDEN"
	CodeNotFound                Code = "NOT_FOUND"
	CodeConflict                Code = "CONFLICT"
	CodeStateConflict           Code = "STATE_CONFLICT"
	CodeIdempotency             Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit               Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal                Code = "INTERNAL_ERROR"
	CodeDependency              Code = "DEPENDENCY_ERROR"
	CodeInvalidOptionForProduct Code = "INVALID_OPTION_FOR_PRODUCT"
	CodeCrossStoreCart          Code = "CROSS_STORE_CART"
	CodeDistanceUnavailable     Code = "DISTANCE_UNAVAILABLE"
	CodeMissingAddress          Code = "MISSING_ADDRESS"
	CodeEmptyOrder              Code = "EMPTY_ORDER"
)

type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

type flag uint8

const (
	retryable flag = 1 << iota
	showDetails
)

func meta(status int, public string, flags flag) Metadata {
	return Metadata{
		HTTPStatus:     status,
		PublicMessage:  public,
		Retryable:      flags&retryable != 0,
		DetailsAllowed: flags&showDetails != 0,
	}
}

var metadataByCode = map[Code]Metadata{
	CodeValidation:              meta(http.StatusBadRequest, "invalid input", showDetails),
	CodeUnauthorized:            meta(http.StatusUnauthorized, "authentication required", 0),
	CodeForbidden:               meta(http.StatusForbidden, "access denied", 0),
	CodeNotFound:                meta(http.StatusNotFound, "resource not found", 0),
	CodeConflict:                meta(http.StatusConflict, "conflict detected", 0),
	CodeStateConflict:           meta(http.StatusUnprocessableEntity, "state transition disallowed", showDetails),
	CodeIdempotency:             meta(http.StatusConflict, "idempotency key reused", showDetails),
	CodeRateLimit:               meta(http.StatusTooManyRequests, "too many requests", retryable),
	CodeInternal:                meta(http.StatusInternalServerError, "internal server error", retryable),
	CodeDependency:              meta(http.StatusServiceUnavailable, "dependency unavailable", retryable|showDetails),
	CodeInvalidOptionForProduct: meta(http.StatusBadRequest, "menu option does not belong to product", showDetails),
	CodeCrossStoreCart:          meta(http.StatusConflict, "cart already holds items from another store", showDetails),
	CodeDistanceUnavailable:     meta(http.StatusBadRequest, "delivery distance unavailable", retryable|showDetails),
	CodeMissingAddress:          meta(http.StatusBadRequest, "customer address is missing coordinates", 0),
	CodeEmptyOrder:              meta(http.StatusBadRequest, "order must contain at least one line", 0),
}

// MetadataFor treats unknown codes as internal errors.
func MetadataFor(code Code) Metadata {
	if m, ok := metadataByCode[code]; ok {
		return m
	}
	return metadataByCode[CodeInternal]
}

// Error is a coded error with an optional cause and client-visible details.
// Methods are safe on a nil receiver.
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Wrap attaches cause to a new coded error; a nil cause behaves like New.
func Wrap(code Code, cause error, message string) *Error {
	return &Error{code: code, message: message, cause: cause}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

// WithDetails sets the payload rendered under error.details and returns e.
func (e *Error) WithDetails(details any) *Error {
	if e != nil {
		e.details = details
	}
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As returns the outermost *Error in err's chain, or nil.
func As(err error) *Error {
	var typed *Error
	if err != nil && stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// HasCode reports whether the outermost typed error in the chain carries code.
func HasCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.code == code
}
