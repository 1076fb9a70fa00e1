package domain

import (
	"errors"
	"fmt"
	"net/http"

	goerrors "github.com/go-errors/errors"
)

// Kind is the machine-readable class of a domain error.
type Kind string

const (
	KindUnauthorized        Kind = "UNAUTHORIZED"
	KindForbidden           Kind = "FORBIDDEN"
	KindNotFound            Kind = "NOT_FOUND"
	KindJobNotFound         Kind = "JOB_NOT_FOUND"
	KindConflict            Kind = "CONFLICT"
	KindValidationFailed    Kind = "VALIDATION_FAILED"
	KindOutOfRange          Kind = "OUT_OF_RANGE"
	KindInvalidChoice       Kind = "INVALID_CHOICE"
	KindUnsupportedDocument Kind = "UNSUPPORTED_DOCUMENT"
	KindInvalidCredential   Kind = "INVALID_CREDENTIAL"
	KindProviderUnavailable Kind = "IDENTITY_PROVIDER_UNAVAILABLE"
	KindTokenIssuanceFailed Kind = "TOKEN_ISSUANCE_FAILED"
	KindUpstreamUnavailable Kind = "UPSTREAM_UNAVAILABLE"
	KindInternal            Kind = "INTERNAL"
)

const (
	forbiddenMessage         = "you are not permitted to modify this job"
	invalidCredentialMessage = "invalid email or password"
)

// HTTPStatus maps a kind to the status code the API answers with.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindUnauthorized, KindInvalidCredential:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound, KindJobNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindValidationFailed, KindInvalidChoice:
		return http.StatusBadRequest
	case KindOutOfRange, KindUnsupportedDocument:
		return http.StatusUnprocessableEntity
	case KindProviderUnavailable, KindUpstreamUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// KindFromStatus is the fallback used by clients when a response carries no code.
func KindFromStatus(status int) Kind {
	switch status {
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	case http.StatusBadRequest:
		return KindValidationFailed
	case http.StatusUnprocessableEntity:
		return KindValidationFailed
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return KindUpstreamUnavailable
	default:
		return KindInternal
	}
}

// Error is the domain error type shared by services, handlers and the client SDK.
type Error struct {
	Kind    Kind
	Message string // internal message, for logs
	Field   string // offending field for validation kinds
	Cause   error
	Stack   []byte
}

func (e *Error) Error() string {
	msg := string(e.Kind) + ": " + e.Message
	if e.Field != "" {
		msg += " (" + e.Field + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error by kind, so errors.Is(err, ErrForbidden) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// UserMessage is the text safe to show an end user.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindForbidden:
		return forbiddenMessage
	case KindInvalidCredential:
		return invalidCredentialMessage
	case KindInternal:
		return "something went wrong, please try again"
	}
	return e.Message
}

// Sentinels for errors.Is comparisons.
var (
	ErrUnauthorized        = &Error{Kind: KindUnauthorized}
	ErrForbidden           = &Error{Kind: KindForbidden}
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrJobNotFound         = &Error{Kind: KindJobNotFound}
	ErrConflict            = &Error{Kind: KindConflict}
	ErrValidationFailed    = &Error{Kind: KindValidationFailed}
	ErrOutOfRange          = &Error{Kind: KindOutOfRange}
	ErrInvalidChoice       = &Error{Kind: KindInvalidChoice}
	ErrUnsupportedDocument = &Error{Kind: KindUnsupportedDocument}
	ErrInvalidCredential   = &Error{Kind: KindInvalidCredential}
	ErrProviderUnavailable = &Error{Kind: KindProviderUnavailable}
	ErrTokenIssuance       = &Error{Kind: KindTokenIssuanceFailed}
	ErrUpstreamUnavailable = &Error{Kind: KindUpstreamUnavailable}
)

// NewError builds a domain error and records the caller's stack.
func NewError(kind Kind, message string, cause error) *Error {
	var stack []byte
	if cause != nil {
		var stackErr *goerrors.Error
		if errors.As(cause, &stackErr) {
			stack = stackErr.Stack()
		} else {
			stack = goerrors.Wrap(cause, 2).Stack()
		}
	} else {
		stack = goerrors.New(message).Stack()
	}
	return &Error{Kind: kind, Message: message, Cause: cause, Stack: stack}
}

// FieldError builds a validation-class error bound to one input field.
func FieldError(kind Kind, field, format string, args ...any) *Error {
	e := NewError(kind, fmt.Sprintf(format, args...), nil)
	e.Field = field
	return e
}

func Unauthorized(message string) *Error { return NewError(KindUnauthorized, message, nil) }

func Forbidden(message string) *Error { return NewError(KindForbidden, message, nil) }

func NotFound(message string) *Error { return NewError(KindNotFound, message, nil) }

func Internal(message string, cause error) *Error { return NewError(KindInternal, message, cause) }

// KindOf extracts the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// AsError converts any error into a *Error, wrapping foreign errors as internal.
func AsError(err error) *Error {
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return Internal("unexpected error", err)
}
