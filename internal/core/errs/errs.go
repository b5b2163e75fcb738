// Package errs is the closed error taxonomy shared by every layer.
// Each Kind is bound to exactly one HTTP status code.
package errs

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

type Kind int

const (
	KindBadRequest          Kind = 400
	KindUnauthorized        Kind = 401
	KindForbidden           Kind = 403
	KindNotFound            Kind = 404
	KindConflict            Kind = 409
	KindUnprocessableEntity Kind = 422
	KindTooManyRequests     Kind = 429
	KindInternalServerError Kind = 500
)

// 默认提示语
var kindPhrase = map[Kind]string{
	KindBadRequest:          "Bad Request",
	KindUnauthorized:        "Unauthorized",
	KindForbidden:           "Forbidden",
	KindNotFound:            "Not Found",
	KindConflict:            "Conflict",
	KindUnprocessableEntity: "Unprocessable Entity",
	KindTooManyRequests:     "Too Many Requests",
	KindInternalServerError: "Internal Server Error",
}

// Valid reports whether k belongs to the taxonomy.
func (k Kind) Valid() bool {
	_, ok := kindPhrase[k]
	return ok
}

func (k Kind) Status() int { return int(k) }

// Phrase is the default client message for k.
func (k Kind) Phrase() string {
	if p, ok := kindPhrase[k]; ok {
		return p
	}
	return kindPhrase[KindInternalServerError]
}

func (k Kind) String() string { return k.Phrase() }

// FieldError describes one invalid input field.
type FieldError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// Error is the only error type that reaches the client as-is.
// Cause is kept for the failure log and never rendered.
type Error struct {
	Kind    Kind
	Message string
	Errors  []FieldError
	Cause   error

	stack []uintptr
}

type Options struct {
	Message string
	Kind    Kind // zero value means KindInternalServerError
	Errors  []FieldError
	Cause   error
}

// New is the single constructor. Unknown kinds collapse to KindInternalServerError
// and an empty message falls back to the kind phrase.
func New(o Options) *Error {
	k := o.Kind
	if !k.Valid() {
		k = KindInternalServerError
	}
	msg := strings.TrimSpace(o.Message)
	if msg == "" {
		msg = k.Phrase()
	}
	return &Error{
		Kind:    k,
		Message: msg,
		Errors:  o.Errors,
		Cause:   o.Cause,
		stack:   callers(3),
	}
}

func BadRequest(msg string, fields ...FieldError) *Error {
	return New(Options{Kind: KindBadRequest, Message: msg, Errors: fields})
}

func Unauthorized(msg string) *Error {
	return New(Options{Kind: KindUnauthorized, Message: msg})
}

func Forbidden(msg string) *Error {
	return New(Options{Kind: KindForbidden, Message: msg})
}

func NotFound(msg string) *Error {
	return New(Options{Kind: KindNotFound, Message: msg})
}

func Conflict(msg string, fields ...FieldError) *Error {
	return New(Options{Kind: KindConflict, Message: msg, Errors: fields})
}

func UnprocessableEntity(msg string, fields ...FieldError) *Error {
	return New(Options{Kind: KindUnprocessableEntity, Message: msg, Errors: fields})
}

func TooManyRequests(msg string) *Error {
	return New(Options{Kind: KindTooManyRequests, Message: msg})
}

func InternalServerError(msg string) *Error {
	return New(Options{Kind: KindInternalServerError, Message: msg})
}

// Wrap attaches cause to a new taxonomy error of kind k.
func Wrap(k Kind, cause error, msg string) *Error {
	return New(Options{Kind: k, Message: msg, Cause: cause})
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Status is the numeric code of the error kind.
func (e *Error) Status() int { return e.Kind.Status() }

// Success is always false; it mirrors the envelope field.
func (e *Error) Success() bool { return false }

// Stack renders the frames captured at construction.
func (e *Error) Stack() string {
	if len(e.stack) == 0 {
		return ""
	}
	var b strings.Builder
	frames := runtime.CallersFrames(e.stack)
	for {
		f, more := frames.Next()
		fmt.Fprintf(&b, "%s\n\t%s:%d\n", f.Function, f.File, f.Line)
		if !more {
			break
		}
	}
	return b.String()
}

// As extracts a taxonomy error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err carries a taxonomy error of kind k.
func IsKind(err error, k Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == k
}

// From converts any error into a taxonomy error. Foreign errors become an
// InternalServerError whose client message does not leak their text.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := As(err); ok {
		return e
	}
	return New(Options{Kind: KindInternalServerError, Cause: err})
}

func callers(skip int) []uintptr {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip, pcs)
	return pcs[:n]
}
