package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind clasifica el error para mapearlo a un status HTTP estable.
type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	default:
		return "internal"
	}
}

// HTTPStatus devuelve el status code asociado a cada Kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func BadRequest(msg string) *Error   { return New(KindBadRequest, msg) }
func Unauthorized(msg string) *Error { return New(KindUnauthorized, msg) }
func Forbidden(msg string) *Error    { return New(KindForbidden, msg) }
func NotFound(msg string) *Error     { return New(KindNotFound, msg) }

// Validation agrupa errores por campo (422).
func Validation(fields []FieldError) *Error {
	return &Error{Kind: KindValidation, Message: "Validation Error", Fields: fields}
}

// Duplicate representa una violación de unicidad del store; sale como 400.
func Duplicate(field string) *Error {
	return &Error{
		Kind:    KindBadRequest,
		Message: "Duplicate value entered for " + field,
		Fields:  []FieldError{{Field: field, Message: field + " already exists"}},
	}
}

// Wrap envuelve una causa manteniendo el Kind/mensaje del error base.
// errors.Is(wrapped, base) sigue funcionando.
func Wrap(base *Error, cause error) error {
	if cause == nil {
		return base
	}
	return fmt.Errorf("%w: %w", base, cause)
}

// As extrae el *Error más externo de la cadena.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf devuelve KindInternal para errores que no vienen de este paquete.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}
