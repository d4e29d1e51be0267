package httperr

import (
	"github.com/cockroachdb/errors"
	"net/http"
)

type Kind string

const (
	KindInvalidInput      Kind = "invalid_input"
	KindNotFound          Kind = "not_found"
	KindForbidden         Kind = "forbidden"
	KindSlotConflict      Kind = "slot_conflict"
	KindInvalidTransition Kind = "invalid_transition"
	KindValidation        Kind = "validation_failed"
	KindConflict          Kind = "conflict"
	KindUnauthorized      Kind = "unauthorized"
)

// FieldError names one offending input field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type BusinessError struct {
	Kind    Kind
	Code    string
	Message string
	Fields  []FieldError
}

func (e BusinessError) Error() string {
	if e.Message != "" {
		return e.Code + ": " + e.Message
	}
	return e.Code
}

func ErrBusiness(kind Kind, code, message string) error {
	return BusinessError{Kind: kind, Code: code, Message: message}
}

func ErrInvalidInput(code, message string) error {
	return BusinessError{Kind: KindInvalidInput, Code: code, Message: message}
}

func ErrNotFound(code, message string) error {
	return BusinessError{Kind: KindNotFound, Code: code, Message: message}
}

func ErrForbidden(code, message string) error {
	return BusinessError{Kind: KindForbidden, Code: code, Message: message}
}

func ErrSlotConflict() error {
	return BusinessError{
		Kind:    KindSlotConflict,
		Code:    "slot_conflict",
		Message: "This time slot is no longer available.",
	}
}

func ErrInvalidTransition(from, to string) error {
	return BusinessError{
		Kind:    KindInvalidTransition,
		Code:    "invalid_transition",
		Message: "cannot move appointment from " + from + " to " + to,
	}
}

func ErrValidation(code string, fields []FieldError) error {
	return BusinessError{
		Kind:    KindValidation,
		Code:    code,
		Message: "one or more fields are invalid",
		Fields:  fields,
	}
}

// AsBusiness unwraps err into a BusinessError when it carries one.
func AsBusiness(err error) (BusinessError, bool) {
	var be BusinessError
	if errors.As(err, &be) {
		return be, true
	}
	return BusinessError{}, false
}

func IsBusiness(err error, code string) bool {
	be, ok := AsBusiness(err)
	return ok && be.Code == code
}

func IsKind(err error, kind Kind) bool {
	be, ok := AsBusiness(err)
	return ok && be.Kind == kind
}

func StatusFor(kind Kind) int {
	switch kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindSlotConflict, KindInvalidTransition, KindConflict:
		return http.StatusConflict
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
