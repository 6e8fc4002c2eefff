package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is the stable, machine readable classification of a failure.
type ErrorKind string

const (
	KindValidation   ErrorKind = "VALIDATION_ERROR"
	KindNotFound     ErrorKind = "RESOURCE_NOT_FOUND"
	KindConflict     ErrorKind = "DUPLICATE_RESOURCE"
	KindBusinessRule ErrorKind = "BUSINESS_RULE_VIOLATION"
	KindInvalidState ErrorKind = "INVALID_STATE"
	KindOutOfRange   ErrorKind = "OUT_OF_RANGE"
	KindInternal     ErrorKind = "INTERNAL_SERVER_ERROR"
)

type Error struct {
	Kind    ErrorKind
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError classifies err under kind, keeping it in the chain.
func WrapError(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func ValidationError(message string, details ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

func NotFound(resource, field string, value any) *Error {
	return NewError(KindNotFound, "%s not found with %s: %v", resource, field, value)
}

func Duplicate(resource, field string, value any) *Error {
	return NewError(KindConflict, "%s already exists with %s: %v", resource, field, value)
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal when err carries no classification.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
