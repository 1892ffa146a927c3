package errors

import "errors"

var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
	ErrInternal     = errors.New("internal server error")
	ErrDuplicate    = errors.New("resource already exists")
	ErrValidation   = errors.New("validation failed")
	ErrInvalidID    = errors.New("invalid id format")
)
