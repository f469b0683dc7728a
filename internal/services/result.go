package services

import (
	"errors"

	"github.com/google/uuid"

	"github.com/yungbote/clientbase-backend/internal/pkg/validate"
	"github.com/yungbote/clientbase-backend/internal/requestdata"
)

// Caller is the identity every mutating operation receives explicitly.
type Caller = requestdata.Caller

type ErrorKind string

const (
	KindNone         ErrorKind = ""
	KindValidation   ErrorKind = "validation_error"
	KindUnauthorized ErrorKind = "unauthorized"
	KindNotFound     ErrorKind = "not_found"
	KindConflict     ErrorKind = "conflict"
	KindInternal     ErrorKind = "internal_error"
)

const (
	msgUnauthorized = "Unauthorized"
	msgUnknownError = "An unknown error occurred"
)

// Result is the uniform outcome of a mutation. Operations never return Go
// errors or panic to their caller; every failure is folded into a Result.
type Result struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	Error   string     `json:"error,omitempty"`
	ID      *uuid.UUID `json:"id,omitempty"`
	Kind    ErrorKind  `json:"-"`
}

func succeeded(message string, id *uuid.UUID) Result {
	return Result{Success: true, Message: message, ID: id}
}

func failed(kind ErrorKind, message string) Result {
	return Result{Success: false, Error: message, Kind: kind}
}

func unauthorized() Result {
	return failed(KindUnauthorized, msgUnauthorized)
}

func notFound(message string) Result {
	return failed(KindNotFound, message)
}

func conflict(message string) Result {
	return failed(KindConflict, message)
}

// invalid maps a validation failure to its messages. Non-validation errors are
// reported as internal.
func invalid(err error) Result {
	var verr *validate.Error
	if errors.As(err, &verr) {
		return failed(KindValidation, verr.Error())
	}
	return internal(err)
}

func internal(err error) Result {
	if err == nil {
		return failed(KindInternal, msgUnknownError)
	}
	return failed(KindInternal, err.Error())
}

func idPtr(id uuid.UUID) *uuid.UUID {
	return &id
}
