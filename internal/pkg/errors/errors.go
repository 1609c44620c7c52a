package errors

import (
	stderrors "errors"
	"fmt"

	"curbfinder/internal/domain/entities"
)

type AppError struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	StatusCode int                    `json:"-"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    make(map[string]interface{}),
	}
}

// WithDetails returns a copy of e carrying details. The catalogue values are
// shared, so they are never mutated.
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// FromDomain maps an error returned by the index or service onto the
// catalogue. Unknown errors become ErrInternalServer.
func FromDomain(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	var base *AppError
	switch {
	case stderrors.Is(err, entities.ErrInvalidPositionCode):
		base = ErrInvalidPositionCode
	case stderrors.Is(err, entities.ErrMalformedRecord):
		base = ErrMalformedRecord
	case stderrors.Is(err, entities.ErrInvalidRadius):
		base = ErrInvalidRadius
	case stderrors.Is(err, entities.ErrCoverageTooLarge):
		base = ErrCoverageTooLarge
	default:
		return ErrInternalServer
	}
	return base.WithDetails(map[string]interface{}{"reason": err.Error()})
}
