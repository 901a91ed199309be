package core

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
)

type ErrorCode string

const (
	ErrBadRequest     ErrorCode = "WRT_BAD_REQUEST"
	ErrNotFound       ErrorCode = "WRT_NOT_FOUND"
	ErrConflict       ErrorCode = "WRT_CONFLICT"
	ErrNotReady       ErrorCode = "WRT_NOT_READY"
	ErrInfrastructure ErrorCode = "WRT_INFRASTRUCTURE"
	ErrRemote         ErrorCode = "WRT_REMOTE"
	ErrRemoteTimeout  ErrorCode = "WRT_REMOTE_TIMEOUT"
	ErrInternal       ErrorCode = "WRT_INTERNAL"
)

// HTTPStatus returns the HTTP status code for this error code.
func (e ErrorCode) HTTPStatus() int {
	switch e {
	case ErrBadRequest:
		return 400
	case ErrNotFound:
		return 404
	case ErrConflict:
		return 409
	case ErrNotReady:
		return 503
	case ErrRemote:
		return 502
	case ErrRemoteTimeout:
		return 504
	default:
		return 500
	}
}

// GRPCCode returns the gRPC status code for this error code.
func (e ErrorCode) GRPCCode() codes.Code {
	switch e {
	case ErrBadRequest:
		return codes.InvalidArgument
	case ErrNotFound:
		return codes.NotFound
	case ErrConflict:
		return codes.AlreadyExists
	case ErrNotReady:
		return codes.Unavailable
	case ErrInfrastructure:
		return codes.FailedPrecondition
	case ErrRemote:
		return codes.Unavailable
	case ErrRemoteTimeout:
		return codes.DeadlineExceeded
	default:
		return codes.Internal
	}
}

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAppError(code ErrorCode, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

// AsAppError unwraps err to an AppError, wrapping unknown errors as internal.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewAppError(ErrInternal, err.Error())
}
