package responses

import (
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// APIError interface for custom API errors
type APIError interface {
	Error() string
	StatusCode() int
	Code() codes.Code
}

type UnauthenticatedError struct {
	Msg string
}

func (e UnauthenticatedError) Error() string {
	return e.Msg
}

func (UnauthenticatedError) StatusCode() int {
	return http.StatusUnauthorized
}

func (UnauthenticatedError) Code() codes.Code {
	return codes.Unauthenticated
}

func (e UnauthenticatedError) GRPCStatus() *status.Status {
	return status.New(e.Code(), e.Msg)
}

type InvalidArgumentError struct {
	Msg string
}

func (e InvalidArgumentError) Error() string {
	return e.Msg
}

func (InvalidArgumentError) StatusCode() int {
	return http.StatusBadRequest
}

func (InvalidArgumentError) Code() codes.Code {
	return codes.InvalidArgument
}

func (e InvalidArgumentError) GRPCStatus() *status.Status {
	return status.New(e.Code(), e.Msg)
}

type PermissionDeniedError struct {
	Msg string
}

func (e PermissionDeniedError) Error() string {
	return e.Msg
}

func (PermissionDeniedError) StatusCode() int {
	return http.StatusForbidden
}

func (PermissionDeniedError) Code() codes.Code {
	return codes.PermissionDenied
}

func (e PermissionDeniedError) GRPCStatus() *status.Status {
	return status.New(e.Code(), e.Msg)
}

// ResourceExhaustedError rejects one action; the session stays usable for game_over.
type ResourceExhaustedError struct {
	Msg string
}

func (e ResourceExhaustedError) Error() string {
	return e.Msg
}

func (ResourceExhaustedError) StatusCode() int {
	return http.StatusTooManyRequests
}

func (ResourceExhaustedError) Code() codes.Code {
	return codes.ResourceExhausted
}

func (e ResourceExhaustedError) GRPCStatus() *status.Status {
	return status.New(e.Code(), e.Msg)
}

type NotFoundError struct {
	Msg string
}

func (e NotFoundError) Error() string {
	return e.Msg
}

func (NotFoundError) StatusCode() int {
	return http.StatusNotFound
}

func (NotFoundError) Code() codes.Code {
	return codes.NotFound
}

func (e NotFoundError) GRPCStatus() *status.Status {
	return status.New(e.Code(), e.Msg)
}

// InternalError is safe to retry with backoff. Cause is kept for logs and
// never sent to the caller.
type InternalError struct {
	Msg   string
	Cause error
}

func (e InternalError) Error() string {
	return e.Msg
}

func (e InternalError) Unwrap() error {
	return e.Cause
}

func (InternalError) StatusCode() int {
	return http.StatusInternalServerError
}

func (InternalError) Code() codes.Code {
	return codes.Internal
}

func (e InternalError) GRPCStatus() *status.Status {
	return status.New(e.Code(), e.Msg)
}

// IsRejection reports whether err is a caller-facing rejection rather than an
// infrastructure failure. InternalError and untyped errors are not rejections.
func IsRejection(err error) bool {
	var apiErr APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code() != codes.Internal
}
