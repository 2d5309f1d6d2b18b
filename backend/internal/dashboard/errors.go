package dashboard

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"portal_dashboard/backend/internal/shared"
)

// classifiedError attaches a status code to an error that has none.
type classifiedError struct {
	code codes.Code
	err  error
}

func (e *classifiedError) Error() string { return e.err.Error() }

func (e *classifiedError) Unwrap() error { return e.err }

func (e *classifiedError) GRPCStatus() *status.Status {
	return status.New(e.code, e.err.Error())
}

// PublicMessage hides transport details from the user.
func (e *classifiedError) PublicMessage() string {
	switch e.code {
	case codes.DeadlineExceeded:
		return "The portal took too long to respond. Please try again."
	case codes.Canceled:
		return "The request was cancelled."
	default:
		return "The portal is unavailable right now. Please try again."
	}
}

// snapshotError wraps a primary fetch failure, keeping the cause's status
// code when it carries one.
func snapshotError(role shared.Role, err error) error {
	wrapped := fmt.Errorf("fetch %s dashboard snapshot: %w", role, err)
	if _, ok := status.FromError(err); ok {
		return wrapped
	}

	code := codes.Unavailable
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	}
	return &classifiedError{code: code, err: wrapped}
}
