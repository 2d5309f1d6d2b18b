package portalapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// APIError is a failed portal API call. StatusCode is 0 when no response
// was received.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "portal API %s %s", e.Method, e.Path)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *APIError) Unwrap() error { return e.Err }

// Code classifies the failure.
func (e *APIError) Code() codes.Code {
	var netErr net.Error
	switch {
	case errors.Is(e.Err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case errors.Is(e.Err, context.Canceled):
		return codes.Canceled
	case errors.As(e.Err, &netErr) && netErr.Timeout():
		return codes.DeadlineExceeded
	}

	switch {
	case e.StatusCode == 0:
		return codes.Unavailable
	case e.StatusCode == http.StatusBadRequest, e.StatusCode == http.StatusUnprocessableEntity:
		return codes.InvalidArgument
	case e.StatusCode == http.StatusUnauthorized:
		return codes.Unauthenticated
	case e.StatusCode == http.StatusForbidden:
		return codes.PermissionDenied
	case e.StatusCode == http.StatusNotFound:
		return codes.NotFound
	case e.StatusCode == http.StatusConflict:
		return codes.AlreadyExists
	case e.StatusCode == http.StatusTooManyRequests:
		return codes.ResourceExhausted
	case e.StatusCode == http.StatusGatewayTimeout:
		return codes.DeadlineExceeded
	case e.StatusCode >= 500:
		return codes.Unavailable
	case e.StatusCode < 300:
		// A 2xx that could not be used.
		return codes.Internal
	default:
		return codes.Unknown
	}
}

// GRPCStatus lets status.Code and status.FromError classify the error.
func (e *APIError) GRPCStatus() *status.Status {
	return status.New(e.Code(), e.PublicMessage())
}

// PublicMessage is the portal's own message when it sent one, otherwise a
// generic description of the failure class.
func (e *APIError) PublicMessage() string {
	if msg := strings.TrimSpace(e.Message); msg != "" {
		return msg
	}
	switch e.Code() {
	case codes.DeadlineExceeded:
		return "The portal took too long to respond. Please try again."
	case codes.Canceled:
		return "The request was cancelled."
	case codes.Unauthenticated:
		return "Your session has expired. Please log in again."
	case codes.PermissionDenied:
		return "You do not have access to this dashboard."
	case codes.InvalidArgument:
		return "The portal rejected the request."
	case codes.NotFound:
		return "The requested dashboard data was not found."
	case codes.AlreadyExists:
		return "The portal reported a conflict. Please try again."
	case codes.ResourceExhausted:
		return "Too many requests. Please wait a moment and try again."
	case codes.Unavailable:
		return "The portal is unavailable right now. Please try again."
	default:
		return "The portal returned an unexpected response. Please try again."
	}
}
