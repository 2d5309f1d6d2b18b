package util

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"portal_dashboard/backend/internal/reqstate"
)

// JSONResponse structure for successful responses
type JSONResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// JSONError structure for error responses
type JSONError struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Stale   interface{} `json:"stale,omitempty"`
}

// WriteJSON is a helper to write JSON responses
func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	var response interface{}

	// If payload is already a map with a "success" key, use it directly (custom format)
	if responseMap, ok := payload.(map[string]interface{}); ok && responseMap["success"] != nil {
		response = payload
	} else if status >= 200 && status < 300 {
		response = JSONResponse{Success: true, Data: payload}
	} else {
		response = JSONError{Success: false, Message: "Unknown error"}
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logrus.WithError(err).Error("Error writing JSON response")
	}
}

// WriteJSONError is a helper to write standardized error JSON responses
func WriteJSONError(w http.ResponseWriter, status int, message string) {
	WriteJSONErrorWithStale(w, status, message, nil)
}

// WriteJSONErrorWithStale writes an error response that also carries the
// last good data, so the client can keep showing it.
func WriteJSONErrorWithStale(w http.ResponseWriter, status int, message string, stale interface{}) {
	logrus.WithFields(logrus.Fields{"status": status, "stale": stale != nil}).Warnf("HTTP Error %d: %s", status, message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	errorResponse := JSONError{
		Success: false,
		Message: message,
		Stale:   stale,
	}

	if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
		logrus.WithError(err).Error("Error writing JSON error response")
	}
}

// HTTPError maps an error classified by a gRPC status code to an HTTP
// status and a message safe to show the user.
func HTTPError(err error) (int, string) {
	st, ok := status.FromError(err)
	if !ok {
		return http.StatusInternalServerError, reqstate.GenericErrorMessage
	}
	msg := reqstate.MessageOf(err)

	switch st.Code() {
	case codes.InvalidArgument:
		return http.StatusBadRequest, msg
	case codes.Unauthenticated:
		return http.StatusUnauthorized, msg
	case codes.PermissionDenied:
		return http.StatusForbidden, msg
	case codes.NotFound:
		return http.StatusNotFound, msg
	case codes.AlreadyExists:
		return http.StatusConflict, msg
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests, msg
	case codes.Unavailable:
		return http.StatusServiceUnavailable, msg
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout, msg
	case codes.Canceled:
		// nginx convention for a client that went away
		return 499, msg
	default:
		return http.StatusInternalServerError, msg
	}
}

// HandleGRPCError writes the HTTP response for a status-classified error.
func HandleGRPCError(w http.ResponseWriter, err error) {
	code, msg := HTTPError(err)
	WriteJSONError(w, code, msg)
}

// ExtractToken extracts the token from the Authorization header (Bearer <token>)
func ExtractToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header missing")
	}

	// Expect header: "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", errors.New("invalid authorization header format")
	}

	return parts[1], nil
}
