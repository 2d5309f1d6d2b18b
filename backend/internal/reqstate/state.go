// Package reqstate holds the result of one repeatable asynchronous fetch:
// the latest data, whether a fetch is in flight, and the last error message.
package reqstate

import (
	"context"
	"errors"
	"strings"
	"sync"

	"google.golang.org/grpc/status"
)

// GenericErrorMessage is shown when a failure carries no public message.
const GenericErrorMessage = "Something went wrong. Please try again."

// Fetcher performs the wrapped operation.
type Fetcher[T any] func(ctx context.Context, args ...any) (T, error)

// Notifier surfaces a failure to the user.
type Notifier interface {
	NotifyError(ctx context.Context, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, message string)

func (f NotifierFunc) NotifyError(ctx context.Context, message string) { f(ctx, message) }

// publicMessager is implemented by errors that carry a message safe to show.
type publicMessager interface {
	PublicMessage() string
}

type grpcStatuser interface {
	GRPCStatus() *status.Status
}

// View is a consistent copy of the state.
type View[T any] struct {
	Data    T      `json:"data"`
	HasData bool   `json:"-"`
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

// State wraps a Fetcher. Overlapping Execute calls are allowed; the last one
// to finish wins.
type State[T any] struct {
	fetch    Fetcher[T]
	notifier Notifier

	mu       sync.RWMutex
	data     T
	hasData  bool
	inflight int
	errMsg   string
}

// New returns a State around fetch. notifier may be nil.
func New[T any](fetch Fetcher[T], notifier Notifier) *State[T] {
	return &State[T]{fetch: fetch, notifier: notifier}
}

// Execute runs the fetcher. On success the result replaces the stored data.
// On failure the previous data is kept, the error message is recorded, the
// notifier is called and the error is returned.
func (s *State[T]) Execute(ctx context.Context, args ...any) (T, error) {
	s.mu.Lock()
	s.inflight++
	s.errMsg = ""
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inflight--
		s.mu.Unlock()
	}()

	result, err := s.fetch(ctx, args...)
	if err != nil {
		msg := MessageOf(err)
		s.mu.Lock()
		s.errMsg = msg
		s.mu.Unlock()

		if s.notifier != nil {
			s.notifier.NotifyError(ctx, msg)
		}
		var zero T
		return zero, err
	}

	s.mu.Lock()
	s.data = result
	s.hasData = true
	s.mu.Unlock()
	return result, nil
}

// Seed stores data without running the fetcher, e.g. a bundle restored from
// persistent storage. It never overwrites data that is already present.
func (s *State[T]) Seed(data T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasData {
		return false
	}
	s.data = data
	s.hasData = true
	return true
}

// Data returns the latest successful result.
func (s *State[T]) Data() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data, s.hasData
}

// Loading reports whether an Execute call is in flight.
func (s *State[T]) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

// Err returns the message of the most recent failure, or "".
func (s *State[T]) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// Snapshot returns data, loading and error read under one lock.
func (s *State[T]) Snapshot() View[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return View[T]{
		Data:    s.data,
		HasData: s.hasData,
		Loading: s.inflight > 0,
		Error:   s.errMsg,
	}
}

// MessageOf extracts a human-readable message from err. A status message is
// only used when err is itself a status error; once wrapped, the status text
// includes the wrapping context and is not shown.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}

	var pm publicMessager
	if errors.As(err, &pm) {
		if msg := strings.TrimSpace(pm.PublicMessage()); msg != "" {
			return msg
		}
	}

	if se, ok := err.(grpcStatuser); ok {
		if msg := strings.TrimSpace(se.GRPCStatus().Message()); msg != "" {
			return msg
		}
	}

	return GenericErrorMessage
}
