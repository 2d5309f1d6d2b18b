// Package fetchset runs a group of independent fetches concurrently and
// waits for all of them, whatever their individual outcome.
package fetchset

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Outcome is the settled result of one fetch: fulfilled with Value, or
// rejected with Err. It is written once, by the fetch's own task.
type Outcome[T any] struct {
	Value T
	Err   error

	settled bool
}

// Fulfilled reports whether the fetch succeeded.
func (o *Outcome[T]) Fulfilled() bool {
	return o != nil && o.settled && o.Err == nil
}

// Rejected reports whether the fetch failed.
func (o *Outcome[T]) Rejected() bool {
	return o != nil && o.settled && o.Err != nil
}

// Status describes how one named source settled.
type Status struct {
	Name     string
	Err      error
	Duration time.Duration
}

// Report lists every source in registration order.
type Report []Status

// Failed returns the names of rejected sources.
func (r Report) Failed() []string {
	var names []string
	for _, s := range r {
		if s.Err != nil {
			names = append(names, s.Name)
		}
	}
	return names
}

type task struct {
	name string
	run  func(ctx context.Context) error
}

// Set is a collection of named fetches. It is not reusable: register with
// Add, then call Wait once.
type Set struct {
	mu    sync.Mutex
	tasks []task
	done  bool
}

// Add registers fetch under name and returns the slot its outcome will be
// written to. The slot is only meaningful after Wait returns.
func Add[T any](s *Set, name string, fetch func(ctx context.Context) (T, error)) *Outcome[T] {
	out := &Outcome[T]{}
	run := func(ctx context.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("source %s panicked: %v", name, r)
			}
			out.Err = err
			out.settled = true
		}()
		out.Value, err = fetch(ctx)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		panic("fetchset: Add called after Wait")
	}
	s.tasks = append(s.tasks, task{name: name, run: run})
	return out
}

// Len returns the number of registered fetches.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Wait starts every registered fetch and blocks until all have settled.
// A failing fetch never cancels the others; its error lands in its Outcome
// and in the report.
func (s *Set) Wait(ctx context.Context) Report {
	s.mu.Lock()
	s.done = true
	tasks := s.tasks
	s.mu.Unlock()

	report := make(Report, len(tasks))
	var g errgroup.Group
	for i, t := range tasks {
		i, t := i, t
		g.Go(func() error {
			start := time.Now()
			err := t.run(ctx)
			report[i] = Status{Name: t.name, Err: err, Duration: time.Since(start)}
			return nil
		})
	}
	_ = g.Wait()

	return report
}
