package session

import (
	"fmt"
	"sync"
	"time"
)

// Phase is the transient UI effect a session is going through.
type Phase string

const (
	PhaseIdle              Phase = "idle"
	PhaseAuthenticating    Phase = "authenticating"
	PhaseJustAuthenticated Phase = "justAuthenticated"
	PhaseEndingSession     Phase = "endingSession"
)

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealScheduler schedules on the runtime timer.
type RealScheduler struct{}

func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Effects is the per-user effect state machine:
//
//	idle -> authenticating -> justAuthenticated -(login window)-> idle
//	authenticating -> idle (failure)
//	idle | justAuthenticated -> endingSession -(logout window)-> idle
type Effects struct {
	sched        Scheduler
	loginWindow  time.Duration
	logoutWindow time.Duration

	mu    sync.Mutex
	phase Phase
	timer Timer
	gen   uint64
}

// NewEffects returns a machine in PhaseIdle.
func NewEffects(sched Scheduler, loginWindow, logoutWindow time.Duration) *Effects {
	if sched == nil {
		sched = RealScheduler{}
	}
	return &Effects{
		sched:        sched,
		loginWindow:  loginWindow,
		logoutWindow: logoutWindow,
		phase:        PhaseIdle,
	}
}

// Phase returns the current phase.
func (e *Effects) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// BeginAuthentication moves an idle session into PhaseAuthenticating.
func (e *Effects) BeginAuthentication() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseIdle {
		return transitionError(e.phase, PhaseAuthenticating)
	}
	e.set(PhaseAuthenticating)
	return nil
}

// Authenticated completes a login and schedules the return to idle.
func (e *Effects) Authenticated() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseAuthenticating {
		return transitionError(e.phase, PhaseJustAuthenticated)
	}
	e.set(PhaseJustAuthenticated)
	e.scheduleIdle(e.loginWindow, nil)
	return nil
}

// AuthenticationFailed abandons a login.
func (e *Effects) AuthenticationFailed() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseAuthenticating {
		return transitionError(e.phase, PhaseIdle)
	}
	e.set(PhaseIdle)
	return nil
}

// EndSession starts the logout effect. When the window elapses the machine
// returns to idle and onEnded, if non-nil, is called outside the lock.
func (e *Effects) EndSession(onEnded func()) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.phase {
	case PhaseIdle, PhaseJustAuthenticated:
	default:
		return transitionError(e.phase, PhaseEndingSession)
	}
	e.set(PhaseEndingSession)
	e.scheduleIdle(e.logoutWindow, onEnded)
	return nil
}

// set changes phase and cancels any pending timed transition.
func (e *Effects) set(p Phase) {
	e.phase = p
	e.gen++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func (e *Effects) scheduleIdle(d time.Duration, then func()) {
	gen := e.gen
	fire := func() {
		e.mu.Lock()
		if e.gen != gen {
			e.mu.Unlock()
			return
		}
		e.phase = PhaseIdle
		e.gen++
		e.timer = nil
		e.mu.Unlock()

		if then != nil {
			then()
		}
	}

	e.timer = e.sched.AfterFunc(d, fire)
}

func transitionError(from, to Phase) error {
	return fmt.Errorf("session effects: cannot move from %s to %s", from, to)
}

// Tracker keeps one Effects machine per user.
type Tracker struct {
	sched        Scheduler
	loginWindow  time.Duration
	logoutWindow time.Duration

	mu       sync.Mutex
	machines map[string]*Effects
}

// NewTracker returns an empty Tracker.
func NewTracker(sched Scheduler, loginWindow, logoutWindow time.Duration) *Tracker {
	return &Tracker{
		sched:        sched,
		loginWindow:  loginWindow,
		logoutWindow: logoutWindow,
		machines:     make(map[string]*Effects),
	}
}

// Observe records an authentication attempt by userID. The first successful
// one plays the login effect; later requests leave the phase unchanged.
func (t *Tracker) Observe(userID string, authenticated bool) Phase {
	t.mu.Lock()
	m, seen := t.machines[userID]
	if !seen {
		m = NewEffects(t.sched, t.loginWindow, t.logoutWindow)
		if authenticated {
			t.machines[userID] = m
		}
	}
	t.mu.Unlock()

	if seen {
		if authenticated || m.Phase() == PhaseEndingSession {
			return m.Phase()
		}
		// The user's session is no longer valid; the next good token
		// plays the login effect again.
		t.mu.Lock()
		if t.machines[userID] == m {
			delete(t.machines, userID)
		}
		t.mu.Unlock()
		return PhaseIdle
	}

	if err := m.BeginAuthentication(); err != nil {
		return m.Phase()
	}
	if authenticated {
		_ = m.Authenticated()
	} else {
		_ = m.AuthenticationFailed()
	}
	return m.Phase()
}

// Phase returns the user's current phase; unknown users are idle.
func (t *Tracker) Phase(userID string) Phase {
	t.mu.Lock()
	m, ok := t.machines[userID]
	t.mu.Unlock()
	if !ok {
		return PhaseIdle
	}
	return m.Phase()
}

// End starts the logout effect for userID. Once it completes the machine is
// forgotten and onEnded runs.
func (t *Tracker) End(userID string, onEnded func()) (Phase, error) {
	t.mu.Lock()
	m, ok := t.machines[userID]
	if !ok {
		m = NewEffects(t.sched, t.loginWindow, t.logoutWindow)
		t.machines[userID] = m
	}
	t.mu.Unlock()

	err := m.EndSession(func() {
		t.mu.Lock()
		if t.machines[userID] == m {
			delete(t.machines, userID)
		}
		t.mu.Unlock()
		if onEnded != nil {
			onEnded()
		}
	})
	return m.Phase(), err
}
