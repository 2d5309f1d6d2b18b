// Package session carries the authenticated caller through a request as an
// immutable value, and tracks the transient login/logout effect phases shown
// by the portal UI.
package session

import (
	"context"

	"portal_dashboard/backend/internal/shared"
)

// User identifies the caller.
type User struct {
	ID    string      `json:"id"`
	Name  string      `json:"name,omitempty"`
	Email string      `json:"email,omitempty"`
	Role  shared.Role `json:"role"`
}

// Preferences are per-user presentation settings.
type Preferences struct {
	DarkMode bool `json:"darkMode"`
}

// Context is an authenticated session. Its fields are unexported so a value
// cannot be altered once created; pass it by value.
type Context struct {
	token string
	user  User
	prefs Preferences
}

// New returns a session for user holding token.
func New(token string, user User, prefs Preferences) Context {
	return Context{token: token, user: user, prefs: prefs}
}

// Token is the bearer token forwarded to the portal API.
func (c Context) Token() string { return c.token }

// User returns the authenticated user.
func (c Context) User() User { return c.user }

// Preferences returns the user's presentation settings.
func (c Context) Preferences() Preferences { return c.prefs }

// Valid reports whether the session identifies a user.
func (c Context) Valid() bool { return c.user.ID != "" }

// WithTheme returns a copy with the dark-mode preference replaced.
func (c Context) WithTheme(dark bool) Context {
	c.prefs.DarkMode = dark
	return c
}

type ctxKey struct{}

// WithContext attaches sess to ctx.
func WithContext(ctx context.Context, sess Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, sess)
}

// FromContext returns the session attached by WithContext.
func FromContext(ctx context.Context) (Context, bool) {
	sess, ok := ctx.Value(ctxKey{}).(Context)
	return sess, ok && sess.Valid()
}
