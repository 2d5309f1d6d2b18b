package handlers

import (
	"net/http"

	"portal_dashboard/backend/internal/session"
)

// sessionFromRequest returns the session injected by the auth middleware.
func sessionFromRequest(r *http.Request) (session.Context, bool) {
	return session.FromContext(r.Context())
}

// sessionInfo is the session block sent with every dashboard response.
type sessionInfo struct {
	User        session.User        `json:"user"`
	Preferences session.Preferences `json:"preferences"`
	Phase       session.Phase       `json:"phase"`
}

func describe(sess session.Context, tracker *session.Tracker) sessionInfo {
	return sessionInfo{
		User:        sess.User(),
		Preferences: sess.Preferences(),
		Phase:       tracker.Phase(sess.User().ID),
	}
}
