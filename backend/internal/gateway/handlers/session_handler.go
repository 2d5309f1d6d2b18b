package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"portal_dashboard/backend/internal/dashboard"
	"portal_dashboard/backend/internal/gateway/util"
	"portal_dashboard/backend/internal/session"
)

// SessionHandler exposes the caller's session and ends it.
type SessionHandler struct {
	Dashboards *dashboard.Service
	Tracker    *session.Tracker
	Log        logrus.FieldLogger
}

// GetSession handles GET /session
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromRequest(r)
	if !ok {
		util.WriteJSONError(w, http.StatusUnauthorized, "Authorization token required")
		return
	}
	util.WriteJSON(w, http.StatusOK, describe(sess, h.Tracker))
}

// Logout handles POST /session/logout
// Starts the logout effect; the user's stored dashboards are discarded once
// it completes.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromRequest(r)
	if !ok {
		util.WriteJSONError(w, http.StatusUnauthorized, "Authorization token required")
		return
	}

	userID := sess.User().ID
	phase, err := h.Tracker.End(userID, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := h.Dashboards.Forget(ctx, userID); err != nil {
			h.Log.WithError(err).WithField("user", userID).Warn("Failed to discard dashboards after logout")
			return
		}
		h.Log.WithField("user", userID).Info("Session ended, dashboards discarded")
	})
	if err != nil {
		// Already ending; report the phase in progress.
		h.Log.WithError(err).WithField("user", userID).Debug("Logout ignored")
	}

	response := map[string]interface{}{
		"success": true,
		"message": "Logging out",
		"phase":   phase,
	}
	util.WriteJSON(w, http.StatusAccepted, response)
}
