package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"portal_dashboard/backend/internal/dashboard"
	"portal_dashboard/backend/internal/gateway/util"
	"portal_dashboard/backend/internal/reqstate"
	"portal_dashboard/backend/internal/session"
	"portal_dashboard/backend/internal/shared"
)

// DashboardHandler serves aggregated dashboards.
type DashboardHandler struct {
	Dashboards *dashboard.Service
	Tracker    *session.Tracker
}

// GetDashboard handles GET /dashboard
// Builds the dashboard for the role in the caller's token.
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromRequest(r)
	if !ok {
		util.WriteJSONError(w, http.StatusUnauthorized, "Authorization token required")
		return
	}
	h.refresh(w, r, sess, sess.User().Role)
}

// GetRoleDashboard handles GET /dashboard/{role}
// Admins may view any role's layout; other users only their own.
func (h *DashboardHandler) GetRoleDashboard(w http.ResponseWriter, r *http.Request) {
	sess, role, ok := h.authorizeRole(w, r, chi.URLParam(r, "role"))
	if !ok {
		return
	}
	h.refresh(w, r, sess, role)
}

// Refresh handles POST /dashboard/refresh
// Re-runs the aggregation and replaces the stored bundle.
// Query Params: role (optional, defaults to the caller's role)
func (h *DashboardHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	sess, role, ok := h.authorizeRole(w, r, r.URL.Query().Get("role"))
	if !ok {
		return
	}
	h.refresh(w, r, sess, role)
}

// GetState handles GET /dashboard/state
// Returns the stored bundle with its loading and error flags, without fetching.
// Query Params: role (optional)
func (h *DashboardHandler) GetState(w http.ResponseWriter, r *http.Request) {
	sess, role, ok := h.authorizeRole(w, r, r.URL.Query().Get("role"))
	if !ok {
		return
	}

	view, err := h.Dashboards.State(r.Context(), sess, role)
	if err != nil {
		util.HandleGRPCError(w, err)
		return
	}

	response := map[string]interface{}{
		"success": true,
		"data":    stateBody(view),
		"session": describe(sess, h.Tracker),
	}
	util.WriteJSON(w, http.StatusOK, response)
}

func (h *DashboardHandler) refresh(w http.ResponseWriter, r *http.Request, sess session.Context, role shared.Role) {
	view, err := h.Dashboards.Refresh(r.Context(), sess, role)
	if err != nil {
		code, msg := util.HTTPError(err)
		var stale interface{}
		if view.HasData {
			stale = view.Data
		}
		util.WriteJSONErrorWithStale(w, code, msg, stale)
		return
	}

	response := map[string]interface{}{
		"success": true,
		"data":    view.Data,
		"session": describe(sess, h.Tracker),
	}
	util.WriteJSON(w, http.StatusOK, response)
}

// authorizeRole resolves the requested role, defaulting to the caller's own.
func (h *DashboardHandler) authorizeRole(w http.ResponseWriter, r *http.Request, requested string) (session.Context, shared.Role, bool) {
	sess, ok := sessionFromRequest(r)
	if !ok {
		util.WriteJSONError(w, http.StatusUnauthorized, "Authorization token required")
		return session.Context{}, "", false
	}

	own := sess.User().Role
	if requested == "" {
		return sess, own, true
	}

	role, ok := shared.ParseRole(requested)
	if !ok {
		util.WriteJSONError(w, http.StatusBadRequest, "Unknown dashboard role: "+requested)
		return session.Context{}, "", false
	}
	if role != own && own != shared.RoleAdmin {
		util.WriteJSONError(w, http.StatusForbidden, "Access denied: You can only view your own dashboard")
		return session.Context{}, "", false
	}
	return sess, role, true
}

// stateBody is the JSON form of a stored slot.
func stateBody(view reqstate.View[dashboard.Bundle]) map[string]interface{} {
	body := map[string]interface{}{
		"loading": view.Loading,
		"error":   view.Error,
		"data":    nil,
	}
	if view.HasData {
		body["data"] = view.Data
	}
	return body
}
