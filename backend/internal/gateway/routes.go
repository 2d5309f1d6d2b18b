package gateway

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"portal_dashboard/backend/internal/gateway/handlers"
	"portal_dashboard/backend/internal/gateway/util"
	"portal_dashboard/backend/internal/session"
)

// SetupRoutes configures the Chi router, middleware, and route handlers.
func SetupRoutes(deps *Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// 1. Global Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(deps.Log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORS.AllowedOrigins,
		AllowedMethods:   deps.CORS.AllowedMethods,
		AllowedHeaders:   deps.CORS.AllowedHeaders,
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: deps.CORS.AllowCredentials,
		MaxAge:           deps.CORS.MaxAge,
	}))

	// 2. Initialize Handlers
	dashboardHandler := &handlers.DashboardHandler{Dashboards: deps.Dashboards, Tracker: deps.Tracker}
	sessionHandler := &handlers.SessionHandler{Dashboards: deps.Dashboards, Tracker: deps.Tracker, Log: deps.Log}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		util.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// 3. Define Routes (all require a valid token)
	r.Route("/api", func(r chi.Router) {
		r.Use(AuthMiddleware(deps.Verifier, deps.Tracker))

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/", dashboardHandler.GetDashboard)
			r.Get("/state", dashboardHandler.GetState)
			r.Post("/refresh", dashboardHandler.Refresh)
			r.Get("/{role}", dashboardHandler.GetRoleDashboard)
		})

		r.Route("/session", func(r chi.Router) {
			r.Get("/", sessionHandler.GetSession)
			r.Post("/logout", sessionHandler.Logout)
		})
	})

	return r
}

// AuthMiddleware verifies the bearer token and injects the session into the
// request context. The first request of each user plays the login effect.
func AuthMiddleware(verifier *session.Verifier, tracker *session.Tracker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Extract Token
			tokenStr, err := util.ExtractToken(r)
			if err != nil {
				util.WriteJSONError(w, http.StatusUnauthorized, "Authorization token required")
				return
			}

			// 2. Verify
			sess, err := verifier.Verify(tokenStr)
			if err != nil {
				var rejected *session.RejectedError
				if errors.As(err, &rejected) {
					tracker.Observe(rejected.UserID, false)
				}
				util.WriteJSONError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}
			tracker.Observe(sess.User().ID, true)

			// 3. Inject Session into Context
			next.ServeHTTP(w, r.WithContext(session.WithContext(r.Context(), sess)))
		})
	}
}

// RequestLogger logs one line per request through log.
func RequestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			log.WithFields(logrus.Fields{
				"request_id": middleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start),
			}).Info("HTTP request")
		})
	}
}
