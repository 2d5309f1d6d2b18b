package gateway

import (
	"context"

	"github.com/sirupsen/logrus"

	"portal_dashboard/backend/internal/dashboard"
	"portal_dashboard/backend/internal/portalapi"
	"portal_dashboard/backend/internal/reqstate"
	"portal_dashboard/backend/internal/session"
	"portal_dashboard/backend/internal/shared"
)

// Dependencies holds everything the routes need. It is built once in
// main.go and shared by all handlers.
type Dependencies struct {
	Dashboards *dashboard.Service
	Verifier   *session.Verifier
	Tracker    *session.Tracker
	CORS       shared.CORSConfig
	Log        logrus.FieldLogger
}

// NewDependencies wires the portal API client, the dashboard pipeline and
// session tracking from cfg. store may be nil.
func NewDependencies(cfg *shared.GatewayConfig, store dashboard.Store, log logrus.FieldLogger) *Dependencies {
	client := portalapi.NewClient(cfg.PortalAPI, portalapi.WithLogger(log))
	return NewDependenciesWithSource(cfg, client, store, session.RealScheduler{}, log)
}

// NewDependenciesWithSource is NewDependencies with the portal API and the
// effect scheduler injected, for tests.
func NewDependenciesWithSource(cfg *shared.GatewayConfig, source dashboard.Source, store dashboard.Store, sched session.Scheduler, log logrus.FieldLogger) *Dependencies {
	builder := dashboard.NewBuilder(source, log)
	return &Dependencies{
		Dashboards: dashboard.NewService(builder, store, failureNotifier(log), log),
		Verifier:   session.NewVerifier(cfg.Security.JWTSecret, cfg.Security.JWTIssuer),
		Tracker:    session.NewTracker(sched, cfg.Effects.LoginWindow, cfg.Effects.LogoutWindow),
		CORS:       cfg.CORS,
		Log:        log,
	}
}

// failureNotifier reports failed aggregation cycles once each.
func failureNotifier(log logrus.FieldLogger) reqstate.Notifier {
	return reqstate.NotifierFunc(func(ctx context.Context, message string) {
		entry := log.WithField("notice", message)
		if sess, ok := session.FromContext(ctx); ok {
			entry = entry.WithField("user", sess.User().ID)
		}
		entry.Warn("Dashboard refresh failed")
	})
}
