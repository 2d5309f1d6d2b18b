package tests

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus/hooks/test"

	"portal_dashboard/backend/internal/gateway"
	"portal_dashboard/backend/internal/portalapi"
	"portal_dashboard/backend/internal/session"
	"portal_dashboard/backend/internal/shared"
	"portal_dashboard/backend/internal/store"
)

// TestEnv holds all the running components for the test
type TestEnv struct {
	Router    http.Handler
	Portal    *FakePortal
	Verifier  *session.Verifier
	Scheduler *manualScheduler
	Store     *store.MemoryStore
}

// FakePortal is an in-process stand-in for the remote portal API.
type FakePortal struct {
	Server *httptest.Server

	// Down makes every dashboard snapshot fail with 503.
	Down atomic.Bool

	mu      sync.Mutex
	failing map[string]bool
}

// Fail makes GET path answer 500 until restored.
func (p *FakePortal) Fail(path string, failing bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failing[path] = failing
}

func (p *FakePortal) failed(path string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failing[path]
}

var portalPayloads = map[string]string{
	"/api/dashboard/student": `{"kpis":{"cgpa":null,"attendancePercentage":null,"feeDue":750},
		"notices":[{"title":"Legacy"}],"examSchedule":[{"courseCode":"CS101","date":"2026-12-01"}]}`,
	"/api/dashboard/teacher": `{"kpis":{"totalCourses":3},"recentAssignments":[{"title":"Old","submissionsCount":1}]}`,
	"/api/dashboard/admin":   `{"kpis":{"students":1200,"teachers":80}}`,

	"/api/attendance/summary": `[{"courseCode":"CS101","present":18,"absent":2,"late":0,"totalClasses":20},
		{"courseCode":"MA201","percentage":"75"}]`,
	"/api/marks/my": `[{"course":{"code":"CS101"},"obtainedMarks":46,"maxMarks":50},
		{"courseCode":"MA201","obtainedMarks":35,"maxMarks":50}]`,
	"/api/fees/my":        `{"totalFee":2000,"totalPaid":1500,"totalDue":500,"records":[]}`,
	"/api/exams/schedule": `[{"courseCode":"MA201","date":"2026-11-20"},{"courseCode":"CS101","date":"2026-11-10"}]`,
	"/api/notices":        `[{"_id":"n1","title":"Welcome","content":"Term starts","posterName":"Registrar"}]`,
	"/api/messages":       `[]`,
	"/api/timetable/student": `[{"day":"Wednesday","startTime":"10:00","courseCode":"MA201"},
		{"day":"Monday","startTime":"09:00","courseCode":"CS101"}]`,
	"/api/timetable/teacher":   `[]`,
	"/api/assignments/teacher": `[{"title":"Lab 1","courseCode":"CS101","submissionsCount":12},{"title":"Essay","submissionsCount":0}]`,
	"/api/courses/teacher":     `[{"_id":"c1","code":"CS101"},{"_id":"c2","code":"CS102"},{"_id":"c3","code":"CS103"}]`,
	"/api/courses/c1/students": `[{"studentId":"s1"},{"studentId":"s2"},{"studentId":"s3"},{"studentId":"s4"},{"studentId":"s5"}]`,
	"/api/courses/c3/students": `[{"studentId":"s1"},{"studentId":"s2"},{"studentId":"s3"},{"studentId":"s4"},{"studentId":"s5"},{"studentId":"s6"},{"studentId":"s7"}]`,
}

func newFakePortal(t *testing.T) *FakePortal {
	p := &FakePortal{failing: make(map[string]bool)}

	r := chi.NewRouter()
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		path := r.URL.Path

		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "No token"})
			return
		}
		if p.Down.Load() && strings.HasPrefix(path, "/api/dashboard/") {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "Portal is under maintenance"})
			return
		}
		body, ok := portalPayloads[path]
		if !ok || p.failed(path) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"success":false,"message":"internal error"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":` + body + `}`))
	})

	p.Server = httptest.NewServer(r)
	t.Cleanup(p.Server.Close)
	return p
}

// setupGatewayTestEnv wires the real gateway against a fake portal API.
func setupGatewayTestEnv(t *testing.T) *TestEnv {
	portal := newFakePortal(t)

	cfg := &shared.GatewayConfig{
		ServiceConfig: shared.ServiceConfig{
			ServiceName: "dashboard-gateway-test",
			Environment: "test",
			Security:    shared.SecurityConfig{JWTSecret: "test-secret", JWTIssuer: "portal-test"},
		},
		PortalAPI: shared.PortalAPIConfig{BaseURL: portal.Server.URL + "/api", Timeout: 2 * time.Second},
		Effects:   shared.EffectsConfig{LoginWindow: time.Second, LogoutWindow: time.Second},
		CORS: shared.CORSConfig{
			AllowedOrigins: []string{"http://localhost:5173"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
		},
	}

	log, _ := test.NewNullLogger()
	sched := &manualScheduler{}
	mem := store.NewMemoryStore(nil)
	client := portalapi.NewClient(cfg.PortalAPI, portalapi.WithLogger(log))
	deps := gateway.NewDependenciesWithSource(cfg, client, mem, sched, log)

	return &TestEnv{
		Router:    gateway.SetupRoutes(deps),
		Portal:    portal,
		Verifier:  deps.Verifier,
		Scheduler: sched,
		Store:     mem,
	}
}

// Token signs a token for a user id and role.
func (e *TestEnv) Token(t *testing.T, userID, role string) string {
	t.Helper()
	now := time.Now()
	token, err := e.Verifier.Sign(session.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		Name: "Test " + role,
		Role: role,
	})
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return token
}

// manualScheduler fires effect timers only when advanced.
type manualScheduler struct {
	mu      sync.Mutex
	now     time.Duration
	pending []*manualTimer
}

type manualTimer struct {
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) session.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{at: s.now + d, f: f}
	s.pending = append(s.pending, t)
	return t
}

func (s *manualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	var due []*manualTimer
	for _, t := range s.pending {
		if !t.stopped && !t.fired && t.at <= s.now {
			t.fired = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}
