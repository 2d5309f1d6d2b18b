package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"portal_dashboard/backend/internal/dashboard"
	"portal_dashboard/backend/internal/session"
	"portal_dashboard/backend/internal/shared"
)

func TestGateway_SessionEffects(t *testing.T) {
	env := setupGatewayTestEnv(t)
	token := env.Token(t, "student-003", "student")

	send := func(method, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
		req, _ := http.NewRequest(method, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		env.Router.ServeHTTP(rr, req)

		var body map[string]interface{}
		json.Unmarshal(rr.Body.Bytes(), &body)
		return rr, body
	}

	t.Run("Login Effect Expires", func(t *testing.T) {
		_, body := send("GET", "/api/session")
		data, _ := body["data"].(map[string]interface{})
		if data["phase"] != "justAuthenticated" {
			t.Errorf("Expected justAuthenticated, got %v", data["phase"])
		}

		env.Scheduler.Advance(time.Second)

		_, body = send("GET", "/api/session")
		data, _ = body["data"].(map[string]interface{})
		if data["phase"] != "idle" {
			t.Errorf("Expected idle after the login window, got %v", data["phase"])
		}
	})

	t.Run("Logout Discards Dashboards", func(t *testing.T) {
		rr, _ := send("GET", "/api/dashboard")
		if rr.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rr.Code)
		}
		if env.Store.Len() != 1 {
			t.Fatalf("Expected the bundle to be persisted, store has %d", env.Store.Len())
		}

		rr, body := send("POST", "/api/session/logout")
		if rr.Code != http.StatusAccepted {
			t.Fatalf("Expected 202, got %d", rr.Code)
		}
		if body["phase"] != "endingSession" {
			t.Errorf("Expected endingSession, got %v", body["phase"])
		}
		if env.Store.Len() != 1 {
			t.Errorf("Dashboards must survive until the logout effect completes")
		}

		env.Scheduler.Advance(time.Second)

		if env.Store.Len() != 0 {
			t.Errorf("Expected the persisted bundle to be discarded, store has %d", env.Store.Len())
		}
		key := dashboard.SlotKey{UserID: "student-003", Role: shared.RoleStudent}
		if _, found, _ := env.Store.Load(context.Background(), key); found {
			t.Error("Expected no bundle for the logged out user")
		}
	})
}

func TestGateway_RejectedTokenResetsLoginEffect(t *testing.T) {
	env := setupGatewayTestEnv(t)

	expired, err := env.Verifier.Sign(session.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "faculty-002",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
		Role: "teacher",
	})
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}

	getSession := func(token string) (*httptest.ResponseRecorder, map[string]interface{}) {
		req, _ := http.NewRequest("GET", "/api/session", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		env.Router.ServeHTTP(rr, req)

		var body map[string]interface{}
		json.Unmarshal(rr.Body.Bytes(), &body)
		data, _ := body["data"].(map[string]interface{})
		return rr, data
	}

	rr, _ := getSession(expired)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 for an expired token, got %d", rr.Code)
	}

	_, data := getSession(env.Token(t, "faculty-002", "teacher"))
	if data["phase"] != "justAuthenticated" {
		t.Fatalf("Expected justAuthenticated, got %v", data["phase"])
	}
	env.Scheduler.Advance(time.Second)

	if rr, _ := getSession(expired); rr.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 for an expired token, got %d", rr.Code)
	}

	_, data = getSession(env.Token(t, "faculty-002", "teacher"))
	if data["phase"] != "justAuthenticated" {
		t.Errorf("Expected the login effect to replay after a rejected token, got %v", data["phase"])
	}
}
