package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"plant_monitor/internal/service"
	"plant_monitor/internal/telemetry"
)

func TestAuthHandlers_Login(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		loginErr error
		wantCode int
		wantBody string
	}{
		{"success", `{"email":"ana@example.com","password":"password123"}`, nil, http.StatusOK, "tok123"},
		{"bad body", `{"email":1}`, nil, http.StatusBadRequest, ""},
		{"missing password", `{"email":"ana@example.com"}`, nil, http.StatusBadRequest, ""},
		{"invalid email", `{"email":"ana","password":"password123"}`, service.ErrInvalidEmail, http.StatusBadRequest, service.ErrInvalidEmail.Error()},
		{"short password", `{"email":"ana@example.com","password":"x"}`, service.ErrInvalidPassword, http.StatusBadRequest, service.ErrInvalidPassword.Error()},
		{"rejected", `{"email":"ana@example.com","password":"password123"}`, service.ErrBadCredentials, http.StatusUnauthorized, "invalid credentials"},
		{"backend down", `{"email":"ana@example.com","password":"password123"}`,
			&telemetry.FetchError{Kind: telemetry.KindNetworkOrServer, Op: "POST /api/login"}, http.StatusBadGateway, errBackendUnavailable},
		{"unexpected", `{"email":"ana@example.com","password":"password123"}`, errors.New("disk full"), http.StatusInternalServerError, "failed to log in"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			auth := &mockAuth{loginToken: "tok123", loginErr: tc.loginErr}
			r := newTestRouter(&service.Service{Authorization: auth})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(tc.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			if w.Code != tc.wantCode {
				t.Fatalf("status=%d, want %d, body=%s", w.Code, tc.wantCode, w.Body.String())
			}
			var m map[string]any
			_ = json.Unmarshal(w.Body.Bytes(), &m)
			if tc.wantCode == http.StatusOK {
				if m["token"] != tc.wantBody {
					t.Fatalf("expected token %q, got %v", tc.wantBody, m["token"])
				}
				if auth.lastLoginEmail != "ana@example.com" || auth.lastLoginPassword != "password123" {
					t.Fatalf("credentials not forwarded: %q %q", auth.lastLoginEmail, auth.lastLoginPassword)
				}
				return
			}
			if tc.wantBody != "" && m["error"] != tc.wantBody {
				t.Fatalf("error=%v, want %q", m["error"], tc.wantBody)
			}
		})
	}
}

func TestAuthHandlers_Logout(t *testing.T) {
	auth := &mockAuth{}
	r := newTestRouter(&service.Service{Authorization: auth})

	// unauthenticated
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, withAuth(httptest.NewRequest(http.MethodPost, "/auth/logout", nil)))
	if w.Code != http.StatusOK {
		t.Fatalf("logout status=%d, body=%s", w.Code, w.Body.String())
	}
	if auth.loggedOut == nil || auth.loggedOut.ID != "s-1" {
		t.Fatalf("session not passed to Logout: %+v", auth.loggedOut)
	}

	auth.logoutErr = errors.New("db locked")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, withAuth(httptest.NewRequest(http.MethodPost, "/auth/logout", nil)))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}
