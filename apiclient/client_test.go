// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"github.com/danielhkuo/kicker/middleware"
	"github.com/danielhkuo/kicker/models"
	"github.com/danielhkuo/kicker/router"
	"github.com/danielhkuo/kicker/testutil"
)

func TestRequestSendsTokenAndBody(t *testing.T) {
	var gotToken, gotMethod, gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get(TokenHeader)
		gotMethod, gotPath = r.Method, r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		middleware.JSONResponse(w, http.StatusOK, map[string]any{"name": "alice"})
	}))
	defer srv.Close()

	c := New(srv.URL+"/", WithToken("secret-token"))
	raw, err := c.Request(context.Background(), "/app/json/rankings", map[string]any{"period": "week"})
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}

	if gotMethod != http.MethodPost || gotPath != "/app/json/rankings" {
		t.Errorf("Unexpected request %s %s", gotMethod, gotPath)
	}
	if gotToken != "secret-token" {
		t.Errorf("Expected token header, got %q", gotToken)
	}
	if gotBody["period"] != "week" {
		t.Errorf("Expected period in body, got %v", gotBody)
	}
	if name := gjson.GetBytes(raw, "name").String(); name != "alice" {
		t.Errorf("Expected name alice, got %q", name)
	}
}

func TestRequestNilParamsSendsEmptyObject(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 16)
		n, _ := r.Body.Read(buf)
		body = string(buf[:n])
		middleware.JSONResponse(w, http.StatusOK, map[string]any{})
	}))
	defer srv.Close()

	if _, err := New(srv.URL).Request(context.Background(), "/app/json/dashboard", nil); err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	if body != "{}" {
		t.Errorf("Expected {} body, got %q", body)
	}
}

func TestRequestErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "error response",
			status:      http.StatusForbidden,
			body:        `{"error":"Forbidden","message":"Not a kicker player"}`,
			wantStatus:  http.StatusForbidden,
			wantMessage: "Not a kicker player",
		},
		{
			name:        "error without message",
			status:      http.StatusNotFound,
			body:        `{"error":"Not Found"}`,
			wantStatus:  http.StatusNotFound,
			wantMessage: "Not Found",
		},
		{
			name:        "plain text",
			status:      http.StatusBadGateway,
			body:        "upstream down\n",
			wantStatus:  http.StatusBadGateway,
			wantMessage: "upstream down",
		},
		{
			name:        "errors payload on success",
			status:      http.StatusOK,
			body:        `{"errors":"score missing"}`,
			wantStatus:  http.StatusOK,
			wantMessage: "score missing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL).Request(context.Background(), "/app/json/player", nil)

			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("Expected *Error, got %v", err)
			}
			if apiErr.Status != tt.wantStatus || apiErr.Message != tt.wantMessage {
				t.Errorf("Got %+v, want status %d message %q", apiErr, tt.wantStatus, tt.wantMessage)
			}
		})
	}
}

func TestRequestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	own := &http.Client{}
	tests := []struct {
		name string
		opts []Option
	}{
		{"default client", []Option{WithTimeout(20 * time.Millisecond)}},
		{"timeout before client", []Option{WithTimeout(20 * time.Millisecond), WithHTTPClient(own)}},
		{"timeout after client", []Option{WithHTTPClient(own), WithTimeout(20 * time.Millisecond)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(srv.URL, tt.opts...)
			done := make(chan error, 1)
			go func() {
				_, err := c.Request(context.Background(), "/app/json/dashboard", nil)
				done <- err
			}()
			select {
			case err := <-done:
				if err == nil {
					t.Error("Expected timeout error")
				}
			case <-time.After(2 * time.Second):
				t.Fatal("Timeout was not applied")
			}
		})
	}
	if own.Timeout != 0 {
		t.Errorf("Caller's client was modified: timeout %v", own.Timeout)
	}
}

func TestHealth(t *testing.T) {
	up := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !up {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("OK"))
	}))
	defer srv.Close()

	c := New(srv.URL)
	if err := c.Health(context.Background()); err != nil {
		t.Errorf("Health() error = %v", err)
	}
	up = false
	if err := c.Health(context.Background()); err == nil {
		t.Error("Expected Health() error when the server answers 503")
	}
}

func TestAvatarURL(t *testing.T) {
	c := New("http://localhost:3318/")

	tests := []struct {
		playerID string
		bust     int64
		want     string
	}{
		{"", 0, "http://localhost:3318/app/avatar"},
		{"p1", 0, "http://localhost:3318/app/avatar/p1"},
		{"", 1700000000, "http://localhost:3318/app/avatar?unique=1700000000"},
	}
	for _, tt := range tests {
		if got := c.AvatarURL(tt.playerID, tt.bust); got != tt.want {
			t.Errorf("AvatarURL(%q, %d) = %q, want %q", tt.playerID, tt.bust, got, tt.want)
		}
	}
}

func TestAgainstServer(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	cfg := testutil.GetTestConfig()
	srv := httptest.NewServer(router.NewRouter(conn, cfg, nil))
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()

	if err := c.Health(ctx); err != nil {
		t.Fatalf("Health() error = %v", err)
	}

	if _, err := c.Request(ctx, "/app/json/dashboard", nil); err == nil {
		t.Fatal("Expected an error without a token")
	}

	resp, err := c.Signup(ctx, models.SignupRequest{Login: "alice", Password: "foosball"})
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	if c.Token() != resp.PlayerToken || resp.PlayerToken == "" {
		t.Fatalf("Expected the signup token to be stored")
	}

	raw, err := c.Request(ctx, "/app/json/dashboard", nil)
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	if name := gjson.GetBytes(raw, "name").String(); name != "alice" {
		t.Errorf("Expected dashboard for alice, got %q", name)
	}

	first := c.Token()
	if _, err := c.Login(ctx, models.LoginRequest{Login: "alice", Password: "foosball"}); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if c.Token() == first {
		t.Error("Expected login to rotate the token")
	}

	_, err = c.Login(ctx, models.LoginRequest{Login: "alice", Password: "wrong-password"})
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Errorf("Login() with a bad password = %v, want 401", err)
	}
}
