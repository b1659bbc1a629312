// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "github.com/NVIDIA/lxd-inventory/pkg/errors"
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestNew(t *testing.T) {
	s := New(WithHandler(map[string]http.HandlerFunc{"GET /test": okHandler}))

	if s.config == nil {
		t.Fatal("expected config to be initialized")
	}
	if s.httpServer == nil {
		t.Error("expected httpServer to be initialized")
	}
	if s.rateLimiter == nil {
		t.Error("expected rateLimiter to be initialized")
	}
	if _, ok := s.config.Handlers["GET /test"]; !ok {
		t.Error("expected handler to be registered")
	}
}

func TestOptions(t *testing.T) {
	s := New(
		WithName("inv"),
		WithVersion("v1.2.3"),
		WithAddress("127.0.0.1", 9999),
		WithRateLimit(3, 4),
	)

	if s.config.Name != "inv" || s.config.Version != "v1.2.3" {
		t.Errorf("unexpected identity %q %q", s.config.Name, s.config.Version)
	}
	if s.httpServer.Addr != "127.0.0.1:9999" {
		t.Errorf("expected address 127.0.0.1:9999, got %s", s.httpServer.Addr)
	}
	if s.rateLimiter.Burst() != 4 {
		t.Errorf("expected burst 4, got %d", s.rateLimiter.Burst())
	}

	s = New(WithWriteTimeout(3 * time.Minute))
	if s.httpServer.WriteTimeout != 3*time.Minute {
		t.Errorf("expected write timeout 3m, got %v", s.httpServer.WriteTimeout)
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := New()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", w.Header().Get("Content-Type"))
	}
}

func TestReadyEndpoint(t *testing.T) {
	s := New()

	tests := []struct {
		name           string
		ready          bool
		expectedStatus int
	}{
		{name: "ready state", ready: true, expectedStatus: http.StatusOK},
		{name: "not ready state", ready: false, expectedStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.setReady(tt.ready)

			req := httptest.NewRequest(http.MethodGet, "/ready", nil)
			w := httptest.NewRecorder()
			s.handleReady(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := New()

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	w := httptest.NewRecorder()
	s.handleHealth(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, w.Code)
	}
}

func TestIndexAndUnknownRoute(t *testing.T) {
	s := New(WithName("inv"), WithHandler(map[string]http.HandlerFunc{"GET /v1/test": okHandler}))

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	var idx IndexResponse
	if err := json.Unmarshal(w.Body.Bytes(), &idx); err != nil {
		t.Fatalf("failed to decode index: %v", err)
	}
	if idx.Name != "inv" {
		t.Errorf("expected name inv, got %s", idx.Name)
	}
	found := false
	for _, r := range idx.Routes {
		if r == "GET /v1/test" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected GET /v1/test in routes %v", idx.Routes)
	}

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := New(WithHandler(map[string]http.HandlerFunc{
		"GET /v1/test":         okHandler,
		"GET /v1/hosts/{name}": okHandler,
	}))

	for _, path := range []string{"/v1/test", "/v1/hosts/web1", "/v1/hosts/db1"} {
		s.Handler().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `lxd_inventory_http_requests_total{method="GET",route="GET /v1/test",status="200"}`) {
		t.Error("expected request counter labeled by route pattern")
	}
	if !strings.Contains(body, `route="GET /v1/hosts/{name}"`) {
		t.Error("expected host lookups under one route series")
	}
	if strings.Contains(body, "web1") || strings.Contains(body, "db1") {
		t.Error("host names must not appear in metric labels")
	}
}

func TestRouteLabel(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/anything/else", nil)
	if got := routeLabel(r); got != unmatchedRoute {
		t.Errorf("expected %q for an unrouted request, got %q", unmatchedRoute, got)
	}
	r.Pattern = "GET /v1/inventory"
	if got := routeLabel(r); got != "GET /v1/inventory" {
		t.Errorf("expected the pattern, got %q", got)
	}
}

func TestRateLimiting(t *testing.T) {
	cfg := NewConfig()
	cfg.RateLimit = 1
	cfg.RateLimitBurst = 1

	s := New(WithConfig(cfg), WithHandler(map[string]http.HandlerFunc{"GET /test": okHandler}))
	handler := s.Handler()

	w1 := httptest.NewRecorder()
	handler.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/test", nil))
	if w1.Code != http.StatusOK {
		t.Errorf("expected first request to succeed with status 200, got %d", w1.Code)
	}

	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/test", nil))
	if w2.Code != http.StatusTooManyRequests {
		t.Errorf("expected rate limit error with status 429, got %d", w2.Code)
	}
	if w2.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header to be set")
	}

	var resp ErrorResponse
	if err := json.Unmarshal(w2.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error: %v", err)
	}
	if resp.Code != ErrCodeRateLimitExceeded || !resp.Retryable {
		t.Errorf("unexpected error response %+v", resp)
	}
}

func TestWriteAppError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"timeout", apperrors.New(apperrors.ErrCodeTimeout, "slow"), http.StatusGatewayTimeout, "TIMEOUT"},
		{"config", apperrors.New(apperrors.ErrCodeConfig, "bad"), http.StatusInternalServerError, "CONFIG_ERROR"},
		{"not found", apperrors.New(apperrors.ErrCodeNotFound, "gone"), http.StatusNotFound, "NOT_FOUND"},
		{"plain", errors.New("boom"), http.StatusInternalServerError, ErrCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteAppError(w, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			if w.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, w.Code)
			}
			var resp ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode error: %v", err)
			}
			if resp.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, resp.Code)
			}
			if resp.RequestID == "" {
				t.Error("expected a request ID")
			}
		})
	}
}

func TestServe_GracefulShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/ready"
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				break
			}
		}
		if time.Now().After(deadline) {
			t.Fatal("server did not become ready")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	if s.isReady() {
		t.Error("expected server to be not ready after shutdown")
	}
}

func TestNewConfig_Environment(t *testing.T) {
	t.Setenv("PORT", "9191")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "7")

	cfg := NewConfig()
	if cfg.Port != 9191 {
		t.Errorf("expected port 9191, got %d", cfg.Port)
	}
	if cfg.ShutdownTimeout != 7*time.Second {
		t.Errorf("expected shutdown timeout 7s, got %v", cfg.ShutdownTimeout)
	}

	t.Setenv("PORT", "not-a-port")
	if NewConfig().Port == 0 {
		t.Error("expected invalid PORT to keep the default")
	}
}
