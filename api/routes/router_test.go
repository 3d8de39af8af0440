package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/openstudio/register-gateway/api/controllers"
	"github.com/openstudio/register-gateway/internal/register"
	"github.com/openstudio/register-gateway/pkg/config"
)

type stubPricing struct{}

func (stubPricing) SubmitDraft(ctx context.Context, draft *register.Draft, finalize bool) (*register.SubmitOutcome, error) {
	return &register.SubmitOutcome{Status: register.StatusSuccess, Invoice: draft.Clone()}, nil
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func testRouter(t *testing.T, readiness map[string]controllers.Pinger) http.Handler {
	t.Helper()
	cfg := &config.Config{
		App:  config.AppConfig{Env: "dev", Port: "8080"},
		CORS: config.CORSConfig{AllowedOrigins: []string{"*"}},
	}
	store := register.NewMemoryStore(time.Hour)
	registerService, err := register.NewService(store, stubPricing{}, config.RegisterConfig{PayAtDoor: true, CurrencySymbol: "$", ItemSingular: "item", ItemPlural: "items"}, nil, nil)
	if err != nil {
		t.Fatalf("register service: %v", err)
	}
	return NewRouter(cfg, nil, prometheus.NewRegistry(), readiness, registerService, nil, nil)
}

func TestRouterHealthAndMetrics(t *testing.T) {
	router := testRouter(t, map[string]controllers.Pinger{"upstream": stubPinger{}})

	for _, path := range []string{"/health/live", "/health/ready", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestRouterMintsSessionHeader(t *testing.T) {
	router := testRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/register/cart", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Register-Session") == "" {
		t.Fatal("expected session header minted")
	}

	var envelope struct {
		Data register.CartView `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Data.ShowSubmit {
		t.Fatal("expected empty cart")
	}
}

func TestRouterEchoesProvidedSession(t *testing.T) {
	router := testRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/register/cart", nil)
	req.Header.Set("X-Register-Session", "door-2")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Register-Session"); got != "door-2" {
		t.Fatalf("expected session echoed, got %q", got)
	}
}
