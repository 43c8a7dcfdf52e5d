package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-kit/helpdesk-service/internal/observability"
)

func TestMetricsEndpointServesCounters(t *testing.T) {
	metrics := observability.NewMetrics()
	metrics.RecordRequest("/tickets/", "GET", 200, 5*time.Millisecond)
	metrics.RecordRequest("/tickets/", "GET", 200, 7*time.Millisecond)
	metrics.RecordError("/tickets/", "POST", "500")

	h := NewHealthHandler("helpdesk", "test", nil, nil, metrics)
	app := fiber.New()
	app.Get("/health/metrics", h.Metrics)

	req := httptest.NewRequest(http.MethodGet, "/health/metrics", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Requests map[string]int64 `json:"requests"`
		Errors   map[string]int64 `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := body.Requests["/tickets/|GET|200"]; got != 2 {
		t.Fatalf("expected 2 recorded requests, got %d", got)
	}
	if got := body.Errors["/tickets/|POST|500"]; got != 1 {
		t.Fatalf("expected 1 recorded error, got %d", got)
	}
}
