package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/clickgate-io/clickgate/config"
	"github.com/clickgate-io/clickgate/pkg/ratelimiter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLimiter struct {
	allowed    bool
	retryAfter time.Duration
	keys       []string
}

func (f *fakeLimiter) Allow(ctx context.Context, key string, quota int, duration time.Duration) (ratelimiter.Result, error) {
	f.keys = append(f.keys, key)
	return ratelimiter.Result{Allowed: f.allowed, RetryAfter: f.retryAfter}, nil
}

func testConfig(upstream string) *config.GatewayConfig {
	cfg := config.New()
	cfg.Gateway.AllowedOrigins = []string{"https://example.com", "https://other.example"}
	cfg.Gateway.IngestURL = upstream
	cfg.Gateway.IngestSecret = "s3cret"
	return &cfg.Gateway
}

func validBody() string {
	return `{
		"button_name": "wa_btn",
		"whatsapp_number": "966501234567",
		"source": "landing",
		"page": "/home",
		"action": "click",
		"client_timestamp": "2024-01-01T00:00:00Z",
		"gtm_unique_event_id": "evt-123"
	}`
}

func TestGatewayOptionsPreflight(t *testing.T) {
	gw := NewGateway(testConfig("http://127.0.0.1:1/ingest"), &fakeLimiter{allowed: true})

	r := httptest.NewRequest("OPTIONS", "/intake", nil)
	r.Header.Set("Origin", "https://example.com")
	w := httptest.NewRecorder()
	gw.Handle(w, r)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	assert.NotEmpty(t, w.Header().Get("Accept-CH"))
	assert.NotEmpty(t, w.Header().Get("Permissions-Policy"))
}

func TestGatewayMethodNotAllowed(t *testing.T) {
	gw := NewGateway(testConfig("http://127.0.0.1:1/ingest"), &fakeLimiter{allowed: true})

	for _, method := range []string{"GET", "PUT", "DELETE", "PATCH"} {
		r := httptest.NewRequest(method, "/intake", nil)
		w := httptest.NewRecorder()
		gw.Handle(w, r)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, method)
	}
}

func TestGatewayOriginFallback(t *testing.T) {
	gw := NewGateway(testConfig("http://127.0.0.1:1/ingest"), &fakeLimiter{allowed: true})

	r := httptest.NewRequest("OPTIONS", "/intake", nil)
	r.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	gw.Handle(w, r)

	assert.Equal(t, "https://example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestGatewayRateLimited(t *testing.T) {
	limiter := &fakeLimiter{allowed: false, retryAfter: time.Minute}
	gw := NewGateway(testConfig("http://127.0.0.1:1/ingest"), limiter)

	r := httptest.NewRequest("POST", "/intake", strings.NewReader(validBody()))
	r.RemoteAddr = "192.0.2.1:4711"
	w := httptest.NewRecorder()
	gw.Handle(w, r)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Rate limit exceeded", body["error"])
	assert.EqualValues(t, 60, body["retry_after"])

	// limiter keyed by remote address
	assert.Equal(t, []string{"192.0.2.1"}, limiter.keys)
}

func TestGatewayInvalidJSON(t *testing.T) {
	gw := NewGateway(testConfig("http://127.0.0.1:1/ingest"), &fakeLimiter{allowed: true})

	for _, body := range []string{"", "{not json"} {
		r := httptest.NewRequest("POST", "/intake", strings.NewReader(body))
		w := httptest.NewRecorder()
		gw.Handle(w, r)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
}

func TestGatewayMissingFields(t *testing.T) {
	gw := NewGateway(testConfig("http://127.0.0.1:1/ingest"), &fakeLimiter{allowed: true})

	r := httptest.NewRequest("POST", "/intake", strings.NewReader(`{"button_name": "wa_btn", "whatsapp_number": ""}`))
	w := httptest.NewRecorder()
	gw.Handle(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Error   string   `json:"error"`
		Details []string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Missing required fields", body.Error)
	assert.ElementsMatch(t, []string{
		"whatsapp_number", "gtm_unique_event_id", "source", "page", "action", "client_timestamp",
	}, body.Details)
}

func TestGatewayForwardAndRelay(t *testing.T) {
	var forwarded map[string]interface{}
	var secret string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secret = r.Header.Get("X-Ingest-Secret")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&forwarded))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success": true, "id": "abc", "timestamp": "2024-01-01T00:00:01Z"}`))
	}))
	defer upstream.Close()

	gw := NewGateway(testConfig(upstream.URL), &fakeLimiter{allowed: true})

	r := httptest.NewRequest("POST", "/intake", strings.NewReader(validBody()))
	r.RemoteAddr = "203.0.113.7:1234"
	r.Header.Set("User-Agent", "Mozilla/5.0")
	r.Header.Set("Origin", "https://example.com")
	w := httptest.NewRecorder()
	gw.Handle(w, r)

	// response relayed verbatim
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"success": true, "id": "abc", "timestamp": "2024-01-01T00:00:01Z"}`, w.Body.String())

	// merged payload carries the original fields plus server_enrichment
	assert.Equal(t, "s3cret", secret)
	assert.Equal(t, "wa_btn", forwarded["button_name"])
	assert.Equal(t, "evt-123", forwarded["gtm_unique_event_id"])
	enrichment, ok := forwarded["server_enrichment"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "203.0.113.7", enrichment["client_ip"])
	assert.Equal(t, "Mozilla/5.0", enrichment["user_agent_raw"])
	assert.NotEmpty(t, enrichment["server_timestamp"])
}

func TestGatewayDuplicateRelayed(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error": "Duplicate event"}`))
	}))
	defer upstream.Close()

	gw := NewGateway(testConfig(upstream.URL), &fakeLimiter{allowed: true})

	r := httptest.NewRequest("POST", "/intake", strings.NewReader(validBody()))
	w := httptest.NewRecorder()
	gw.Handle(w, r)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error": "Duplicate event"}`, w.Body.String())
}

func TestGatewayUpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close() // connection refused

	gw := NewGateway(testConfig(upstream.URL), &fakeLimiter{allowed: true})

	r := httptest.NewRequest("POST", "/intake", strings.NewReader(validBody()))
	w := httptest.NewRecorder()
	gw.Handle(w, r)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Tracking error", body["error"])
	// the transport error is never leaked
	assert.NotContains(t, w.Body.String(), "refused")
}
