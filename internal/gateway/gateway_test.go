package gateway

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"shareit/internal/config"
	"shareit/internal/models"
	"shareit/internal/ratelimit"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var gatewayNow = time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)

type recorded struct {
	Method    string
	Path      string
	Query     string
	Actor     string
	RequestID string
	Body      string
}

// upstream is a fake server that records what the gateway forwards.
type upstream struct {
	mu       sync.Mutex
	requests []recorded
	status   int
	body     string
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	u.mu.Lock()
	u.requests = append(u.requests, recorded{
		Method:    r.Method,
		Path:      r.URL.Path,
		Query:     r.URL.RawQuery,
		Actor:     r.Header.Get(models.HeaderUserID),
		RequestID: r.Header.Get(models.HeaderRequestID),
		Body:      string(raw),
	})
	status, body := u.status, u.body
	u.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (u *upstream) calls() []recorded {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]recorded(nil), u.requests...)
}

func newTestGateway(t *testing.T, limiter ratelimit.Limiter) (*httptest.Server, *upstream) {
	t.Helper()
	up := &upstream{status: http.StatusOK, body: `{"id":1}`}
	server := httptest.NewServer(up)
	t.Cleanup(server.Close)

	logger := zerolog.New(io.Discard)
	client, err := NewServerClient(server.URL, time.Second, RetryPolicy{MaxAttempts: 1}, &logger)
	require.NoError(t, err)

	g := New(config.GatewayConfig{}, client, NewValidator(func() time.Time { return gatewayNow }), limiter, &logger)
	ts := httptest.NewServer(g.Handler())
	t.Cleanup(ts.Close)
	return ts, up
}

func send(t *testing.T, method, url, actor string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if actor != "" {
		req.Header.Set(models.HeaderUserID, actor)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	_ = json.Unmarshal(raw, &decoded)
	return resp, decoded
}

func TestGatewayRejectsBadCallerContract(t *testing.T) {
	ts, up := newTestGateway(t, nil)

	tests := []struct {
		name    string
		method  string
		path    string
		actor   string
		body    any
		wantMsg string
	}{
		{"MissingActor", http.MethodGet, "/items", "", nil, models.HeaderUserID},
		{"NonNumericActor", http.MethodGet, "/items", "abc", nil, "positive integer"},
		{"ZeroActor", http.MethodGet, "/bookings", "0", nil, "positive integer"},
		{"NegativeFrom", http.MethodGet, "/items?from=-1", "1", nil, "from"},
		{"ZeroSize", http.MethodGet, "/requests/all?size=0", "1", nil, "size"},
		{"UnknownState", http.MethodGet, "/bookings?state=sometime", "1", nil, "Unknown state: sometime"},
		{"LowercaseState", http.MethodGet, "/bookings/owner?state=all", "1", nil, "Unknown state: all"},
		{"BadPathID", http.MethodGet, "/items/abc", "1", nil, "itemId"},
		{"MissingApproved", http.MethodPatch, "/bookings/3", "1", nil, "approved"},
		{"BadUser", http.MethodPost, "/users", "", map[string]string{"name": "A", "email": "a@example.com"}, "name"},
		{"PastBooking", http.MethodPost, "/bookings", "2", map[string]any{
			"itemId": 1, "start": gatewayNow.Add(-time.Hour), "end": gatewayNow.Add(time.Hour),
		}, "future"},
		{"EmptyBody", http.MethodPost, "/requests", "2", nil, "body is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := send(t, tt.method, ts.URL+tt.path, tt.actor, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, body["error"], tt.wantMsg)
		})
	}
	assert.Empty(t, up.calls(), "invalid requests must not be forwarded")
}

func TestGatewayForwardsValidRequests(t *testing.T) {
	ts, up := newTestGateway(t, nil)

	payload := map[string]any{"name": "Drill", "description": "Cordless", "available": true}
	resp, body := send(t, http.MethodPost, ts.URL+"/items", "7", payload)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["id"])
	requestID := resp.Header.Get(models.HeaderRequestID)
	assert.NotEmpty(t, requestID)

	resp, _ = send(t, http.MethodGet, ts.URL+"/bookings/owner?state=CURRENT&from=0&size=5", "7", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = send(t, http.MethodPatch, ts.URL+"/bookings/3?approved=true", "7", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	calls := up.calls()
	require.Len(t, calls, 3)

	assert.Equal(t, http.MethodPost, calls[0].Method)
	assert.Equal(t, "/items", calls[0].Path)
	assert.Equal(t, "7", calls[0].Actor)
	assert.Equal(t, requestID, calls[0].RequestID)
	assert.JSONEq(t, `{"name":"Drill","description":"Cordless","available":true}`, calls[0].Body)

	assert.Equal(t, "/bookings/owner", calls[1].Path)
	assert.Equal(t, "state=CURRENT&from=0&size=5", calls[1].Query)

	assert.Equal(t, http.MethodPatch, calls[2].Method)
	assert.Equal(t, "approved=true", calls[2].Query)
}

func TestGatewayRelaysServerStatus(t *testing.T) {
	ts, up := newTestGateway(t, nil)
	up.status = http.StatusConflict
	up.body = `{"error":"create user \"a@example.com\": email already in use"}`

	resp, body := send(t, http.MethodPost, ts.URL+"/users", "", map[string]string{"name": "Ann", "email": "a@example.com"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body["error"], "email already in use")
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestGatewayBlankSearchShortCircuits(t *testing.T) {
	ts, up := newTestGateway(t, nil)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/items/search?text=%20%20", nil)
	require.NoError(t, err)
	req.Header.Set(models.HeaderUserID, "1")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "[]", strings.TrimSpace(string(raw)))
	assert.Empty(t, up.calls())

	resp2, _ := send(t, http.MethodGet, ts.URL+"/items/search?text=drill", "1", nil)
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
	assert.Len(t, up.calls(), 1)
}

func TestGatewayRateLimit(t *testing.T) {
	ts, up := newTestGateway(t, ratelimit.NewMemoryLimiter(0.001, 2))

	for i := 0; i < 2; i++ {
		resp, _ := send(t, http.MethodGet, ts.URL+"/users", "5", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp, body := send(t, http.MethodGet, ts.URL+"/users", "5", nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "rate limit exceeded", body["error"])

	resp, _ = send(t, http.MethodGet, ts.URL+"/users", "6", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "other actors keep their own budget")
	assert.Len(t, up.calls(), 3)
}

func TestGatewayServerDown(t *testing.T) {
	logger := zerolog.New(io.Discard)
	down := httptest.NewServer(http.NotFoundHandler())
	url := down.URL
	down.Close()

	client, err := NewServerClient(url, time.Second, RetryPolicy{MaxAttempts: 1}, &logger)
	require.NoError(t, err)
	g := New(config.GatewayConfig{}, client, NewValidator(nil), nil, &logger)

	rec := httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = httptest.NewRecorder()
	g.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClientKey(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "ip:10.0.0.1", clientKey(r))
	r.Header.Set(models.HeaderUserID, " 9 ")
	assert.Equal(t, "user:9", clientKey(r))
}
