package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyTransport fails the first n round trips, then delegates.
type flakyTransport struct {
	failures int32
	calls    atomic.Int32
	next     http.RoundTripper
}

func (f *flakyTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if f.calls.Add(1) <= f.failures {
		return nil, errors.New("connection reset by peer")
	}
	return f.next.RoundTrip(r)
}

func newTestClient(t *testing.T, baseURL string, transport http.RoundTripper) (*ServerClient, *[]time.Duration) {
	t.Helper()
	logger := zerolog.New(io.Discard)
	c, err := NewServerClient(baseURL, time.Second, RetryPolicy{MaxAttempts: 3, InitialDelay: 10 * time.Millisecond}, &logger)
	require.NoError(t, err)
	c.http.Transport = transport
	var slept []time.Duration
	c.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return c, &slept
}

func TestNewServerClientRejectsRelativeURL(t *testing.T) {
	logger := zerolog.Nop()
	_, err := NewServerClient("localhost:9090", time.Second, RetryPolicy{}, &logger)
	assert.Error(t, err)
}

func TestClientRetriesGetOnTransportError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/items/5", r.URL.Path)
		assert.Equal(t, "from=0", r.URL.RawQuery)
		assert.Equal(t, "7", r.Header.Get("X-Sharer-User-Id"))
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"item 5: not found"}`))
	}))
	defer upstream.Close()

	transport := &flakyTransport{failures: 2, next: http.DefaultTransport}
	c, slept := newTestClient(t, upstream.URL, transport)

	resp, err := c.Do(context.Background(), http.MethodGet, "/items/5", "from=0",
		http.Header{"X-Sharer-User-Id": {"7"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.JSONEq(t, `{"error":"item 5: not found"}`, string(resp.Body))
	assert.Equal(t, int32(3), transport.calls.Load())
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, *slept)
}

func TestClientGivesUpAfterMaxAttempts(t *testing.T) {
	transport := &flakyTransport{failures: 10, next: http.DefaultTransport}
	c, _ := newTestClient(t, "http://server.invalid", transport)

	_, err := c.Do(context.Background(), http.MethodGet, "/users", "", nil, nil)
	assert.Error(t, err)
	assert.Equal(t, int32(3), transport.calls.Load())
}

func TestClientDoesNotRetryWrites(t *testing.T) {
	transport := &flakyTransport{failures: 1, next: http.DefaultTransport}
	c, slept := newTestClient(t, "http://server.invalid", transport)

	_, err := c.Do(context.Background(), http.MethodPost, "/users", "", nil, []byte(`{}`))
	assert.Error(t, err)
	assert.Equal(t, int32(1), transport.calls.Load())
	assert.Empty(t, *slept)
}

func TestSingleJoin(t *testing.T) {
	assert.Equal(t, "/items", singleJoin("", "/items"))
	assert.Equal(t, "/items", singleJoin("/", "/items"))
	assert.Equal(t, "/api/items", singleJoin("/api/", "/items"))
	assert.Equal(t, "/api/items", singleJoin("/api", "/items"))
}
