package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"shareit/internal/metrics"

	"github.com/rs/zerolog"
)

// Forwarded is the server's reply, relayed to the caller as is.
type Forwarded struct {
	Status int
	Header http.Header
	Body   []byte
}

// ServerClient sends validated requests to the server.
type ServerClient struct {
	base   *url.URL
	http   *http.Client
	retry  RetryPolicy
	sleep  func(ctx context.Context, d time.Duration) error
	logger *zerolog.Logger
}

func NewServerClient(baseURL string, timeout time.Duration, retry RetryPolicy, logger *zerolog.Logger) (*ServerClient, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("server url %q must be absolute", baseURL)
	}
	return &ServerClient{
		base:   base,
		http:   &http.Client{Timeout: timeout},
		retry:  retry,
		sleep:  sleepCtx,
		logger: logger,
	}, nil
}

// Do forwards one request. GETs are retried on transport errors; any HTTP
// response, whatever its status, is final.
func (c *ServerClient) Do(
	ctx context.Context,
	method, path, rawQuery string,
	header http.Header,
	body []byte,
) (*Forwarded, error) {
	target := *c.base
	target.Path = singleJoin(c.base.Path, path)
	target.RawQuery = rawQuery

	attempts := 1
	if method == http.MethodGet {
		attempts = c.retry.attempts()
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			delay := c.retry.NextDelay(attempt - 1)
			c.logger.Warn().Err(lastErr).
				Str("method", method).
				Str("path", path).
				Int("attempt", attempt).
				Dur("delay", delay).
				Msg("Retrying forwarded request")
			metrics.IncForwardRetry()
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		resp, err := c.send(ctx, method, target.String(), header, body)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("forward %s %s: %w", method, path, lastErr)
}

func (c *ServerClient) send(ctx context.Context, method, target string, header http.Header, body []byte) (*Forwarded, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return &Forwarded{Status: resp.StatusCode, Header: resp.Header, Body: raw}, nil
}

func singleJoin(a, b string) string {
	switch {
	case a == "" || a == "/":
		return b
	case a[len(a)-1] == '/' && len(b) > 0 && b[0] == '/':
		return a + b[1:]
	default:
		return a + b
	}
}
