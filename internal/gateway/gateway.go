// Package gateway is the public entry point: it checks the caller contract and
// forwards valid requests to the server.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shareit/internal/api"
	"shareit/internal/config"
	"shareit/internal/models"
	"shareit/internal/ratelimit"

	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// relayedHeaders are copied from the server reply.
var relayedHeaders = []string{"Content-Type", "Content-Disposition"}

// rule describes what a route must satisfy before it is forwarded.
type rule struct {
	actor    bool
	ids      []string
	page     bool
	state    bool
	approved bool
	search   bool
	body     func() any
}

type Gateway struct {
	client    *ServerClient
	validator *Validator
	limiter   ratelimit.Limiter
	logger    *zerolog.Logger
	server    *http.Server
}

func New(
	cfg config.GatewayConfig,
	client *ServerClient,
	validator *Validator,
	limiter ratelimit.Limiter,
	logger *zerolog.Logger,
) *Gateway {
	if limiter == nil {
		limiter = ratelimit.Noop{}
	}
	g := &Gateway{client: client, validator: validator, limiter: limiter, logger: logger}

	mux := http.NewServeMux()
	g.routes(mux)

	handler := api.Chain(mux,
		api.Recover(logger),
		api.RequestID(),
		api.Logging(logger),
		g.rateLimit,
	)

	g.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return g
}

func (g *Gateway) routes(mux *http.ServeMux) {
	handle := func(pattern string, rl rule) {
		mux.Handle(pattern, api.Instrument("gateway", pattern, g.endpoint(rl)))
	}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	handle("GET /readyz", rule{})

	handle("POST /users", rule{body: func() any { return &UserCreate{} }})
	handle("GET /users", rule{})
	handle("GET /users/{userId}", rule{ids: []string{"userId"}})
	handle("PATCH /users/{userId}", rule{ids: []string{"userId"}, body: func() any { return &UserUpdate{} }})
	handle("DELETE /users/{userId}", rule{ids: []string{"userId"}})

	handle("POST /items", rule{actor: true, body: func() any { return &ItemCreate{} }})
	handle("GET /items", rule{actor: true, page: true})
	handle("GET /items/search", rule{actor: true, page: true, search: true})
	handle("GET /items/{itemId}", rule{actor: true, ids: []string{"itemId"}})
	handle("PATCH /items/{itemId}", rule{actor: true, ids: []string{"itemId"}, body: func() any { return &ItemUpdate{} }})
	handle("POST /items/{itemId}/comment", rule{actor: true, ids: []string{"itemId"}, body: func() any { return &CommentCreate{} }})

	handle("POST /bookings", rule{actor: true, body: func() any { return &BookingCreate{} }})
	handle("GET /bookings", rule{actor: true, page: true, state: true})
	handle("GET /bookings/owner", rule{actor: true, page: true, state: true})
	handle("GET /bookings/owner/export", rule{actor: true, state: true})
	handle("GET /bookings/{bookingId}", rule{actor: true, ids: []string{"bookingId"}})
	handle("PATCH /bookings/{bookingId}", rule{actor: true, ids: []string{"bookingId"}, approved: true})

	handle("POST /requests", rule{actor: true, body: func() any { return &RequestCreate{} }})
	handle("GET /requests", rule{actor: true, page: true})
	handle("GET /requests/all", rule{actor: true, page: true})
	handle("GET /requests/{requestId}", rule{actor: true, ids: []string{"requestId"}})
}

func (g *Gateway) Handler() http.Handler {
	return g.server.Handler
}

func (g *Gateway) Start() error {
	g.logger.Info().Str("addr", g.server.Addr).Msg("Gateway listening")
	if err := g.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (g *Gateway) Shutdown(ctx context.Context) error {
	return g.server.Shutdown(ctx)
}

// check validates r against rl and returns the body to forward.
func (g *Gateway) check(w http.ResponseWriter, r *http.Request, rl rule) ([]byte, error) {
	if rl.actor {
		if _, err := api.ActorID(r); err != nil {
			return nil, err
		}
	}
	for _, name := range rl.ids {
		if _, err := api.PathID(r, name); err != nil {
			return nil, err
		}
	}

	q := r.URL.Query()
	if rl.page {
		if _, err := api.ParsePage(q); err != nil {
			return nil, err
		}
	}
	if rl.state {
		if _, err := models.ParseState(q.Get("state")); err != nil {
			return nil, err
		}
	}
	if rl.approved {
		if _, err := strconv.ParseBool(q.Get("approved")); err != nil {
			return nil, errors.New("approved must be true or false")
		}
	}

	if rl.body == nil {
		return nil, nil
	}
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, errors.New("request body is required")
	}
	dto := rl.body()
	if err := json.Unmarshal(raw, dto); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := g.validator.Validate(dto); err != nil {
		return nil, err
	}
	return raw, nil
}

func (g *Gateway) endpoint(rl rule) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := g.check(w, r, rl)
		if err != nil {
			zerolog.Ctx(r.Context()).Debug().Err(err).Str("path", r.URL.Path).Msg("Request rejected by gateway")
			api.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		if rl.search && strings.TrimSpace(r.URL.Query().Get("text")) == "" {
			api.WriteJSON(w, http.StatusOK, []any{})
			return
		}
		g.forward(w, r, body)
	}
}

func (g *Gateway) forward(w http.ResponseWriter, r *http.Request, body []byte) {
	header := http.Header{}
	if body != nil {
		header.Set("Content-Type", "application/json")
	}
	if actor := r.Header.Get(models.HeaderUserID); actor != "" {
		header.Set(models.HeaderUserID, strings.TrimSpace(actor))
	}
	if id := api.RequestIDFrom(r.Context()); id != "" {
		header.Set(models.HeaderRequestID, id)
	}

	resp, err := g.client.Do(r.Context(), r.Method, r.URL.Path, r.URL.RawQuery, header, body)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to reach server")
		api.WriteError(w, http.StatusBadGateway, "server unavailable")
		return
	}

	for _, h := range relayedHeaders {
		if v := resp.Header.Get(h); v != "" {
			w.Header().Set(h, v)
		}
	}
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
}

// rateLimit throttles per actor, or per client address when the header is absent.
func (g *Gateway) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, err := g.limiter.Allow(r.Context(), clientKey(r))
		if err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Rate limiter failed, letting request through")
			allowed = true
		}
		if !allowed {
			api.WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	if actor := strings.TrimSpace(r.Header.Get(models.HeaderUserID)); actor != "" {
		return "user:" + actor
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return "ip:" + host
	}
	return "unknown"
}
