package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"

	"github.com/rs/zerolog"
)

// Services bundles the business operations served over HTTP.
type Services struct {
	Users    domain.UserService
	Items    domain.ItemService
	Bookings domain.BookingService
	Requests domain.RequestService
}

// HTTPServer exposes the marketplace as JSON over HTTP.
type HTTPServer struct {
	svc    Services
	health domain.HealthChecker
	now    func() time.Time
	logger *zerolog.Logger
	server *http.Server
}

func NewHTTPServer(cfg config.ServerConfig, svc Services, health domain.HealthChecker, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{svc: svc, health: health, now: time.Now, logger: logger}

	mux := http.NewServeMux()
	srv.routes(mux)

	handler := Chain(mux,
		Recover(logger),
		RequestID(),
		Logging(logger),
	)

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}
	return srv
}

func (s *HTTPServer) routes(mux *http.ServeMux) {
	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, Instrument("server", pattern, h))
	}

	handle("GET /healthz", s.handleHealth)
	handle("GET /readyz", s.handleReady)

	handle("POST /users", s.createUser)
	handle("GET /users", s.listUsers)
	handle("GET /users/{userId}", s.getUser)
	handle("PATCH /users/{userId}", s.updateUser)
	handle("DELETE /users/{userId}", s.deleteUser)

	handle("POST /items", s.createItem)
	handle("GET /items", s.getOwnerItems)
	handle("GET /items/search", s.searchItems)
	handle("GET /items/{itemId}", s.getItem)
	handle("PATCH /items/{itemId}", s.updateItem)
	handle("POST /items/{itemId}/comment", s.createComment)

	handle("POST /bookings", s.createBooking)
	handle("GET /bookings", s.getBookingsForUser)
	handle("GET /bookings/owner", s.getBookingsForOwner)
	handle("GET /bookings/owner/export", s.exportOwnerBookings)
	handle("GET /bookings/{bookingId}", s.getBooking)
	handle("PATCH /bookings/{bookingId}", s.updateBookingStatus)

	handle("POST /requests", s.createRequest)
	handle("GET /requests", s.getOwnRequests)
	handle("GET /requests/all", s.getOtherRequests)
	handle("GET /requests/{requestId}", s.getRequest)
}

// Handler returns the fully wrapped handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.health.Ping(ctx); err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("Readiness check failed")
			WriteError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func WriteJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, map[string]string{"error": message})
}

// decodeJSON reads a single JSON document from the body.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
