package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/export"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

const actorHeaderDefault = "X-Sharer-User-Id"

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// degradedReporter is implemented by limiters that can fall back to a weaker backend.
type degradedReporter interface {
	Degraded() bool
}

type Deps struct {
	Users    domain.UserService
	Items    domain.ItemService
	Bookings domain.BookingService
	Requests domain.RequestService
	Exporter *export.BookingExporter
	// Limiter is optional; nil disables the per-actor limit.
	Limiter domain.RateLimiter
	Store   Pinger
}

// Server exposes the rental HTTP API.
type Server struct {
	cfg         *config.Config
	deps        Deps
	limiter     domain.RateLimiter
	actorHeader string
	logger      *zerolog.Logger
	now         func() time.Time
	router      *mux.Router
	server      *http.Server
}

func NewServer(cfg *config.Config, deps Deps, logger *zerolog.Logger) *Server {
	s := &Server{
		cfg:         cfg,
		deps:        deps,
		limiter:     deps.Limiter,
		actorHeader: strings.TrimSpace(cfg.API.ActorHeader),
		logger:      logger,
		now:         time.Now,
		router:      mux.NewRouter(),
	}
	if s.actorHeader == "" {
		s.actorHeader = actorHeaderDefault
	}

	s.routes()

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.API.HTTP.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Duration(cfg.API.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.API.HTTP.WriteTimeoutSec) * time.Second,
	}
	return s
}

// WithClock replaces the time source used by request validation.
func (s *Server) WithClock(now func() time.Time) *Server {
	s.now = now
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router
	auth := NewHTTPAuth(s.cfg.API)

	r.Use(requestIDMiddleware, loggingMiddleware(s.logger), auth.Middleware, s.actorRateLimitMiddleware)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReadyz).Methods(http.MethodGet)

	r.HandleFunc("/users", s.handleCreateUser).Methods(http.MethodPost)
	r.HandleFunc("/users", s.handleListUsers).Methods(http.MethodGet)
	r.HandleFunc("/users/{id:[0-9]+}", s.handleGetUser).Methods(http.MethodGet)
	r.HandleFunc("/users/{id:[0-9]+}", s.handleUpdateUser).Methods(http.MethodPatch)
	r.HandleFunc("/users/{id:[0-9]+}", s.handleDeleteUser).Methods(http.MethodDelete)

	r.HandleFunc("/items", s.handleCreateItem).Methods(http.MethodPost)
	r.HandleFunc("/items", s.handleListOwnedItems).Methods(http.MethodGet)
	r.HandleFunc("/items/search", s.handleSearchItems).Methods(http.MethodGet)
	r.HandleFunc("/items/{id:[0-9]+}", s.handleGetItem).Methods(http.MethodGet)
	r.HandleFunc("/items/{id:[0-9]+}", s.handleUpdateItem).Methods(http.MethodPatch)
	r.HandleFunc("/items/{id:[0-9]+}/comment", s.handleAddComment).Methods(http.MethodPost)

	r.HandleFunc("/bookings", s.handleCreateBooking).Methods(http.MethodPost)
	r.HandleFunc("/bookings", s.handleListBookerBookings).Methods(http.MethodGet)
	r.HandleFunc("/bookings/owner", s.handleListOwnerBookings).Methods(http.MethodGet)
	r.HandleFunc("/bookings/export", s.handleExportBookings).Methods(http.MethodGet)
	r.HandleFunc("/bookings/{id:[0-9]+}", s.handleGetBooking).Methods(http.MethodGet)
	r.HandleFunc("/bookings/{id:[0-9]+}", s.handleApproveBooking).Methods(http.MethodPatch)

	r.HandleFunc("/requests", s.handleCreateRequest).Methods(http.MethodPost)
	r.HandleFunc("/requests", s.handleListOwnRequests).Methods(http.MethodGet)
	r.HandleFunc("/requests/all", s.handleListOtherRequests).Methods(http.MethodGet)
	r.HandleFunc("/requests/{id:[0-9]+}", s.handleGetRequest).Methods(http.MethodGet)
}

func (s *Server) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// actor extracts the acting user id; on failure the response is already written.
func (s *Server) actor(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.Header.Get(s.actorHeader)
	if strings.TrimSpace(raw) == "" {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("missing %s header", s.actorHeader))
		return 0, false
	}
	id, ok := parseActor(raw)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s header", s.actorHeader))
		return 0, false
	}
	return id, true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := parseID(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return 0, false
	}
	return id, true
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.deps.Store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.Store.PingContext(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("readiness check failed")
			writeError(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
	}

	resp := map[string]string{"status": "ready"}
	if reporter, ok := s.limiter.(degradedReporter); ok {
		resp["rate_limiter"] = "ok"
		if reporter.Degraded() {
			resp["rate_limiter"] = "degraded"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
