// Package api provides HTTP handlers for the Mingalaroo API.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/artpar/mingalaroo/internal/core/auth"
	"github.com/artpar/mingalaroo/internal/core/dashboard"
	"github.com/artpar/mingalaroo/internal/core/guest"
	shelldashboard "github.com/artpar/mingalaroo/internal/shell/dashboard"
	"github.com/artpar/mingalaroo/internal/shell/api/middleware"
	"github.com/artpar/mingalaroo/internal/shell/api/openapi"
	"github.com/artpar/mingalaroo/internal/shell/store"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// =============================================================================
// Handler
// =============================================================================

// Config configures the API handler.
type Config struct {
	Store store.Store
	Links guest.LinkBuilder
	Auth  middleware.AuthConfig

	// RSVPLimit throttles the public RSVP endpoints per client IP.
	RSVPLimit middleware.RateLimitConfig

	// PageSize is the number of guests per dashboard page.
	PageSize int

	// QRSize is the edge length of generated QR codes in pixels.
	QRSize int

	// ServerURL is advertised in the OpenAPI document.
	ServerURL string

	Logger *slog.Logger
	Now    func() time.Time
}

// Handler provides HTTP handlers for the API.
type Handler struct {
	store      store.Store
	dispatcher *shelldashboard.Dispatcher
	links      guest.LinkBuilder
	auth       *middleware.AuthMiddleware
	authMode   auth.Mode
	limiter    *middleware.RateLimiter
	docs       *openapi.Generator
	pageSize   int
	qrSize     int
	logger     *slog.Logger
	now        func() time.Time
}

// NewHandler creates a new API handler.
func NewHandler(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = dashboard.DefaultPageSize
	}
	if cfg.QRSize <= 0 {
		cfg.QRSize = DefaultQRSize
	}
	if cfg.Links.Host == "" {
		cfg.Links = guest.DefaultLinkBuilder()
	}
	if cfg.Auth.Mode == "" {
		cfg.Auth.Mode = auth.ModeHeader
	}
	if cfg.Auth.Logger == nil {
		cfg.Auth.Logger = cfg.Logger
	}

	h := &Handler{
		store: cfg.Store,
		dispatcher: shelldashboard.NewDispatcher(shelldashboard.Config{
			Store:  cfg.Store,
			Links:  cfg.Links,
			Logger: cfg.Logger,
		}),
		links:    cfg.Links,
		auth:     middleware.NewAuthMiddleware(cfg.Auth),
		authMode: cfg.Auth.Mode,
		limiter:  middleware.NewRateLimiter(cfg.RSVPLimit, middleware.IPKeyExtractor, cfg.Logger),
		pageSize: cfg.PageSize,
		qrSize:   cfg.QRSize,
		logger:   cfg.Logger,
		now:      cfg.Now,
	}
	h.docs = newDocs(cfg.ServerURL)
	return h
}

// Routes returns the router with all routes configured.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(h.jsonContentType)
	r.Use(h.requestIDHeader)

	// Health endpoints
	r.Get("/health", h.handleHealth)
	r.Get("/ready", h.handleReady)
	r.Get("/openapi.json", h.docs.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Public invitation page
		r.Group(func(r chi.Router) {
			r.Use(h.limiter.Handler)
			r.Get("/rsvp/{owner}", h.handleGetInvitation)
			r.Post("/rsvp/{owner}", h.handleRSVP)
		})

		// Organizer dashboard
		r.Group(func(r chi.Router) {
			r.Use(h.auth.Handler)
			r.Use(middleware.RequireAuth(h.logger))

			r.Get("/me", h.handleMe)
			r.Get("/dashboard", h.handleDashboard)

			r.Route("/guests", func(r chi.Router) {
				r.Post("/", h.handleCreateGuest)
				r.Post("/import", h.handleImportGuests)
				r.Get("/export.csv", h.handleExportGuests)
				r.Patch("/{id}", h.handleUpdateGuest)
				r.Delete("/{id}", h.handleDeleteGuest)
				r.Get("/{id}/qr.png", h.handleGuestQR)
			})
		})
	})

	return r
}

// =============================================================================
// Middleware
// =============================================================================

// jsonContentType sets Content-Type header to application/json.
func (h *Handler) jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// requestIDHeader copies the request ID to the response header.
func (h *Handler) requestIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reqID := chimw.GetReqID(r.Context()); reqID != "" {
			w.Header().Set("X-Request-ID", reqID)
		}
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// Health Handlers
// =============================================================================

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)

	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Warn("readiness check failed", "check", "database", "error", err)
		checks["database"] = "failed"
		h.writeJSON(w, http.StatusServiceUnavailable, ReadyResponse{
			Status: "not_ready",
			Checks: checks,
		})
		return
	}
	checks["database"] = "ok"

	h.writeJSON(w, http.StatusOK, ReadyResponse{
		Status: "ready",
		Checks: checks,
	})
}

// =============================================================================
// Helpers
// =============================================================================

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode JSON", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message, code string) {
	h.writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// writeCommandError maps a dispatcher error onto an HTTP status.
func (h *Handler) writeCommandError(w http.ResponseWriter, err error, notice *dashboard.Notice) {
	message := err.Error()
	if notice != nil {
		message = notice.Message
	}

	switch {
	case isValidationError(err):
		h.writeError(w, http.StatusBadRequest, validationMessage(err), "validation_error")
	case errors.Is(err, store.ErrDuplicateSlug):
		h.writeError(w, http.StatusConflict, message, "duplicate_guest")
	case errors.Is(err, store.ErrNotFound):
		h.writeError(w, http.StatusNotFound, message, "not_found")
	default:
		h.writeError(w, http.StatusInternalServerError, message, "internal_error")
	}
}

func isValidationError(err error) bool {
	for _, target := range []error{
		guest.ErrNameRequired,
		guest.ErrNameTooLong,
		guest.ErrSlugEmpty,
		guest.ErrInvalidAttendance,
		guest.ErrInvalidGiftStatus,
		dashboard.ErrGuestIDRequired,
		dashboard.ErrEmptyPatch,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// validationMessage unwraps to the innermost sentinel text.
func validationMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

// ownerID returns the authenticated organizer of the request.
func ownerID(r *http.Request) string {
	return auth.FromContext(r.Context()).OwnerID
}

// pageParam reads ?page=N, defaulting to 1.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
