// Package middleware provides HTTP middleware for the Mingalaroo API.
package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/artpar/mingalaroo/internal/core/auth"
)

// =============================================================================
// Auth Configuration
// =============================================================================

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	// Mode selects how identity is established.
	Mode auth.Mode

	// SharedSecret, in header mode, must match X-Gateway-Secret.
	// If empty, secret validation is skipped.
	SharedSecret string

	// JWTSecret verifies bearer tokens in jwt mode.
	JWTSecret string

	// DevOwner is the owner every request acts as in dev mode.
	DevOwner string

	Logger *slog.Logger
}

// =============================================================================
// Auth Middleware
// =============================================================================

// AuthMiddleware establishes the organizer identity and stores it in the
// request context. It never rejects a request for missing credentials; pair
// it with RequireAuth on protected routes.
type AuthMiddleware struct {
	config AuthConfig
}

// NewAuthMiddleware creates a new auth middleware with the given config.
func NewAuthMiddleware(cfg AuthConfig) *AuthMiddleware {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &AuthMiddleware{config: cfg}
}

// Handler returns the middleware handler function.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ctx auth.Context

		switch m.config.Mode {
		case auth.ModeDev:
			ctx = auth.DevContext(m.config.DevOwner)

		case auth.ModeJWT:
			c, err := auth.ExtractFromBearer(r.Header, m.config.JWTSecret)
			if err != nil && r.Header.Get(auth.HeaderAuthorization) != "" {
				m.config.Logger.Warn("rejected bearer token",
					"remote_addr", r.RemoteAddr,
					"path", r.URL.Path,
					"error", err,
				)
			}
			ctx = c

		default:
			if m.config.SharedSecret != "" {
				got := r.Header.Get(auth.HeaderGatewaySecret)
				if subtle.ConstantTimeCompare([]byte(got), []byte(m.config.SharedSecret)) != 1 {
					m.config.Logger.Warn("invalid gateway secret",
						"remote_addr", r.RemoteAddr,
						"path", r.URL.Path,
					)
					writeJSONError(w, http.StatusForbidden, "Invalid gateway secret", "forbidden")
					return
				}
			}
			ctx = auth.ExtractFromRequest(r)
		}

		r = r.WithContext(auth.WithContext(r.Context(), ctx))
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// Require Auth Middleware
// =============================================================================

// RequireAuth rejects requests without an organizer identity.
// Must be used AFTER AuthMiddleware.
func RequireAuth(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := auth.FromContext(r.Context())

			if !ctx.Authenticated {
				logger.Warn("unauthenticated request to protected endpoint",
					"remote_addr", r.RemoteAddr,
					"path", r.URL.Path,
					"method", r.Method,
				)
				writeJSONError(w, http.StatusUnauthorized, "Authentication required", "unauthorized")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// =============================================================================
// JSON Error Response
// =============================================================================

// errorBody matches the API error format.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSONError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody{Error: message, Code: code})
}
