// Package auth provides the organizer identity context.
// The rest of the system only ever consumes an owner id; how it was
// established (gateway header, signed bearer token, dev override) is decided here.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// =============================================================================
// Context Key
// =============================================================================

type contextKey string

const authContextKey contextKey = "auth"

// =============================================================================
// Modes
// =============================================================================

// Mode selects how organizer identity is established.
type Mode string

const (
	// ModeHeader trusts X-User-ID injected by a fronting gateway.
	ModeHeader Mode = "header"
	// ModeJWT verifies an HS256 bearer token whose subject is the owner id.
	ModeJWT Mode = "jwt"
	// ModeDev authenticates every request as a fixed owner.
	ModeDev Mode = "dev"
)

// ParseMode validates a configured mode string.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeHeader, ModeJWT, ModeDev:
		return m, nil
	default:
		return "", fmt.Errorf("unknown auth mode %q", s)
	}
}

// =============================================================================
// Types
// =============================================================================

// Context is the authentication context stored on a request.
type Context struct {
	// OwnerID identifies the organizer whose guest list the request operates on.
	OwnerID string

	// Mode records which mechanism authenticated the request.
	Mode Mode

	Authenticated bool
}

// =============================================================================
// Header Constants
// =============================================================================

const (
	// HeaderUserID carries the organizer id injected by the gateway.
	HeaderUserID = "X-User-ID"

	// HeaderGatewaySecret carries the shared secret proving the gateway sent the request.
	HeaderGatewaySecret = "X-Gateway-Secret"

	// HeaderAuthorization carries bearer tokens.
	HeaderAuthorization = "Authorization"
)

// =============================================================================
// Context Extraction
// =============================================================================

// HeaderGetter is an interface for getting header values.
// This allows testing without requiring an http.Request.
type HeaderGetter interface {
	Get(key string) string
}

// ExtractFromRequest extracts the header-mode auth context from a request.
func ExtractFromRequest(r *http.Request) Context {
	return ExtractFromHeaders(r.Header)
}

// ExtractFromHeaders reads X-User-ID. A missing or blank header yields an
// unauthenticated context.
func ExtractFromHeaders(headers HeaderGetter) Context {
	owner := strings.TrimSpace(headers.Get(HeaderUserID))
	if owner == "" {
		return Context{}
	}
	return Context{OwnerID: owner, Mode: ModeHeader, Authenticated: true}
}

// DevContext returns the context used for every request in dev mode.
func DevContext(owner string) Context {
	if owner == "" {
		return Context{}
	}
	return Context{OwnerID: owner, Mode: ModeDev, Authenticated: true}
}

// =============================================================================
// Bearer Tokens
// =============================================================================

// Issuer is stamped on every token minted by IssueToken.
const Issuer = "mingalaroo"

var (
	// ErrMissingToken is returned when no bearer token was presented.
	ErrMissingToken = errors.New("missing bearer token")

	// ErrInvalidToken is returned when a token fails verification.
	ErrInvalidToken = errors.New("invalid bearer token")

	// ErrNoSecret is returned when signing or verifying without a secret.
	ErrNoSecret = errors.New("jwt secret is not configured")
)

// IssueToken mints an organizer token for owner, valid for ttl.
func IssueToken(owner, secret string, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", ErrNoSecret
	}
	if strings.TrimSpace(owner) == "" {
		return "", errors.New("owner id is required")
	}
	claims := jwt.RegisteredClaims{
		Subject:   owner,
		Issuer:    Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ExtractFromBearer verifies the Authorization header and returns a context
// whose owner is the token subject.
func ExtractFromBearer(headers HeaderGetter, secret string) (Context, error) {
	if secret == "" {
		return Context{}, ErrNoSecret
	}
	raw, ok := strings.CutPrefix(headers.Get(HeaderAuthorization), "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return Context{}, ErrMissingToken
	}

	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
	)
	if err != nil {
		return Context{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tok.Valid || claims.Subject == "" {
		return Context{}, ErrInvalidToken
	}
	return Context{OwnerID: claims.Subject, Mode: ModeJWT, Authenticated: true}, nil
}

// =============================================================================
// Context Storage
// =============================================================================

// WithContext stores the auth context in the request context.
func WithContext(ctx context.Context, authCtx Context) context.Context {
	return context.WithValue(ctx, authContextKey, authCtx)
}

// FromContext retrieves the auth context from the request context.
// If no auth context is found, returns an unauthenticated context.
func FromContext(ctx context.Context) Context {
	if authCtx, ok := ctx.Value(authContextKey).(Context); ok {
		return authCtx
	}
	return Context{}
}

// =============================================================================
// Helper Types for Testing
// =============================================================================

// MapHeaderGetter wraps a map to implement HeaderGetter interface.
type MapHeaderGetter map[string]string

func (m MapHeaderGetter) Get(key string) string {
	return m[key]
}
