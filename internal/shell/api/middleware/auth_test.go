package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/artpar/mingalaroo/internal/core/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Helpers
// =============================================================================

// testHandler echoes the auth context from the request.
func testHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := auth.FromContext(r.Context())
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"authenticated": ctx.Authenticated,
			"owner_id":      ctx.OwnerID,
			"mode":          string(ctx.Mode),
		})
	})
}

func serve(t *testing.T, h http.Handler, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var body map[string]any
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

// =============================================================================
// AuthMiddleware Tests
// =============================================================================

func TestAuthMiddleware_HeaderMode_ExtractsOwner(t *testing.T) {
	mw := NewAuthMiddleware(AuthConfig{Mode: auth.ModeHeader})

	req := httptest.NewRequest("GET", "/api/v1/me", nil)
	req.Header.Set(auth.HeaderUserID, "user_123")
	rec, body := serve(t, mw.Handler(testHandler()), req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, "user_123", body["owner_id"])
	assert.Equal(t, "header", body["mode"])
}

func TestAuthMiddleware_HeaderMode_NoHeaders(t *testing.T) {
	mw := NewAuthMiddleware(AuthConfig{Mode: auth.ModeHeader})

	rec, body := serve(t, mw.Handler(testHandler()), httptest.NewRequest("GET", "/api/v1/me", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["authenticated"])
}

func TestAuthMiddleware_EmptyMode_DefaultsToHeader(t *testing.T) {
	mw := NewAuthMiddleware(AuthConfig{})

	req := httptest.NewRequest("GET", "/api/v1/me", nil)
	req.Header.Set(auth.HeaderUserID, "user_456")
	_, body := serve(t, mw.Handler(testHandler()), req)

	assert.Equal(t, true, body["authenticated"])
}

func TestAuthMiddleware_SharedSecret(t *testing.T) {
	mw := NewAuthMiddleware(AuthConfig{Mode: auth.ModeHeader, SharedSecret: "my-secret-key"})

	tests := []struct {
		name   string
		secret string
		want   int
	}{
		{"valid", "my-secret-key", http.StatusOK},
		{"invalid", "wrong-secret", http.StatusForbidden},
		{"missing", "", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/me", nil)
			req.Header.Set(auth.HeaderUserID, "user_123")
			if tt.secret != "" {
				req.Header.Set(auth.HeaderGatewaySecret, tt.secret)
			}
			rec, _ := serve(t, mw.Handler(testHandler()), req)
			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusForbidden {
				assert.Contains(t, rec.Body.String(), `"code":"forbidden"`)
			}
		})
	}
}

func TestAuthMiddleware_JWTMode(t *testing.T) {
	mw := NewAuthMiddleware(AuthConfig{Mode: auth.ModeJWT, JWTSecret: "s3cret"})
	token, err := auth.IssueToken("owner_jwt", "s3cret", time.Hour, time.Now())
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	_, body := serve(t, mw.Handler(testHandler()), req)
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, "owner_jwt", body["owner_id"])

	// X-User-ID is not trusted in jwt mode.
	req = httptest.NewRequest("GET", "/api/v1/me", nil)
	req.Header.Set(auth.HeaderUserID, "spoofed")
	_, body = serve(t, mw.Handler(testHandler()), req)
	assert.Equal(t, false, body["authenticated"])

	req = httptest.NewRequest("GET", "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	_, body = serve(t, mw.Handler(testHandler()), req)
	assert.Equal(t, false, body["authenticated"])
}

func TestAuthMiddleware_DevMode(t *testing.T) {
	mw := NewAuthMiddleware(AuthConfig{Mode: auth.ModeDev, DevOwner: "dev_owner"})

	_, body := serve(t, mw.Handler(testHandler()), httptest.NewRequest("GET", "/api/v1/me", nil))
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, "dev_owner", body["owner_id"])
	assert.Equal(t, "dev", body["mode"])
}

// =============================================================================
// RequireAuth Middleware Tests
// =============================================================================

func TestRequireAuth_Authenticated(t *testing.T) {
	h := NewAuthMiddleware(AuthConfig{Mode: auth.ModeHeader}).Handler(RequireAuth(nil)(testHandler()))

	req := httptest.NewRequest("GET", "/api/v1/protected", nil)
	req.Header.Set(auth.HeaderUserID, "user_123")
	rec, _ := serve(t, h, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuth_Unauthenticated(t *testing.T) {
	h := NewAuthMiddleware(AuthConfig{Mode: auth.ModeHeader}).Handler(RequireAuth(nil)(testHandler()))

	rec, _ := serve(t, h, httptest.NewRequest("GET", "/api/v1/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unauthorized", body.Code)
}

func TestRequireAuth_WithoutAuthMiddleware(t *testing.T) {
	rec, _ := serve(t, RequireAuth(nil)(testHandler()), httptest.NewRequest("GET", "/api/v1/protected", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
