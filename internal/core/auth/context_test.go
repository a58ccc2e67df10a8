package auth

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Mode Tests
// =============================================================================

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"header", ModeHeader, false},
		{"JWT", ModeJWT, false},
		{" dev ", ModeDev, false},
		{"none", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// =============================================================================
// Header Extraction Tests
// =============================================================================

func TestExtractFromHeaders_Unauthenticated(t *testing.T) {
	ctx := ExtractFromHeaders(MapHeaderGetter{})
	assert.False(t, ctx.Authenticated)
	assert.Empty(t, ctx.OwnerID)

	ctx = ExtractFromHeaders(MapHeaderGetter{HeaderUserID: "   "})
	assert.False(t, ctx.Authenticated)
}

func TestExtractFromHeaders_Authenticated(t *testing.T) {
	ctx := ExtractFromHeaders(MapHeaderGetter{HeaderUserID: "user_12345"})

	assert.True(t, ctx.Authenticated)
	assert.Equal(t, "user_12345", ctx.OwnerID)
	assert.Equal(t, ModeHeader, ctx.Mode)
}

func TestExtractFromRequest(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/me", nil)
	req.Header.Set(HeaderUserID, "owner_a")

	ctx := ExtractFromRequest(req)
	assert.True(t, ctx.Authenticated)
	assert.Equal(t, "owner_a", ctx.OwnerID)
}

func TestDevContext(t *testing.T) {
	assert.Equal(t, Context{OwnerID: "dev", Mode: ModeDev, Authenticated: true}, DevContext("dev"))
	assert.False(t, DevContext("").Authenticated)
}

// =============================================================================
// Bearer Token Tests
// =============================================================================

func TestIssueToken_RoundTrip(t *testing.T) {
	token, err := IssueToken("owner_a", "s3cret", time.Hour, time.Now())
	require.NoError(t, err)

	ctx, err := ExtractFromBearer(MapHeaderGetter{HeaderAuthorization: "Bearer " + token}, "s3cret")
	require.NoError(t, err)
	assert.True(t, ctx.Authenticated)
	assert.Equal(t, "owner_a", ctx.OwnerID)
	assert.Equal(t, ModeJWT, ctx.Mode)
}

func TestIssueToken_Errors(t *testing.T) {
	_, err := IssueToken("owner_a", "", time.Hour, time.Now())
	assert.ErrorIs(t, err, ErrNoSecret)

	_, err = IssueToken(" ", "s3cret", time.Hour, time.Now())
	assert.Error(t, err)
}

func TestExtractFromBearer_Rejects(t *testing.T) {
	valid, err := IssueToken("owner_a", "s3cret", time.Hour, time.Now())
	require.NoError(t, err)
	expired, err := IssueToken("owner_a", "s3cret", time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		secret  string
		wantErr error
	}{
		{"no header", "", "s3cret", ErrMissingToken},
		{"not bearer", "Basic abc", "s3cret", ErrMissingToken},
		{"empty bearer", "Bearer ", "s3cret", ErrMissingToken},
		{"garbage", "Bearer not.a.jwt", "s3cret", ErrInvalidToken},
		{"wrong secret", "Bearer " + valid, "other", ErrInvalidToken},
		{"expired", "Bearer " + expired, "s3cret", ErrInvalidToken},
		{"no secret configured", "Bearer " + valid, "", ErrNoSecret},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, err := ExtractFromBearer(MapHeaderGetter{HeaderAuthorization: tt.header}, tt.secret)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.False(t, ctx.Authenticated)
		})
	}
}

// =============================================================================
// Context Storage Tests
// =============================================================================

func TestContextStorage(t *testing.T) {
	assert.False(t, FromContext(context.Background()).Authenticated)

	stored := Context{OwnerID: "owner_a", Mode: ModeHeader, Authenticated: true}
	ctx := WithContext(context.Background(), stored)
	assert.Equal(t, stored, FromContext(ctx))
}
