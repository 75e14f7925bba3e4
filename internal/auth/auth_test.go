package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filmtrack/internal/config"
)

type memoryBlacklist struct {
	revoked map[string]time.Time
	err     error
}

func (m *memoryBlacklist) Revoke(_ context.Context, jti string, until time.Time) error {
	m.revoked[jti] = until
	return nil
}

func (m *memoryBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.revoked[jti]
	return ok, nil
}

var testAuthCfg = config.AuthConfig{JWTSecretKey: "test-secret", JWTExpiry: time.Hour}

func TestGenerateAndValidateToken(t *testing.T) {
	ctx := context.Background()
	token, claims, err := GenerateToken(42, "ann@example.com", testAuthCfg)
	require.NoError(t, err)
	require.NotEmpty(t, claims.ID)

	got, err := ValidateToken(ctx, token, testAuthCfg.JWTSecretKey, nil)
	require.NoError(t, err)
	assert.Equal(t, uint(42), got.UserID)
	assert.Equal(t, "ann@example.com", got.Email)
	assert.Equal(t, claims.ID, got.ID)

	_, err = ValidateToken(ctx, token, "other-secret", nil)
	assert.Error(t, err)
}

func TestValidateTokenExpired(t *testing.T) {
	cfg := testAuthCfg
	cfg.JWTExpiry = -time.Minute
	token, _, err := GenerateToken(1, "a@example.com", cfg)
	require.NoError(t, err)

	_, err = ValidateToken(context.Background(), token, cfg.JWTSecretKey, nil)
	assert.Error(t, err)
}

func TestValidateTokenBlacklist(t *testing.T) {
	ctx := context.Background()
	bl := &memoryBlacklist{revoked: map[string]time.Time{}}
	token, claims, err := GenerateToken(7, "b@example.com", testAuthCfg)
	require.NoError(t, err)

	_, err = ValidateToken(ctx, token, testAuthCfg.JWTSecretKey, bl)
	require.NoError(t, err)

	require.NoError(t, bl.Revoke(ctx, claims.ID, claims.ExpiresAt.Time))
	_, err = ValidateToken(ctx, token, testAuthCfg.JWTSecretKey, bl)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	bl.err = errors.New("redis down")
	_, err = ValidateToken(ctx, token, testAuthCfg.JWTSecretKey, bl)
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, CheckPasswordHash("correct horse", hash))
	assert.False(t, CheckPasswordHash("wrong horse", hash))
	assert.False(t, CheckPasswordHash("correct horse", ""))

	_, err = HashPassword(strings.Repeat("x", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestTokenFromRequest(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(r *http.Request)
		allowQuery bool
		want       string
	}{
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer abc") }, false, "abc"},
		{"lowercase bearer", func(r *http.Request) { r.Header.Set("Authorization", "bearer abc") }, false, "abc"},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "sid", Value: "from-cookie"}) }, false, "from-cookie"},
		{"basic ignored", func(r *http.Request) { r.Header.Set("Authorization", "Basic xyz") }, false, ""},
		{"query ignored", func(r *http.Request) { r.URL.RawQuery = "token=q" }, false, ""},
		{"query allowed", func(r *http.Request) { r.URL.RawQuery = "token=q" }, true, "q"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(r)
			assert.Equal(t, tt.want, TokenFromRequest(r, "sid", tt.allowQuery))
		})
	}
}
