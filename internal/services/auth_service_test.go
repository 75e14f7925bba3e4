package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"filmtrack/internal/auth"
	"filmtrack/internal/config"
	"filmtrack/internal/errs"
	"filmtrack/internal/redis"
	"filmtrack/internal/services"
	"filmtrack/internal/storage"
	"filmtrack/internal/storage/storagetest"
	"filmtrack/internal/validation"
)

var testAuthCfg = config.AuthConfig{JWTSecretKey: "test-secret", JWTExpiry: time.Hour}

func newAuthService(t *testing.T) (services.AuthService, auth.TokenBlacklist) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	blacklist := redis.NewRedisTokenBlacklist(client)

	db := storagetest.NewDB(t)
	svc := services.NewAuthService(storage.NewGormUserRepository(db), blacklist, validation.New(), testAuthCfg, zaptest.NewLogger(t))
	return svc, blacklist
}

func TestSignUpAndSignIn(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	session, err := svc.SignUp(ctx, services.SignUpInput{Name: "Ann", Email: " Ann@Example.com ", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", session.User.Email)
	assert.NotEmpty(t, session.Token)
	assert.True(t, session.ExpiresAt.After(time.Now()))

	claims, err := auth.ValidateToken(ctx, session.Token, testAuthCfg.JWTSecretKey, nil)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims.UserID)

	signedIn, err := svc.SignIn(ctx, services.SignInInput{Email: "ANN@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, signedIn.User.ID)

	user, err := svc.GetSessionUser(ctx, session.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", user.Name)
}

func TestSignUpErrors(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, services.SignUpInput{Name: "Ann", Email: "ann@example.com", Password: "short"})
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	assert.Equal(t, "password must be at least 8 characters", errs.Message(err, ""))

	_, err = svc.SignUp(ctx, services.SignUpInput{Email: "nope", Password: "password123"})
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	_, err = svc.SignUp(ctx, services.SignUpInput{Name: "Ann", Email: "ann@example.com", Password: "password123"})
	require.NoError(t, err)
	_, err = svc.SignUp(ctx, services.SignUpInput{Name: "Ann 2", Email: "ann@example.com", Password: "password456"})
	assert.ErrorIs(t, err, services.ErrUserExists)
	assert.Equal(t, "User already exists", errs.Message(err, ""))
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, services.SignUpInput{Name: "Ann", Email: "ann@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.SignIn(ctx, services.SignInInput{Email: "ann@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	assert.Equal(t, errs.KindUnauthenticated, errs.KindOf(err))

	_, err = svc.SignIn(ctx, services.SignInInput{Email: "ghost@example.com", Password: "password123"})
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestSignOutRevokesToken(t *testing.T) {
	svc, blacklist := newAuthService(t)
	ctx := context.Background()

	session, err := svc.SignUp(ctx, services.SignUpInput{Name: "Ann", Email: "ann@example.com", Password: "password123"})
	require.NoError(t, err)
	claims, err := auth.ValidateToken(ctx, session.Token, testAuthCfg.JWTSecretKey, blacklist)
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(ctx, claims))

	_, err = auth.ValidateToken(ctx, session.Token, testAuthCfg.JWTSecretKey, blacklist)
	assert.ErrorIs(t, err, auth.ErrTokenRevoked)
}

func TestSignOutWithoutBlacklist(t *testing.T) {
	db := storagetest.NewDB(t)
	svc := services.NewAuthService(storage.NewGormUserRepository(db), nil, validation.New(), testAuthCfg, zaptest.NewLogger(t))
	assert.NoError(t, svc.SignOut(context.Background(), &auth.Claims{}))
}
