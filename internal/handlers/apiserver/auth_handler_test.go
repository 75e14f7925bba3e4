package apiserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filmtrack/internal/errs"
)

func TestStatusForKind(t *testing.T) {
	cases := map[errs.Kind]int{
		errs.KindValidation:      http.StatusBadRequest,
		errs.KindDuplicate:       http.StatusBadRequest,
		errs.KindSelfRequest:     http.StatusBadRequest,
		errs.KindUnauthenticated: http.StatusUnauthorized,
		errs.KindForbidden:       http.StatusForbidden,
		errs.KindNotFound:        http.StatusNotFound,
		errs.KindInternal:        http.StatusInternalServerError,
		errs.Kind(99):            http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, statusForKind(kind), kind.String())
	}
}

func TestSignUpSetsSessionCookie(t *testing.T) {
	env := newAPIEnv(t, nil)

	rec := env.do(http.MethodPost, "/api/auth/sign-up/email", "", map[string]string{
		"name": "Ann", "email": "ann@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "passwordHash")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, testAuthCfg.CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.NotEmpty(t, cookies[0].Value)

	// Cookie 本身即可用于鉴权
	req := httptest.NewRequest(http.MethodGet, "/api/auth/get-session", nil)
	req.AddCookie(cookies[0])
	sessionRec := httptest.NewRecorder()
	env.router.ServeHTTP(sessionRec, req)
	require.Equal(t, http.StatusOK, sessionRec.Code)
	session := decodeData[SessionResponse](t, sessionRec)
	require.NotNil(t, session.User)
	assert.Equal(t, "ann@example.com", session.User.Email)
}

func TestSignUpAndSignInErrors(t *testing.T) {
	env := newAPIEnv(t, nil)
	env.signUp("ann")

	rec := env.do(http.MethodPost, "/api/auth/sign-up/email", "", map[string]string{
		"name": "Ann", "email": "ann@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User already exists", decodeMessage(t, rec))

	rec = env.do(http.MethodPost, "/api/auth/sign-up/email", "", map[string]string{
		"name": "Bo", "email": "bo@example.com", "password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPost, "/api/auth/sign-in/email", "", map[string]string{
		"email": "ann@example.com", "password": "nope-nope",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", decodeMessage(t, rec))

	rec = env.do(http.MethodPost, "/api/auth/sign-in/email", "", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPost, "/api/auth/sign-in/email", "", map[string]string{
		"email": "ann@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSignOutRevokesSession(t *testing.T) {
	env := newAPIEnv(t, nil)
	ann := env.signUp("ann")

	rec := env.do(http.MethodGet, "/api/auth/get-session", ann.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, decodeData[SessionResponse](t, rec).User)

	rec = env.do(http.MethodPost, "/api/auth/sign-out", ann.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)

	rec = env.do(http.MethodGet, "/api/auth/get-session", ann.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decodeData[SessionResponse](t, rec).User)

	rec = env.do(http.MethodGet, "/api/films", ann.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodPost, "/api/auth/sign-out", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthz(t *testing.T) {
	env := newAPIEnv(t, nil)
	rec := env.do(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeData[healthStatus](t, rec).Database)
}

func TestUnknownAPIRoute(t *testing.T) {
	env := newAPIEnv(t, nil)
	rec := env.do(http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", decodeMessage(t, rec))
}
