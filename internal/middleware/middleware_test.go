package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier map[string]string

func (v stubVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	uid, ok := v[idToken]
	if !ok {
		return nil, errors.New("token rejected")
	}
	return &auth.Token{UID: uid}, nil
}

func run(t *testing.T, mw echo.MiddlewareFunc, header string) (string, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	var seen string
	err := mw(func(c echo.Context) error {
		seen, _ = c.Get(AuthIDKey).(string)
		return nil
	})(c)
	return seen, err
}

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	var he *echo.HTTPError
	require.True(t, errors.As(err, &he), "expected echo.HTTPError, got %v", err)
	assert.Equal(t, status, he.Code)
}

func TestFirebaseAuthMiddleware(t *testing.T) {
	mw := FirebaseAuthMiddleware(stubVerifier{"good": "uid-1"})

	authID, err := run(t, mw, "Bearer good")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", authID)

	_, err = run(t, mw, "")
	assertStatus(t, err, http.StatusUnauthorized)
	_, err = run(t, mw, "Token good")
	assertStatus(t, err, http.StatusUnauthorized)
	_, err = run(t, mw, "Bearer bad")
	assertStatus(t, err, http.StatusUnauthorized)
}

func signed(t *testing.T, secret string, claims jwt.RegisteredClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestJWTAuthMiddleware(t *testing.T) {
	mw := JWTAuthMiddleware([]byte("secret"))
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	authID, err := run(t, mw, "Bearer "+signed(t, "secret", jwt.RegisteredClaims{Subject: "uid-2", ExpiresAt: exp}))
	require.NoError(t, err)
	assert.Equal(t, "uid-2", authID)

	_, err = run(t, mw, "Bearer "+signed(t, "other", jwt.RegisteredClaims{Subject: "uid-2", ExpiresAt: exp}))
	assertStatus(t, err, http.StatusUnauthorized)

	_, err = run(t, mw, "Bearer "+signed(t, "secret", jwt.RegisteredClaims{ExpiresAt: exp}))
	assertStatus(t, err, http.StatusUnauthorized)

	expired := jwt.NewNumericDate(time.Now().Add(-time.Hour))
	_, err = run(t, mw, "Bearer "+signed(t, "secret", jwt.RegisteredClaims{Subject: "uid-2", ExpiresAt: expired}))
	assertStatus(t, err, http.StatusUnauthorized)
}
