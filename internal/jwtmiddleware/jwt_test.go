package jwtmiddleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-jwt-secret")

func signToken(t *testing.T, secret []byte, subject, role string) string {
	t.Helper()
	claims := AccessClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(15 * time.Minute)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return raw
}

func doRequest(t *testing.T, mw echo.MiddlewareFunc, decorate func(*http.Request)) (*httptest.ResponseRecorder, error, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if decorate != nil {
		decorate(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var captured echo.Context
	err := mw(func(c echo.Context) error {
		captured = c
		return c.NoContent(http.StatusOK)
	})(c)
	if captured == nil {
		captured = c
	}
	return rec, err, captured
}

func TestRequireUser_ValidBearerToken(t *testing.T) {
	t.Parallel()

	token := signToken(t, testSecret, "7", "customer")
	_, err, c := doRequest(t, RequireUser(testSecret), func(r *http.Request) {
		r.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	})

	require.NoError(t, err)
	assert.Equal(t, uint(7), UserID(c))
	assert.Equal(t, "customer", Role(c))
}

func TestRequireUser_CookieFallback(t *testing.T) {
	t.Parallel()

	token := signToken(t, testSecret, "12", "")
	_, err, c := doRequest(t, RequireUser(testSecret), func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	})

	require.NoError(t, err)
	assert.Equal(t, uint(12), UserID(c))
}

func TestRequireUser_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		decorate func(*http.Request)
	}{
		{name: "missing token", decorate: nil},
		{
			name: "wrong secret",
			decorate: func(r *http.Request) {
				token := signToken(t, []byte("other-secret"), "7", "")
				r.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
			},
		},
		{
			name: "garbage token",
			decorate: func(r *http.Request) {
				r.Header.Set(echo.HeaderAuthorization, "Bearer not.a.jwt")
			},
		},
		{
			name: "non-numeric subject",
			decorate: func(r *http.Request) {
				token := signToken(t, testSecret, "alice", "")
				r.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
			},
		},
		{
			name: "expired token",
			decorate: func(r *http.Request) {
				claims := AccessClaims{RegisteredClaims: jwt.RegisteredClaims{
					Subject:   "7",
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
				}}
				raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
				require.NoError(t, err)
				r.Header.Set(echo.HeaderAuthorization, "Bearer "+raw)
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err, _ := doRequest(t, RequireUser(testSecret), tt.decorate)
			require.Error(t, err)

			var he *echo.HTTPError
			require.ErrorAs(t, err, &he)
			assert.Equal(t, http.StatusUnauthorized, he.Code)
		})
	}
}

func TestRequireStaff(t *testing.T) {
	t.Parallel()

	for _, role := range []string{RoleStaff, RoleAdmin} {
		e := echo.New()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.Set("role", role)

		err := RequireStaff(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c)
		require.NoError(t, err, "role %s", role)
	}

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set("role", "customer")

	err := RequireStaff(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c)
	require.Error(t, err)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusForbidden, he.Code)
}
