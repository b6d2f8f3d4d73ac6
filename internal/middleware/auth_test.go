package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-booking/internal/utils"
)

const secret = "test-secret"

func protected(mw ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"user": userKey(c), "role": c.Get("role")})
	}, mw...)
	return e
}

func get(e *echo.Echo, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	tok, err := utils.NewAccessToken(secret, 42, "CUSTOMER", 5)
	require.NoError(t, err)
	rec := get(protected(JWTAuth(secret)), tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user":"42","role":"CUSTOMER"}`, rec.Body.String())
}

func TestJWTAuthRejects(t *testing.T) {
	e := protected(JWTAuth(secret))
	assert.Equal(t, http.StatusUnauthorized, get(e, "").Code)

	wrong, err := utils.NewAccessToken("other-secret", 42, "CUSTOMER", 5)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(e, wrong.Token).Code)

	expired, err := utils.NewAccessToken(secret, 42, "CUSTOMER", -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(e, expired.Token).Code)

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": "STAFF",
		"exp":  time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(e, noSub).Code)
}

func TestRequireRole(t *testing.T) {
	e := protected(JWTAuth(secret), RequireRole("STAFF"))
	customer, err := utils.NewAccessToken(secret, 1, "CUSTOMER", 5)
	require.NoError(t, err)
	staff, err := utils.NewAccessToken(secret, 2, "STAFF", 5)
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, get(e, customer.Token).Code)
	assert.Equal(t, http.StatusOK, get(e, staff.Token).Code)
}
