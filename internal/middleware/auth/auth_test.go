package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/token"
)

var testSecret = []byte("test-jwt-secret")

func newContext(e *echo.Echo) (*httptest.ResponseRecorder, echo.Context) {
	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	rec := httptest.NewRecorder()
	return rec, e.NewContext(req, rec)
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func TestRequireLoginCookie(t *testing.T) {
	e := echo.New()
	raw, err := token.SignAccess(7, "user", testSecret)
	require.NoError(t, err)

	rec, c := newContext(e)
	c.Request().AddCookie(&http.Cookie{Name: "accessToken", Value: raw})

	require.NoError(t, RequireLogin(testSecret)(okHandler)(c))
	require.Equal(t, http.StatusOK, rec.Code)

	id, err := UserID(c)
	require.NoError(t, err)
	require.EqualValues(t, 7, id)
	require.Equal(t, "user", Role(c))
}

func TestRequireLoginBearerHeader(t *testing.T) {
	e := echo.New()
	raw, err := token.SignAccess(3, "admin", testSecret)
	require.NoError(t, err)

	rec, c := newContext(e)
	c.Request().Header.Set(echo.HeaderAuthorization, "Bearer "+raw)

	require.NoError(t, RequireLogin(testSecret)(okHandler)(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "admin", Role(c))
}

func TestRequireLoginMissingToken(t *testing.T) {
	e := echo.New()
	_, c := newContext(e)

	err := RequireLogin(testSecret)(okHandler)(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRequireLoginWrongSecret(t *testing.T) {
	e := echo.New()
	raw, err := token.SignAccess(7, "user", []byte("other-secret"))
	require.NoError(t, err)

	_, c := newContext(e)
	c.Request().Header.Set(echo.HeaderAuthorization, "Bearer "+raw)

	err = RequireLogin(testSecret)(okHandler)(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestAdminOnly(t *testing.T) {
	e := echo.New()

	rec, c := newContext(e)
	c.Set("userID", uint(1))
	c.Set("role", "admin")
	require.NoError(t, AdminOnly(okHandler)(c))
	require.Equal(t, http.StatusOK, rec.Code)

	_, c = newContext(e)
	c.Set("userID", uint(2))
	c.Set("role", "user")
	err := AdminOnly(okHandler)(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusForbidden, he.Code)
}
