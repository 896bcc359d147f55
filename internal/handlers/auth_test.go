package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/hash"
	"github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/models"
	"github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/token"
)

func newAuthHandler(t *testing.T) (*AuthHandler, *echo.Echo) {
	db := newTestDB(t)
	tokens := &token.Service{
		DB:            db,
		JWTSecret:     []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	}
	return &AuthHandler{DB: db, Tokens: tokens, Audit: newRecorder()}, echo.New()
}

func TestRegister(t *testing.T) {
	h, e := newAuthHandler(t)

	rec, c := newJSONContext(t, e, http.MethodPost, "/api/auth/register", map[string]string{
		"name":     "Test User",
		"username": "test_user",
		"email":    "test@example.com",
		"password": "password",
	})
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var user models.User
	require.NoError(t, h.DB.Where("username = ?", "test_user").First(&user).Error)
	require.Equal(t, "user", user.Role)
	require.NotEqual(t, "password", user.PasswordHash)
	require.True(t, hash.CheckPassword(user.PasswordHash, "password"))

	require.EqualValues(t, 1, countLogs(t, h.DB, "register"))

	// Password hash must not appear in the response body.
	require.NotContains(t, rec.Body.String(), user.PasswordHash)
}

func TestRegisterDuplicate(t *testing.T) {
	h, e := newAuthHandler(t)

	body := map[string]string{
		"username": "test_user",
		"email":    "test@example.com",
		"password": "password",
	}
	_, c := newJSONContext(t, e, http.MethodPost, "/api/auth/register", body)
	require.NoError(t, h.Register(c))

	_, c = newJSONContext(t, e, http.MethodPost, "/api/auth/register", body)
	err := h.Register(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusConflict, he.Code)
}

func TestLogin(t *testing.T) {
	h, e := newAuthHandler(t)

	pwHash, err := hash.HashPassword("password")
	require.NoError(t, err)
	require.NoError(t, h.DB.Create(&models.User{
		Username: "test_user", Email: "test@example.com",
		PasswordHash: pwHash, Role: "user",
	}).Error)

	rec, c := newJSONContext(t, e, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "test_user",
		"password": "password",
	})
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["access_token"])
	require.NotEmpty(t, resp["refresh_token"])
	require.Equal(t, false, resp["is_admin"])

	cookies := rec.Result().Cookies()
	names := make([]string, 0, len(cookies))
	for _, ck := range cookies {
		names = append(names, ck.Name)
	}
	require.Contains(t, names, "accessToken")
	require.Contains(t, names, "refreshToken")

	var stored models.RefreshToken
	require.NoError(t, h.DB.First(&stored).Error)
	require.False(t, stored.Revoked)
}

func TestLoginWrongPassword(t *testing.T) {
	h, e := newAuthHandler(t)

	pwHash, err := hash.HashPassword("password")
	require.NoError(t, err)
	require.NoError(t, h.DB.Create(&models.User{
		Username: "test_user", Email: "test@example.com",
		PasswordHash: pwHash, Role: "user",
	}).Error)

	_, c := newJSONContext(t, e, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "test_user",
		"password": "wrong",
	})
	err = h.Login(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestResetPassword(t *testing.T) {
	h, e := newAuthHandler(t)

	pwHash, err := hash.HashPassword("old-password")
	require.NoError(t, err)
	user := models.User{
		Username: "test_user", Email: "test@example.com",
		PasswordHash: pwHash, Role: "user",
	}
	require.NoError(t, h.DB.Create(&user).Error)

	_, _, err = h.Tokens.IssuePair(user.ID, user.Role)
	require.NoError(t, err)

	rec, c := newJSONContext(t, e, http.MethodPost, "/api/auth/reset-password", map[string]string{
		"email":        "test@example.com",
		"new_password": "new-password",
	})
	require.NoError(t, h.ResetPassword(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.User
	require.NoError(t, h.DB.First(&updated, user.ID).Error)
	require.True(t, hash.CheckPassword(updated.PasswordHash, "new-password"))
	require.False(t, hash.CheckPassword(updated.PasswordHash, "old-password"))

	var stored models.RefreshToken
	require.NoError(t, h.DB.Where("user_id = ?", user.ID).First(&stored).Error)
	require.True(t, stored.Revoked)

	require.EqualValues(t, 1, countLogs(t, h.DB, "reset_password"))
}

func TestResetPasswordUnknownEmail(t *testing.T) {
	h, e := newAuthHandler(t)

	_, c := newJSONContext(t, e, http.MethodPost, "/api/auth/reset-password", map[string]string{
		"email":        "nobody@example.com",
		"new_password": "whatever",
	})
	err := h.ResetPassword(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusNotFound, he.Code)
}
