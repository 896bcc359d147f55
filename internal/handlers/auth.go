package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/audit"
	"github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/hash"
	"github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/logging"
	"github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/models"
	"github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/token"
)

type AuthHandler struct {
	DB     *gorm.DB
	Tokens *token.Service
	Audit  *audit.Recorder
}

func CreateCookie(name, value, path string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  exp,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *AuthHandler) setTokenCookies(c echo.Context, access, refresh string) {
	c.SetCookie(CreateCookie("accessToken", access, "/", time.Now().Add(token.AccessTTL)))
	c.SetCookie(CreateCookie("refreshToken", refresh, "/", time.Now().Add(token.RefreshTTL)))
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req struct {
		Name     string `json:"name"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username, email and password are required")
	}

	var existing models.User
	err := h.DB.Where("username = ? OR email = ?", req.Username, req.Email).First(&existing).Error
	if err == nil {
		return echo.NewHTTPError(http.StatusConflict, "user already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		l.Error("register failed", "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register failed", "reason", "hash_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user := models.User{
		Name:         req.Name,
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: pwHash,
		Role:         "user",
	}
	if err := h.DB.Create(&user).Error; err != nil {
		l.Error("register failed", "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if err := h.Audit.Record(ctx, h.DB, user.ID, "register", "user", user.ID, map[string]any{"username": user.Username}); err != nil {
		l.Warn("audit failed", "error", err)
	}

	l.Info("user registered", "user_id", user.ID)
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var user models.User
	q := h.DB
	switch {
	case req.Username != "":
		q = q.Where("username = ?", req.Username)
	case req.Email != "":
		q = q.Where("email = ?", req.Email)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "username or email is required")
	}
	if err := q.First(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	access, refresh, err := h.Tokens.IssuePair(user.ID, user.Role)
	if err != nil {
		l.Error("login failed", "reason", "token_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	h.setTokenCookies(c, access, refresh)

	l.Info("user logged in", "user_id", user.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  access,
		"refresh_token": refresh,
		"is_admin":      user.Role == "admin",
	})
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie("refreshToken")
	if err != nil || cookie.Value == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing refresh token")
	}

	access, refresh, err := h.Tokens.Rotate(cookie.Value)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
	}
	h.setTokenCookies(c, access, refresh)

	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  access,
		"refresh_token": refresh,
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie("refreshToken"); err == nil && cookie.Value != "" {
		if err := h.Tokens.Revoke(cookie.Value); err != nil {
			logging.FromContext(c.Request().Context()).Warn("revoke failed", "error", err)
		}
	}

	expired := time.Now().Add(-time.Hour)
	c.SetCookie(CreateCookie("accessToken", "", "/", expired))
	c.SetCookie(CreateCookie("refreshToken", "", "/", expired))

	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out"})
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_reset_password")

	var req struct {
		Email       string `json:"email"`
		NewPassword string `json:"new_password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Email == "" || req.NewPassword == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and new password are required")
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	pwHash, err := hash.HashPassword(req.NewPassword)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if err := h.DB.Model(&user).Update("password_hash", pwHash).Error; err != nil {
		l.Error("reset failed", "reason", "db_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	// Outstanding sessions must not survive a password reset.
	if err := h.Tokens.RevokeAllForUser(user.ID); err != nil {
		l.Warn("revoke all failed", "error", err)
	}

	if err := h.Audit.Record(ctx, h.DB, user.ID, "reset_password", "user", user.ID, nil); err != nil {
		l.Warn("audit failed", "error", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Password reset successfully"})
}
