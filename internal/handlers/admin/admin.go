package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/audit"
	"github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/logging"
	authmw "github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/middleware/auth"
	"github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/models"
	"github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/query"
	"github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/util"
)

type AdminHandler struct {
	DB    *gorm.DB
	Audit *audit.Recorder
}

type logView struct {
	models.ActivityLog
	User *query.UserSummary `json:"user,omitempty"`
}

func (h *AdminHandler) logsWithUsers(logs []models.ActivityLog) ([]logView, error) {
	ids := make([]uint, 0, len(logs))
	for _, l := range logs {
		ids = append(ids, l.UserID)
	}
	users, err := query.UserSummaries(h.DB, ids)
	if err != nil {
		return nil, err
	}

	views := make([]logView, 0, len(logs))
	for _, l := range logs {
		v := logView{ActivityLog: l}
		if u, ok := users[l.UserID]; ok {
			v.User = &u
		}
		views = append(views, v)
	}
	return views, nil
}

// Dashboard recomputes the full snapshot on every call; there is no caching.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	var (
		totalUsers    int64
		totalOrders   int64
		totalProducts int64
		totalRevenue  float64
	)

	if err := h.DB.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch dashboard statistics")
	}
	if err := h.DB.Model(&models.Order{}).Count(&totalOrders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch dashboard statistics")
	}
	if err := h.DB.Model(&models.Product{}).Count(&totalProducts).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch dashboard statistics")
	}
	if err := h.DB.Model(&models.Order{}).
		Select("COALESCE(SUM(total_amount), 0)").Scan(&totalRevenue).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch dashboard statistics")
	}

	var recentOrders []models.Order
	if err := h.DB.Order("created_at DESC").Limit(5).Find(&recentOrders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch dashboard statistics")
	}
	orderViews, err := query.WithUsers(h.DB, recentOrders)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch dashboard statistics")
	}

	var recentLogs []models.ActivityLog
	if err := h.DB.Order("created_at DESC").Limit(10).Find(&recentLogs).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch dashboard statistics")
	}
	logViews, err := h.logsWithUsers(recentLogs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch dashboard statistics")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"stats": echo.Map{
			"total_users":    totalUsers,
			"total_orders":   totalOrders,
			"total_products": totalProducts,
			"total_revenue":  totalRevenue,
		},
		"recent_orders":     orderViews,
		"recent_activities": logViews,
	})
}

func (h *AdminHandler) GetAllUsers(c echo.Context) error {
	page, limit, offset := util.PageParams(c)

	var total int64
	if err := h.DB.Model(&models.User{}).Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch users")
	}

	var users []models.User
	if err := h.DB.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch users")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"users":      users,
		"pagination": util.Paginate(total, page, limit),
	})
}

func (h *AdminHandler) GetUser(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch user")
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AdminHandler) UpdateUser(c echo.Context) error {
	ctx := c.Request().Context()
	actorID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch user")
	}

	var req struct {
		Name  *string `json:"name"`
		Email *string `json:"email"`
		Role  *string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Role != nil {
		if *req.Role != "user" && *req.Role != "admin" {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid role")
		}
		updates["role"] = *req.Role
	}
	if len(updates) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "nothing to update")
	}

	if err := h.DB.Model(&user).Updates(updates).Error; err != nil {
		logging.FromContext(ctx).Error("user update failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update user")
	}

	if err := h.Audit.Record(ctx, h.DB, actorID, "update_user", "user", user.ID, updates); err != nil {
		logging.FromContext(ctx).Warn("audit failed", "error", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "User updated successfully",
		"user":    user,
	})
}

func (h *AdminHandler) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	actorID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch user")
	}

	if err := h.DB.Delete(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete user")
	}

	if err := h.Audit.Record(ctx, h.DB, actorID, "delete_user", "user", user.ID, nil); err != nil {
		logging.FromContext(ctx).Warn("audit failed", "error", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "User deleted successfully"})
}

func (h *AdminHandler) GetActivityLogs(c echo.Context) error {
	page, limit, offset := util.PageParams(c)

	q := h.DB.Model(&models.ActivityLog{})
	if v := c.QueryParam("userId"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			q = q.Where("user_id = ?", id)
		}
	}
	if v := c.QueryParam("action"); v != "" {
		q = q.Where("action = ?", v)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch activity logs")
	}

	var logs []models.ActivityLog
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&logs).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch activity logs")
	}

	views, err := h.logsWithUsers(logs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch activity logs")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"logs":       views,
		"pagination": util.Paginate(total, page, limit),
	})
}
