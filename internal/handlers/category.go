package handlers

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
)

type CategoryHandler struct {
	DB    *gorm.DB
	Audit *audit.Recorder
}

func (h *CategoryHandler) GetCategories(c echo.Context) error {
	var categories []models.Category
	if err := h.DB.Order("name ASC").Find(&categories).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch categories")
	}
	return c.JSON(http.StatusOK, categories)
}

func (h *CategoryHandler) GetCategory(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var category models.Category
	if err := h.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Category not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch category")
	}
	return c.JSON(http.StatusOK, category)
}

func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	actorID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	category := models.Category{Name: req.Name}
	if err := h.DB.Create(&category).Error; err != nil {
		logging.FromContext(ctx).Error("category create failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create category")
	}

	if err := h.Audit.Record(ctx, h.DB, actorID, "create_category", "category", category.ID, map[string]any{"name": category.Name}); err != nil {
		logging.FromContext(ctx).Warn("audit failed", "error", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message":  "Category created successfully",
		"category": category,
	})
}

func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	actorID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var category models.Category
	if err := h.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Category not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch category")
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	if err := h.DB.Model(&category).Update("name", req.Name).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update category")
	}

	if err := h.Audit.Record(ctx, h.DB, actorID, "update_category", "category", category.ID, map[string]any{"name": req.Name}); err != nil {
		logging.FromContext(ctx).Warn("audit failed", "error", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":  "Category updated successfully",
		"category": category,
	})
}

func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()
	actorID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var category models.Category
	if err := h.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Category not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch category")
	}

	if err := h.DB.Delete(&category).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete category")
	}

	if err := h.Audit.Record(ctx, h.DB, actorID, "delete_category", "category", category.ID, map[string]any{"name": category.Name}); err != nil {
		logging.FromContext(ctx).Warn("audit failed", "error", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Category deleted successfully"})
}
