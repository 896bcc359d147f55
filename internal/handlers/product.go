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
	"github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/util"
)

type ProductHandler struct {
	DB    *gorm.DB
	Audit *audit.Recorder
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	page, limit, offset := util.PageParams(c)

	q := h.DB.Model(&models.Product{})
	if v := c.QueryParam("category"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			q = q.Where("category_id = ?", id)
		}
	}
	if c.QueryParam("available") == "true" {
		q = q.Where("is_available = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch products")
	}

	var products []models.Product
	if err := q.Order("id ASC").Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch products")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data":       products,
		"pagination": util.Paginate(total, page, limit),
	})
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch product")
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	actorID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	var req struct {
		Name          string  `json:"name"`
		Description   string  `json:"description"`
		Price         float64 `json:"price"`
		Discount      float64 `json:"discount"`
		StockQuantity int     `json:"stock_quantity"`
		IsAvailable   *bool   `json:"is_available"`
		ImageURL      string  `json:"image_url"`
		CategoryID    *uint   `json:"category_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" || req.Price < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "name and a non-negative price are required")
	}

	product := models.Product{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		Discount:      req.Discount,
		StockQuantity: req.StockQuantity,
		IsAvailable:   true,
		ImageURL:      req.ImageURL,
		CategoryID:    req.CategoryID,
	}
	if req.IsAvailable != nil {
		product.IsAvailable = *req.IsAvailable
	}

	if err := h.DB.Create(&product).Error; err != nil {
		logging.FromContext(ctx).Error("product create failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create product")
	}

	if err := h.Audit.Record(ctx, h.DB, actorID, "create_product", "product", product.ID, map[string]any{"name": product.Name}); err != nil {
		logging.FromContext(ctx).Warn("audit failed", "error", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Product created successfully",
		"product": product,
	})
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	actorID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch product")
	}

	var req struct {
		Name          *string  `json:"name"`
		Description   *string  `json:"description"`
		Price         *float64 `json:"price"`
		Discount      *float64 `json:"discount"`
		StockQuantity *int     `json:"stock_quantity"`
		IsAvailable   *bool    `json:"is_available"`
		ImageURL      *string  `json:"image_url"`
		CategoryID    *uint    `json:"category_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Discount != nil {
		updates["discount"] = *req.Discount
	}
	if req.StockQuantity != nil {
		updates["stock_quantity"] = *req.StockQuantity
	}
	if req.IsAvailable != nil {
		updates["is_available"] = *req.IsAvailable
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}
	if len(updates) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "nothing to update")
	}

	if err := h.DB.Model(&product).Updates(updates).Error; err != nil {
		logging.FromContext(ctx).Error("product update failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update product")
	}

	if err := h.Audit.Record(ctx, h.DB, actorID, "update_product", "product", product.ID, updates); err != nil {
		logging.FromContext(ctx).Warn("audit failed", "error", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Product updated successfully",
		"product": product,
	})
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	actorID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch product")
	}

	// Existing order items keep their snapshots; only the catalog row goes.
	if err := h.DB.Delete(&product).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete product")
	}

	if err := h.Audit.Record(ctx, h.DB, actorID, "delete_product", "product", product.ID, map[string]any{"name": product.Name}); err != nil {
		logging.FromContext(ctx).Warn("audit failed", "error", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Product deleted successfully"})
}
