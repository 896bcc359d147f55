package cart

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
)

type CartHandler struct {
	DB    *gorm.DB
	Audit *audit.Recorder
}

// GetCart returns the caller's cart, creating an empty one on first access.
func (h *CartHandler) GetCart(c echo.Context) error {
	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	view, err := query.CartForUser(h.DB, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch cart")
		}
		cart := models.Cart{UserID: userID}
		if err := h.DB.Create(&cart).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch cart")
		}
		view = &query.CartView{Cart: cart, Items: []query.CartItemView{}}
	}

	return c.JSON(http.StatusOK, view)
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	var req struct {
		ProductID uint `json:"product_id"`
		Quantity  int  `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	var product models.Product
	if err := h.DB.First(&product, req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to add item to cart")
	}
	if !product.IsAvailable || product.StockQuantity < req.Quantity {
		return echo.NewHTTPError(http.StatusBadRequest, "Product is not available in the requested quantity")
	}

	var cart models.Cart
	if err := h.DB.Where(models.Cart{UserID: userID}).FirstOrCreate(&cart).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to add item to cart")
	}

	var item models.CartItem
	err = h.DB.Where("cart_id = ? AND product_id = ?", cart.ID, req.ProductID).First(&item).Error
	switch {
	case err == nil:
		// Same product again: validate the combined quantity.
		newQuantity := item.Quantity + req.Quantity
		if newQuantity > product.StockQuantity {
			return echo.NewHTTPError(http.StatusBadRequest, "Requested quantity exceeds available stock")
		}
		if err := h.DB.Model(&item).Update("quantity", newQuantity).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to add item to cart")
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = models.CartItem{CartID: cart.ID, ProductID: req.ProductID, Quantity: req.Quantity}
		if err := h.DB.Create(&item).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to add item to cart")
		}
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to add item to cart")
	}

	if err := h.Audit.Record(ctx, h.DB, userID, "add_to_cart", "cart_item", item.ID,
		map[string]any{"product_id": req.ProductID, "quantity": req.Quantity}); err != nil {
		logging.FromContext(ctx).Warn("audit failed", "error", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":   "Item added to cart",
		"cart_item": item,
	})
}

// ownItem loads a cart item scoped to the caller's cart. A foreign item is
// reported as not-found, never as forbidden.
func (h *CartHandler) ownItem(c echo.Context, userID uint) (*models.CartItem, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var cart models.Cart
	if err := h.DB.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "Cart item not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch cart")
	}

	var item models.CartItem
	if err := h.DB.Where("id = ? AND cart_id = ?", id, cart.ID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "Cart item not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch cart")
	}
	return &item, nil
}

func (h *CartHandler) UpdateCartItem(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	item, err := h.ownItem(c, userID)
	if err != nil {
		return err
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Quantity < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "quantity must be positive")
	}

	var product models.Product
	if err := h.DB.First(&product, item.ProductID).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update cart item")
	}
	if req.Quantity > product.StockQuantity {
		return echo.NewHTTPError(http.StatusBadRequest, "Requested quantity exceeds available stock")
	}

	if err := h.DB.Model(item).Update("quantity", req.Quantity).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update cart item")
	}

	if err := h.Audit.Record(ctx, h.DB, userID, "update_cart_item", "cart_item", item.ID,
		map[string]any{"quantity": req.Quantity}); err != nil {
		logging.FromContext(ctx).Warn("audit failed", "error", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":   "Cart item updated",
		"cart_item": item,
	})
}

func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	item, err := h.ownItem(c, userID)
	if err != nil {
		return err
	}

	if err := h.DB.Delete(item).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to remove item from cart")
	}

	if err := h.Audit.Record(ctx, h.DB, userID, "remove_from_cart", "cart_item", item.ID, nil); err != nil {
		logging.FromContext(ctx).Warn("audit failed", "error", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Item removed from cart"})
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	var cart models.Cart
	if err := h.DB.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Cart not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to clear cart")
	}

	if err := h.DB.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to clear cart")
	}

	if err := h.Audit.Record(ctx, h.DB, userID, "clear_cart", "cart", cart.ID, nil); err != nil {
		logging.FromContext(ctx).Warn("audit failed", "error", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Cart cleared successfully"})
}
