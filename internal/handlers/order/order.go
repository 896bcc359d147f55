package order

import (
	"errors"
	"fmt"
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

var validStatuses = map[string]bool{
	"pending":   true,
	"paid":      true,
	"shipped":   true,
	"delivered": true,
	"cancelled": true,
}

type OrderHandler struct {
	DB    *gorm.DB
	Audit *audit.Recorder
}

func (h *OrderHandler) GetMyOrders(c echo.Context) error {
	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	orders, err := query.OrdersForUser(h.DB, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch orders")
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.DB.Where("id = ? AND user_id = ?", id, userID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch order")
	}

	view, err := query.OrderDetail(h.DB, order)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch order")
	}
	return c.JSON(http.StatusOK, view)
}

// CreateOrder converts the caller's cart into an order. The whole
// read-validate-write sequence runs in one transaction and the stock
// decrement is guarded, so two concurrent orders cannot jointly oversell
// and a failure leaves no partial order behind.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	var req struct {
		AddressID     uint   `json:"address_id"`
		PaymentMethod string `json:"payment_method"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var order models.Order

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		if err := tx.Where("user_id = ?", userID).First(&cart).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return echo.NewHTTPError(http.StatusBadRequest, "Cart is empty")
			}
			return err
		}

		var items []models.CartItem
		if err := tx.Where("cart_id = ?", cart.ID).Order("id ASC").Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Cart is empty")
		}

		var address models.Address
		if err := tx.Where("id = ? AND user_id = ?", req.AddressID, userID).First(&address).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, "Shipping address not found")
			}
			return err
		}

		ids := make([]uint, 0, len(items))
		for _, it := range items {
			ids = append(ids, it.ProductID)
		}
		var prods []models.Product
		if err := tx.Where("id IN ?", ids).Find(&prods).Error; err != nil {
			return err
		}
		products := make(map[uint]models.Product, len(prods))
		for _, p := range prods {
			products[p.ID] = p
		}

		// Validate everything before the first write.
		var total float64
		for _, it := range items {
			p, ok := products[it.ProductID]
			if !ok {
				return echo.NewHTTPError(http.StatusBadRequest, "Product no longer exists")
			}
			if !p.IsAvailable || p.StockQuantity < it.Quantity {
				return echo.NewHTTPError(http.StatusBadRequest,
					fmt.Sprintf("Product %s is not available in the requested quantity", p.Name))
			}
			total += float64(it.Quantity) * p.Price * (1 - p.Discount/100)
		}

		order = models.Order{
			UserID:        userID,
			AddressID:     address.ID,
			TotalAmount:   total,
			Status:        "pending",
			PaymentMethod: req.PaymentMethod,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for _, it := range items {
			p := products[it.ProductID]
			oi := models.OrderItem{
				OrderID:   order.ID,
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				Price:     p.Price,
				Discount:  p.Discount,
			}
			if err := tx.Create(&oi).Error; err != nil {
				return err
			}

			// Guarded decrement: a concurrent order that got there first
			// makes RowsAffected zero, which aborts the transaction.
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock_quantity >= ?", it.ProductID, it.Quantity).
				UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", it.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return echo.NewHTTPError(http.StatusBadRequest,
					fmt.Sprintf("Product %s is not available in the requested quantity", p.Name))
			}
		}

		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}

		return h.Audit.Record(ctx, tx, userID, "create_order", "order", order.ID,
			map[string]any{"total": total, "items": len(items)})
	})

	if txErr != nil {
		var he *echo.HTTPError
		if errors.As(txErr, &he) {
			return he
		}
		logging.FromContext(ctx).Error("order creation failed", "error", txErr)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create order")
	}

	view, err := query.OrderDetail(h.DB, order)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch order")
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Order created successfully",
		"order":   view,
	})
}

func (h *OrderHandler) GetAllOrders(c echo.Context) error {
	page, limit, offset := util.PageParams(c)

	q := h.DB.Model(&models.Order{})
	if status := c.QueryParam("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch orders")
	}

	var orders []models.Order
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch orders")
	}

	views, err := query.WithUsers(h.DB, orders)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch orders")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"orders":     views,
		"pagination": util.Paginate(total, page, limit),
	})
}

func (h *OrderHandler) UpdateOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()
	actorID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if !validStatuses[req.Status] {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var order models.Order
	if err := h.DB.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch order")
	}

	if err := h.DB.Model(&order).Update("status", req.Status).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update order status")
	}

	if err := h.Audit.Record(ctx, h.DB, actorID, "update_order_status", "order", order.ID,
		map[string]any{"status": req.Status}); err != nil {
		logging.FromContext(ctx).Warn("audit failed", "error", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Order status updated successfully",
		"order":   order,
	})
}
