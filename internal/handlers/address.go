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

// AddressHandler manages a user's saved shipping addresses. Addresses are
// reusable across orders, so deleting one does not touch past orders.
type AddressHandler struct {
	DB    *gorm.DB
	Audit *audit.Recorder
}

func (h *AddressHandler) GetAddresses(c echo.Context) error {
	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	var addresses []models.Address
	if err := h.DB.Where("user_id = ?", userID).Order("id ASC").Find(&addresses).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch addresses")
	}
	return c.JSON(http.StatusOK, addresses)
}

func (h *AddressHandler) CreateAddress(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	var req struct {
		Street  string `json:"street"`
		City    string `json:"city"`
		State   string `json:"state"`
		Zip     string `json:"zip"`
		Country string `json:"country"`
		Phone   string `json:"phone"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Street == "" || req.City == "" || req.Country == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "street, city and country are required")
	}

	address := models.Address{
		UserID:  userID,
		Street:  req.Street,
		City:    req.City,
		State:   req.State,
		Zip:     req.Zip,
		Country: req.Country,
		Phone:   req.Phone,
	}
	if err := h.DB.Create(&address).Error; err != nil {
		logging.FromContext(ctx).Error("address create failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create address")
	}

	if err := h.Audit.Record(ctx, h.DB, userID, "create_address", "address", address.ID, nil); err != nil {
		logging.FromContext(ctx).Warn("audit failed", "error", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Address created successfully",
		"address": address,
	})
}

// ownAddress loads an address scoped to the caller. Cross-user access is a
// plain not-found so existence is not leaked.
func (h *AddressHandler) ownAddress(c echo.Context, userID uint) (*models.Address, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var address models.Address
	if err := h.DB.Where("id = ? AND user_id = ?", id, userID).First(&address).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "Address not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch address")
	}
	return &address, nil
}

func (h *AddressHandler) UpdateAddress(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	address, err := h.ownAddress(c, userID)
	if err != nil {
		return err
	}

	var req struct {
		Street  *string `json:"street"`
		City    *string `json:"city"`
		State   *string `json:"state"`
		Zip     *string `json:"zip"`
		Country *string `json:"country"`
		Phone   *string `json:"phone"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	updates := map[string]any{}
	if req.Street != nil {
		updates["street"] = *req.Street
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.State != nil {
		updates["state"] = *req.State
	}
	if req.Zip != nil {
		updates["zip"] = *req.Zip
	}
	if req.Country != nil {
		updates["country"] = *req.Country
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if len(updates) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "nothing to update")
	}

	if err := h.DB.Model(address).Updates(updates).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update address")
	}

	if err := h.Audit.Record(ctx, h.DB, userID, "update_address", "address", address.ID, updates); err != nil {
		logging.FromContext(ctx).Warn("audit failed", "error", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Address updated successfully",
		"address": address,
	})
}

func (h *AddressHandler) DeleteAddress(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := authmw.UserID(c)
	if err != nil {
		return err
	}

	address, err := h.ownAddress(c, userID)
	if err != nil {
		return err
	}

	if err := h.DB.Delete(address).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete address")
	}

	if err := h.Audit.Record(ctx, h.DB, userID, "delete_address", "address", address.ID, nil); err != nil {
		logging.FromContext(ctx).Warn("audit failed", "error", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Address deleted successfully"})
}
