package cart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/audit"
	"github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func newHandler(t *testing.T) (*CartHandler, *echo.Echo) {
	return &CartHandler{DB: newTestDB(t), Audit: &audit.Recorder{}}, echo.New()
}

func newJSONContext(t *testing.T, e *echo.Echo, method, path string, body any) (*httptest.ResponseRecorder, echo.Context) {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, e.NewContext(req, rec)
}

func asUser(c echo.Context, id uint) {
	c.Set("userID", id)
	c.Set("role", "user")
}

func seedProduct(t *testing.T, db *gorm.DB, name string, stock int, available bool) models.Product {
	p := models.Product{Name: name, Price: 10, StockQuantity: stock, IsAvailable: available}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func countLogs(t *testing.T, db *gorm.DB, action string) int64 {
	var n int64
	require.NoError(t, db.Model(&models.ActivityLog{}).Where("action = ?", action).Count(&n).Error)
	return n
}

func TestGetCartCreatesEmptyCart(t *testing.T) {
	h, e := newHandler(t)

	rec, c := newJSONContext(t, e, http.MethodGet, "/api/cart", nil)
	asUser(c, 1)
	require.NoError(t, h.GetCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var carts []models.Cart
	require.NoError(t, h.DB.Find(&carts).Error)
	require.Len(t, carts, 1)
	require.EqualValues(t, 1, carts[0].UserID)

	// Second call reuses the same cart.
	_, c = newJSONContext(t, e, http.MethodGet, "/api/cart", nil)
	asUser(c, 1)
	require.NoError(t, h.GetCart(c))
	require.NoError(t, h.DB.Find(&carts).Error)
	require.Len(t, carts, 1)
}

func TestAddToCartUnknownProduct(t *testing.T) {
	h, e := newHandler(t)

	_, c := newJSONContext(t, e, http.MethodPost, "/api/cart", map[string]any{
		"product_id": 42, "quantity": 1,
	})
	asUser(c, 1)
	err := h.AddToCart(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusNotFound, he.Code)
	require.Equal(t, "Product not found", he.Message)
}

func TestAddToCartUnavailable(t *testing.T) {
	h, e := newHandler(t)
	p := seedProduct(t, h.DB, "hidden", 10, false)

	_, c := newJSONContext(t, e, http.MethodPost, "/api/cart", map[string]any{
		"product_id": p.ID, "quantity": 1,
	})
	asUser(c, 1)
	err := h.AddToCart(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, he.Code)

	var n int64
	require.NoError(t, h.DB.Model(&models.CartItem{}).Count(&n).Error)
	require.EqualValues(t, 0, n)
}

func TestAddToCartOverstock(t *testing.T) {
	h, e := newHandler(t)
	p := seedProduct(t, h.DB, "scarce", 2, true)

	_, c := newJSONContext(t, e, http.MethodPost, "/api/cart", map[string]any{
		"product_id": p.ID, "quantity": 3,
	})
	asUser(c, 1)
	err := h.AddToCart(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, he.Code)
	require.Equal(t, "Product is not available in the requested quantity", he.Message)
}

func TestAddToCartDuplicateSums(t *testing.T) {
	h, e := newHandler(t)
	p := seedProduct(t, h.DB, "gadget", 5, true)

	add := func(qty int) error {
		_, c := newJSONContext(t, e, http.MethodPost, "/api/cart", map[string]any{
			"product_id": p.ID, "quantity": qty,
		})
		asUser(c, 1)
		return h.AddToCart(c)
	}

	require.NoError(t, add(2))
	require.NoError(t, add(2))

	var item models.CartItem
	require.NoError(t, h.DB.Where("product_id = ?", p.ID).First(&item).Error)
	require.Equal(t, 4, item.Quantity)

	// Combined quantity would exceed stock.
	err := add(2)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, he.Code)
	require.Equal(t, "Requested quantity exceeds available stock", he.Message)

	require.NoError(t, h.DB.Where("product_id = ?", p.ID).First(&item).Error)
	require.Equal(t, 4, item.Quantity)

	require.EqualValues(t, 2, countLogs(t, h.DB, "add_to_cart"))
}

func TestUpdateCartItem(t *testing.T) {
	h, e := newHandler(t)
	p := seedProduct(t, h.DB, "gadget", 5, true)
	cart := models.Cart{UserID: 1}
	require.NoError(t, h.DB.Create(&cart).Error)
	item := models.CartItem{CartID: cart.ID, ProductID: p.ID, Quantity: 1}
	require.NoError(t, h.DB.Create(&item).Error)

	rec, c := newJSONContext(t, e, http.MethodPut, "/api/cart/1", map[string]any{"quantity": 3})
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(item.ID))
	asUser(c, 1)
	require.NoError(t, h.UpdateCartItem(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.CartItem
	require.NoError(t, h.DB.First(&updated, item.ID).Error)
	require.Equal(t, 3, updated.Quantity)
	require.EqualValues(t, 1, countLogs(t, h.DB, "update_cart_item"))

	// Over stock is rejected and leaves the row untouched.
	_, c = newJSONContext(t, e, http.MethodPut, "/api/cart/1", map[string]any{"quantity": 9})
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(item.ID))
	asUser(c, 1)
	err := h.UpdateCartItem(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, he.Code)

	require.NoError(t, h.DB.First(&updated, item.ID).Error)
	require.Equal(t, 3, updated.Quantity)
}

func TestCartItemOtherUserIsNotFound(t *testing.T) {
	h, e := newHandler(t)
	p := seedProduct(t, h.DB, "gadget", 5, true)
	cart := models.Cart{UserID: 1}
	require.NoError(t, h.DB.Create(&cart).Error)
	item := models.CartItem{CartID: cart.ID, ProductID: p.ID, Quantity: 1}
	require.NoError(t, h.DB.Create(&item).Error)

	_, c := newJSONContext(t, e, http.MethodPut, "/api/cart/1", map[string]any{"quantity": 2})
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(item.ID))
	asUser(c, 2)
	err := h.UpdateCartItem(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusNotFound, he.Code)
	require.Equal(t, "Cart item not found", he.Message)
}

func TestRemoveFromCart(t *testing.T) {
	h, e := newHandler(t)
	p := seedProduct(t, h.DB, "gadget", 5, true)
	cart := models.Cart{UserID: 1}
	require.NoError(t, h.DB.Create(&cart).Error)
	item := models.CartItem{CartID: cart.ID, ProductID: p.ID, Quantity: 1}
	require.NoError(t, h.DB.Create(&item).Error)

	rec, c := newJSONContext(t, e, http.MethodDelete, "/api/cart/1", nil)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(item.ID))
	asUser(c, 1)
	require.NoError(t, h.RemoveFromCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var n int64
	require.NoError(t, h.DB.Model(&models.CartItem{}).Count(&n).Error)
	require.EqualValues(t, 0, n)
	require.EqualValues(t, 1, countLogs(t, h.DB, "remove_from_cart"))
}

func TestClearCart(t *testing.T) {
	h, e := newHandler(t)
	p1 := seedProduct(t, h.DB, "one", 5, true)
	p2 := seedProduct(t, h.DB, "two", 5, true)
	cart := models.Cart{UserID: 1}
	require.NoError(t, h.DB.Create(&cart).Error)
	require.NoError(t, h.DB.Create(&models.CartItem{CartID: cart.ID, ProductID: p1.ID, Quantity: 1}).Error)
	require.NoError(t, h.DB.Create(&models.CartItem{CartID: cart.ID, ProductID: p2.ID, Quantity: 2}).Error)

	rec, c := newJSONContext(t, e, http.MethodDelete, "/api/cart", nil)
	asUser(c, 1)
	require.NoError(t, h.ClearCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var n int64
	require.NoError(t, h.DB.Model(&models.CartItem{}).Count(&n).Error)
	require.EqualValues(t, 0, n)

	// Cart row itself survives.
	require.NoError(t, h.DB.Model(&models.Cart{}).Count(&n).Error)
	require.EqualValues(t, 1, n)
	require.EqualValues(t, 1, countLogs(t, h.DB, "clear_cart"))
}

func TestClearCartWithoutCart(t *testing.T) {
	h, e := newHandler(t)

	_, c := newJSONContext(t, e, http.MethodDelete, "/api/cart", nil)
	asUser(c, 1)
	err := h.ClearCart(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusNotFound, he.Code)
}
