// Package query holds the multi-entity reads. Each aggregate (cart with
// items and product summaries, order with items, address and purchaser) is
// built from explicit lookups rather than declarative association metadata.
package query

import (
	"gorm.io/gorm"

	"github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/models"
)

type ProductSummary struct {
	ID            uint    `json:"id"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Discount      float64 `json:"discount"`
	ImageURL      string  `json:"image_url"`
	StockQuantity int     `json:"stock_quantity"`
	IsAvailable   bool    `json:"is_available"`
}

func Summarize(p models.Product) ProductSummary {
	return ProductSummary{
		ID:            p.ID,
		Name:          p.Name,
		Price:         p.Price,
		Discount:      p.Discount,
		ImageURL:      p.ImageURL,
		StockQuantity: p.StockQuantity,
		IsAvailable:   p.IsAvailable,
	}
}

type UserSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type CartItemView struct {
	models.CartItem
	Product *ProductSummary `json:"product,omitempty"`
}

type CartView struct {
	models.Cart
	Items []CartItemView `json:"items"`
}

type OrderItemView struct {
	models.OrderItem
	Product *ProductSummary `json:"product,omitempty"`
}

type OrderView struct {
	models.Order
	Items   []OrderItemView `json:"items"`
	Address *models.Address `json:"address,omitempty"`
	User    *UserSummary    `json:"user,omitempty"`
}

// ProductSummaries loads summaries for a set of product ids.
func ProductSummaries(db *gorm.DB, ids []uint) (map[uint]ProductSummary, error) {
	out := make(map[uint]ProductSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var prods []models.Product
	if err := db.Where("id IN ?", ids).Find(&prods).Error; err != nil {
		return nil, err
	}
	for _, p := range prods {
		out[p.ID] = Summarize(p)
	}
	return out, nil
}

// UserSummaries loads id/name/email for a set of user ids. Password hashes
// never leave the models layer here.
func UserSummaries(db *gorm.DB, ids []uint) (map[uint]UserSummary, error) {
	out := make(map[uint]UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
	}
	return out, nil
}

// CartForUser returns the user's cart aggregate. gorm.ErrRecordNotFound is
// returned unchanged when the cart row does not exist yet.
func CartForUser(db *gorm.DB, userID uint) (*CartView, error) {
	var cart models.Cart
	if err := db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, err
	}
	return CartDetail(db, cart)
}

// CartDetail attaches items and product summaries to a cart row.
func CartDetail(db *gorm.DB, cart models.Cart) (*CartView, error) {
	var items []models.CartItem
	if err := db.Where("cart_id = ?", cart.ID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	summaries, err := ProductSummaries(db, ids)
	if err != nil {
		return nil, err
	}

	view := &CartView{Cart: cart, Items: make([]CartItemView, 0, len(items))}
	for _, it := range items {
		iv := CartItemView{CartItem: it}
		if s, ok := summaries[it.ProductID]; ok {
			iv.Product = &s
		}
		view.Items = append(view.Items, iv)
	}
	return view, nil
}

func orderItems(db *gorm.DB, orderIDs []uint) (map[uint][]OrderItemView, error) {
	out := make(map[uint][]OrderItemView, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}

	var items []models.OrderItem
	if err := db.Where("order_id IN ?", orderIDs).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}

	pids := make([]uint, 0, len(items))
	for _, it := range items {
		pids = append(pids, it.ProductID)
	}
	summaries, err := ProductSummaries(db, pids)
	if err != nil {
		return nil, err
	}

	for _, it := range items {
		iv := OrderItemView{OrderItem: it}
		if s, ok := summaries[it.ProductID]; ok {
			iv.Product = &s
		}
		out[it.OrderID] = append(out[it.OrderID], iv)
	}
	return out, nil
}

// OrderDetail returns one order with items, product summaries, shipping
// address and purchaser identity.
func OrderDetail(db *gorm.DB, order models.Order) (*OrderView, error) {
	items, err := orderItems(db, []uint{order.ID})
	if err != nil {
		return nil, err
	}

	view := &OrderView{Order: order, Items: items[order.ID]}
	if view.Items == nil {
		view.Items = []OrderItemView{}
	}

	var addr models.Address
	if err := db.First(&addr, order.AddressID).Error; err == nil {
		view.Address = &addr
	}

	users, err := UserSummaries(db, []uint{order.UserID})
	if err != nil {
		return nil, err
	}
	if u, ok := users[order.UserID]; ok {
		view.User = &u
	}
	return view, nil
}

// OrdersForUser returns a user's orders, newest first, with items and
// product summaries.
func OrdersForUser(db *gorm.DB, userID uint) ([]OrderView, error) {
	var orders []models.Order
	if err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	items, err := orderItems(db, ids)
	if err != nil {
		return nil, err
	}

	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		v := OrderView{Order: o, Items: items[o.ID]}
		if v.Items == nil {
			v.Items = []OrderItemView{}
		}
		views = append(views, v)
	}
	return views, nil
}

// WithUsers attaches purchaser summaries to a page of orders.
func WithUsers(db *gorm.DB, orders []models.Order) ([]OrderView, error) {
	ids := make([]uint, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.UserID)
	}
	users, err := UserSummaries(db, ids)
	if err != nil {
		return nil, err
	}

	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		v := OrderView{Order: o, Items: []OrderItemView{}}
		if u, ok := users[o.UserID]; ok {
			v.User = &u
		}
		views = append(views, v)
	}
	return views, nil
}
