package models

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"not null"                 json:"name"`
	Username     string    `gorm:"uniqueIndex;not null"     json:"username"`
	Email        string    `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Role         string    `gorm:"not null;default:user"    json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Product struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string    `gorm:"not null"                 json:"name"`
	Description   string    `json:"description"`
	Price         float64   `gorm:"not null"                 json:"price"`
	Discount      float64   `gorm:"default:0"                json:"discount"`
	StockQuantity int       `gorm:"not null;default:0"       json:"stock_quantity"`
	IsAvailable   bool      `gorm:"not null;default:true"    json:"is_available"`
	ImageURL      string    `json:"image_url"`
	CategoryID    *uint     `gorm:"index"                    json:"category_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Category struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null"     json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Cart is created lazily on first access and never deleted, only emptied.
type Cart struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null"     json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CartItem struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	CartID    uint      `gorm:"index;not null"            json:"cart_id"`
	ProductID uint      `gorm:"not null"                  json:"product_id"`
	Quantity  int       `gorm:"not null;check:quantity>0" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Order struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        uint      `gorm:"index;not null"           json:"user_id"`
	AddressID     uint      `gorm:"not null"                 json:"address_id"`
	TotalAmount   float64   `gorm:"not null"                 json:"total_amount"`
	Status        string    `gorm:"not null;default:pending" json:"status"`
	PaymentMethod string    `json:"payment_method"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// OrderItem keeps the price and discount captured at purchase time. Later
// product changes must not alter existing order items.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   uint    `gorm:"index;not null"           json:"order_id"`
	ProductID uint    `gorm:"not null"                 json:"product_id"`
	Quantity  int     `gorm:"not null"                 json:"quantity"`
	Price     float64 `gorm:"not null"                 json:"price"`
	Discount  float64 `gorm:"default:0"                json:"discount"`
}

type Address struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"index;not null"           json:"user_id"`
	Street    string    `gorm:"not null"                 json:"street"`
	City      string    `gorm:"not null"                 json:"city"`
	State     string    `json:"state"`
	Zip       string    `json:"zip"`
	Country   string    `gorm:"not null"                 json:"country"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ActivityLog is append-only. Details holds an opaque JSON payload.
type ActivityLog struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint      `gorm:"index;not null"           json:"user_id"`
	Action     string    `gorm:"index;not null"           json:"action"`
	EntityType string    `gorm:"not null"                 json:"entity_type"`
	EntityID   uint      `json:"entity_id"`
	Details    string    `gorm:"type:jsonb"               json:"details,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Token     string `gorm:"uniqueIndex;not null"     json:"token"`
	UserID    uint   `gorm:"index;not null"           json:"user_id"`
	ExpiresAt int64  `gorm:"not null"                 json:"expires_at"`
	Revoked   bool   `gorm:"default:false"            json:"revoked"`
}

// All lists every model for migration, in dependency order.
func All() []any {
	return []any{
		&User{}, &Category{}, &Product{}, &Cart{}, &CartItem{},
		&Address{}, &Order{}, &OrderItem{}, &ActivityLog{}, &RefreshToken{},
	}
}
