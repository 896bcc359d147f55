package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/handlers"
	"github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/handlers/admin"
	"github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/handlers/cart"
	"github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/handlers/order"
	authmw "github.com/Vireakyuth-Oeurn/FESE2102025GROUP1/internal/middleware/auth"
)

type Deps struct {
	JWTSecret []byte

	AuthHandler     *handlers.AuthHandler
	UserHandler     *handlers.UserHandler
	ProductHandler  *handlers.ProductHandler
	CategoryHandler *handlers.CategoryHandler
	AddressHandler  *handlers.AddressHandler
	SearchHandler   *handlers.SearchHandler // nil when Elasticsearch is not configured
	CartHandler     *cart.CartHandler
	OrderHandler    *order.OrderHandler
	AdminHandler    *admin.AdminHandler
}

func authRateLimiter() echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(5),
				Burst:     10,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusTooManyRequests, echo.Map{"message": "rate limit exceeded"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, echo.Map{"message": "rate limit exceeded"})
		},
	})
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	api := e.Group("/api")

	requireLogin := authmw.RequireLogin(d.JWTSecret)

	auth := api.Group("/auth", authRateLimiter())
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/refresh", d.AuthHandler.Refresh)
	auth.POST("/logout", d.AuthHandler.Logout)
	auth.POST("/reset-password", d.AuthHandler.ResetPassword)

	users := api.Group("/users", requireLogin)
	users.GET("/me", d.UserHandler.Me)
	users.PUT("/me", d.UserHandler.UpdateMe)
	users.DELETE("/me", d.UserHandler.DeleteMe)

	products := api.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	if d.SearchHandler != nil {
		products.GET("/search", d.SearchHandler.SearchProducts)
	}
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.POST("", d.ProductHandler.CreateProduct, requireLogin, authmw.AdminOnly)
	products.PUT("/:id", d.ProductHandler.UpdateProduct, requireLogin, authmw.AdminOnly)
	products.DELETE("/:id", d.ProductHandler.DeleteProduct, requireLogin, authmw.AdminOnly)

	categories := api.Group("/categories")
	categories.GET("", d.CategoryHandler.GetCategories)
	categories.GET("/:id", d.CategoryHandler.GetCategory)
	categories.POST("", d.CategoryHandler.CreateCategory, requireLogin, authmw.AdminOnly)
	categories.PUT("/:id", d.CategoryHandler.UpdateCategory, requireLogin, authmw.AdminOnly)
	categories.DELETE("/:id", d.CategoryHandler.DeleteCategory, requireLogin, authmw.AdminOnly)

	addresses := api.Group("/addresses", requireLogin)
	addresses.GET("", d.AddressHandler.GetAddresses)
	addresses.POST("", d.AddressHandler.CreateAddress)
	addresses.PUT("/:id", d.AddressHandler.UpdateAddress)
	addresses.DELETE("/:id", d.AddressHandler.DeleteAddress)

	cartGroup := api.Group("/cart", requireLogin)
	cartGroup.GET("", d.CartHandler.GetCart)
	cartGroup.POST("", d.CartHandler.AddToCart)
	cartGroup.PUT("/:id", d.CartHandler.UpdateCartItem)
	cartGroup.DELETE("", d.CartHandler.ClearCart)
	cartGroup.DELETE("/:id", d.CartHandler.RemoveFromCart)

	orders := api.Group("/orders", requireLogin)
	orders.GET("/my-orders", d.OrderHandler.GetMyOrders)
	orders.POST("", d.OrderHandler.CreateOrder)
	orders.GET("", d.OrderHandler.GetAllOrders, authmw.AdminOnly)
	orders.PUT("/:id/status", d.OrderHandler.UpdateOrderStatus, authmw.AdminOnly)
	orders.GET("/:id", d.OrderHandler.GetOrder)

	adminGroup := api.Group("/admin", requireLogin, authmw.AdminOnly)
	adminGroup.GET("/dashboard", d.AdminHandler.Dashboard)
	adminGroup.GET("/users", d.AdminHandler.GetAllUsers)
	adminGroup.GET("/users/:id", d.AdminHandler.GetUser)
	adminGroup.PUT("/users/:id", d.AdminHandler.UpdateUser)
	adminGroup.DELETE("/users/:id", d.AdminHandler.DeleteUser)
	adminGroup.GET("/orders", d.OrderHandler.GetAllOrders)
	adminGroup.GET("/logs", d.AdminHandler.GetActivityLogs)
}
