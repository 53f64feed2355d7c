package routes

import (
	"github.com/gin-gonic/gin"

	"kart_back_end/internal/handlers/product"
	"kart_back_end/internal/handlers/user"
	"kart_back_end/internal/middleware"
)

type Dependencies struct {
	Auth     *user.AuthHandler
	Users    *user.UserHandler
	Cart     *user.CartHandler
	Products *product.Handler

	Authenticator middleware.Authenticator
	// Limiter is optional; nil disables rate limiting.
	Limiter *middleware.RateLimiter
}

func RegisterRoutes(r *gin.Engine, d Dependencies) {
	limit := func(pick func(*middleware.RateLimiter) gin.HandlerFunc) gin.HandlerFunc {
		if d.Limiter == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return pick(d.Limiter)
	}
	authRequired := middleware.AuthRequired(d.Authenticator)

	v1 := r.Group("/v1", limit((*middleware.RateLimiter).API))

	auth := v1.Group("/auth")
	auth.POST("/register", limit((*middleware.RateLimiter).Register), d.Auth.Register)
	auth.POST("/login", limit((*middleware.RateLimiter).Login), d.Auth.Login)

	users := v1.Group("/users", authRequired)
	users.GET("/:userId", d.Users.GetUser)
	users.PUT("/:userId", d.Users.SetAddress)

	products := v1.Group("/products")
	products.GET("", d.Products.GetProducts)
	products.GET("/search", limit((*middleware.RateLimiter).Search), d.Products.SearchProducts)
	products.GET("/:productId", d.Products.GetProduct)

	cart := v1.Group("/cart", authRequired)
	cart.GET("", d.Cart.GetCart)
	cart.POST("", limit((*middleware.RateLimiter).Cart), d.Cart.AddProductToCart)
	cart.PUT("", limit((*middleware.RateLimiter).Cart), d.Cart.UpdateProductInCart)
	cart.POST("/checkout", d.Cart.Checkout)
	cart.GET("/ws", d.Cart.CartWebSocket)
}
