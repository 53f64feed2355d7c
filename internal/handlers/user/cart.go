package user

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"kart_back_end/internal/apierror"
	"kart_back_end/internal/handlers"
	"kart_back_end/internal/middleware"
	"kart_back_end/internal/models"
)

type CartService interface {
	GetCart(ctx context.Context, user *models.User) (*models.Cart, error)
	AddProductToCart(ctx context.Context, user *models.User, productID string, quantity int) (*models.Cart, error)
	UpdateProductInCart(ctx context.Context, user *models.User, productID string, quantity int) (*models.Cart, error)
	DeleteProductFromCart(ctx context.Context, user *models.User, productID string) (*models.Cart, error)
	Checkout(ctx context.Context, user *models.User) (*models.User, error)
}

// CartFeed delivers a notification on every write to a user's cart.
type CartFeed interface {
	Subscribe(ctx context.Context, email string) *redis.PubSub
}

type CartHandler struct {
	carts    CartService
	feed     CartFeed
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewCartHandler(carts CartService, feed CartFeed, allowedOrigins []string, log *zap.Logger) *CartHandler {
	return &CartHandler{
		carts:    carts,
		feed:     feed,
		log:      log,
		upgrader: websocket.Upgrader{CheckOrigin: originChecker(allowedOrigins)},
	}
}

type cartRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  *int   `json:"quantity" binding:"required"`
}

// GetCart GET /v1/cart
func (h *CartHandler) GetCart(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	cart, err := h.carts.GetCart(c.Request.Context(), user)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// AddProductToCart POST /v1/cart
func (h *CartHandler) AddProductToCart(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var in cartRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		handlers.RespondError(c, handlers.BindError(err))
		return
	}

	cart, err := h.carts.AddProductToCart(c.Request.Context(), user, in.ProductID, *in.Quantity)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cart)
}

// UpdateProductInCart sets a quantity; zero removes the product.
// PUT /v1/cart
func (h *CartHandler) UpdateProductInCart(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var in cartRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		handlers.RespondError(c, handlers.BindError(err))
		return
	}

	ctx := c.Request.Context()
	switch q := *in.Quantity; {
	case q < 0:
		handlers.RespondError(c, apierror.InvalidRequest(`"quantity" must be greater than or equal to 0`))
	case q == 0:
		if _, err := h.carts.DeleteProductFromCart(ctx, user, in.ProductID); err != nil {
			handlers.RespondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	default:
		cart, err := h.carts.UpdateProductInCart(ctx, user, in.ProductID, q)
		if err != nil {
			handlers.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// Checkout POST /v1/cart/checkout
func (h *CartHandler) Checkout(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	if _, err := h.carts.Checkout(c.Request.Context(), user); err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CartHandler) currentUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		handlers.RespondError(c, apierror.Unauthorized(apierror.MsgPleaseAuth))
	}
	return user, ok
}
