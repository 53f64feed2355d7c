package product

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"kart_back_end/internal/handlers"
	"kart_back_end/internal/models"
)

type Catalog interface {
	GetProducts(ctx context.Context) ([]models.Product, error)
	GetProductByID(ctx context.Context, id string) (*models.Product, error)
	SearchProducts(ctx context.Context, query string) ([]models.Product, error)
}

type Handler struct {
	products Catalog
}

func NewHandler(products Catalog) *Handler {
	return &Handler{products: products}
}

// GetProducts GET /v1/products
func (h *Handler) GetProducts(c *gin.Context) {
	products, err := h.products.GetProducts(c.Request.Context())
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// GetProduct GET /v1/products/:productId
func (h *Handler) GetProduct(c *gin.Context) {
	p, err := h.products.GetProductByID(c.Request.Context(), c.Param("productId"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// SearchProducts GET /v1/products/search?q=
func (h *Handler) SearchProducts(c *gin.Context) {
	products, err := h.products.SearchProducts(c.Request.Context(), c.Query("q"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}
