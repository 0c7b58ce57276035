package httpserver

import (
	"log"
	"net/http"

	"notes-store/internal/domain"

	"github.com/gin-gonic/gin"
)

// apiProduct is the public catalog shape. Prices are exposed in major
// currency units the way the storefront renders them; the backing file key
// never leaves the server.
type apiProduct struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`
	Cover       string  `json:"cover,omitempty"`
}

func toAPIProduct(p domain.Product) apiProduct {
	return apiProduct{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       float64(p.PriceCents) / 100,
		Currency:    p.Currency,
		Cover:       p.CoverURL,
	}
}

func productsHandler(svc CatalogService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := svc.List(c.Request.Context())
		if err != nil {
			logger.Printf("products: list failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load products"})
			return
		}
		out := make([]apiProduct, 0, len(products))
		for _, p := range products {
			out = append(out, toAPIProduct(p))
		}
		c.JSON(http.StatusOK, out)
	}
}
