package httpserver

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"notes-store/internal/domain"
	"notes-store/internal/service/checkout"

	"github.com/gin-gonic/gin"
)

// createOrderRequest accepts both field spellings the frontend variants
// send. Amount is parsed but never used: pricing is server-side only.
type createOrderRequest struct {
	ProductID      string  `json:"productId"`
	ProductIDSnake string  `json:"product_id"`
	Email          string  `json:"email"`
	Amount         float64 `json:"amount"`
	IdempotencyKey string  `json:"idempotencyKey"`
}

func (r createOrderRequest) productID() string {
	if id := strings.TrimSpace(r.ProductID); id != "" {
		return id
	}
	return strings.TrimSpace(r.ProductIDSnake)
}

type createOrderResponse struct {
	OrderID string     `json:"orderId"`
	Key     string     `json:"key"`
	Amount  int64      `json:"amount"`
	Product apiProduct `json:"product"`
}

func createOrderHandler(svc CheckoutService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if req.productID() == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "productId required"})
			return
		}

		res, err := svc.CreateOrder(c.Request.Context(), checkout.CreateOrderInput{
			ProductID:      req.productID(),
			Email:          strings.TrimSpace(req.Email),
			IdempotencyKey: req.IdempotencyKey,
		})
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			case errors.Is(err, checkout.ErrIdempotencyMismatch):
				c.JSON(http.StatusConflict, gin.H{"error": "idempotency key already used"})
			default:
				logger.Printf("create-order: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating order"})
			}
			return
		}

		c.JSON(http.StatusOK, createOrderResponse{
			OrderID: res.Order.ProviderOrderID,
			Key:     res.KeyID,
			Amount:  res.Order.AmountCents,
			Product: toAPIProduct(res.Product),
		})
	}
}

type verifyPaymentRequest struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
	ProductID string `json:"productId"`
	Email     string `json:"email"`
}

func verifyPaymentHandler(svc CheckoutService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req verifyPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
			return
		}

		res, err := svc.Verify(c.Request.Context(), checkout.VerifyInput{
			OrderID:   strings.TrimSpace(req.OrderID),
			PaymentID: strings.TrimSpace(req.PaymentID),
			Signature: strings.TrimSpace(req.Signature),
		})
		if err != nil {
			switch {
			case errors.Is(err, checkout.ErrReplayedVerification):
				c.JSON(http.StatusConflict, gin.H{"success": false, "error": "order already verified"})
			case errors.Is(err, checkout.ErrSignatureInvalid), errors.Is(err, domain.ErrNotFound):
				// Unknown order and bad signature look identical on purpose.
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "verification failed"})
			default:
				logger.Printf("verify-payment: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "verification failed"})
			}
			return
		}

		// Both spellings: one per frontend revision.
		c.JSON(http.StatusOK, gin.H{
			"success":      true,
			"downloadLink": res.DownloadPath,
			"download_url": res.DownloadPath,
		})
	}
}
