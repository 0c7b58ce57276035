package httpserver

import (
	"context"
	"errors"
	"log"
	"time"

	"notes-store/internal/domain"
	"notes-store/internal/service/checkout"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogService lists the public catalog.
type CatalogService interface {
	List(ctx context.Context) ([]domain.Product, error)
}

// CheckoutService drives order creation, verification and downloads.
type CheckoutService interface {
	CreateOrder(ctx context.Context, in checkout.CreateOrderInput) (*checkout.CreateOrderResult, error)
	Verify(ctx context.Context, in checkout.VerifyInput) (*checkout.VerifyResult, error)
	RedeemDownload(ctx context.Context, token string) (string, error)
}

// Deps carries the wired services and static settings the router needs.
type Deps struct {
	CatalogSvc  CatalogService
	CheckoutSvc CheckoutService
	FilesDir    string
	WebDir      string
	CORSOrigins []string
}

// buildRouter wires routes for the storefront API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if deps.CatalogSvc == nil || deps.CheckoutSvc == nil {
		return nil, errors.New("httpserver: missing service dependencies")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(corsConfig(deps.CORSOrigins)))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	api := router.Group("/api")
	api.GET("/products", productsHandler(deps.CatalogSvc, logger))
	api.POST("/create-order", createOrderHandler(deps.CheckoutSvc, logger))
	api.POST("/verify-payment", verifyPaymentHandler(deps.CheckoutSvc, logger))
	// Older frontend revisions post the callback here.
	api.POST("/payment-success", verifyPaymentHandler(deps.CheckoutSvc, logger))

	router.GET("/secure-download/:token", downloadHandler(deps.CheckoutSvc, deps.FilesDir, logger))

	if deps.WebDir != "" {
		router.Static("/store", deps.WebDir)
	}

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.MaxAge = 12 * time.Hour
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
