package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"notes-store/internal/config"
	"notes-store/internal/db"
	"notes-store/internal/httpserver"
	"notes-store/internal/payment"
	grantrepo "notes-store/internal/repository/grant"
	orderrepo "notes-store/internal/repository/order"
	productrepo "notes-store/internal/repository/product"
	catalogsvc "notes-store/internal/service/catalog"
	checkoutsvc "notes-store/internal/service/checkout"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	if cfg.RazorpayKeyID == "" || cfg.RazorpayKeySecret == "" {
		logger.Fatal("RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET must be set")
	}

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	products := productrepo.NewPostgres(dbpool, logger)
	orders := orderrepo.NewPostgres(dbpool, logger)
	grants := grantrepo.NewPostgres(dbpool, logger)

	provider := payment.NewClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.ProviderTimeout, logger)
	signer := payment.NewSigner(cfg.RazorpayKeySecret)

	catalogService := catalogsvc.New(products)
	checkoutService := checkoutsvc.New(products, orders, grants, provider, signer, cfg.RazorpayKeyID, cfg.GrantTTL, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		CatalogSvc:  catalogService,
		CheckoutSvc: checkoutService,
		FilesDir:    cfg.FilesDir,
		WebDir:      cfg.WebDir,
		CORSOrigins: cfg.CORSOrigins,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
