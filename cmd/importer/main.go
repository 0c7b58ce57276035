package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"notes-store/internal/catalog"
	"notes-store/internal/config"
	"notes-store/internal/db"
	"notes-store/internal/repository/product"

	"github.com/joho/godotenv"
)

func main() {
	var source string
	flag.StringVar(&source, "source", "", "Catalog source to import from (file, links or proxy); overrides CATALOG_SOURCE")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.FromEnv()
	if source != "" {
		cfg.CatalogSource = source
	}

	logger := log.New(os.Stdout, "[importer] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	src, err := catalog.FromConfig(cfg, logger)
	if err != nil {
		logger.Fatalf("select catalog source: %v", err)
	}

	imp := catalog.NewImporter(src, product.NewPostgres(pool, logger), logger)

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		logger.Fatalf("import failed: %v", err)
	}

	fmt.Printf("Imported %d products from %s source in %s\n", count, cfg.CatalogSource, time.Since(start).Truncate(time.Millisecond))
}
