package catalog

import (
	"context"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"

	"notes-store/internal/config"
	"notes-store/internal/domain"
)

// Source is the single catalog-acquisition contract. Implementations drop
// items that fail individually; an error means the whole fetch failed.
type Source interface {
	Fetch(ctx context.Context) ([]domain.Product, error)
}

// FromConfig selects the configured acquisition backend.
func FromConfig(cfg config.Config, logger *log.Logger) (Source, error) {
	switch cfg.CatalogSource {
	case "file":
		return NewFileSource(cfg.CatalogFile, cfg.Currency), nil
	case "links":
		return NewLinkSource(cfg.CatalogLinks, cfg.Currency, httpClient(), logger), nil
	case "proxy":
		if cfg.CatalogProxyURL == "" {
			return nil, fmt.Errorf("catalog source %q requires CATALOG_PROXY_URL", cfg.CatalogSource)
		}
		return NewProxySource(cfg.CatalogProxyURL, cfg.Currency, httpClient(), logger), nil
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.CatalogSource)
	}
}

func httpClient() *http.Client {
	return &http.Client{Timeout: 15 * time.Second}
}

// rawProduct is the JSON shape shared by the bundled file and the proxy
// endpoint. Price is in major currency units.
type rawProduct struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`
	Cover       string  `json:"cover"`
	File        string  `json:"file"`
}

func (r rawProduct) toDomain(defaultCurrency string) (domain.Product, bool) {
	if r.ID == "" || r.Title == "" || r.Price < 0 {
		return domain.Product{}, false
	}
	currency := r.Currency
	if currency == "" {
		currency = defaultCurrency
	}
	return domain.Product{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		PriceCents:  toCents(r.Price),
		Currency:    currency,
		CoverURL:    r.Cover,
		FileKey:     r.File,
	}, true
}

func toCents(major float64) int64 {
	return int64(math.Round(major * 100))
}
