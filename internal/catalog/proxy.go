package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"notes-store/internal/domain"
)

// proxySource fetches the catalog from a remote function that performs the
// payment-link extraction server-side and returns the shared JSON shape.
type proxySource struct {
	url      string
	currency string
	client   *http.Client
	logger   *log.Logger
}

func NewProxySource(url, defaultCurrency string, client *http.Client, logger *log.Logger) Source {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &proxySource{url: url, currency: defaultCurrency, client: client, logger: logger}
}

func (s *proxySource) Fetch(ctx context.Context) ([]domain.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build proxy request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch proxy catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("proxy catalog returned status %d", resp.StatusCode)
	}

	var raw []rawProduct
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode proxy catalog: %w", err)
	}

	products := make([]domain.Product, 0, len(raw))
	for _, r := range raw {
		p, ok := r.toDomain(s.currency)
		if !ok {
			s.logger.Printf("catalog proxy: dropping item id=%q title=%q", r.ID, r.Title)
			continue
		}
		products = append(products, p)
	}
	return products, nil
}
