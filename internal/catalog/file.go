package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"notes-store/internal/domain"
)

// fileSource loads the static bundled catalog (data/products.json).
type fileSource struct {
	path     string
	currency string
}

func NewFileSource(path, defaultCurrency string) Source {
	return &fileSource{path: path, currency: defaultCurrency}
}

func (s *fileSource) Fetch(_ context.Context) ([]domain.Product, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	var raw []rawProduct
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}
	products := make([]domain.Product, 0, len(raw))
	for _, r := range raw {
		if p, ok := r.toDomain(s.currency); ok {
			products = append(products, p)
		}
	}
	return products, nil
}
