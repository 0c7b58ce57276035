package catalog

import (
	"context"
	"fmt"
	"io"
	"log"

	"notes-store/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// Importer syncs the selected acquisition source into the catalog store.
type Importer struct {
	source Source
	repo   ProductWriter
	logger *log.Logger
}

func NewImporter(source Source, repo ProductWriter, logger *log.Logger) *Importer {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Importer{source: source, repo: repo, logger: logger}
}

// Run fetches the catalog and upserts every product. It returns how many
// products were written.
func (i *Importer) Run(ctx context.Context) (int, error) {
	products, err := i.source.Fetch(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch catalog: %w", err)
	}

	imported := 0
	for _, p := range products {
		if _, err := i.repo.Upsert(ctx, p); err != nil {
			return imported, fmt.Errorf("upsert product %q: %w", p.ID, err)
		}
		imported++
	}
	i.logger.Printf("catalog import: wrote %d products", imported)
	return imported, nil
}
