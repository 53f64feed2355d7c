package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"kart_back_end/internal/models"
)

type ProductWriter interface {
	Upsert(ctx context.Context, p models.Product) error
}

type ProductIndexer interface {
	IndexProduct(ctx context.Context, p models.Product) error
}

type ProductInvalidator interface {
	Invalidate(ctx context.Context, id string)
}

// CatalogImporter loads products into the catalog, then keeps the search
// index and the product cache in line with it. Indexer and cache are optional.
type CatalogImporter struct {
	writer  ProductWriter
	indexer ProductIndexer
	cache   ProductInvalidator
	log     *zap.Logger
}

func NewCatalogImporter(writer ProductWriter, indexer ProductIndexer, cache ProductInvalidator, log *zap.Logger) *CatalogImporter {
	return &CatalogImporter{writer: writer, indexer: indexer, cache: cache, log: log}
}

// Import stops at the first catalog write failure. Index failures are logged
// and counted but do not stop the import.
func (i *CatalogImporter) Import(ctx context.Context, products []models.Product) (imported, indexFailures int, err error) {
	for _, p := range products {
		if p.ID == "" || p.Cost < 0 {
			return imported, indexFailures, fmt.Errorf("invalid product %q: id is required and cost must be >= 0", p.Name)
		}
		if err := i.writer.Upsert(ctx, p); err != nil {
			return imported, indexFailures, fmt.Errorf("upsert %s: %w", p.ID, err)
		}
		imported++

		if i.cache != nil {
			i.cache.Invalidate(ctx, p.ID)
		}
		if i.indexer != nil {
			if err := i.indexer.IndexProduct(ctx, p); err != nil {
				indexFailures++
				i.log.Warn("product not indexed", zap.String("product_id", p.ID), zap.Error(err))
			}
		}
	}
	i.log.Info("catalog imported", zap.Int("products", imported), zap.Int("index_failures", indexFailures))
	return imported, indexFailures, nil
}
