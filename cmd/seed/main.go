package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"go.uber.org/zap"

	"kart_back_end/internal/cache"
	"kart_back_end/internal/config"
	"kart_back_end/internal/database"
	"kart_back_end/internal/logger"
	"kart_back_end/internal/models"
	"kart_back_end/internal/repository"
	"kart_back_end/internal/services"
)

// seed loads a JSON product list into Scylla and Elasticsearch.
func main() {
	path := flag.String("file", "scripts/products.json", "product list to import")
	flag.Parse()

	cfg := config.Load()
	zlog, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("❌ logger: %v", err)
	}
	defer zlog.Sync()

	data, err := os.ReadFile(*path)
	if err != nil {
		zlog.Fatal("read product file", zap.String("file", *path), zap.Error(err))
	}
	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		zlog.Fatal("decode product file", zap.String("file", *path), zap.Error(err))
	}

	ctx := context.Background()
	conns, err := database.Connect(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("database connection failed", zap.Error(err))
	}
	defer conns.Close()

	catalog := repository.NewProductCatalog(conns.Scylla)
	var indexer services.ProductIndexer
	if conns.Elastic != nil {
		indexer = services.NewProductSearch(conns.Elastic, cfg.ElasticIndex, zlog)
	}
	productCache := cache.NewProductCache(conns.Redis, catalog, cache.ProductCacheTTL, zlog)

	imp := services.NewCatalogImporter(catalog, indexer, productCache, zlog)
	if _, _, err := imp.Import(ctx, products); err != nil {
		zlog.Fatal("import failed", zap.Error(err))
	}
}
