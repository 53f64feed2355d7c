package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"kart_back_end/internal/apierror"
	"kart_back_end/internal/models"
	"kart_back_end/internal/repository"
)

const MsgProductNotFound = "Product not found"

// ProductReader is implemented by the catalog and by its Redis cache.
type ProductReader interface {
	FindByID(ctx context.Context, id string) (*models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
}

type ProductSearcher interface {
	Search(ctx context.Context, query string) ([]models.Product, error)
}

type ImageSigner interface {
	SignedURL(ctx context.Context, image string) (string, error)
}

// ProductService serves the public catalog. Search and images are optional.
type ProductService struct {
	catalog ProductReader
	search  ProductSearcher
	images  ImageSigner
	log     *zap.Logger
}

func NewProductService(catalog ProductReader, search ProductSearcher, images ImageSigner, log *zap.Logger) *ProductService {
	return &ProductService{catalog: catalog, search: search, images: images, log: log}
}

func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.catalog.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierror.NotFound(MsgProductNotFound)
	}
	if err != nil {
		s.log.Error("get product failed", zap.String("product_id", id), zap.Error(err))
		return nil, apierror.Internal()
	}
	out := s.withImage(ctx, *p)
	return &out, nil
}

func (s *ProductService) GetProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.catalog.List(ctx)
	if err != nil {
		s.log.Error("list products failed", zap.Error(err))
		return nil, apierror.Internal()
	}
	return s.withImages(ctx, products), nil
}

// SearchProducts falls back to a name/category substring match over the
// catalog when Elasticsearch is not configured.
func (s *ProductService) SearchProducts(ctx context.Context, query string) ([]models.Product, error) {
	if s.search == nil {
		products, err := s.GetProducts(ctx)
		if err != nil {
			return nil, err
		}
		return filterProducts(products, query), nil
	}

	products, err := s.search.Search(ctx, query)
	if err != nil {
		s.log.Error("product search failed", zap.String("query", query), zap.Error(err))
		return nil, apierror.Internal()
	}
	return s.withImages(ctx, products), nil
}

func (s *ProductService) withImages(ctx context.Context, products []models.Product) []models.Product {
	out := make([]models.Product, len(products))
	for i, p := range products {
		out[i] = s.withImage(ctx, p)
	}
	return out
}

func (s *ProductService) withImage(ctx context.Context, p models.Product) models.Product {
	if s.images == nil {
		return p
	}
	signed, err := s.images.SignedURL(ctx, p.Image)
	if err != nil {
		s.log.Warn("image url not signed", zap.String("product_id", p.ID), zap.Error(err))
		return p
	}
	p.Image = signed
	return p
}
