package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kart_back_end/internal/apierror"
	"kart_back_end/internal/models"
)

type listCatalog struct {
	memCatalog
	listErr error
}

func (c listCatalog) List(context.Context) ([]models.Product, error) {
	if c.listErr != nil {
		return nil, c.listErr
	}
	return []models.Product{productOne, productTwo, productSix}, nil
}

type fakePresigner struct{}

func (fakePresigner) PresignedGetObject(_ context.Context, bucket, object string, expires time.Duration, _ url.Values) (*url.URL, error) {
	if strings.HasPrefix(object, "broken") {
		return nil, errors.New("signature failed")
	}
	return url.Parse("https://cdn.example.com/" + bucket + "/" + object + "?X-Amz-Expires=" + expires.String())
}

func TestGetProductByID(t *testing.T) {
	svc := NewProductService(listCatalog{memCatalog: catalog()}, nil, nil, zap.NewNop())

	p, err := svc.GetProductByID(context.Background(), productOne.ID)
	require.NoError(t, err)
	assert.Equal(t, productOne, *p)

	_, err = svc.GetProductByID(context.Background(), "missing")
	requireAPIError(t, err, apierror.KindNotFound, MsgProductNotFound)
}

func TestGetProducts_SignsImages(t *testing.T) {
	images := NewImageURLs(fakePresigner{}, "kart-images", time.Hour)
	svc := NewProductService(listCatalog{memCatalog: catalog()}, nil, images, zap.NewNop())

	products, err := svc.GetProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "https://cdn.example.com/kart-images/one.png?X-Amz-Expires=1h0m0s", products[0].Image)
}

func TestGetProducts_Failure(t *testing.T) {
	svc := NewProductService(listCatalog{memCatalog: catalog(), listErr: errors.New("boom")}, nil, nil, zap.NewNop())
	_, err := svc.GetProducts(context.Background())
	requireAPIError(t, err, apierror.KindInternal, apierror.MsgInternal)
}

func TestSearchProducts_FallbackFilter(t *testing.T) {
	svc := NewProductService(listCatalog{memCatalog: catalog()}, nil, nil, zap.NewNop())

	products, err := svc.SearchProducts(context.Background(), "fashion")
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, productOne.ID, products[0].ID)
	assert.Equal(t, productSix.ID, products[1].ID)

	products, err = svc.SearchProducts(context.Background(), "  ")
	require.NoError(t, err)
	assert.Empty(t, products)
}

type stubSearcher struct {
	products []models.Product
	err      error
}

func (s stubSearcher) Search(context.Context, string) ([]models.Product, error) {
	return s.products, s.err
}

func TestSearchProducts_UsesSearcher(t *testing.T) {
	svc := NewProductService(listCatalog{memCatalog: catalog()}, stubSearcher{products: []models.Product{productTwo}}, nil, zap.NewNop())
	products, err := svc.SearchProducts(context.Background(), "pretium")
	require.NoError(t, err)
	assert.Equal(t, []models.Product{productTwo}, products)

	svc = NewProductService(listCatalog{memCatalog: catalog()}, stubSearcher{err: errors.New("es down")}, nil, zap.NewNop())
	_, err = svc.SearchProducts(context.Background(), "pretium")
	requireAPIError(t, err, apierror.KindInternal, apierror.MsgInternal)
}

func TestImageURLs(t *testing.T) {
	images := NewImageURLs(fakePresigner{}, "kart-images", 15*time.Minute)
	ctx := context.Background()

	got, err := images.SignedURL(ctx, "https://crio-directus-assets.s3.ap-south-1.amazonaws.com/shoe.png")
	require.NoError(t, err)
	assert.Equal(t, "https://crio-directus-assets.s3.ap-south-1.amazonaws.com/shoe.png", got)

	got, err = images.SignedURL(ctx, "/kart-images/products/shoe.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/kart-images/products/shoe.png?X-Amz-Expires=15m0s", got)

	_, err = images.SignedURL(ctx, "broken.png")
	assert.Error(t, err)
}

func TestWithImage_KeepsRawKeyOnFailure(t *testing.T) {
	cat := catalog()
	broken := productOne
	broken.Image = "broken.png"
	cat[broken.ID] = broken

	svc := NewProductService(listCatalog{memCatalog: cat}, nil, NewImageURLs(fakePresigner{}, "kart-images", time.Hour), zap.NewNop())
	p, err := svc.GetProductByID(context.Background(), broken.ID)
	require.NoError(t, err)
	assert.Equal(t, "broken.png", p.Image)
}

