package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/gocql/gocql"

	"kart_back_end/internal/models"
)

// ProductCatalog reads products from the Scylla products table. The catalog
// is read-only for the rest of the service; Upsert exists for seeding.
type ProductCatalog struct {
	sessions SessionProvider
}

func NewProductCatalog(sessions SessionProvider) *ProductCatalog {
	return &ProductCatalog{sessions: sessions}
}

func (r *ProductCatalog) FindByID(ctx context.Context, id string) (*models.Product, error) {
	session, err := r.sessions.Session()
	if err != nil {
		return nil, err
	}

	var p models.Product
	err = session.Query(`SELECT product_id, name, category, cost, rating, image FROM products WHERE product_id = ?`, id).
		WithContext(ctx).
		Scan(&p.ID, &p.Name, &p.Category, &p.Cost, &p.Rating, &p.Image)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select product %s: %w", id, err)
	}
	return &p, nil
}

func (r *ProductCatalog) List(ctx context.Context) ([]models.Product, error) {
	session, err := r.sessions.Session()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT product_id, name, category, cost, rating, image FROM products`).
		WithContext(ctx).
		Iter()

	products := []models.Product{}
	var p models.Product
	for iter.Scan(&p.ID, &p.Name, &p.Category, &p.Cost, &p.Rating, &p.Image) {
		products = append(products, p)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (r *ProductCatalog) Upsert(ctx context.Context, p models.Product) error {
	session, err := r.sessions.Session()
	if err != nil {
		return err
	}
	return session.Query(`INSERT INTO products (product_id, name, category, cost, rating, image) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Category, p.Cost, p.Rating, p.Image).
		WithContext(ctx).
		Exec()
}
