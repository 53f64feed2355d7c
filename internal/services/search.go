package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"

	"kart_back_end/internal/models"
)

// productDocument is the indexed shape; Elasticsearch reserves _id.
type productDocument struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Cost     int64  `json:"cost"`
	Rating   int    `json:"rating"`
	Image    string `json:"image"`
}

func (d productDocument) product() models.Product {
	return models.Product{ID: d.ID, Name: d.Name, Category: d.Category, Cost: d.Cost, Rating: d.Rating, Image: d.Image}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source productDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

const searchLimit = 50

// ProductSearch indexes and queries catalog products in Elasticsearch.
// *elasticsearch.Client satisfies esapi.Transport.
type ProductSearch struct {
	es    esapi.Transport
	index string
	log   *zap.Logger
}

func NewProductSearch(es esapi.Transport, index string, log *zap.Logger) *ProductSearch {
	return &ProductSearch{es: es, index: index, log: log}
}

func (s *ProductSearch) IndexProduct(ctx context.Context, p models.Product) error {
	data, err := json.Marshal(productDocument{p.ID, p.Name, p.Category, p.Cost, p.Rating, p.Image})
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: p.ID,
		Body:       bytes.NewReader(data),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, s.es)
	if err != nil {
		return fmt.Errorf("index product %s: %w", p.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index product %s: %s", p.ID, res.String())
	}
	s.log.Debug("product indexed", zap.String("product_id", p.ID))
	return nil
}

// Search matches the query against name and category, tolerating typos.
func (s *ProductSearch) Search(ctx context.Context, query string) ([]models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Product{}, nil
	}

	var buf bytes.Buffer
	body := map[string]interface{}{
		"size": searchLimit,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"name^2", "category"},
				"fuzziness": "AUTO",
			},
		},
	}
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  &buf,
	}
	res, err := req.Do(ctx, s.es)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		// index not created yet
		return []models.Product{}, nil
	}
	if res.IsError() {
		return nil, fmt.Errorf("search products: %s", res.String())
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	products := make([]models.Product, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		products = append(products, hit.Source.product())
	}
	return products, nil
}
