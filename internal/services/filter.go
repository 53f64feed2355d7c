package services

import (
	"strings"

	"kart_back_end/internal/models"
)

func filterProducts(products []models.Product, query string) []models.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	out := []models.Product{}
	if q == "" {
		return out
	}
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Category), q) {
			out = append(out, p)
		}
	}
	return out
}
