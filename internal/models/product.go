package models

// Product is a catalog entry. Carts embed a copy of it taken when the
// product was added, so later catalog edits never reach existing carts.
type Product struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Cost     int64  `json:"cost"`
	Rating   int    `json:"rating"`
	Image    string `json:"image"`
}
