package models

type Cart struct {
	Email         string     `json:"email"`
	Items         []CartItem `json:"cartItems"`
	PaymentOption string     `json:"paymentOption"`
}

// CartItem quantity is always >= 1; a zero quantity means the item is removed.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// IndexOf returns the position of the line item for productID, or -1.
func (c *Cart) IndexOf(productID string) int {
	for i := range c.Items {
		if c.Items[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

// Total is the sum of cost × quantity over all line items.
func (c *Cart) Total() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.Product.Cost * int64(item.Quantity)
	}
	return total
}

// Clone returns a deep copy. Items is never nil in the copy so an empty
// cart serializes as [] rather than null.
func (c *Cart) Clone() *Cart {
	out := *c
	out.Items = make([]CartItem, len(c.Items))
	copy(out.Items, c.Items)
	return &out
}
