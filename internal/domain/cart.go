package domain

// CartLine is one product entry in the local cart. UnitPriceCents is the
// price remembered at add time; MaxStock is the last stock ceiling seen for
// the product (nil means unbounded).
type CartLine struct {
	ProductID      int64  `json:"id"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"price_cents"`
	Quantity       int    `json:"quantity"`
	MaxStock       *int   `json:"max_stock,omitempty"`
}

// LineTotalCents is the line subtotal in cents.
func (l CartLine) LineTotalCents() int64 {
	return l.UnitPriceCents * int64(l.Quantity)
}

// CheckoutItem is the shape the invoice endpoints expect per line.
type CheckoutItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}
