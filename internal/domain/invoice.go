package domain

import "time"

// InvoiceItem is one purchased line in a past invoice.
type InvoiceItem struct {
	ID          int64   `json:"id"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// Invoice is a completed purchase as returned by the history endpoint.
type Invoice struct {
	ID         int64         `json:"id"`
	Date       time.Time     `json:"date"`
	TotalPrice float64       `json:"total_price"`
	UserID     int64         `json:"user_id"`
	Items      []InvoiceItem `json:"items"`
}
