package domain

import "math"

// Product mirrors the backend product payload. Price arrives as float euros;
// all local arithmetic converts it to integer cents first.
type Product struct {
	ID                int64   `json:"id"`
	OffID             string  `json:"off_id,omitempty"`
	Name              string  `json:"name"`
	Brand             string  `json:"brand,omitempty"`
	Category          string  `json:"category,omitempty"`
	Price             float64 `json:"price"`
	Picture           string  `json:"picture,omitempty"`
	NutritionalInfo   string  `json:"nutritional_info,omitempty"`
	AvailableQuantity *int    `json:"available_quantity,omitempty"`
	IsExternal        bool    `json:"is_external,omitempty"`
}

// PriceCents converts the wire price to integer cents.
func (p Product) PriceCents() int64 {
	return Cents(p.Price)
}

// Cents converts a float euro amount to integer cents, rounding half away
// from zero.
func Cents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// Euros renders integer cents back as a float euro amount for display and
// wire payloads.
func Euros(cents int64) float64 {
	return float64(cents) / 100
}
