package domain

// TopProduct is one entry of the best-seller ranking.
type TopProduct struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// RevenuePoint is one day of revenue history.
type RevenuePoint struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// Report aggregates the manager dashboard KPIs.
type Report struct {
	AverageBasket       float64        `json:"average_basket"`
	StockRuptureRate    float64        `json:"stock_rupture_rate"`
	CustomerLoyaltyRate float64        `json:"customer_loyalty_rate"`
	TotalRevenue        float64        `json:"total_revenue"`
	TotalTransactions   int64          `json:"total_transactions"`
	TopProducts         []TopProduct   `json:"top_products,omitempty"`
	RevenueHistory      []RevenuePoint `json:"revenue_history,omitempty"`
}
