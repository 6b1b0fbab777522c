package product

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"time"

	"storefront/internal/cache"
	"storefront/internal/domain"
)

type gateway interface {
	GetJSON(ctx context.Context, path string, query url.Values, out any) error
	PostJSON(ctx context.Context, path string, body, out any) error
	PutJSON(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

// Service performs product lookups with cache continuity: every successful
// fetch writes through the response cache, every transient failure is
// retried against it. A NotFound is a definite answer and bypasses the
// fallback.
type Service struct {
	gw          gateway
	cache       *cache.Cache
	fallbackAge time.Duration
	logger      *log.Logger
}

// New builds the product service. fallbackAge bounds how old a cached
// response may be when served after a failed fetch.
func New(gw gateway, c *cache.Cache, fallbackAge time.Duration, logger *log.Logger) *Service {
	return &Service{gw: gw, cache: c, fallbackAge: fallbackAge, logger: logger}
}

// Scan looks up a product by barcode. stale=true means the value came from
// the cache because the network call failed.
func (s *Service) Scan(ctx context.Context, barcode string) (domain.Product, bool, error) {
	key := cache.ScanKey(barcode)
	var p domain.Product
	err := s.gw.GetJSON(ctx, "/products/scan/"+url.PathEscape(barcode), nil, &p)
	if err == nil {
		s.put(ctx, key, p)
		return p, false, nil
	}
	if s.fallback(ctx, err, key, &p) {
		return p, true, nil
	}
	return domain.Product{}, false, err
}

// Search finds products by name.
func (s *Service) Search(ctx context.Context, query string) ([]domain.Product, bool, error) {
	key := cache.SearchKey(query)
	var items []domain.Product
	err := s.gw.GetJSON(ctx, "/products/search/"+url.PathEscape(query), nil, &items)
	if err == nil {
		s.put(ctx, key, items)
		return items, false, nil
	}
	if s.fallback(ctx, err, key, &items) {
		return items, true, nil
	}
	return nil, false, err
}

// List fetches the product listing with optional filter params.
func (s *Service) List(ctx context.Context, params map[string]string) ([]domain.Product, bool, error) {
	key := cache.ListKey(params)
	var items []domain.Product
	err := s.gw.GetJSON(ctx, "/products", toQuery(params), &items)
	if err == nil {
		s.put(ctx, key, items)
		return items, false, nil
	}
	if s.fallback(ctx, err, key, &items) {
		return items, true, nil
	}
	return nil, false, err
}

// AdvancedSearch runs the filtered and paginated search. The page payload is
// owned by the backend and passed through opaque.
func (s *Service) AdvancedSearch(ctx context.Context, params map[string]string) (map[string]any, bool, error) {
	key := cache.AdvancedSearchKey(params)
	var page map[string]any
	err := s.gw.GetJSON(ctx, "/products/advanced-search", toQuery(params), &page)
	if err == nil {
		s.put(ctx, key, page)
		return page, false, nil
	}
	if s.fallback(ctx, err, key, &page) {
		return page, true, nil
	}
	return nil, false, err
}

// Recommendations fetches the stocked-and-affordable product feed.
func (s *Service) Recommendations(ctx context.Context, limit int) ([]domain.Product, bool, error) {
	key := cache.RecommendationsKey(limit)
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	var items []domain.Product
	err := s.gw.GetJSON(ctx, "/products/recommendations", q, &items)
	if err == nil {
		s.put(ctx, key, items)
		return items, false, nil
	}
	if s.fallback(ctx, err, key, &items) {
		return items, true, nil
	}
	return nil, false, err
}

// CreateInput carries the fields for a manager-created product.
type CreateInput struct {
	Name              string  `json:"name"`
	Brand             string  `json:"brand,omitempty"`
	Category          string  `json:"category,omitempty"`
	Price             float64 `json:"price"`
	Picture           string  `json:"picture,omitempty"`
	NutritionalInfo   string  `json:"nutritional_info,omitempty"`
	AvailableQuantity int     `json:"available_quantity"`
	OffID             string  `json:"off_id,omitempty"`
}

// Create registers a new product (manager only).
func (s *Service) Create(ctx context.Context, in CreateInput) (domain.Product, error) {
	var p domain.Product
	if err := s.gw.PostJSON(ctx, "/products/manager", in, &p); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

// Update patches product fields (manager only).
func (s *Service) Update(ctx context.Context, productID int64, payload map[string]any) (domain.Product, error) {
	var p domain.Product
	if err := s.gw.PutJSON(ctx, fmt.Sprintf("/products/%d", productID), payload, &p); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

// UpdateStock sets price and available quantity for a scanned barcode
// (manager only). Price travels as float euros on the wire.
func (s *Service) UpdateStock(ctx context.Context, barcode string, priceCents int64, availableQuantity int) error {
	body := map[string]any{
		"price":              domain.Euros(priceCents),
		"available_quantity": availableQuantity,
	}
	return s.gw.PutJSON(ctx, "/products/manager/stock/"+url.PathEscape(barcode), body, nil)
}

// Delete removes a product (manager only).
func (s *Service) Delete(ctx context.Context, productID int64) error {
	return s.gw.Delete(ctx, fmt.Sprintf("/products/%d", productID), nil)
}

// ImportFromOpenFoodFacts asks the backend to import a barcode from the
// world catalog (manager only).
func (s *Service) ImportFromOpenFoodFacts(ctx context.Context, barcode string, overwrite bool) (domain.Product, error) {
	q := url.Values{}
	q.Set("overwrite", strconv.FormatBool(overwrite))
	path := "/products/import/off/" + url.PathEscape(barcode) + "?" + q.Encode()
	var p domain.Product
	if err := s.gw.PostJSON(ctx, path, nil, &p); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (s *Service) put(ctx context.Context, key string, value any) {
	if err := s.cache.Put(ctx, key, value); err != nil {
		s.logger.Printf("cache write for %q: %v", key, err)
	}
}

// fallback reports whether dst was filled from the cache. Only transient
// failures consult the cache; NotFound and Unauthorized pass through.
func (s *Service) fallback(ctx context.Context, err error, key string, dst any) bool {
	if !errors.Is(err, domain.ErrUnavailable) {
		return false
	}
	if s.cache.GetInto(ctx, key, s.fallbackAge, dst) {
		s.logger.Printf("serving %q from cache after: %v", key, err)
		return true
	}
	return false
}

func toQuery(params map[string]string) url.Values {
	if len(params) == 0 {
		return nil
	}
	q := url.Values{}
	for k, v := range params {
		if v != "" {
			q.Set(k, v)
		}
	}
	return q
}
