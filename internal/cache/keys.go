package cache

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Cache key derivation lives in one place so keys cannot drift between the
// write-through and fallback paths. Identifiers are normalized (trimmed,
// lowercased); parameterized operations serialize their params with sorted
// keys so identical parameter sets always map to the same cache key.

// ScanKey derives the key for a barcode scan lookup.
func ScanKey(barcode string) string {
	return "scan:" + normalize(barcode)
}

// SearchKey derives the key for a name search.
func SearchKey(query string) string {
	return "search:" + normalize(query)
}

// ListKey derives the key for a product listing with optional params.
func ListKey(params map[string]string) string {
	return "list:" + canonical(params)
}

// AdvancedSearchKey derives the key for a filtered search.
func AdvancedSearchKey(params map[string]string) string {
	return "advanced-search:" + canonical(params)
}

// RecommendationsKey derives the key for the recommendation feed.
func RecommendationsKey(limit int) string {
	return "recommendations:" + strconv.Itoa(limit)
}

func normalize(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// canonical renders params deterministically: json.Marshal sorts map keys,
// and empty values are dropped so {"q":""} and {} collide on purpose.
func canonical(params map[string]string) string {
	filtered := make(map[string]string, len(params))
	for k, v := range params {
		if v != "" {
			filtered[k] = v
		}
	}
	raw, err := json.Marshal(filtered)
	if err != nil {
		return "{}"
	}
	return string(raw)
}
