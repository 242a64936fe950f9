package catalog

import (
	"slices"
	"strings"

	"github.com/hongminglow/valide/internal/models"
)

// AllCategories selects every product category.
const AllCategories = "all"

// PlaceholderImage is shown for products without images.
const PlaceholderImage = "/api/placeholder/300/400"

// Sort orders accepted by Sort.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
)

// FilterByCategory keeps products whose category matches, ignoring case.
func FilterByCategory(products []models.Product, category string) []models.Product {
	category = strings.TrimSpace(category)
	if category == "" || strings.EqualFold(category, AllCategories) {
		return products
	}
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	return out
}

// Search keeps products whose name or description contains query, ignoring case.
func Search(products []models.Product, query string) []models.Product {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return products
	}
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.ProductName), query) ||
			strings.Contains(strings.ToLower(p.Description), query) {
			out = append(out, p)
		}
	}
	return out
}

// Sort returns a sorted copy of products. SortNewest and unknown orders keep
// the API's order.
func Sort(products []models.Product, order string) []models.Product {
	out := slices.Clone(products)
	switch order {
	case SortPriceAsc:
		slices.SortStableFunc(out, func(a, b models.Product) int { return cmpPrice(a.Price, b.Price) })
	case SortPriceDesc:
		slices.SortStableFunc(out, func(a, b models.Product) int { return cmpPrice(b.Price, a.Price) })
	}
	return out
}

func cmpPrice(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// ImageURL normalises an image reference from the API into something a
// browser can load.
func ImageURL(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return PlaceholderImage
	}
	if strings.HasPrefix(ref, "http") {
		return ref
	}
	return "/" + strings.TrimLeft(ref, "/")
}

// CoverImage is the normalised first image of p.
func CoverImage(p models.Product) string {
	if len(p.Images) == 0 {
		return PlaceholderImage
	}
	return ImageURL(p.Images[0])
}
