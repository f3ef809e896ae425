package services

import (
	"slices"
	"strings"

	"kbr-silks-backend/internal/models"
)

type SortOrder string

const (
	SortDefault   SortOrder = "default"
	SortPriceAsc  SortOrder = "price-asc"
	SortPriceDesc SortOrder = "price-desc"

	FeaturedCount = 8
)

var BridalKeywords = []string{"bridal", "wedding", "bride", "vivah", "kalyana", "marriage"}

type CatalogFilter struct {
	Query  string
	Fabric models.FabricType
	Sort   SortOrder
}

func ParseSortOrder(s string) SortOrder {
	switch SortOrder(s) {
	case SortPriceAsc, SortPriceDesc:
		return SortOrder(s)
	}
	return SortDefault
}

// FilterSarees matches the query against name, description and color, keeps
// one fabric when set, then sorts by price. The input is not modified.
func FilterSarees(sarees []models.Saree, f CatalogFilter) []models.Saree {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]models.Saree, 0, len(sarees))
	for _, s := range sarees {
		if q != "" &&
			!strings.Contains(strings.ToLower(s.Name), q) &&
			!strings.Contains(strings.ToLower(s.Description), q) &&
			!strings.Contains(strings.ToLower(s.Color), q) {
			continue
		}
		if f.Fabric != "" && s.FabricType != f.Fabric {
			continue
		}
		out = append(out, s)
	}

	switch f.Sort {
	case SortPriceAsc:
		slices.SortStableFunc(out, func(a, b models.Saree) int { return compareInt64(a.Price, b.Price) })
	case SortPriceDesc:
		slices.SortStableFunc(out, func(a, b models.Saree) int { return compareInt64(b.Price, a.Price) })
	}
	return out
}

// Featured returns the most expensive sarees first.
func Featured(sarees []models.Saree) []models.Saree {
	out := FilterSarees(sarees, CatalogFilter{Sort: SortPriceDesc})
	if len(out) > FeaturedCount {
		out = out[:FeaturedCount]
	}
	return out
}

func Bridal(sarees []models.Saree) []models.Saree {
	out := []models.Saree{}
	for _, s := range sarees {
		text := strings.ToLower(s.Name + " " + s.Description)
		for _, kw := range BridalKeywords {
			if strings.Contains(text, kw) {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
