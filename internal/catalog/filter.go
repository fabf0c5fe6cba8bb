package catalog

import (
	"fmt"
	"sort"
	"strings"
)

const (
	BudgetMaxPrice  int64 = 10000
	PremiumMinPrice int64 = 15000

	FeaturedLimit = 8
	MaxPageSize   = 100
)

type CategoryKind string

const (
	CategoryKindType        CategoryKind = "type"
	CategoryKindPriceBucket CategoryKind = "priceBucket"
	CategoryKindID          CategoryKind = "categoryId"
)

type PriceBucket string

const (
	BucketBudget  PriceBucket = "budget"
	BucketPremium PriceBucket = "premium"
)

// CategoryFilter is one of: a product type, a price bucket, or a category
// foreign key.
type CategoryFilter struct {
	Kind  CategoryKind
	Value string
}

// ParseCategory maps the storefront's single "category" query value onto a
// tagged filter. Empty input yields nil.
func ParseCategory(raw string) *CategoryFilter {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if ProductType(raw).Valid() {
		return &CategoryFilter{Kind: CategoryKindType, Value: raw}
	}
	switch PriceBucket(raw) {
	case BucketBudget, BucketPremium:
		return &CategoryFilter{Kind: CategoryKindPriceBucket, Value: raw}
	}
	return &CategoryFilter{Kind: CategoryKindID, Value: raw}
}

func (c CategoryFilter) Validate() error {
	switch c.Kind {
	case CategoryKindType:
		if !ProductType(c.Value).Valid() {
			return fmt.Errorf("%w: unknown type %q", ErrInvalidFilter, c.Value)
		}
	case CategoryKindPriceBucket:
		switch PriceBucket(c.Value) {
		case BucketBudget, BucketPremium:
		default:
			return fmt.Errorf("%w: unknown price bucket %q", ErrInvalidFilter, c.Value)
		}
	case CategoryKindID:
		if c.Value == "" {
			return fmt.Errorf("%w: empty category id", ErrInvalidFilter)
		}
	default:
		return fmt.Errorf("%w: unknown category kind %q", ErrInvalidFilter, c.Kind)
	}
	return nil
}

func (c CategoryFilter) Match(p Product) bool {
	switch c.Kind {
	case CategoryKindType:
		return string(p.Type) == c.Value
	case CategoryKindPriceBucket:
		if PriceBucket(c.Value) == BucketBudget {
			return p.Price <= BudgetMaxPrice
		}
		return p.Price >= PremiumMinPrice
	case CategoryKindID:
		return p.CategoryID == c.Value
	}
	return false
}

type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	// SortPopularity has no real popularity signal behind it: it ranks by
	// discount amount, exactly like SortDiscount.
	SortPopularity SortKey = "popularity"
	SortDiscount   SortKey = "discount-desc"
)

func ParseSort(raw string) (SortKey, error) {
	switch key := SortKey(strings.TrimSpace(raw)); key {
	case "":
		return SortNewest, nil
	case SortNewest, SortPriceAsc, SortPriceDesc, SortPopularity, SortDiscount:
		return key, nil
	default:
		return "", fmt.Errorf("%w: unknown sort %q", ErrInvalidFilter, raw)
	}
}

type Filter struct {
	Type     ProductType
	Category *CategoryFilter
	Brand    string
	Featured bool
	Slug     string
	MinPrice *int64
	MaxPrice *int64
	Sort     SortKey
	Page     int
	Limit    int
}

func (f Filter) Validate() error {
	if f.Type != "" && !f.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidFilter, f.Type)
	}
	if f.Category != nil {
		if err := f.Category.Validate(); err != nil {
			return err
		}
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return fmt.Errorf("%w: min_price exceeds max_price", ErrInvalidFilter)
	}
	if _, err := ParseSort(string(f.Sort)); err != nil {
		return err
	}
	return nil
}

// MatchPrimary evaluates the predicates the store applies server-side.
func (f Filter) MatchPrimary(p Product) bool {
	if f.Type != "" && p.Type != f.Type {
		return false
	}
	if f.Category != nil && !f.Category.Match(p) {
		return false
	}
	if f.Slug != "" && p.Slug != f.Slug {
		return false
	}
	if f.Brand != "" && !strings.Contains(strings.ToLower(p.Brand), strings.ToLower(f.Brand)) {
		return false
	}
	if f.Featured && p.Discount <= 0 {
		return false
	}
	return true
}

// MatchPrice evaluates the inclusive price range.
func (f Filter) MatchPrice(p Product) bool {
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	return true
}

// ClampPrice keeps the products inside the price range, preserving order.
func (f Filter) ClampPrice(list []Product) []Product {
	if f.MinPrice == nil && f.MaxPrice == nil {
		return list
	}
	out := make([]Product, 0, len(list))
	for _, p := range list {
		if f.MatchPrice(p) {
			out = append(out, p)
		}
	}
	return out
}

// Paginate returns the requested page. A zero limit disables paging.
func (f Filter) Paginate(list []Product) []Product {
	if f.Limit <= 0 {
		return list
	}
	limit := f.Limit
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(list) {
		return []Product{}
	}
	end := start + limit
	if end > len(list) {
		end = len(list)
	}
	return list[start:end]
}

// Apply runs the whole pipeline in-process: primary predicates, ordering,
// featured cap, price clamp and pagination.
func (f Filter) Apply(all []Product) []Product {
	out := make([]Product, 0, len(all))
	for _, p := range all {
		if f.MatchPrimary(p) {
			out = append(out, p)
		}
	}
	SortProducts(out, f.Sort)
	if f.Featured && len(out) > FeaturedLimit {
		out = out[:FeaturedLimit]
	}
	return f.Paginate(f.ClampPrice(out))
}

// SortProducts orders list in place. Ties fall back to newest first, then
// ascending id.
func SortProducts(list []Product, key SortKey) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		switch key {
		case SortPriceAsc:
			if a.Price != b.Price {
				return a.Price < b.Price
			}
		case SortPriceDesc:
			if a.Price != b.Price {
				return a.Price > b.Price
			}
		case SortPopularity, SortDiscount:
			if a.Discount != b.Discount {
				return a.Discount > b.Discount
			}
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
