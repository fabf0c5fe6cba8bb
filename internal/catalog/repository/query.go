package repository

import (
	"fmt"
	"strings"

	"sonicpods/internal/catalog"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildListQuery translates the primary predicates and ordering of f into
// SQL with positional parameters. The featured cap is applied here because
// it follows ordering.
func buildListQuery(f catalog.Filter) (string, []any) {
	var (
		where []string
		args  []any
	)
	bind := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Type != "" {
		where = append(where, "type = "+bind(string(f.Type)))
	}
	if c := f.Category; c != nil {
		switch c.Kind {
		case catalog.CategoryKindType:
			where = append(where, "type = "+bind(c.Value))
		case catalog.CategoryKindPriceBucket:
			if catalog.PriceBucket(c.Value) == catalog.BucketBudget {
				where = append(where, "price <= "+bind(catalog.BudgetMaxPrice))
			} else {
				where = append(where, "price >= "+bind(catalog.PremiumMinPrice))
			}
		case catalog.CategoryKindID:
			where = append(where, "category_id = "+bind(c.Value))
		}
	}
	if f.Slug != "" {
		where = append(where, "slug = "+bind(f.Slug))
	}
	if f.Brand != "" {
		where = append(where, "brand ILIKE "+bind("%"+likeEscaper.Replace(f.Brand)+"%"))
	}
	if f.Featured {
		where = append(where, "discount > 0")
	}

	var b strings.Builder
	b.WriteString("SELECT")
	b.WriteString(productColumns)
	b.WriteString("\nFROM products")
	if len(where) > 0 {
		b.WriteString("\nWHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString("\nORDER BY ")
	b.WriteString(orderBy(f.Sort))
	if f.Featured {
		b.WriteString("\nLIMIT ")
		b.WriteString(bind(catalog.FeaturedLimit))
	}

	return b.String(), args
}

func orderBy(key catalog.SortKey) string {
	const tieBreak = "created_at DESC, id ASC"
	switch key {
	case catalog.SortPriceAsc:
		return "price ASC, " + tieBreak
	case catalog.SortPriceDesc:
		return "price DESC, " + tieBreak
	case catalog.SortPopularity, catalog.SortDiscount:
		return "discount DESC, " + tieBreak
	default:
		return tieBreak
	}
}
