package repository

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/GTDGit/gtd_pricing/internal/models"
)

// selectorWhere renders the product matcher as a WHERE clause over the
// products table. Placeholders are numbered from len(args)+1 and the grown
// args slice is returned. It must stay equivalent to pricing.Matches.
func selectorWhere(sel models.Selector, args []any) (string, []any) {
	where := "WHERE status = 'ACTIVE'"
	argIdx := len(args) + 1

	anyOf := func(column string, list []string) {
		if len(list) == 0 {
			where += " AND FALSE"
			return
		}
		where += fmt.Sprintf(" AND %s = ANY($%d)", column, argIdx)
		args = append(args, pq.Array(list))
		argIdx++
	}

	switch sel.ApplyTo {
	case models.ApplyToAll:
	case models.ApplyToCategory:
		anyOf("category_id", sel.CategoryIDs)
	case models.ApplyToSubcategory:
		anyOf("subcategory_id", sel.SubcategoryIDs)
	case models.ApplyToCondition:
		anyOf("condition", sel.Conditions)
	case models.ApplyToBrand:
		lowered := make([]string, len(sel.Brands))
		for i, b := range sel.Brands {
			lowered[i] = strings.ToLower(b)
		}
		anyOf("LOWER(brand)", lowered)
	case models.ApplyToProducts:
		anyOf("id", sel.ProductIDs)
	case models.ApplyToTags:
		if len(sel.Tags) == 0 {
			where += " AND FALSE"
			break
		}
		where += fmt.Sprintf(" AND tags && $%d::text[]", argIdx)
		args = append(args, pq.Array(sel.Tags))
		argIdx++
	case models.ApplyToPriceRange:
		if sel.MinPrice != nil {
			where += fmt.Sprintf(" AND price >= $%d", argIdx)
			args = append(args, *sel.MinPrice)
			argIdx++
		}
		if sel.MaxPrice != nil {
			where += fmt.Sprintf(" AND price <= $%d", argIdx)
			args = append(args, *sel.MaxPrice)
			argIdx++
		}
	default:
		where += " AND FALSE"
	}

	return where, args
}
