package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/GTDGit/gtd_pricing/internal/models"
)

// PreviewItem is the before/after view of one product.
type PreviewItem struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	SKU           string          `json:"sku"`
	CurrentPrice  decimal.Decimal `json:"currentPrice"`
	NewPrice      decimal.Decimal `json:"newPrice"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"changePercent"`
}

// PreviewResult summarizes what applying an adjustment would do. Totals
// cover every matched product even when Products is truncated.
type PreviewResult struct {
	AffectedProducts  int             `json:"affectedProducts"`
	TotalCurrentValue decimal.Decimal `json:"totalCurrentValue"`
	TotalNewValue     decimal.Decimal `json:"totalNewValue"`
	AverageChange     decimal.Decimal `json:"averageChange"`
	Products          []PreviewItem   `json:"products"`
}

// Preview runs the calculator over products without side effects and keeps
// at most limit items in the listing.
func Preview(products []models.Product, adj Adjustment, limit int) PreviewResult {
	res := PreviewResult{
		AffectedProducts:  len(products),
		TotalCurrentValue: decimal.Zero,
		TotalNewValue:     decimal.Zero,
		AverageChange:     decimal.Zero,
		Products:          make([]PreviewItem, 0, min(len(products), limit)),
	}

	for i := range products {
		p := &products[i]
		newPrice := ComputeNewPrice(p.Price, adj)
		res.TotalCurrentValue = res.TotalCurrentValue.Add(p.Price)
		res.TotalNewValue = res.TotalNewValue.Add(newPrice)

		if len(res.Products) >= limit {
			continue
		}
		change := newPrice.Sub(p.Price)
		res.Products = append(res.Products, PreviewItem{
			ID:            p.ID,
			Name:          p.Name,
			SKU:           p.SKU,
			CurrentPrice:  p.Price,
			NewPrice:      newPrice,
			Change:        change,
			ChangePercent: percentOf(change, p.Price),
		})
	}

	res.AverageChange = percentOf(res.TotalNewValue.Sub(res.TotalCurrentValue), res.TotalCurrentValue)
	return res
}

func percentOf(delta, base decimal.Decimal) decimal.Decimal {
	if base.IsZero() {
		return decimal.Zero
	}
	return delta.Div(base).Mul(hundred).Round(2)
}
