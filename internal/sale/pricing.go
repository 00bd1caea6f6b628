package sale

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Discounts maps a category id to the best running discount percent.
type Discounts map[uint]decimal.Decimal

// Build keeps the highest percent per category across running sales.
func Build(sales []Sale) Discounts {
	d := make(Discounts)
	for _, s := range sales {
		for _, cid := range s.CategoryIDs {
			if cur, ok := d[cid]; !ok || s.DiscountPercent.GreaterThan(cur) {
				d[cid] = s.DiscountPercent
			}
		}
	}
	return d
}

// Apply returns the discounted price rounded to cents and the percent used.
// ok is false when no sale covers the category.
func (d Discounts) Apply(categoryID *uint, price decimal.Decimal) (salePrice, percent decimal.Decimal, ok bool) {
	if categoryID == nil || d == nil {
		return price, decimal.Zero, false
	}
	pct, ok := d[*categoryID]
	if !ok {
		return price, decimal.Zero, false
	}
	factor := hundred.Sub(pct).Div(hundred)
	return price.Mul(factor).Round(2), pct, true
}
