// Package pricing implements the stock-exchange style price rule: every sale
// of a dynamically priced product raises its unit price by the organization's
// configured step, capped at the product's maximum price. Nothing lowers the
// price automatically; only an explicit adjustment does.
package pricing

import "github.com/shopspring/decimal"

// Next computes the unit price that applies after one sale.
//
// With dynamic pricing disabled the price is unchanged. Otherwise the
// organization step is added and the result clamped to maxPrice when set.
func Next(current decimal.Decimal, dynamicPricing bool, increaseStep decimal.Decimal, maxPrice *decimal.Decimal) decimal.Decimal {
	if !dynamicPricing {
		return current
	}
	next := current.Add(increaseStep)
	if maxPrice != nil && next.GreaterThan(*maxPrice) {
		next = *maxPrice
	}
	return next
}
