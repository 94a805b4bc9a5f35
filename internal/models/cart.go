package models

import "github.com/shopspring/decimal"

// LineItem is a product snapshot plus the purchased quantity.
// Product fields are flattened on the wire, the same shape the payment
// endpoint receives as "items".
type LineItem struct {
	Product
	Quantity int `json:"quantity"`
}

// SubtotalDecimal returns price*quantity for the line as an exact decimal.
func (li LineItem) SubtotalDecimal() decimal.Decimal {
	return decimal.NewFromFloat(li.Price).Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Subtotal returns price*quantity for the line.
func (li LineItem) Subtotal() float64 {
	return li.SubtotalDecimal().InexactFloat64()
}

// SumLineItems adds up the line subtotals without float drift.
func SumLineItems(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.SubtotalDecimal())
	}
	return total
}

// CartSnapshot is an immutable copy of the cart at one point in time.
// Version grows with every cart change; a higher version is newer.
type CartSnapshot struct {
	Version    uint64     `json:"version"`
	Items      []LineItem `json:"items"`
	TotalItems int        `json:"total_items"`
	TotalValue float64    `json:"total_value"`
}

// Empty reports whether the snapshot has no line items.
func (s CartSnapshot) Empty() bool {
	return len(s.Items) == 0
}
