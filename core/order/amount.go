package order

import "math"

// Surcharge rates applied to the subtotal at creation time. Amounts
// are whole currency units, rounded to the nearest integer.
const (
	feeRate = 0.029
	taxRate = 0.18
)

// ComputeAmount snapshots the order totals. They are computed once
// here and never recomputed on later mutations.
func ComputeAmount(items []ItemNew) Amount {
	subtotal := 0
	for _, it := range items {
		subtotal += it.Price * it.Quantity
	}

	a := Amount{
		Subtotal:      subtotal,
		ProcessingFee: int(math.Round(float64(subtotal) * feeRate)),
		Tax:           int(math.Round(float64(subtotal) * taxRate)),
		Discount:      0,
	}
	a.Total = a.Subtotal + a.ProcessingFee + a.Tax - a.Discount

	return a
}
