// Package pricing is the single place checkout amounts are derived from a
// cart subtotal.
package pricing

import "math"

// DefaultServiceFeeRate is the 5% platform fee added at checkout
const DefaultServiceFeeRate = 0.05

type Summary struct {
	Subtotal   int `json:"subtotal"`
	ServiceFee int `json:"service_fee"`
	GrandTotal int `json:"grand_total"`
}

// ServiceFee returns subtotal × rate rounded to whole currency units.
func ServiceFee(subtotal int, rate float64) int {
	if subtotal <= 0 || rate <= 0 {
		return 0
	}
	return int(math.Round(float64(subtotal) * rate))
}

// Summarize derives the fee and grand total shown at checkout.
func Summarize(subtotal int, rate float64) Summary {
	fee := ServiceFee(subtotal, rate)
	return Summary{
		Subtotal:   subtotal,
		ServiceFee: fee,
		GrandTotal: subtotal + fee,
	}
}
