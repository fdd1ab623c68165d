package budget

import (
	"mealplan-system/internal/money"
	"mealplan-system/internal/orders"
)

// Allocation is the out-of-pocket share of one cart line, split into what
// the discount code covers and what the customer pays.
type Allocation struct {
	Payment  money.Cents
	Discount money.Cents
}

func (a Allocation) Share() money.Cents { return a.Payment + a.Discount }

// Allocate spreads each bucket's payable amount over that bucket's cart lines
// in cart order, never more than a line's own total, then spends the discount
// against those shares. Allocations are returned index-aligned with cart.
// Payment + Discount never exceeds a line's total.
func Allocate(cart []orders.CartItem, buckets []Bucket, discount money.Cents) []Allocation {
	remaining := make(map[BucketKey]money.Cents, len(buckets))
	for _, b := range buckets {
		remaining[b.Key] = b.Payable
	}

	out := make([]Allocation, len(cart))
	var shares money.Cents
	for i, item := range cart {
		key := keyOf(item)
		share := money.Min(money.Max(0, item.LineTotal()), remaining[key])
		remaining[key] -= share
		out[i].Payment = share
		shares += share
	}

	left := money.Min(money.Max(0, discount), shares)
	for i := range out {
		if left == 0 {
			break
		}
		d := money.Min(out[i].Payment, left)
		out[i].Discount = d
		out[i].Payment -= d
		left -= d
	}
	return out
}
