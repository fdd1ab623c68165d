// Package budget works out how much of a cart the employer covers and how
// much the customer pays out of pocket.
package budget

import (
	"mealplan-system/internal/money"
	"mealplan-system/internal/orders"
)

// BucketKey groups cart lines that draw on the same daily allowance.
type BucketKey struct {
	CompanyID    string
	DeliveryDate orders.Date
}

// Bucket is the budget computation for one company and delivery date.
type Bucket struct {
	Key       BucketKey   `json:"-"`
	CompanyID string      `json:"companyId"`
	Date      orders.Date `json:"deliveryDate"`
	Committed money.Cents `json:"committed"`
	Requested money.Cents `json:"requested"`
	Allowance money.Cents `json:"allowance"`
	Payable   money.Cents `json:"payable"`
}

// Breakdown computes one bucket per distinct (company, date) in the cart, in
// the order the cart first mentions them. allOrders should hold the
// customer's upcoming and delivered orders.
func Breakdown(allOrders []orders.Order, cart []orders.CartItem, user orders.Customer) []Bucket {
	shiftBudget := user.ShiftBudget()

	committed := make(map[BucketKey]money.Cents)
	for _, o := range allOrders {
		if o.Status == orders.StatusCancelled {
			continue
		}
		key := BucketKey{CompanyID: o.Company.ID, DeliveryDate: o.Delivery.Date}
		committed[key] += o.Item.Total
	}

	buckets := bucketsOf(cart)
	for i := range buckets {
		b := &buckets[i]
		b.Committed = committed[b.Key]
		b.Allowance = money.Max(0, shiftBudget-b.Committed)
		b.Payable = money.Max(0, b.Requested-b.Allowance)
	}
	return buckets
}

// GuestBreakdown is the guest path: no allowance, every line is paid in full.
func GuestBreakdown(cart []orders.CartItem) []Bucket {
	buckets := bucketsOf(cart)
	for i := range buckets {
		buckets[i].Payable = money.Max(0, buckets[i].Requested)
	}
	return buckets
}

// TotalPayable is the out-of-pocket amount for the cart. It never goes below
// zero, even when earlier orders already exceed the shift budget.
func TotalPayable(allOrders []orders.Order, cart []orders.CartItem, user orders.Customer) money.Cents {
	return Payable(Breakdown(allOrders, cart, user))
}

func Payable(buckets []Bucket) money.Cents {
	var total money.Cents
	for _, b := range buckets {
		total += b.Payable
	}
	return total
}

// CartTotal is the undiscounted price of the whole cart.
func CartTotal(cart []orders.CartItem) money.Cents {
	var total money.Cents
	for _, item := range cart {
		total += item.LineTotal()
	}
	return total
}

func keyOf(item orders.CartItem) BucketKey {
	return BucketKey{CompanyID: item.CompanyID, DeliveryDate: item.DeliveryDate}
}

func bucketsOf(cart []orders.CartItem) []Bucket {
	buckets := make([]Bucket, 0)
	index := make(map[BucketKey]int)
	for _, item := range cart {
		key := keyOf(item)
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, Bucket{Key: key, CompanyID: key.CompanyID, Date: key.DeliveryDate})
		}
		buckets[i].Requested += item.LineTotal()
	}
	return buckets
}
