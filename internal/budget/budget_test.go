package budget

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealplan-system/internal/money"
	"mealplan-system/internal/orders"
)

var (
	dayD    = orders.NewDate(2024, time.January, 10)
	dayNext = orders.NewDate(2024, time.January, 11)
)

func customer(budget money.Cents) orders.Customer {
	return orders.Customer{
		ID:   "u1",
		Role: orders.RoleCustomer,
		Companies: []orders.CompanyMembership{
			{ID: "acme", Code: "ACME", Shift: "day", ShiftBudget: budget, Status: orders.MembershipActive},
		},
	}
}

func prior(total money.Cents, date orders.Date, status orders.Status) orders.Order {
	return orders.Order{
		Company:  orders.CompanyRef{ID: "acme", Code: "ACME"},
		Delivery: orders.Delivery{Date: date},
		Item:     orders.Item{Quantity: 1, Total: total},
		Status:   status,
	}
}

func line(price money.Cents, qty int, date orders.Date) orders.CartItem {
	return orders.CartItem{ItemID: "i", RestaurantID: "r", CompanyID: "acme", DeliveryDate: date, Quantity: qty, UnitPrice: price}
}

func TestTotalPayable_Scenarios(t *testing.T) {
	tests := []struct {
		name   string
		budget money.Cents
		prior  []orders.Order
		cart   []orders.CartItem
		want   money.Cents
	}{
		{
			name:   "partially covered",
			budget: 1500,
			prior:  []orders.Order{prior(1000, dayD, orders.StatusDelivered)},
			cart:   []orders.CartItem{line(1200, 1, dayD)},
			want:   700,
		},
		{
			name:   "prior spend already over budget",
			budget: 1500,
			prior:  []orders.Order{prior(2000, dayD, orders.StatusProcessing)},
			cart:   []orders.CartItem{line(500, 1, dayD)},
			want:   500,
		},
		{
			name:   "fully covered",
			budget: 1500,
			cart:   []orders.CartItem{line(400, 2, dayD)},
			want:   0,
		},
		{
			name:   "each date has its own allowance",
			budget: 1500,
			prior:  []orders.Order{prior(1500, dayD, orders.StatusProcessing)},
			cart:   []orders.CartItem{line(1000, 1, dayD), line(1000, 1, dayNext)},
			want:   1000,
		},
		{
			name:   "cancelled orders do not consume budget",
			budget: 1500,
			prior:  []orders.Order{prior(1500, dayD, orders.StatusCancelled)},
			cart:   []orders.CartItem{line(1500, 1, dayD)},
			want:   0,
		},
		{
			name:   "addon price counts once per line",
			budget: 1000,
			cart: []orders.CartItem{{
				CompanyID: "acme", DeliveryDate: dayD, Quantity: 2, UnitPrice: 500, AddonPrice: 250,
			}},
			want: 250,
		},
		{
			name:   "empty cart",
			budget: 1500,
			prior:  []orders.Order{prior(1000, dayD, orders.StatusDelivered)},
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TotalPayable(tt.prior, tt.cart, customer(tt.budget))
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, TotalPayable(tt.prior, tt.cart, customer(tt.budget)), "must be idempotent")
		})
	}
}

func TestBreakdown_Scenario3(t *testing.T) {
	buckets := Breakdown(
		[]orders.Order{prior(1000, dayD, orders.StatusDelivered)},
		[]orders.CartItem{line(1200, 1, dayD)},
		customer(1500),
	)

	require.Len(t, buckets, 1)
	assert.EqualValues(t, 1000, buckets[0].Committed)
	assert.EqualValues(t, 1200, buckets[0].Requested)
	assert.EqualValues(t, 500, buckets[0].Allowance)
	assert.EqualValues(t, 700, buckets[0].Payable)
}

func TestTotalPayable_NeverNegative(t *testing.T) {
	budgets := []money.Cents{-500, 0, 1, 999, 1500, 100000}
	priors := []money.Cents{0, 1, 1500, 5000}
	carts := [][]orders.CartItem{
		nil,
		{line(0, 1, dayD)},
		{line(1, 1, dayD)},
		{line(700, 3, dayD), line(50, 1, dayNext)},
		{{CompanyID: "acme", DeliveryDate: dayD, Quantity: 1, UnitPrice: -300}},
	}

	for _, b := range budgets {
		for _, p := range priors {
			for _, c := range carts {
				got := TotalPayable([]orders.Order{prior(p, dayD, orders.StatusDelivered)}, c, customer(b))
				assert.GreaterOrEqual(t, int64(got), int64(0), "budget=%d prior=%d", b, p)
			}
		}
	}
}

func TestTotalPayable_UserWithoutActiveCompany(t *testing.T) {
	user := orders.Customer{ID: "u1", Role: orders.RoleCustomer}
	got := TotalPayable(nil, []orders.CartItem{line(900, 1, dayD)}, user)
	assert.EqualValues(t, 900, got)
}

func TestGuestBreakdownAndCartTotal(t *testing.T) {
	cart := []orders.CartItem{line(1200, 1, dayD), line(300, 2, dayNext)}
	assert.EqualValues(t, 1800, CartTotal(cart))
	assert.EqualValues(t, 1800, Payable(GuestBreakdown(cart)))
}

func TestAllocate(t *testing.T) {
	cart := []orders.CartItem{line(1000, 1, dayD), line(800, 1, dayD), line(600, 1, dayNext)}
	buckets := Breakdown(nil, cart, customer(1500))
	// dayD: requested 1800, allowance 1500 -> 300 payable; dayNext: 0 payable.

	t.Run("without discount", func(t *testing.T) {
		alloc := Allocate(cart, buckets, 0)
		require.Len(t, alloc, 3)
		assert.EqualValues(t, 300, alloc[0].Payment)
		assert.Zero(t, alloc[1].Share())
		assert.Zero(t, alloc[2].Share())
	})

	t.Run("discount capped at payable", func(t *testing.T) {
		alloc := Allocate(cart, buckets, 1000)
		assert.EqualValues(t, 300, alloc[0].Discount)
		assert.Zero(t, alloc[0].Payment)
	})

	t.Run("share never exceeds line total", func(t *testing.T) {
		guestCart := []orders.CartItem{line(1000, 1, dayD), line(800, 1, dayD)}
		alloc := Allocate(guestCart, GuestBreakdown(guestCart), 500)
		var paid money.Cents
		for i, a := range alloc {
			assert.LessOrEqual(t, int64(a.Share()), int64(guestCart[i].LineTotal()))
			paid += a.Share()
		}
		assert.EqualValues(t, 1800, paid)
		assert.EqualValues(t, 500, alloc[0].Discount)
		assert.EqualValues(t, 500, alloc[0].Payment)
	})
}
