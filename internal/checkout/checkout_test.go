package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealplan-system/internal/cart"
	"mealplan-system/internal/clientstore"
	"mealplan-system/internal/discount"
	"mealplan-system/internal/money"
	"mealplan-system/internal/orders"
)

var day = orders.NewDate(2024, time.March, 4)

type fakeAPI struct {
	upcoming   []orders.Order
	delivered  []orders.Order
	historyErr error
	result     PlaceResult
	createErr  error
	created    []CreateRequest
	limit      int
}

func (f *fakeAPI) UpcomingOrders(context.Context, string) ([]orders.Order, error) {
	return f.upcoming, f.historyErr
}

func (f *fakeAPI) DeliveredOrders(_ context.Context, _ string, limit int) ([]orders.Order, error) {
	f.limit = limit
	return f.delivered, nil
}

func (f *fakeAPI) CreateOrders(_ context.Context, req CreateRequest) (PlaceResult, error) {
	f.created = append(f.created, req)
	return f.result, f.createErr
}

type fakeValidator struct{}

func (fakeValidator) ApplyDiscountCode(_ context.Context, _ string, code string) (orders.AppliedDiscount, error) {
	if code != "SAVE10" {
		return orders.AppliedDiscount{}, discount.ErrInvalidCode
	}
	return orders.AppliedDiscount{ID: "d1", Code: code, Value: money.MustParse("10.00")}, nil
}

type fixture struct {
	api    *fakeAPI
	cart   *cart.Cart
	ledger *discount.Ledger
	co     *Checkout
}

func setup(t *testing.T, role orders.Role) fixture {
	t.Helper()
	user := customer("u1", role)
	store := clientstore.NewMemoryStore()
	api := &fakeAPI{}
	c := cart.New(store, cart.ScopeForRole(role), user.ID)
	l := discount.NewLedger(store, fakeValidator{}, user.ID)
	return fixture{api: api, cart: c, ledger: l, co: New(api, user.ID, user, c, l, 25)}
}

func customer(id string, role orders.Role) orders.Customer {
	return orders.Customer{
		ID:   id,
		Role: role,
		Companies: []orders.CompanyMembership{
			{ID: "acme", Code: "ACME", ShiftBudget: money.MustParse("15.00"), Status: orders.MembershipActive},
		},
	}
}

func (f fixture) add(t *testing.T, price string, qty int) {
	t.Helper()
	_, err := f.cart.Add(context.Background(), orders.CartItem{
		ItemID:       "i-" + price,
		RestaurantID: "r1",
		CompanyID:    "acme",
		DeliveryDate: day,
		Quantity:     qty,
		UnitPrice:    money.MustParse(price),
	})
	require.NoError(t, err)
}

func historyOrder(total string, status orders.Status) orders.Order {
	return orders.Order{
		Company:  orders.CompanyRef{ID: "acme", Code: "ACME"},
		Delivery: orders.Delivery{Date: day},
		Item:     orders.Item{Quantity: 1, Total: money.MustParse(total)},
		Status:   status,
	}
}

func TestSummary_BudgetAndDiscount(t *testing.T) {
	ctx := context.Background()
	f := setup(t, orders.RoleCustomer)
	f.api.upcoming = []orders.Order{historyOrder("6.00", orders.StatusProcessing)}
	f.api.delivered = []orders.Order{historyOrder("4.00", orders.StatusDelivered)}
	f.add(t, "12.00", 1)

	_, err := f.ledger.ApplyCode(ctx, "SAVE10")
	require.NoError(t, err)

	s, err := f.co.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25, f.api.limit)
	assert.Equal(t, money.MustParse("12.00"), s.CartTotal)
	assert.Equal(t, money.MustParse("7.00"), s.Payable)
	require.NotNil(t, s.Discount)
	assert.Equal(t, money.Zero, s.Net)
	assert.False(t, s.Guest)
	require.Len(t, s.Buckets, 1)
	assert.Equal(t, money.MustParse("10.00"), s.Buckets[0].Committed)
}

func TestSummary_DiscountClearsWhenPayableDropsToZero(t *testing.T) {
	ctx := context.Background()
	f := setup(t, orders.RoleCustomer)
	f.add(t, "25.00", 1)
	_, err := f.ledger.ApplyCode(ctx, "SAVE10")
	require.NoError(t, err)

	s, err := f.co.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, money.MustParse("10.00"), s.Payable)
	require.NotNil(t, s.Discount)

	items, err := f.cart.Items(ctx)
	require.NoError(t, err)
	_, err = f.cart.Remove(ctx, items[0].LineID)
	require.NoError(t, err)
	f.add(t, "5.00", 1)

	s, err = f.co.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, money.Zero, s.Payable)
	assert.Nil(t, s.Discount)
	assert.Equal(t, money.Zero, s.Net)

	cur, err := f.ledger.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, cur)
}

func TestSummary_GuestPaysCartTotal(t *testing.T) {
	f := setup(t, orders.RoleGuest)
	f.api.historyErr = errors.New("must not be called")
	f.add(t, "8.50", 2)

	s, err := f.co.Summary(context.Background())
	require.NoError(t, err)
	assert.True(t, s.Guest)
	assert.Equal(t, money.MustParse("17.00"), s.Payable)
	assert.Equal(t, s.CartTotal, s.Payable)
}

func TestSummary_HistoryFailure(t *testing.T) {
	f := setup(t, orders.RoleCustomer)
	f.api.historyErr = &orders.NetworkError{Op: "upcoming orders", Err: errors.New("unavailable")}
	f.add(t, "8.50", 1)

	_, err := f.co.Summary(context.Background())
	assert.True(t, orders.IsNetwork(err))
}

func TestPlaceOrder(t *testing.T) {
	ctx := context.Background()
	f := setup(t, orders.RoleCustomer)
	f.add(t, "10.00", 2)
	_, err := f.ledger.ApplyCode(ctx, "SAVE10")
	require.NoError(t, err)
	f.api.result = PlaceResult{Orders: []orders.Order{{ID: "o1"}}}

	res, err := f.co.PlaceOrder(ctx)
	require.NoError(t, err)
	assert.False(t, res.NeedsPayment())
	assert.Len(t, res.Orders, 1)

	require.Len(t, f.api.created, 1)
	req := f.api.created[0]
	assert.Equal(t, "u1", req.UserID)
	assert.Equal(t, "u1", req.OrderingForUser)
	assert.Equal(t, "d1", req.DiscountCodeID)
	assert.Len(t, req.Items, 1)

	items, err := f.cart.Items(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
	cur, err := f.ledger.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, cur)
}

func TestPlaceOrder_FailureKeepsCart(t *testing.T) {
	ctx := context.Background()
	f := setup(t, orders.RoleAdmin)
	f.add(t, "5.00", 1)
	f.api.createErr = &orders.ValidationError{Message: "insufficient addon selections"}

	co := New(f.api, "u1", customer("u2", orders.RoleCustomer), f.cart, f.ledger, 25)
	_, err := co.PlaceOrder(ctx)
	assert.True(t, orders.IsValidation(err))
	assert.Equal(t, "u1", f.api.created[0].UserID)
	assert.Equal(t, "u2", f.api.created[0].OrderingForUser)

	items, err := f.cart.Items(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	f := setup(t, orders.RoleCustomer)
	_, err := f.co.PlaceOrder(context.Background())
	assert.ErrorIs(t, err, orders.ErrEmptyCart)
	assert.True(t, orders.IsValidation(err))
	assert.Empty(t, f.api.created)
}

func TestPlaceOrder_DropsDiscountAfterCartShrinks(t *testing.T) {
	ctx := context.Background()
	f := setup(t, orders.RoleCustomer)
	f.add(t, "10.00", 3)
	_, err := f.ledger.ApplyCode(ctx, "SAVE10")
	require.NoError(t, err)

	items, err := f.cart.Items(ctx)
	require.NoError(t, err)
	_, err = f.cart.UpdateQuantity(ctx, items[0].LineID, 1)
	require.NoError(t, err)

	_, err = f.co.PlaceOrder(ctx)
	require.NoError(t, err)
	require.Len(t, f.api.created, 1)
	assert.Empty(t, f.api.created[0].DiscountCodeID)
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		qty      int
		keepCode bool
	}{
		{name: "still payable", price: "10.00", qty: 2, keepCode: true},
		{name: "within budget", price: "10.00", qty: 1},
		{name: "empty cart"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := setup(t, orders.RoleCustomer)
			if tt.qty > 0 {
				f.add(t, tt.price, tt.qty)
			}
			_, err := f.ledger.ApplyCode(ctx, "SAVE10")
			require.NoError(t, err)

			d, err := f.co.Reconcile(ctx)
			require.NoError(t, err)
			cur, err := f.ledger.Current(ctx)
			require.NoError(t, err)
			if tt.keepCode {
				require.NotNil(t, d)
				assert.Equal(t, "d1", cur.ID)
			} else {
				assert.Nil(t, d)
				assert.Nil(t, cur)
			}
		})
	}
}
