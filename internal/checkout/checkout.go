// Package checkout combines the cart, the budget calculation and the
// discount ledger into the numbers the checkout screen shows, and submits
// the cart to the ordering service.
package checkout

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"mealplan-system/internal/budget"
	"mealplan-system/internal/cart"
	"mealplan-system/internal/discount"
	"mealplan-system/internal/money"
	"mealplan-system/internal/orders"
)

// OrderingAPI is the part of the ordering service checkout depends on.
type OrderingAPI interface {
	UpcomingOrders(ctx context.Context, userID string) ([]orders.Order, error)
	DeliveredOrders(ctx context.Context, userID string, limit int) ([]orders.Order, error)
	CreateOrders(ctx context.Context, req CreateRequest) (PlaceResult, error)
}

type CreateRequest struct {
	UserID          string
	OrderingForUser string
	Items           []orders.CartItem
	DiscountCodeID  string
}

// PlaceResult holds either a payment redirect or the orders created
// directly when nothing was left to pay.
type PlaceResult struct {
	RedirectURL string         `json:"redirectUrl,omitempty"`
	Orders      []orders.Order `json:"orders,omitempty"`
}

func (r PlaceResult) NeedsPayment() bool { return r.RedirectURL != "" }

type Summary struct {
	Items     []orders.CartItem       `json:"items"`
	Buckets   []budget.Bucket         `json:"buckets"`
	CartTotal money.Cents             `json:"cartTotal"`
	Payable   money.Cents             `json:"payable"`
	Discount  *orders.AppliedDiscount `json:"discount"`
	Net       money.Cents             `json:"net"`
	Guest     bool                    `json:"guest"`
}

// Checkout prices the cart for customer. requesterID is the signed-in
// user, who differs from customer.ID when an admin orders for someone else.
type Checkout struct {
	api          OrderingAPI
	requesterID  string
	customer     orders.Customer
	cart         *cart.Cart
	ledger       *discount.Ledger
	historyLimit int
}

func New(api OrderingAPI, requesterID string, customer orders.Customer, c *cart.Cart, ledger *discount.Ledger, historyLimit int) *Checkout {
	return &Checkout{
		api:          api,
		requesterID:  requesterID,
		customer:     customer,
		cart:         c,
		ledger:       ledger,
		historyLimit: historyLimit,
	}
}

// Summary recomputes the checkout totals from the current cart and order
// history. An applied discount is dropped once nothing is payable.
func (c *Checkout) Summary(ctx context.Context) (Summary, error) {
	items, err := c.cart.Items(ctx)
	if err != nil {
		return Summary{}, err
	}
	buckets, err := c.buckets(ctx, items)
	if err != nil {
		return Summary{}, err
	}

	payable := budget.Payable(buckets)
	d, err := c.ledger.Reconcile(ctx, payable)
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		Items:     items,
		Buckets:   buckets,
		CartTotal: budget.CartTotal(items),
		Payable:   payable,
		Discount:  d,
		Net:       discount.ComputeNet(payable, d),
		Guest:     c.customer.IsGuest(),
	}, nil
}

// Reconcile re-prices the cart and clears the applied discount when
// nothing is payable any more. It runs after every cart edit.
func (c *Checkout) Reconcile(ctx context.Context) (*orders.AppliedDiscount, error) {
	items, err := c.cart.Items(ctx)
	if err != nil {
		return nil, err
	}
	return c.reconcile(ctx, items)
}

func (c *Checkout) reconcile(ctx context.Context, items []orders.CartItem) (*orders.AppliedDiscount, error) {
	d, err := c.ledger.Current(ctx)
	if err != nil || d == nil {
		return nil, err
	}
	if len(items) == 0 {
		return c.ledger.Reconcile(ctx, money.Zero)
	}
	buckets, err := c.buckets(ctx, items)
	if err != nil {
		return nil, err
	}
	return c.ledger.Reconcile(ctx, budget.Payable(buckets))
}

func (c *Checkout) buckets(ctx context.Context, items []orders.CartItem) ([]budget.Bucket, error) {
	if c.customer.IsGuest() {
		return budget.GuestBreakdown(items), nil
	}
	history, err := c.history(ctx)
	if err != nil {
		return nil, err
	}
	return budget.Breakdown(history, items, c.customer), nil
}

func (c *Checkout) history(ctx context.Context) ([]orders.Order, error) {
	var upcoming, delivered []orders.Order
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		upcoming, err = c.api.UpcomingOrders(gctx, c.customer.ID)
		return err
	})
	g.Go(func() error {
		var err error
		delivered, err = c.api.DeliveredOrders(gctx, c.customer.ID, c.historyLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return append(upcoming, delivered...), nil
}

// PlaceOrder submits the cart for the checkout's customer. The discount is
// reconciled against the current cart first so a stale code is never sent.
// The cart and discount are cleared only after the ordering service accepts.
func (c *Checkout) PlaceOrder(ctx context.Context) (PlaceResult, error) {
	items, err := c.cart.Items(ctx)
	if err != nil {
		return PlaceResult{}, err
	}
	if len(items) == 0 {
		return PlaceResult{}, &orders.ValidationError{Field: "cart", Message: "cart is empty", Err: orders.ErrEmptyCart}
	}

	req := CreateRequest{UserID: c.requesterID, OrderingForUser: c.customer.ID, Items: items}
	d, err := c.reconcile(ctx, items)
	if err != nil {
		return PlaceResult{}, err
	}
	if d != nil {
		req.DiscountCodeID = d.ID
	}

	res, err := c.api.CreateOrders(ctx, req)
	if err != nil {
		return PlaceResult{}, err
	}

	if err := c.cart.Clear(ctx); err != nil {
		return res, fmt.Errorf("orders placed but cart not cleared: %w", err)
	}
	if err := c.ledger.RemoveCode(ctx); err != nil {
		return res, fmt.Errorf("orders placed but discount not cleared: %w", err)
	}
	return res, nil
}
