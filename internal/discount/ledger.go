// Package discount tracks the one discount code a user has applied to the
// current checkout and derives the net amount due from it.
package discount

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mealplan-system/internal/clientstore"
	"mealplan-system/internal/money"
	"mealplan-system/internal/orders"
)

var ErrInvalidCode = errors.New("invalid discount code")

// Validator resolves a code against the ordering API. It returns
// ErrInvalidCode (or a ValidationError) for unknown, expired or exhausted
// codes and a NetworkError when the API cannot be reached.
type Validator interface {
	ApplyDiscountCode(ctx context.Context, userID, code string) (orders.AppliedDiscount, error)
}

type Ledger struct {
	store     clientstore.Store
	validator Validator
	userID    string
}

func NewLedger(store clientstore.Store, validator Validator, userID string) *Ledger {
	return &Ledger{store: store, validator: validator, userID: userID}
}

func (l *Ledger) key() string {
	return clientstore.DiscountKey(l.userID)
}

// Current returns the applied discount, or nil when none is cached.
func (l *Ledger) Current(ctx context.Context) (*orders.AppliedDiscount, error) {
	var d orders.AppliedDiscount
	ok, err := l.store.Get(ctx, l.key(), &d)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &d, nil
}

// ApplyCode validates code and caches the result. A rejected code leaves
// the cached discount untouched.
func (l *Ledger) ApplyCode(ctx context.Context, code string) (orders.AppliedDiscount, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return orders.AppliedDiscount{}, invalidCode(nil)
	}

	d, err := l.validator.ApplyDiscountCode(ctx, l.userID, code)
	if err != nil {
		if errors.Is(err, ErrInvalidCode) || orders.IsValidation(err) {
			return orders.AppliedDiscount{}, invalidCode(err)
		}
		return orders.AppliedDiscount{}, err
	}
	if d.Value < 0 {
		return orders.AppliedDiscount{}, invalidCode(fmt.Errorf("negative value %s", d.Value))
	}

	if err := l.store.Set(ctx, l.key(), d); err != nil {
		return orders.AppliedDiscount{}, err
	}
	return d, nil
}

func (l *Ledger) RemoveCode(ctx context.Context) error {
	return l.store.Remove(ctx, l.key())
}

// Reconcile drops the applied discount once nothing is left to pay, so a
// code cannot be held over for a later cart. It returns the discount still
// in effect.
func (l *Ledger) Reconcile(ctx context.Context, payable money.Cents) (*orders.AppliedDiscount, error) {
	d, err := l.Current(ctx)
	if err != nil || d == nil {
		return nil, err
	}
	if payable.IsPositive() {
		return d, nil
	}
	if err := l.RemoveCode(ctx); err != nil {
		return d, err
	}
	return nil, nil
}

// ComputeNet is payable minus the discount value, never below zero.
func ComputeNet(payable money.Cents, d *orders.AppliedDiscount) money.Cents {
	if d == nil {
		return money.Max(payable, money.Zero)
	}
	return money.Max(payable-d.Value, money.Zero)
}

func invalidCode(cause error) error {
	err := ErrInvalidCode
	if cause != nil && !errors.Is(cause, ErrInvalidCode) {
		err = fmt.Errorf("%w: %v", ErrInvalidCode, cause)
	}
	return &orders.ValidationError{Field: "code", Message: "Invalid discount code", Err: err}
}
