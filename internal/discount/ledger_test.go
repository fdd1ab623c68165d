package discount

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealplan-system/internal/clientstore"
	"mealplan-system/internal/money"
	"mealplan-system/internal/orders"
)

type fakeValidator struct {
	codes map[string]orders.AppliedDiscount
	err   error
	calls int
}

func (f *fakeValidator) ApplyDiscountCode(_ context.Context, _ string, code string) (orders.AppliedDiscount, error) {
	f.calls++
	if f.err != nil {
		return orders.AppliedDiscount{}, f.err
	}
	d, ok := f.codes[code]
	if !ok {
		return orders.AppliedDiscount{}, ErrInvalidCode
	}
	return d, nil
}

var save10 = orders.AppliedDiscount{ID: "d1", Code: "SAVE10", Value: money.MustParse("10.00")}

func newLedger() (*Ledger, *fakeValidator) {
	v := &fakeValidator{codes: map[string]orders.AppliedDiscount{"SAVE10": save10}}
	return NewLedger(clientstore.NewMemoryStore(), v, "u1"), v
}

func TestLedger_ApplyAndRemove(t *testing.T) {
	ctx := context.Background()
	l, _ := newLedger()

	d, err := l.ApplyCode(ctx, " SAVE10 ")
	require.NoError(t, err)
	assert.Equal(t, save10, d)

	cur, err := l.Current(ctx)
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.Equal(t, "SAVE10", cur.Code)

	require.NoError(t, l.RemoveCode(ctx))
	cur, err = l.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, cur)
}

func TestLedger_InvalidCodeLeavesCacheUnchanged(t *testing.T) {
	ctx := context.Background()
	l, v := newLedger()

	_, err := l.ApplyCode(ctx, "SAVE10")
	require.NoError(t, err)

	_, err = l.ApplyCode(ctx, "BOGUS")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCode)
	assert.True(t, orders.IsValidation(err))
	assert.Contains(t, err.Error(), "Invalid discount code")

	cur, err := l.Current(ctx)
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.Equal(t, "SAVE10", cur.Code)

	_, err = l.ApplyCode(ctx, "   ")
	assert.ErrorIs(t, err, ErrInvalidCode)
	assert.Equal(t, 2, v.calls)
}

func TestLedger_NetworkErrorPassesThrough(t *testing.T) {
	l, v := newLedger()
	v.err = &orders.NetworkError{Op: "apply discount", Err: errors.New("dial tcp: refused")}

	_, err := l.ApplyCode(context.Background(), "SAVE10")
	assert.True(t, orders.IsNetwork(err))
	assert.False(t, orders.IsValidation(err))
}

func TestLedger_ReconcileClearsWhenNothingPayable(t *testing.T) {
	ctx := context.Background()
	l, _ := newLedger()
	_, err := l.ApplyCode(ctx, "SAVE10")
	require.NoError(t, err)

	d, err := l.Reconcile(ctx, money.MustParse("10.00"))
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, money.MustParse("0.00"), ComputeNet(money.MustParse("10.00"), d))

	d, err = l.Reconcile(ctx, money.Zero)
	require.NoError(t, err)
	assert.Nil(t, d)
	assert.Equal(t, money.Zero, ComputeNet(money.Zero, d))

	cur, err := l.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, cur)
}

func TestLedger_ReconcileWithoutDiscount(t *testing.T) {
	l, _ := newLedger()
	d, err := l.Reconcile(context.Background(), money.Zero)
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestComputeNet(t *testing.T) {
	tests := []struct {
		name     string
		payable  string
		discount *orders.AppliedDiscount
		want     string
	}{
		{"no discount", "12.50", nil, "12.50"},
		{"partial", "12.50", &orders.AppliedDiscount{Value: money.MustParse("2.50")}, "10.00"},
		{"exact", "10.00", &save10, "0.00"},
		{"discount exceeds payable", "4.00", &save10, "0.00"},
		{"zero payable", "0", &save10, "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payable := money.MustParse(tt.payable)
			got := ComputeNet(payable, tt.discount)
			assert.Equal(t, money.MustParse(tt.want), got)
			assert.LessOrEqual(t, int64(got), int64(payable))
		})
	}
}
