// Package cart manages a user's pending cart lines in the client store.
package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"mealplan-system/internal/clientstore"
	"mealplan-system/internal/orders"
)

// ScopeForRole picks the cart namespace for the role building the cart.
func ScopeForRole(role orders.Role) clientstore.Scope {
	switch role {
	case orders.RoleAdmin:
		return clientstore.ScopeAdmin
	case orders.RoleCompanyAdmin:
		return clientstore.ScopeCompanyAdmin
	default:
		return clientstore.ScopeCustomer
	}
}

type Cart struct {
	store clientstore.Store
	key   string
}

func New(store clientstore.Store, scope clientstore.Scope, userID string) *Cart {
	return &Cart{store: store, key: clientstore.CartKey(scope, userID)}
}

func (c *Cart) Items(ctx context.Context) ([]orders.CartItem, error) {
	items := []orders.CartItem{}
	if _, err := c.store.Get(ctx, c.key, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Add appends a line, or bumps the quantity of an identical existing line.
// The line's addon total is always derived from its per-portion price.
func (c *Cart) Add(ctx context.Context, item orders.CartItem) ([]orders.CartItem, error) {
	item = item.WithQuantity(item.Quantity)
	if err := item.Validate(); err != nil {
		return nil, err
	}
	items, err := c.Items(ctx)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range items {
		if items[i].SameSelection(item) && items[i].AddonUnitPrice == item.AddonUnitPrice {
			items[i] = items[i].WithQuantity(items[i].Quantity + item.Quantity)
			merged = true
			break
		}
	}
	if !merged {
		item.LineID = uuid.NewString()
		items = append(items, item)
	}
	return items, c.save(ctx, items)
}

// UpdateQuantity sets a line's quantity and recomputes its addon total.
func (c *Cart) UpdateQuantity(ctx context.Context, lineID string, quantity int) ([]orders.CartItem, error) {
	if quantity <= 0 {
		return nil, &orders.ValidationError{Field: "quantity", Message: "quantity must be greater than 0"}
	}
	items, err := c.Items(ctx)
	if err != nil {
		return nil, err
	}
	i, err := find(items, lineID)
	if err != nil {
		return nil, err
	}

	items[i] = items[i].WithQuantity(quantity)
	return items, c.save(ctx, items)
}

func (c *Cart) Remove(ctx context.Context, lineID string) ([]orders.CartItem, error) {
	items, err := c.Items(ctx)
	if err != nil {
		return nil, err
	}
	i, err := find(items, lineID)
	if err != nil {
		return nil, err
	}
	items = append(items[:i], items[i+1:]...)
	return items, c.save(ctx, items)
}

func (c *Cart) Clear(ctx context.Context) error {
	return c.store.Remove(ctx, c.key)
}

func (c *Cart) save(ctx context.Context, items []orders.CartItem) error {
	if len(items) == 0 {
		return c.Clear(ctx)
	}
	if err := c.store.Set(ctx, c.key, items); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func find(items []orders.CartItem, lineID string) (int, error) {
	for i, item := range items {
		if item.LineID == lineID {
			return i, nil
		}
	}
	return -1, &orders.NotFoundError{Resource: "cart item", ID: lineID}
}
