package orders

import (
	"slices"
	"strings"

	"mealplan-system/internal/money"
)

// CartItem is a pending addition that lives in the client store until
// checkout. AddonUnitPrice is the per-portion addon price; AddonPrice is
// derived from it as the line's total addon price and is added once.
type CartItem struct {
	LineID             string      `json:"lineId"`
	ItemID             string      `json:"itemId"`
	ItemName           string      `json:"itemName"`
	RestaurantID       string      `json:"restaurantId"`
	RestaurantName     string      `json:"restaurantName"`
	CompanyID          string      `json:"companyId"`
	DeliveryDate       Date        `json:"deliveryDate"`
	Quantity           int         `json:"quantity"`
	UnitPrice          money.Cents `json:"price"`
	AddonUnitPrice     money.Cents `json:"addonUnitPrice"`
	AddonPrice         money.Cents `json:"addonPrice"`
	OptionalAddons     []string    `json:"optionalAddons"`
	RequiredAddons     []string    `json:"requiredAddons"`
	RemovedIngredients []string    `json:"removedIngredients"`
}

func (c CartItem) LineTotal() money.Cents {
	return c.UnitPrice.Mul(c.Quantity) + c.AddonPrice
}

// WithQuantity returns the line at quantity n with its addon total
// recomputed from the per-portion addon price.
func (c CartItem) WithQuantity(n int) CartItem {
	c.Quantity = n
	c.AddonPrice = c.AddonUnitPrice.Mul(n)
	return c
}

// SameSelection reports whether two cart lines describe the same dish with
// the same customisation for the same delivery.
func (c CartItem) SameSelection(o CartItem) bool {
	return c.ItemID == o.ItemID &&
		c.RestaurantID == o.RestaurantID &&
		c.CompanyID == o.CompanyID &&
		c.DeliveryDate == o.DeliveryDate &&
		slices.Equal(c.OptionalAddons, o.OptionalAddons) &&
		slices.Equal(c.RequiredAddons, o.RequiredAddons) &&
		slices.Equal(c.RemovedIngredients, o.RemovedIngredients)
}

// Validate checks the fields a cart line needs before it can be stored.
func (c CartItem) Validate() error {
	switch {
	case c.ItemID == "":
		return &ValidationError{Field: "itemId", Message: "item is required"}
	case c.RestaurantID == "":
		return &ValidationError{Field: "restaurantId", Message: "restaurant is required"}
	case c.CompanyID == "":
		return &ValidationError{Field: "companyId", Message: "company is required"}
	case c.DeliveryDate.IsZero():
		return &ValidationError{Field: "deliveryDate", Message: "delivery date is required"}
	case c.Quantity <= 0:
		return &ValidationError{Field: "quantity", Message: "quantity must be greater than 0"}
	case c.UnitPrice < 0 || c.AddonUnitPrice < 0 || c.AddonPrice < 0:
		return &ValidationError{Field: "price", Message: "prices cannot be negative"}
	}
	return nil
}

// JoinAddons renders a selection list the way orders store it: comma
// separated free text, nil when empty.
func JoinAddons(list []string) *string {
	if len(list) == 0 {
		return nil
	}
	s := strings.Join(list, ", ")
	return &s
}

type AppliedDiscount struct {
	ID    string      `json:"_id"`
	Code  string      `json:"code"`
	Value money.Cents `json:"value"`
}
