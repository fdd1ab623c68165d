// Package orders holds the records exchanged between the ordering API and the
// gateway: orders, customers, carts and applied discounts.
package orders

import "mealplan-system/internal/money"

type CustomerRef struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type RestaurantRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CompanyRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Code  string `json:"code"`
	Shift string `json:"shift"`
}

type Address struct {
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	Zip          string `json:"zip"`
}

type Delivery struct {
	Date    Date    `json:"date"`
	Address Address `json:"address"`
}

// Item is the ordered dish. Total is the line total (unit price with addons
// times quantity) before any employer coverage.
type Item struct {
	ID                 string      `json:"id"`
	Name               string      `json:"name"`
	Quantity           int         `json:"quantity"`
	Total              money.Cents `json:"total"`
	OptionalAddons     *string     `json:"optionalAddons"`
	RequiredAddons     *string     `json:"requiredAddons"`
	RemovedIngredients *string     `json:"removedIngredients"`
}

type Payment struct {
	IntentID          string      `json:"intentId"`
	AmountDistributed money.Cents `json:"distributed"`
}

type Discount struct {
	AmountDistributed money.Cents `json:"distributed"`
}

// Order is one line item ordered by one customer for one delivery.
// Payment and Discount together never exceed Item.Total.
type Order struct {
	ID         string        `json:"_id"`
	Customer   CustomerRef   `json:"customer"`
	Restaurant RestaurantRef `json:"restaurant"`
	Company    CompanyRef    `json:"company"`
	Delivery   Delivery      `json:"delivery"`
	Item       Item          `json:"item"`
	Status     Status        `json:"status"`
	Payment    *Payment      `json:"payment,omitempty"`
	Discount   *Discount     `json:"discount,omitempty"`
}

// Distributed is the part of the line total not covered by the employer.
func (o Order) Distributed() money.Cents {
	var total money.Cents
	if o.Payment != nil {
		total += o.Payment.AmountDistributed
	}
	if o.Discount != nil {
		total += o.Discount.AmountDistributed
	}
	return total
}

// VendorItem is the restaurant-facing view of an ordered dish; it always
// carries the line total.
type VendorItem struct {
	ID                 string      `json:"id"`
	Name               string      `json:"name"`
	Quantity           int         `json:"quantity"`
	Total              money.Cents `json:"total"`
	OptionalAddons     *string     `json:"optionalAddons"`
	RequiredAddons     *string     `json:"requiredAddons"`
	RemovedIngredients *string     `json:"removedIngredients"`
}

// VendorOrder is an upcoming order as a restaurant sees it: no customer data.
type VendorOrder struct {
	ID         string        `json:"_id"`
	Company    CompanyRef    `json:"company"`
	Restaurant RestaurantRef `json:"restaurant"`
	Delivery   Delivery      `json:"delivery"`
	Item       VendorItem    `json:"item"`
}

func VendorOrderOf(o Order) VendorOrder {
	return VendorOrder{
		ID:         o.ID,
		Company:    o.Company,
		Restaurant: o.Restaurant,
		Delivery:   o.Delivery,
		Item: VendorItem{
			ID:                 o.Item.ID,
			Name:               o.Item.Name,
			Quantity:           o.Item.Quantity,
			Total:              o.Item.Total,
			OptionalAddons:     o.Item.OptionalAddons,
			RequiredAddons:     o.Item.RequiredAddons,
			RemovedIngredients: o.Item.RemovedIngredients,
		},
	}
}

func IDs(list []Order) []string {
	ids := make([]string, 0, len(list))
	for _, o := range list {
		ids = append(ids, o.ID)
	}
	return ids
}
