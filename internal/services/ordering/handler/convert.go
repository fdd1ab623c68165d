package handler

import (
	"log"
	"slices"
	"time"

	"mealplan-system/internal/database/models"
	"mealplan-system/internal/money"
	"mealplan-system/internal/orders"
)

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func centsPtr(c money.Cents) *string {
	if c == 0 {
		return nil
	}
	s := c.String()
	return &s
}

func parseCents(s string) money.Cents {
	c, err := money.Parse(s)
	if err != nil {
		log.Printf("invalid stored amount %q: %v", s, err)
		return money.Zero
	}
	return c
}

func addressToDomain(a models.Address) orders.Address {
	out := orders.Address{
		AddressLine1: a.AddressLine1,
		City:         a.City,
		State:        a.State,
		Zip:          a.Zip,
	}
	if a.AddressLine2 != nil {
		out.AddressLine2 = *a.AddressLine2
	}
	return out
}

func addressToModel(a orders.Address) models.Address {
	return models.Address{
		AddressLine1: a.AddressLine1,
		AddressLine2: strPtr(a.AddressLine2),
		City:         a.City,
		State:        a.State,
		Zip:          a.Zip,
	}
}

func orderToDomain(m models.Order) orders.Order {
	o := orders.Order{
		ID: m.ID,
		Customer: orders.CustomerRef{
			ID:        m.CustomerID,
			FirstName: m.CustomerFirstName,
			LastName:  m.CustomerLastName,
			Email:     m.CustomerEmail,
		},
		Restaurant: orders.RestaurantRef{ID: m.RestaurantID, Name: m.RestaurantName},
		Company: orders.CompanyRef{
			ID:    m.CompanyID,
			Name:  m.CompanyName,
			Code:  m.CompanyCode,
			Shift: m.CompanyShift,
		},
		Delivery: orders.Delivery{
			Date:    orders.DateOf(m.DeliveryDate),
			Address: addressToDomain(m.DeliveryAddress),
		},
		Item: orders.Item{
			ID:                 m.ItemID,
			Name:               m.ItemName,
			Quantity:           int(m.Quantity),
			Total:              parseCents(m.Total),
			OptionalAddons:     m.OptionalAddons,
			RequiredAddons:     m.RequiredAddons,
			RemovedIngredients: m.RemovedIngredients,
		},
		Status: orders.Status(m.Status),
	}
	if m.PaymentDistributed != nil {
		o.Payment = &orders.Payment{AmountDistributed: parseCents(*m.PaymentDistributed)}
		if m.PaymentIntentID != nil {
			o.Payment.IntentID = *m.PaymentIntentID
		}
	}
	if m.DiscountDistributed != nil {
		o.Discount = &orders.Discount{AmountDistributed: parseCents(*m.DiscountDistributed)}
	}
	return o
}

func orderToModel(o orders.Order, discountCodeID string) models.Order {
	m := models.Order{
		ID:                 o.ID,
		CustomerID:         o.Customer.ID,
		CustomerFirstName:  o.Customer.FirstName,
		CustomerLastName:   o.Customer.LastName,
		CustomerEmail:      o.Customer.Email,
		RestaurantID:       o.Restaurant.ID,
		RestaurantName:     o.Restaurant.Name,
		CompanyID:          o.Company.ID,
		CompanyName:        o.Company.Name,
		CompanyCode:        o.Company.Code,
		CompanyShift:       o.Company.Shift,
		DeliveryDate:       o.Delivery.Date.Time(),
		DeliveryAddress:    addressToModel(o.Delivery.Address),
		ItemID:             o.Item.ID,
		ItemName:           o.Item.Name,
		Quantity:           int32(o.Item.Quantity),
		Total:              o.Item.Total.String(),
		OptionalAddons:     o.Item.OptionalAddons,
		RequiredAddons:     o.Item.RequiredAddons,
		RemovedIngredients: o.Item.RemovedIngredients,
		Status:             string(o.Status),
	}
	if o.Payment != nil {
		m.PaymentIntentID = strPtr(o.Payment.IntentID)
		s := o.Payment.AmountDistributed.String()
		m.PaymentDistributed = &s
	}
	if o.Discount != nil {
		m.DiscountCodeID = strPtr(discountCodeID)
		s := o.Discount.AmountDistributed.String()
		m.DiscountDistributed = &s
	}
	return m
}

// customerToDomain resolves each membership's shift budget from its
// company's shift table.
func customerToDomain(m models.Customer) orders.Customer {
	c := orders.Customer{
		ID:        m.ID,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Email:     m.Email,
		Role:      orders.Role(m.Role),
		Companies: make([]orders.CompanyMembership, 0, len(m.Memberships)),
	}
	for _, ms := range m.Memberships {
		cm := orders.CompanyMembership{
			ID:     ms.CompanyID,
			Shift:  ms.Shift,
			Status: ms.Status,
		}
		if ms.Company != nil {
			cm.Name = ms.Company.Name
			cm.Code = ms.Company.Code
			cm.Address = addressToDomain(ms.Company.Address)
			i := slices.IndexFunc(ms.Company.Shifts, func(s models.CompanyShift) bool { return s.Shift == ms.Shift })
			if i >= 0 {
				cm.ShiftBudget = parseCents(ms.Company.Shifts[i].ShiftBudget)
			}
		}
		c.Companies = append(c.Companies, cm)
	}
	return c
}

// discountRule is a stored discount code with the checks needed to redeem it.
type discountRule struct {
	ID             string
	Code           string
	Value          money.Cents
	CompanyIDs     []string
	MaxRedemptions int32
	Redemptions    int32
	ExpiresAt      *time.Time
	Active         bool
}

func discountToDomain(m models.DiscountCode) discountRule {
	return discountRule{
		ID:             m.ID,
		Code:           m.Code,
		Value:          parseCents(m.Value),
		CompanyIDs:     m.CompanyIDs,
		MaxRedemptions: m.MaxRedemptions,
		Redemptions:    m.Redemptions,
		ExpiresAt:      m.ExpiresAt,
		Active:         m.IsActive,
	}
}

// usable reports whether the code can be redeemed now by a member of
// companyID. A zero MaxRedemptions means unlimited.
func (d discountRule) usable(now time.Time, companyID string) bool {
	switch {
	case !d.Active:
		return false
	case d.ExpiresAt != nil && !now.Before(*d.ExpiresAt):
		return false
	case d.MaxRedemptions > 0 && d.Redemptions >= d.MaxRedemptions:
		return false
	case len(d.CompanyIDs) > 0 && !slices.Contains(d.CompanyIDs, companyID):
		return false
	}
	return true
}

func (d discountRule) applied() orders.AppliedDiscount {
	return orders.AppliedDiscount{ID: d.ID, Code: d.Code, Value: d.Value}
}
