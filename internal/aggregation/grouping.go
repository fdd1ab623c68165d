// Package aggregation derives the admin views over flat order lists: groups
// per company and delivery date, rows per restaurant, and merged summary lines.
package aggregation

import (
	"slices"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"mealplan-system/internal/orders"
)

// GroupKey identifies an order group.
type GroupKey struct {
	CompanyCode  string      `json:"companyCode"`
	DeliveryDate orders.Date `json:"deliveryDate"`
}

type OrderGroup struct {
	Company      orders.CompanyRef `json:"company"`
	DeliveryDate orders.Date       `json:"deliveryDate"`
	Customers    []string          `json:"customers"`
	Restaurants  []string          `json:"restaurants"`
	Orders       []orders.Order    `json:"orders"`
}

func (g OrderGroup) Key() GroupKey {
	return GroupKey{CompanyCode: g.Company.Code, DeliveryDate: g.DeliveryDate}
}

// GroupOrdersByCompanyAndDate partitions orders by company code and delivery
// date. Groups come out in the order their first member was seen.
func GroupOrdersByCompanyAndDate(list []orders.Order) []OrderGroup {
	groups := make([]OrderGroup, 0)
	index := make(map[GroupKey]int)

	for _, o := range list {
		key := GroupKey{CompanyCode: o.Company.Code, DeliveryDate: o.Delivery.Date}
		i, ok := index[key]
		if !ok {
			index[key] = len(groups)
			groups = append(groups, OrderGroup{
				Company:      o.Company,
				DeliveryDate: o.Delivery.Date,
				Customers:    []string{o.Customer.ID},
				Restaurants:  []string{o.Restaurant.Name},
				Orders:       []orders.Order{o},
			})
			continue
		}

		g := &groups[i]
		g.Orders = append(g.Orders, o)
		if !slices.Contains(g.Customers, o.Customer.ID) {
			g.Customers = append(g.Customers, o.Customer.ID)
		}
		if !slices.Contains(g.Restaurants, o.Restaurant.Name) {
			g.Restaurants = append(g.Restaurants, o.Restaurant.Name)
		}
	}
	return groups
}

// RestaurantRow is the slice of a group served by one restaurant; batch
// deliver and archive act on a whole row.
type RestaurantRow struct {
	Restaurant orders.RestaurantRef `json:"restaurant"`
	Orders     []orders.Order       `json:"orders"`
}

// Actionable reports whether deliver/archive may be offered for the row.
func (r RestaurantRow) Actionable() bool {
	return orders.AllProcessing(r.Orders)
}

func (r RestaurantRow) OrderIDs() []string {
	return orders.IDs(r.Orders)
}

func RestaurantRows(g OrderGroup) []RestaurantRow {
	rows := make([]RestaurantRow, 0, len(g.Restaurants))
	index := make(map[string]int)
	for _, o := range g.Orders {
		i, ok := index[o.Restaurant.ID]
		if !ok {
			index[o.Restaurant.ID] = len(rows)
			rows = append(rows, RestaurantRow{Restaurant: o.Restaurant, Orders: []orders.Order{o}})
			continue
		}
		rows[i].Orders = append(rows[i].Orders, o)
	}
	return rows
}

const (
	SortByCompany = "company"
	SortByDate    = "date"
)

// Filters are an admin's saved preferences for the upcoming-orders screen.
type Filters struct {
	CompanyCode    string `json:"companyCode,omitempty"`
	RestaurantName string `json:"restaurantName,omitempty"`
	SortBy         string `json:"sortBy,omitempty"`
}

// ApplyFilters narrows and orders groups. A restaurant filter keeps only the
// groups that restaurant serves; the groups themselves are left whole.
func ApplyFilters(groups []OrderGroup, f Filters) []OrderGroup {
	out := make([]OrderGroup, 0, len(groups))
	for _, g := range groups {
		if f.CompanyCode != "" && g.Company.Code != f.CompanyCode {
			continue
		}
		if f.RestaurantName != "" && !slices.Contains(g.Restaurants, f.RestaurantName) {
			continue
		}
		out = append(out, g)
	}

	switch f.SortBy {
	case SortByCompany:
		SortGroupsByCompanyName(out)
	case SortByDate:
		SortGroupsByDeliveryDate(out)
	}
	return out
}

func SortGroupsByCompanyName(groups []OrderGroup) {
	c := collate.New(language.English)
	sort.SliceStable(groups, func(i, j int) bool {
		return c.CompareString(groups[i].Company.Name, groups[j].Company.Name) < 0
	})
}

func SortGroupsByDeliveryDate(groups []OrderGroup) {
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].DeliveryDate.Before(groups[j].DeliveryDate)
	})
}
