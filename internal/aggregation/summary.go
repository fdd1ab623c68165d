package aggregation

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"mealplan-system/internal/money"
	"mealplan-system/internal/orders"
)

// LineKind tags which order shape a summary line came from.
type LineKind uint8

const (
	// LineOrder lines come from customer orders and merge quantity only.
	LineOrder LineKind = iota + 1
	// LineVendorOrder lines come from vendor orders and carry a line total.
	LineVendorOrder
)

func (k LineKind) String() string {
	switch k {
	case LineOrder:
		return "order"
	case LineVendorOrder:
		return "vendor-order"
	}
	return fmt.Sprintf("LineKind(%d)", uint8(k))
}

func (k LineKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

type LineItem struct {
	ID                 string      `json:"id"`
	Name               string      `json:"name"`
	Quantity           int         `json:"quantity"`
	Total              money.Cents `json:"total,omitempty"`
	OptionalAddons     *string     `json:"optionalAddons"`
	RequiredAddons     *string     `json:"requiredAddons"`
	RemovedIngredients *string     `json:"removedIngredients"`
}

// Line is one row of the order summary table.
type Line struct {
	Kind         LineKind             `json:"kind"`
	CompanyID    string               `json:"companyId"`
	DeliveryDate orders.Date          `json:"deliveryDate"`
	Restaurant   orders.RestaurantRef `json:"restaurant"`
	Item         LineItem             `json:"item"`
}

func OrderLine(o orders.Order) Line {
	return Line{
		Kind:         LineOrder,
		CompanyID:    o.Company.ID,
		DeliveryDate: o.Delivery.Date,
		Restaurant:   o.Restaurant,
		Item: LineItem{
			ID:                 o.Item.ID,
			Name:               o.Item.Name,
			Quantity:           o.Item.Quantity,
			OptionalAddons:     o.Item.OptionalAddons,
			RequiredAddons:     o.Item.RequiredAddons,
			RemovedIngredients: o.Item.RemovedIngredients,
		},
	}
}

func VendorLine(v orders.VendorOrder) Line {
	return Line{
		Kind:         LineVendorOrder,
		CompanyID:    v.Company.ID,
		DeliveryDate: v.Delivery.Date,
		Restaurant:   v.Restaurant,
		Item: LineItem{
			ID:                 v.Item.ID,
			Name:               v.Item.Name,
			Quantity:           v.Item.Quantity,
			Total:              v.Item.Total,
			OptionalAddons:     v.Item.OptionalAddons,
			RequiredAddons:     v.Item.RequiredAddons,
			RemovedIngredients: v.Item.RemovedIngredients,
		},
	}
}

type summaryConfig struct {
	canonicalAddons bool
}

type SummaryOption func(*summaryConfig)

// WithCanonicalAddons trims and sorts comma-separated addon text before
// comparing lines, so "Salsa, Cheese" and "Cheese,Salsa " merge. Off by
// default: it changes which rows merge compared to raw-text equality.
func WithCanonicalAddons() SummaryOption {
	return func(c *summaryConfig) { c.canonicalAddons = true }
}

type lineKey struct {
	kind               LineKind
	companyID          string
	deliveryDate       orders.Date
	itemID             string
	optionalAddons     string
	requiredAddons     string
	removedIngredients string
}

// GroupIdenticalOrdersAndSort merges lines that differ only by quantity (and
// total, for vendor lines) and returns them sorted by item name.
func GroupIdenticalOrdersAndSort(lines []Line, opts ...SummaryOption) []Line {
	var cfg summaryConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	merged := make([]Line, 0, len(lines))
	index := make(map[lineKey]int)
	for _, l := range lines {
		key := cfg.key(l)
		i, ok := index[key]
		if !ok {
			index[key] = len(merged)
			merged = append(merged, l.clone())
			continue
		}

		m := &merged[i]
		switch m.Kind {
		case LineOrder:
			m.Item.Quantity += l.Item.Quantity
		case LineVendorOrder:
			m.Item.Quantity += l.Item.Quantity
			m.Item.Total += l.Item.Total
		default:
			panic(fmt.Sprintf("aggregation: unhandled line kind %v", m.Kind))
		}
	}

	c := collate.New(language.English)
	sort.SliceStable(merged, func(i, j int) bool {
		return c.CompareString(merged[i].Item.Name, merged[j].Item.Name) < 0
	})
	return merged
}

func SummarizeOrders(list []orders.Order, opts ...SummaryOption) []Line {
	lines := make([]Line, 0, len(list))
	for _, o := range list {
		lines = append(lines, OrderLine(o))
	}
	return GroupIdenticalOrdersAndSort(lines, opts...)
}

func SummarizeVendorOrders(list []orders.VendorOrder, opts ...SummaryOption) []Line {
	lines := make([]Line, 0, len(list))
	for _, v := range list {
		lines = append(lines, VendorLine(v))
	}
	return GroupIdenticalOrdersAndSort(lines, opts...)
}

func (cfg summaryConfig) key(l Line) lineKey {
	text := func(s *string) string {
		if s == nil {
			return ""
		}
		if cfg.canonicalAddons {
			return canonicalAddons(*s)
		}
		return *s
	}
	return lineKey{
		kind:               l.Kind,
		companyID:          l.CompanyID,
		deliveryDate:       l.DeliveryDate,
		itemID:             l.Item.ID,
		optionalAddons:     text(l.Item.OptionalAddons),
		requiredAddons:     text(l.Item.RequiredAddons),
		removedIngredients: text(l.Item.RemovedIngredients),
	}
}

func canonicalAddons(s string) string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	slices.Sort(out)
	return strings.Join(out, ", ")
}

func (l Line) clone() Line {
	c := l
	c.Item.OptionalAddons = cloneString(l.Item.OptionalAddons)
	c.Item.RequiredAddons = cloneString(l.Item.RequiredAddons)
	c.Item.RemovedIngredients = cloneString(l.Item.RemovedIngredients)
	return c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
