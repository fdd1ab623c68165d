package ordering

import (
	"time"

	"mealplan-system/internal/orders"
)

const (
	EventOrdersCreated       = "orders.created"
	EventOrdersStatusChanged = "orders.status_changed"

	EVENTS_CHANNEL_PREFIX = "ordering:events:"
	EVENTS_CHANNEL_ALL    = "ordering:events:all"
)

// OrderEvent is published on Redis whenever orders are created or change
// status, once on the event's own channel and once on the all channel.
type OrderEvent struct {
	EventType string         `json:"event_type"`
	OrderIDs  []string       `json:"order_ids"`
	Status    orders.Status  `json:"status,omitempty"`
	Orders    []orders.Order `json:"orders,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

type GetCustomerRequest struct {
	CustomerID string `json:"customer_id"`
}

type GetCustomerResponse struct {
	Success  bool             `json:"success"`
	Message  *string          `json:"message,omitempty"`
	Customer *orders.Customer `json:"customer,omitempty"`
}

// ListOrdersRequest lists one customer's orders, or every customer's when
// CustomerID is empty. Limit only applies to delivered orders.
type ListOrdersRequest struct {
	CustomerID string `json:"customer_id,omitempty"`
	Limit      int32  `json:"limit,omitempty"`
}

type ListOrdersResponse struct {
	Success bool           `json:"success"`
	Message *string        `json:"message,omitempty"`
	Orders  []orders.Order `json:"orders"`
}

type UpdateOrdersStatusRequest struct {
	OrderIDs    []string    `json:"order_ids"`
	RequestedBy string      `json:"requested_by"`
	Role        orders.Role `json:"role"`
}

type UpdateOrdersStatusResponse struct {
	Success bool           `json:"success"`
	Message *string        `json:"message,omitempty"`
	Orders  []orders.Order `json:"orders"`
}

type ApplyDiscountCodeRequest struct {
	CustomerID string `json:"customer_id"`
	Code       string `json:"code"`
}

type ApplyDiscountCodeResponse struct {
	Success  bool                    `json:"success"`
	Message  *string                 `json:"message,omitempty"`
	Discount *orders.AppliedDiscount `json:"discount,omitempty"`
}

type CreateOrdersRequest struct {
	CustomerID      string            `json:"customer_id"`
	OrderingForUser string            `json:"ordering_for_user"`
	Items           []orders.CartItem `json:"items"`
	DiscountCodeID  string            `json:"discount_code_id,omitempty"`
}

// CreateOrdersResponse carries either a payment redirect (with the pending
// checkout session) or the orders created straight away.
type CreateOrdersResponse struct {
	Success     bool           `json:"success"`
	Message     *string        `json:"message,omitempty"`
	RedirectURL *string        `json:"redirect_url,omitempty"`
	SessionID   *string        `json:"session_id,omitempty"`
	Orders      []orders.Order `json:"orders,omitempty"`
}

type ConfirmCheckoutRequest struct {
	SessionID       string `json:"session_id"`
	PaymentIntentID string `json:"payment_intent_id"`
	RequestedBy     string `json:"requested_by"`
}

type ChangeShiftRequest struct {
	CustomerID string `json:"customer_id"`
	CompanyID  string `json:"company_id"`
	Shift      string `json:"shift"`
}

type ChangeShiftResponse struct {
	Success  bool             `json:"success"`
	Message  *string          `json:"message,omitempty"`
	Customer *orders.Customer `json:"customer,omitempty"`
}
