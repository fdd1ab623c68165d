package handler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"mealplan-system/internal/budget"
	"mealplan-system/internal/money"
	"mealplan-system/internal/orders"
	rpc "mealplan-system/internal/rpc/ordering"
)

const DELIVERED_LIMIT_MAX = 100

type OrderingHandler struct {
	rpc.UnimplementedOrderingServiceServer
	repo       Repository
	sessions   SessionStore
	events     EventPublisher
	paymentURL string
	now        func() time.Time
}

func NewOrderingHandler(repo Repository, sessions SessionStore, events EventPublisher, paymentURL string) *OrderingHandler {
	return &OrderingHandler{
		repo:       repo,
		sessions:   sessions,
		events:     events,
		paymentURL: paymentURL,
		now:        time.Now,
	}
}

// statusError maps domain errors onto gRPC status codes.
func statusError(err error) error {
	var nf *orders.NotFoundError
	var v *orders.ValidationError
	switch {
	case errors.As(err, &nf):
		return status.Error(codes.NotFound, nf.Error())
	case errors.As(err, &v):
		return status.Error(codes.InvalidArgument, v.Error())
	case errors.Is(err, orders.ErrInvalidTransition):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	log.Printf("ordering: internal error: %v", err)
	return status.Error(codes.Internal, "internal error")
}

func (h *OrderingHandler) GetCustomer(ctx context.Context, req *rpc.GetCustomerRequest) (*rpc.GetCustomerResponse, error) {
	if req.CustomerID == "" {
		return nil, status.Error(codes.InvalidArgument, "customer_id required")
	}
	c, err := h.repo.FindCustomer(ctx, req.CustomerID)
	if err != nil {
		return nil, statusError(err)
	}
	return &rpc.GetCustomerResponse{Success: true, Customer: &c}, nil
}

func (h *OrderingHandler) ListUpcomingOrders(ctx context.Context, req *rpc.ListOrdersRequest) (*rpc.ListOrdersResponse, error) {
	list, err := h.repo.ListOrders(ctx, OrderFilter{
		CustomerID: req.CustomerID,
		Statuses:   []orders.Status{orders.StatusProcessing},
	})
	if err != nil {
		return nil, statusError(err)
	}
	return &rpc.ListOrdersResponse{Success: true, Orders: list}, nil
}

// ListDeliveredOrders returns the newest delivered orders first.
func (h *OrderingHandler) ListDeliveredOrders(ctx context.Context, req *rpc.ListOrdersRequest) (*rpc.ListOrdersResponse, error) {
	limit := int(req.Limit)
	if limit <= 0 || limit > DELIVERED_LIMIT_MAX {
		limit = DELIVERED_LIMIT_MAX
	}
	list, err := h.repo.ListOrders(ctx, OrderFilter{
		CustomerID: req.CustomerID,
		Statuses:   []orders.Status{orders.StatusDelivered},
		Limit:      limit,
		Newest:     true,
	})
	if err != nil {
		return nil, statusError(err)
	}
	return &rpc.ListOrdersResponse{Success: true, Orders: list}, nil
}

// adminScope authorizes an admin transition. A company admin may only touch
// orders of their active company.
func (h *OrderingHandler) adminScope(ctx context.Context, req *rpc.UpdateOrdersStatusRequest, action string) (func(orders.Order) error, error) {
	if !req.Role.IsAdmin() {
		return nil, status.Errorf(codes.PermissionDenied, "only admins can %s orders", action)
	}
	if req.Role != orders.RoleCompanyAdmin {
		return nil, nil
	}
	company, err := h.adminCompany(ctx, req.RequestedBy)
	if err != nil {
		return nil, err
	}
	return func(o orders.Order) error {
		if o.Company.ID != company.ID {
			return status.Errorf(codes.PermissionDenied, "order %s belongs to another company", o.ID)
		}
		return nil
	}, nil
}

func (h *OrderingHandler) adminCompany(ctx context.Context, adminID string) (orders.CompanyMembership, error) {
	admin, err := h.repo.FindCustomer(ctx, adminID)
	if err != nil {
		return orders.CompanyMembership{}, statusError(err)
	}
	company, ok := admin.ActiveCompany()
	if !ok {
		return orders.CompanyMembership{}, status.Error(codes.PermissionDenied, "company admin has no active company")
	}
	return company, nil
}

// DeliverOrders marks a batch delivered. Every order must still be
// PROCESSING, otherwise nothing changes.
func (h *OrderingHandler) DeliverOrders(ctx context.Context, req *rpc.UpdateOrdersStatusRequest) (*rpc.UpdateOrdersStatusResponse, error) {
	scope, err := h.adminScope(ctx, req, "deliver")
	if err != nil {
		return nil, err
	}
	return h.transition(ctx, req, orders.StatusDelivered, scope)
}

func (h *OrderingHandler) ArchiveOrder(ctx context.Context, req *rpc.UpdateOrdersStatusRequest) (*rpc.UpdateOrdersStatusResponse, error) {
	if len(req.OrderIDs) != 1 {
		return nil, status.Error(codes.InvalidArgument, "exactly one order_id required")
	}
	scope, err := h.adminScope(ctx, req, "archive")
	if err != nil {
		return nil, err
	}
	return h.transition(ctx, req, orders.StatusArchived, scope)
}

// CancelOrder lets customers cancel their own PROCESSING orders. Admins
// archive instead.
func (h *OrderingHandler) CancelOrder(ctx context.Context, req *rpc.UpdateOrdersStatusRequest) (*rpc.UpdateOrdersStatusResponse, error) {
	if len(req.OrderIDs) != 1 {
		return nil, status.Error(codes.InvalidArgument, "exactly one order_id required")
	}
	owner := func(o orders.Order) error {
		if req.RequestedBy != "" && o.Customer.ID == req.RequestedBy {
			return nil
		}
		return status.Error(codes.PermissionDenied, "only the customer who placed an order can cancel it")
	}
	return h.transition(ctx, req, orders.StatusCancelled, owner)
}

func (h *OrderingHandler) transition(ctx context.Context, req *rpc.UpdateOrdersStatusRequest, to orders.Status, authorize func(orders.Order) error) (*rpc.UpdateOrdersStatusResponse, error) {
	ids := slices.Compact(slices.Sorted(slices.Values(req.OrderIDs)))
	if len(ids) == 0 || slices.Contains(ids, "") {
		return nil, status.Error(codes.InvalidArgument, "order_ids required")
	}

	found, err := h.repo.FindOrders(ctx, ids)
	if err != nil {
		return nil, statusError(err)
	}
	if len(found) != len(ids) {
		for _, id := range ids {
			if !slices.Contains(orders.IDs(found), id) {
				return nil, statusError(&orders.NotFoundError{Resource: "order", ID: id})
			}
		}
	}
	for _, o := range found {
		if authorize != nil {
			if err := authorize(o); err != nil {
				return nil, err
			}
		}
	}
	if !orders.AllProcessing(found) {
		return nil, status.Error(codes.FailedPrecondition, "all orders must be PROCESSING")
	}

	if err := h.repo.UpdateStatus(ctx, ids, orders.StatusProcessing, to); err != nil {
		return nil, statusError(err)
	}

	for i := range found {
		found[i].Status = to
	}
	h.publish(ctx, rpc.OrderEvent{
		EventType: rpc.EventOrdersStatusChanged,
		OrderIDs:  ids,
		Status:    to,
		Orders:    found,
		Timestamp: h.now(),
	})

	return &rpc.UpdateOrdersStatusResponse{
		Success: true,
		Message: strPtr(fmt.Sprintf("%d order(s) %s", len(found), strings.ToLower(string(to)))),
		Orders:  found,
	}, nil
}

// ApplyDiscountCode checks a code for the customer's active company.
func (h *OrderingHandler) ApplyDiscountCode(ctx context.Context, req *rpc.ApplyDiscountCodeRequest) (*rpc.ApplyDiscountCodeResponse, error) {
	code := strings.TrimSpace(req.Code)
	if code == "" || req.CustomerID == "" {
		return nil, status.Error(codes.InvalidArgument, "customer_id and code required")
	}
	customer, err := h.repo.FindCustomer(ctx, req.CustomerID)
	if err != nil {
		return nil, statusError(err)
	}
	d, err := h.repo.FindDiscountByCode(ctx, code)
	if err != nil {
		var nf *orders.NotFoundError
		if errors.As(err, &nf) {
			return nil, status.Error(codes.InvalidArgument, "Invalid discount code")
		}
		return nil, statusError(err)
	}
	company, _ := customer.ActiveCompany()
	if !d.usable(h.now(), company.ID) {
		return nil, status.Error(codes.InvalidArgument, "Invalid discount code")
	}

	applied := d.applied()
	return &rpc.ApplyDiscountCodeResponse{
		Success:  true,
		Message:  strPtr("Discount code applied"),
		Discount: &applied,
	}, nil
}

// CreateOrders prices the cart against the customer's budget. When
// anything is left to pay, or the customer is a guest, the priced orders
// are parked in a checkout session and a payment redirect is returned.
// Otherwise the orders are created immediately.
func (h *OrderingHandler) CreateOrders(ctx context.Context, req *rpc.CreateOrdersRequest) (*rpc.CreateOrdersResponse, error) {
	if req.CustomerID == "" {
		return nil, status.Error(codes.InvalidArgument, "customer_id required")
	}
	if len(req.Items) == 0 {
		return nil, status.Error(codes.InvalidArgument, orders.ErrEmptyCart.Error())
	}
	for _, item := range req.Items {
		if err := item.Validate(); err != nil {
			return nil, statusError(err)
		}
	}

	forID := req.OrderingForUser
	if forID == "" {
		forID = req.CustomerID
	}
	customer, err := h.repo.FindCustomer(ctx, forID)
	if err != nil {
		return nil, statusError(err)
	}
	if forID != req.CustomerID {
		if err := h.canOrderFor(ctx, req.CustomerID, customer); err != nil {
			return nil, err
		}
	}

	var buckets []budget.Bucket
	if customer.IsGuest() {
		buckets = budget.GuestBreakdown(req.Items)
	} else {
		history, err := h.repo.ListOrders(ctx, OrderFilter{
			CustomerID: customer.ID,
			Statuses:   []orders.Status{orders.StatusProcessing, orders.StatusDelivered, orders.StatusArchived},
		})
		if err != nil {
			return nil, statusError(err)
		}
		buckets = budget.Breakdown(history, req.Items, customer)
	}
	payable := budget.Payable(buckets)

	var discountValue money.Cents
	if req.DiscountCodeID != "" && payable.IsPositive() {
		d, err := h.repo.FindDiscountByID(ctx, req.DiscountCodeID)
		if err != nil {
			return nil, statusError(err)
		}
		company, _ := customer.ActiveCompany()
		if !d.usable(h.now(), company.ID) {
			return nil, status.Error(codes.InvalidArgument, "Invalid discount code")
		}
		discountValue = money.Min(d.Value, payable)
	}
	net := payable - discountValue

	built, err := buildOrders(customer, req.Items, budget.Allocate(req.Items, buckets, discountValue))
	if err != nil {
		return nil, statusError(err)
	}
	discountID := ""
	if discountValue > 0 {
		discountID = req.DiscountCodeID
	}

	if customer.IsGuest() || net.IsPositive() {
		return h.startCheckout(ctx, req.CustomerID, customer.ID, built, discountID, net)
	}

	if err := h.repo.CreateOrders(ctx, built, discountID); err != nil {
		return nil, statusError(err)
	}
	h.publishCreated(ctx, built)
	return &rpc.CreateOrdersResponse{
		Success: true,
		Message: strPtr("Orders created successfully"),
		Orders:  built,
	}, nil
}

// canOrderFor checks that requesterID may order on customer's behalf: full
// admins for anyone, company admins for members of their own company.
func (h *OrderingHandler) canOrderFor(ctx context.Context, requesterID string, customer orders.Customer) error {
	requester, err := h.repo.FindCustomer(ctx, requesterID)
	if err != nil {
		return statusError(err)
	}
	switch requester.Role {
	case orders.RoleAdmin:
		return nil
	case orders.RoleCompanyAdmin:
		company, ok := requester.ActiveCompany()
		if !ok {
			return status.Error(codes.PermissionDenied, "company admin has no active company")
		}
		if !customer.BelongsTo(company.ID) {
			return status.Error(codes.PermissionDenied, "customer belongs to another company")
		}
		return nil
	}
	return status.Error(codes.PermissionDenied, "only admins can order for another customer")
}

func (h *OrderingHandler) startCheckout(ctx context.Context, requesterID, customerID string, built []orders.Order, discountID string, net money.Cents) (*rpc.CreateOrdersResponse, error) {
	sessionID := uuid.NewString()
	err := h.sessions.Save(ctx, sessionID, pendingCheckout{
		RequestedBy:    requesterID,
		CustomerID:     customerID,
		Orders:         built,
		DiscountCodeID: discountID,
		Net:            net.String(),
	})
	if err != nil {
		return nil, statusError(err)
	}

	redirect, err := checkoutURL(h.paymentURL, sessionID, net)
	if err != nil {
		return nil, statusError(err)
	}
	return &rpc.CreateOrdersResponse{
		Success:     true,
		Message:     strPtr("Payment required"),
		RedirectURL: &redirect,
		SessionID:   &sessionID,
	}, nil
}

func checkoutURL(base, sessionID string, amount money.Cents) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid payment url %q: %w", base, err)
	}
	q := u.Query()
	q.Set("session_id", sessionID)
	q.Set("amount", amount.String())
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ConfirmCheckout creates the orders parked by CreateOrders once the
// payment provider reports success. Only the user who started the checkout
// may confirm it.
func (h *OrderingHandler) ConfirmCheckout(ctx context.Context, req *rpc.ConfirmCheckoutRequest) (*rpc.CreateOrdersResponse, error) {
	if req.SessionID == "" || req.PaymentIntentID == "" || req.RequestedBy == "" {
		return nil, status.Error(codes.InvalidArgument, "session_id, payment_intent_id and requested_by required")
	}
	parked, err := h.sessions.Peek(ctx, req.SessionID)
	if err != nil {
		return nil, statusError(err)
	}
	if !parked.ownedBy(req.RequestedBy) {
		return nil, status.Error(codes.PermissionDenied, "checkout session belongs to another user")
	}
	pending, err := h.sessions.Take(ctx, req.SessionID)
	if err != nil {
		return nil, statusError(err)
	}

	for i := range pending.Orders {
		if p := pending.Orders[i].Payment; p != nil {
			p.IntentID = req.PaymentIntentID
		}
	}
	if err := h.repo.CreateOrders(ctx, pending.Orders, pending.DiscountCodeID); err != nil {
		return nil, statusError(err)
	}
	h.publishCreated(ctx, pending.Orders)
	return &rpc.CreateOrdersResponse{
		Success: true,
		Message: strPtr("Orders created successfully"),
		Orders:  pending.Orders,
	}, nil
}

func (h *OrderingHandler) ChangeShift(ctx context.Context, req *rpc.ChangeShiftRequest) (*rpc.ChangeShiftResponse, error) {
	if req.CustomerID == "" || req.CompanyID == "" || strings.TrimSpace(req.Shift) == "" {
		return nil, status.Error(codes.InvalidArgument, "customer_id, company_id and shift required")
	}
	c, err := h.repo.ChangeShift(ctx, req.CustomerID, req.CompanyID, strings.TrimSpace(req.Shift))
	if err != nil {
		return nil, statusError(err)
	}
	return &rpc.ChangeShiftResponse{
		Success:  true,
		Message:  strPtr("Shift updated"),
		Customer: &c,
	}, nil
}

// buildOrders turns priced cart lines into PROCESSING orders. Each line
// must belong to one of the customer's companies.
func buildOrders(customer orders.Customer, items []orders.CartItem, alloc []budget.Allocation) ([]orders.Order, error) {
	out := make([]orders.Order, 0, len(items))
	for i, item := range items {
		j := slices.IndexFunc(customer.Companies, func(m orders.CompanyMembership) bool { return m.ID == item.CompanyID })
		if j < 0 {
			return nil, &orders.ValidationError{Field: "companyId", Message: fmt.Sprintf("customer is not a member of company %s", item.CompanyID)}
		}
		company := customer.Companies[j]

		o := orders.Order{
			ID:         uuid.NewString(),
			Customer:   customer.Ref(),
			Restaurant: orders.RestaurantRef{ID: item.RestaurantID, Name: item.RestaurantName},
			Company:    company.Ref(),
			Delivery:   orders.Delivery{Date: item.DeliveryDate, Address: company.Address},
			Item: orders.Item{
				ID:                 item.ItemID,
				Name:               item.ItemName,
				Quantity:           item.Quantity,
				Total:              item.LineTotal(),
				OptionalAddons:     orders.JoinAddons(item.OptionalAddons),
				RequiredAddons:     orders.JoinAddons(item.RequiredAddons),
				RemovedIngredients: orders.JoinAddons(item.RemovedIngredients),
			},
			Status: orders.StatusProcessing,
		}
		if alloc[i].Payment > 0 {
			o.Payment = &orders.Payment{AmountDistributed: alloc[i].Payment}
		}
		if alloc[i].Discount > 0 {
			o.Discount = &orders.Discount{AmountDistributed: alloc[i].Discount}
		}
		out = append(out, o)
	}
	return out, nil
}

func (h *OrderingHandler) publishCreated(ctx context.Context, created []orders.Order) {
	h.publish(ctx, rpc.OrderEvent{
		EventType: rpc.EventOrdersCreated,
		OrderIDs:  orders.IDs(created),
		Status:    orders.StatusProcessing,
		Orders:    created,
		Timestamp: h.now(),
	})
}

// publish is best effort; the orders are already stored.
func (h *OrderingHandler) publish(ctx context.Context, event rpc.OrderEvent) {
	if h.events == nil {
		return
	}
	if err := h.events.Publish(ctx, event); err != nil {
		log.Printf("ordering: failed to publish %s: %v", event.EventType, err)
	}
}
