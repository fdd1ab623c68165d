package clients

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"mealplan-system/internal/checkout"
	"mealplan-system/internal/discount"
	"mealplan-system/internal/orders"
	rpc "mealplan-system/internal/rpc/ordering"
)

// OrderingAPI adapts the ordering gRPC client to the gateway's domain
// interfaces. Every error it returns is a NetworkError, ValidationError or
// NotFoundError.
type OrderingAPI struct {
	client          rpc.OrderingServiceClient
	discountTimeout time.Duration
}

func NewOrderingAPI(client rpc.OrderingServiceClient, discountTimeout time.Duration) *OrderingAPI {
	return &OrderingAPI{client: client, discountTimeout: discountTimeout}
}

var (
	_ checkout.OrderingAPI = (*OrderingAPI)(nil)
	_ discount.Validator   = (*OrderingAPI)(nil)
)

// translate maps a gRPC failure onto the domain error taxonomy.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return &orders.NetworkError{Op: op, Err: err}
	}
	switch st.Code() {
	case codes.InvalidArgument, codes.FailedPrecondition, codes.AlreadyExists, codes.PermissionDenied, codes.OutOfRange:
		return &orders.ValidationError{Message: st.Message(), Err: err}
	case codes.NotFound:
		return &orders.NotFoundError{Resource: op}
	default:
		return &orders.NetworkError{Op: op, Err: err}
	}
}

func (a *OrderingAPI) Customer(ctx context.Context, id string) (orders.Customer, error) {
	resp, err := a.client.GetCustomer(ctx, &rpc.GetCustomerRequest{CustomerID: id})
	if err != nil {
		return orders.Customer{}, translate("customer", err)
	}
	if resp.Customer == nil {
		return orders.Customer{}, &orders.NotFoundError{Resource: "customer", ID: id}
	}
	return *resp.Customer, nil
}

func (a *OrderingAPI) UpcomingOrders(ctx context.Context, userID string) ([]orders.Order, error) {
	resp, err := a.client.ListUpcomingOrders(ctx, &rpc.ListOrdersRequest{CustomerID: userID})
	if err != nil {
		return nil, translate("upcoming orders", err)
	}
	return resp.Orders, nil
}

// AllUpcomingOrders lists every customer's upcoming orders, for admins.
func (a *OrderingAPI) AllUpcomingOrders(ctx context.Context) ([]orders.Order, error) {
	return a.UpcomingOrders(ctx, "")
}

func (a *OrderingAPI) DeliveredOrders(ctx context.Context, userID string, limit int) ([]orders.Order, error) {
	resp, err := a.client.ListDeliveredOrders(ctx, &rpc.ListOrdersRequest{CustomerID: userID, Limit: int32(limit)})
	if err != nil {
		return nil, translate("delivered orders", err)
	}
	return resp.Orders, nil
}

func (a *OrderingAPI) DeliverOrders(ctx context.Context, userID string, role orders.Role, ids []string) ([]orders.Order, error) {
	resp, err := a.client.DeliverOrders(ctx, &rpc.UpdateOrdersStatusRequest{OrderIDs: ids, RequestedBy: userID, Role: role})
	if err != nil {
		return nil, translate("deliver orders", err)
	}
	return resp.Orders, nil
}

func (a *OrderingAPI) ArchiveOrder(ctx context.Context, userID string, role orders.Role, id string) ([]orders.Order, error) {
	resp, err := a.client.ArchiveOrder(ctx, &rpc.UpdateOrdersStatusRequest{OrderIDs: []string{id}, RequestedBy: userID, Role: role})
	if err != nil {
		return nil, translate("archive order", err)
	}
	return resp.Orders, nil
}

func (a *OrderingAPI) CancelOrder(ctx context.Context, userID string, role orders.Role, id string) ([]orders.Order, error) {
	resp, err := a.client.CancelOrder(ctx, &rpc.UpdateOrdersStatusRequest{OrderIDs: []string{id}, RequestedBy: userID, Role: role})
	if err != nil {
		return nil, translate("cancel order", err)
	}
	return resp.Orders, nil
}

// ApplyDiscountCode validates a code with its own timeout. Rejections come
// back wrapping discount.ErrInvalidCode.
func (a *OrderingAPI) ApplyDiscountCode(ctx context.Context, userID, code string) (orders.AppliedDiscount, error) {
	if a.discountTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.discountTimeout)
		defer cancel()
	}
	resp, err := a.client.ApplyDiscountCode(ctx, &rpc.ApplyDiscountCodeRequest{CustomerID: userID, Code: code})
	if err != nil {
		err = translate("apply discount code", err)
		if orders.IsValidation(err) || orders.IsNotFound(err) {
			return orders.AppliedDiscount{}, discount.ErrInvalidCode
		}
		return orders.AppliedDiscount{}, err
	}
	if resp.Discount == nil {
		return orders.AppliedDiscount{}, discount.ErrInvalidCode
	}
	return *resp.Discount, nil
}

func (a *OrderingAPI) CreateOrders(ctx context.Context, req checkout.CreateRequest) (checkout.PlaceResult, error) {
	resp, err := a.client.CreateOrders(ctx, &rpc.CreateOrdersRequest{
		CustomerID:      req.UserID,
		OrderingForUser: req.OrderingForUser,
		Items:           req.Items,
		DiscountCodeID:  req.DiscountCodeID,
	})
	if err != nil {
		return checkout.PlaceResult{}, translate("create orders", err)
	}
	return placeResult(resp), nil
}

func (a *OrderingAPI) ConfirmCheckout(ctx context.Context, userID, sessionID, paymentIntentID string) (checkout.PlaceResult, error) {
	resp, err := a.client.ConfirmCheckout(ctx, &rpc.ConfirmCheckoutRequest{
		SessionID:       sessionID,
		PaymentIntentID: paymentIntentID,
		RequestedBy:     userID,
	})
	if err != nil {
		return checkout.PlaceResult{}, translate("confirm checkout", err)
	}
	return placeResult(resp), nil
}

func placeResult(resp *rpc.CreateOrdersResponse) checkout.PlaceResult {
	res := checkout.PlaceResult{Orders: resp.Orders}
	if resp.RedirectURL != nil {
		res.RedirectURL = *resp.RedirectURL
	}
	return res
}

func (a *OrderingAPI) ChangeShift(ctx context.Context, userID, companyID, shift string) (orders.Customer, error) {
	resp, err := a.client.ChangeShift(ctx, &rpc.ChangeShiftRequest{CustomerID: userID, CompanyID: companyID, Shift: shift})
	if err != nil {
		return orders.Customer{}, translate("change shift", err)
	}
	if resp.Customer == nil {
		return orders.Customer{}, &orders.NotFoundError{Resource: "customer", ID: userID}
	}
	return *resp.Customer, nil
}
