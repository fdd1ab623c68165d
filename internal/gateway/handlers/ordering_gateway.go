package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"mealplan-system/internal/cart"
	"mealplan-system/internal/checkout"
	"mealplan-system/internal/clientstore"
	"mealplan-system/internal/discount"
	"mealplan-system/internal/gateway/middleware"
	"mealplan-system/internal/orders"
	"mealplan-system/internal/orderstore"
)

// OrderingService is what the HTTP layer needs from the ordering service.
type OrderingService interface {
	checkout.OrderingAPI
	discount.Validator
	Customer(ctx context.Context, id string) (orders.Customer, error)
	AllUpcomingOrders(ctx context.Context) ([]orders.Order, error)
	DeliverOrders(ctx context.Context, userID string, role orders.Role, ids []string) ([]orders.Order, error)
	ArchiveOrder(ctx context.Context, userID string, role orders.Role, id string) ([]orders.Order, error)
	CancelOrder(ctx context.Context, userID string, role orders.Role, id string) ([]orders.Order, error)
	ConfirmCheckout(ctx context.Context, userID, sessionID, paymentIntentID string) (checkout.PlaceResult, error)
	ChangeShift(ctx context.Context, userID, companyID, shift string) (orders.Customer, error)
}

type OrderingHTTPHandler struct {
	api          OrderingService
	clientStore  clientstore.Store
	orderStore   *orderstore.Store
	historyLimit int
	timeout      time.Duration
}

func NewOrderingHTTPHandler(api OrderingService, clientStore clientstore.Store, orderStore *orderstore.Store, historyLimit int, timeout time.Duration) *OrderingHTTPHandler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &OrderingHTTPHandler{
		api:          api,
		clientStore:  clientStore,
		orderStore:   orderStore,
		historyLimit: historyLimit,
		timeout:      timeout,
	}
}

// Request structs
type DeliverOrdersRequest struct {
	OrderIDs []string `json:"orderIds" binding:"required,min=1"`
}

type PlaceOrderRequest struct {
	OrderingForUser string `json:"orderingForUser"`
}

type ConfirmCheckoutRequest struct {
	SessionID       string `json:"sessionId" binding:"required"`
	PaymentIntentID string `json:"paymentIntentId" binding:"required"`
}

type ChangeShiftRequest struct {
	CompanyID string `json:"companyId" binding:"required"`
	Shift     string `json:"shift" binding:"required"`
}

func (h *OrderingHTTPHandler) context(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

func (h *OrderingHTTPHandler) cartFor(c *gin.Context) *cart.Cart {
	userID, role := middleware.CurrentUser(c)
	return cart.New(h.clientStore, cart.ScopeForRole(role), userID)
}

func (h *OrderingHTTPHandler) ledgerFor(c *gin.Context) *discount.Ledger {
	userID, _ := middleware.CurrentUser(c)
	return discount.NewLedger(h.clientStore, h.api, userID)
}

// checkoutFor prices the caller's cart for forID, or for the caller when
// forID is empty. Only admins may price a cart for someone else, and a
// company admin only for members of their active company.
func (h *OrderingHTTPHandler) checkoutFor(ctx context.Context, c *gin.Context, forID string) (*checkout.Checkout, error) {
	userID, role := middleware.CurrentUser(c)
	if forID == "" {
		forID = userID
	}
	if forID != userID && !role.IsAdmin() {
		return nil, &orders.ValidationError{Field: "orderingForUser", Message: "only admins can order for another customer"}
	}

	customer, err := h.api.Customer(ctx, forID)
	if err != nil {
		return nil, err
	}
	if forID != userID && role == orders.RoleCompanyAdmin {
		company, err := h.adminCompany(ctx, userID)
		if err != nil {
			return nil, err
		}
		if !customer.BelongsTo(company.ID) {
			return nil, &orders.ValidationError{Field: "orderingForUser", Message: "customer is not a member of your company"}
		}
	}
	return checkout.New(h.api, userID, customer, h.cartFor(c), h.ledgerFor(c), h.historyLimit), nil
}

// reconcileDiscount drops the applied discount when a cart edit leaves
// nothing payable. The edit is already stored, so failures are only logged.
func (h *OrderingHTTPHandler) reconcileDiscount(c *gin.Context, items []orders.CartItem) {
	ctx, cancel := h.context(c)
	defer cancel()

	ledger := h.ledgerFor(c)
	d, err := ledger.Current(ctx)
	if err != nil || d == nil {
		return
	}
	if len(items) == 0 {
		err = ledger.RemoveCode(ctx)
	} else {
		var co *checkout.Checkout
		if co, err = h.checkoutFor(ctx, c, c.Query("orderingForUser")); err == nil {
			_, err = co.Reconcile(ctx)
		}
	}
	if err != nil {
		log.Printf("gateway: discount not reconciled after cart edit: %v", err)
	}
}

// --- Orders ---

func (h *OrderingHTTPHandler) UpcomingOrders(c *gin.Context) {
	ctx, cancel := h.context(c)
	defer cancel()

	userID, _ := middleware.CurrentUser(c)
	list, err := h.api.UpcomingOrders(ctx, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Upcoming orders retrieved successfully", list))
}

func (h *OrderingHTTPHandler) DeliveredOrders(c *gin.Context) {
	limit, err := strconv.Atoi(c.Param("limit"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid limit"))
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	userID, _ := middleware.CurrentUser(c)
	list, err := h.api.DeliveredOrders(ctx, userID, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Delivered orders retrieved successfully", list))
}

func (h *OrderingHTTPHandler) DeliverOrders(c *gin.Context) {
	var req DeliverOrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	userID, role := middleware.CurrentUser(c)
	list, err := h.api.DeliverOrders(ctx, userID, role, req.OrderIDs)
	if err != nil {
		writeError(c, err)
		return
	}
	h.applyLocally(orders.IDs(list), orders.StatusDelivered)
	c.JSON(http.StatusOK, successResponse("Orders delivered successfully", list))
}

func (h *OrderingHTTPHandler) ArchiveOrder(c *gin.Context) {
	h.changeOne(c, orders.StatusArchived, h.api.ArchiveOrder, "Order archived successfully")
}

func (h *OrderingHTTPHandler) CancelOrder(c *gin.Context) {
	h.changeOne(c, orders.StatusCancelled, h.api.CancelOrder, "Order cancelled successfully")
}

type changeFunc func(ctx context.Context, userID string, role orders.Role, id string) ([]orders.Order, error)

func (h *OrderingHTTPHandler) changeOne(c *gin.Context, to orders.Status, change changeFunc, message string) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid order ID"))
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	userID, role := middleware.CurrentUser(c)
	list, err := change(ctx, userID, role, id)
	if err != nil {
		writeError(c, err)
		return
	}
	h.applyLocally(orders.IDs(list), to)
	c.JSON(http.StatusOK, successResponse(message, list))
}

// applyLocally updates the admin view right away; the published event that
// follows finds nothing left to move.
func (h *OrderingHTTPHandler) applyLocally(ids []string, to orders.Status) {
	if h.orderStore == nil || len(ids) == 0 {
		return
	}
	if _, err := h.orderStore.ApplyStatusChange(ids, to); err != nil {
		log.Printf("gateway: order view not updated for %v: %v", ids, err)
	}
}

// --- Discount code ---

func (h *OrderingHTTPHandler) ApplyDiscountCode(c *gin.Context) {
	ctx, cancel := h.context(c)
	defer cancel()

	d, err := h.ledgerFor(c).ApplyCode(ctx, c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Discount code applied", d))
}

func (h *OrderingHTTPHandler) CurrentDiscount(c *gin.Context) {
	d, err := h.ledgerFor(c).Current(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Discount retrieved successfully", d))
}

func (h *OrderingHTTPHandler) RemoveDiscountCode(c *gin.Context) {
	if err := h.ledgerFor(c).RemoveCode(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Discount code removed", nil))
}

// --- Checkout ---

func (h *OrderingHTTPHandler) CheckoutSummary(c *gin.Context) {
	ctx, cancel := h.context(c)
	defer cancel()

	co, err := h.checkoutFor(ctx, c, c.Query("orderingForUser"))
	if err != nil {
		writeError(c, err)
		return
	}
	summary, err := co.Summary(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Checkout summary computed", summary))
}

func (h *OrderingHTTPHandler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
			return
		}
	}

	ctx, cancel := h.context(c)
	defer cancel()

	co, err := h.checkoutFor(ctx, c, req.OrderingForUser)
	if err != nil {
		writeError(c, err)
		return
	}
	res, err := co.PlaceOrder(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	if res.NeedsPayment() {
		c.JSON(http.StatusOK, successResponse("Payment required", res))
		return
	}
	if h.orderStore != nil {
		h.orderStore.AppendOrders(res.Orders)
	}
	c.JSON(http.StatusCreated, successResponse("Orders created successfully", res))
}

func (h *OrderingHTTPHandler) ConfirmCheckout(c *gin.Context) {
	var req ConfirmCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	userID, _ := middleware.CurrentUser(c)
	res, err := h.api.ConfirmCheckout(ctx, userID, req.SessionID, req.PaymentIntentID)
	if err != nil {
		writeError(c, err)
		return
	}
	if h.orderStore != nil {
		h.orderStore.AppendOrders(res.Orders)
	}
	c.JSON(http.StatusCreated, successResponse("Orders created successfully", res))
}

// --- Shift ---

// ChangeShift moves the user to another shift. Cart lines were priced
// against the old shift's budget, so the cart and discount are dropped.
func (h *OrderingHTTPHandler) ChangeShift(c *gin.Context) {
	var req ChangeShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	userID, _ := middleware.CurrentUser(c)
	customer, err := h.api.ChangeShift(ctx, userID, req.CompanyID, req.Shift)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.cartFor(c).Clear(ctx); err != nil {
		writeError(c, err)
		return
	}
	if err := h.ledgerFor(c).RemoveCode(ctx); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Shift updated", customer))
}
