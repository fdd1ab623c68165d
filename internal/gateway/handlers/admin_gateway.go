package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"mealplan-system/internal/aggregation"
	"mealplan-system/internal/clientstore"
	"mealplan-system/internal/gateway/middleware"
	"mealplan-system/internal/orders"
)

const (
	SummaryViewOrders = "orders"
	SummaryViewVendor = "vendor"

	EVENT_STREAM_BUFFER = 32
)

type RestaurantRowView struct {
	aggregation.RestaurantRow
	OrderIDs   []string `json:"orderIds"`
	Actionable bool     `json:"actionable"`
}

type GroupView struct {
	aggregation.OrderGroup
	Rows []RestaurantRowView `json:"rows"`
}

// Query structs
type GroupsQuery struct {
	CompanyCode    *string `form:"company"`
	RestaurantName *string `form:"restaurant"`
	SortBy         *string `form:"sortBy"`
}

type SummaryQuery struct {
	GroupsQuery
	View      string `form:"view,default=orders"`
	Canonical bool   `form:"canonical"`
}

func validSortBy(s string) bool {
	return s == "" || s == aggregation.SortByCompany || s == aggregation.SortByDate
}

// adminCompany is the active company a company admin is limited to.
func (h *OrderingHTTPHandler) adminCompany(ctx context.Context, userID string) (orders.CompanyMembership, error) {
	admin, err := h.api.Customer(ctx, userID)
	if err != nil {
		return orders.CompanyMembership{}, err
	}
	company, ok := admin.ActiveCompany()
	if !ok {
		return orders.CompanyMembership{}, &orders.ValidationError{Field: "company", Message: "company admin has no active company"}
	}
	return company, nil
}

// companyScope is the company code a company admin's views are pinned to,
// or empty for a full admin.
func (h *OrderingHTTPHandler) companyScope(c *gin.Context) (string, error) {
	userID, role := middleware.CurrentUser(c)
	if role != orders.RoleCompanyAdmin {
		return "", nil
	}
	ctx, cancel := h.context(c)
	defer cancel()
	company, err := h.adminCompany(ctx, userID)
	if err != nil {
		return "", err
	}
	return company.Code, nil
}

// filters merges the admin's saved filters with any query overrides. A
// company admin always sees their own company only.
func (h *OrderingHTTPHandler) filters(c *gin.Context, q GroupsQuery) (aggregation.Filters, error) {
	userID, _ := middleware.CurrentUser(c)
	var f aggregation.Filters
	if _, err := h.clientStore.Get(c.Request.Context(), clientstore.FiltersKey(userID), &f); err != nil {
		return f, err
	}
	if q.CompanyCode != nil {
		f.CompanyCode = *q.CompanyCode
	}
	if q.RestaurantName != nil {
		f.RestaurantName = *q.RestaurantName
	}
	if q.SortBy != nil {
		f.SortBy = *q.SortBy
	}
	if !validSortBy(f.SortBy) {
		return f, &orders.ValidationError{Field: "sortBy", Message: "sortBy must be company or date"}
	}
	code, err := h.companyScope(c)
	if err != nil {
		return f, err
	}
	if code != "" {
		f.CompanyCode = code
	}
	return f, nil
}

func (h *OrderingHTTPHandler) OrderGroups(c *gin.Context) {
	var q GroupsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters"))
		return
	}
	f, err := h.filters(c, q)
	if err != nil {
		writeError(c, err)
		return
	}

	groups := aggregation.ApplyFilters(h.orderStore.Groups(), f)
	views := make([]GroupView, 0, len(groups))
	for _, g := range groups {
		rows := aggregation.RestaurantRows(g)
		rowViews := make([]RestaurantRowView, 0, len(rows))
		for _, r := range rows {
			rowViews = append(rowViews, RestaurantRowView{RestaurantRow: r, OrderIDs: r.OrderIDs(), Actionable: r.Actionable()})
		}
		views = append(views, GroupView{OrderGroup: g, Rows: rowViews})
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Order groups retrieved successfully", views, gin.H{
		"total":   len(views),
		"filters": f,
	}))
}

// OrderSummary merges identical dishes across the filtered groups. The
// vendor view hides customer data and always carries line totals.
func (h *OrderingHTTPHandler) OrderSummary(c *gin.Context) {
	var q SummaryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters"))
		return
	}
	if q.View != SummaryViewOrders && q.View != SummaryViewVendor {
		c.JSON(http.StatusBadRequest, errorResponse("view must be orders or vendor"))
		return
	}
	f, err := h.filters(c, q.GroupsQuery)
	if err != nil {
		writeError(c, err)
		return
	}

	var opts []aggregation.SummaryOption
	if q.Canonical {
		opts = append(opts, aggregation.WithCanonicalAddons())
	}

	var list []orders.Order
	for _, g := range aggregation.ApplyFilters(h.orderStore.Groups(), f) {
		list = append(list, g.Orders...)
	}

	var lines []aggregation.Line
	if q.View == SummaryViewVendor {
		vendor := make([]orders.VendorOrder, 0, len(list))
		for _, o := range list {
			vendor = append(vendor, orders.VendorOrderOf(o))
		}
		lines = aggregation.SummarizeVendorOrders(vendor, opts...)
	} else {
		lines = aggregation.SummarizeOrders(list, opts...)
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Order summary computed", lines, gin.H{
		"view":   q.View,
		"orders": len(list),
	}))
}

func (h *OrderingHTTPHandler) ReloadOrders(c *gin.Context) {
	ctx, cancel := h.context(c)
	defer cancel()

	list, err := h.api.AllUpcomingOrders(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	h.orderStore.Replace(list)
	c.JSON(http.StatusOK, successWithMetaResponse("Upcoming orders reloaded", nil, gin.H{"total": len(list)}))
}

func (h *OrderingHTTPHandler) GetFilters(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)
	var f aggregation.Filters
	if _, err := h.clientStore.Get(c.Request.Context(), clientstore.FiltersKey(userID), &f); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Filters retrieved successfully", f))
}

func (h *OrderingHTTPHandler) SaveFilters(c *gin.Context) {
	var f aggregation.Filters
	if err := c.ShouldBindJSON(&f); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}
	if !validSortBy(f.SortBy) {
		c.JSON(http.StatusBadRequest, errorResponse("sortBy must be company or date"))
		return
	}

	userID, _ := middleware.CurrentUser(c)
	if err := h.clientStore.Set(c.Request.Context(), clientstore.FiltersKey(userID), f); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Filters saved", f))
}

// OrderEvents streams order store changes as server-sent events until the
// client goes away.
func (h *OrderingHTTPHandler) OrderEvents(c *gin.Context) {
	code, err := h.companyScope(c)
	if err != nil {
		writeError(c, err)
		return
	}
	events, cancel := h.orderStore.Subscribe(EVENT_STREAM_BUFFER)
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case ev, ok := <-events:
			if !ok {
				return false
			}
			if code != "" {
				if ev, ok = ev.ForCompany(code); !ok {
					return true
				}
			}
			c.SSEvent(string(ev.Type), ev)
			return true
		}
	})
}
