package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mealplan-system/internal/money"
	"mealplan-system/internal/orders"
)

type AddCartItemRequest struct {
	ItemID             string      `json:"itemId" binding:"required"`
	ItemName           string      `json:"itemName" binding:"required"`
	RestaurantID       string      `json:"restaurantId" binding:"required"`
	RestaurantName     string      `json:"restaurantName"`
	CompanyID          string      `json:"companyId" binding:"required"`
	DeliveryDate       orders.Date `json:"deliveryDate"`
	Quantity           int         `json:"quantity" binding:"required,min=1"`
	UnitPrice          money.Cents `json:"price"`
	AddonUnitPrice     money.Cents `json:"addonUnitPrice"`
	OptionalAddons     []string    `json:"optionalAddons"`
	RequiredAddons     []string    `json:"requiredAddons"`
	RemovedIngredients []string    `json:"removedIngredients"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

func (r AddCartItemRequest) item() orders.CartItem {
	return orders.CartItem{
		ItemID:             r.ItemID,
		ItemName:           r.ItemName,
		RestaurantID:       r.RestaurantID,
		RestaurantName:     r.RestaurantName,
		CompanyID:          r.CompanyID,
		DeliveryDate:       r.DeliveryDate,
		Quantity:           r.Quantity,
		UnitPrice:          r.UnitPrice,
		AddonUnitPrice:     r.AddonUnitPrice,
		OptionalAddons:     r.OptionalAddons,
		RequiredAddons:     r.RequiredAddons,
		RemovedIngredients: r.RemovedIngredients,
	}
}

func (h *OrderingHTTPHandler) GetCart(c *gin.Context) {
	items, err := h.cartFor(c).Items(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Cart retrieved successfully", items))
}

func (h *OrderingHTTPHandler) AddCartItem(c *gin.Context) {
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	items, err := h.cartFor(c).Add(c.Request.Context(), req.item())
	if err != nil {
		writeError(c, err)
		return
	}
	h.reconcileDiscount(c, items)
	c.JSON(http.StatusCreated, successResponse("Item added to cart", items))
}

func (h *OrderingHTTPHandler) UpdateCartItem(c *gin.Context) {
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	items, err := h.cartFor(c).UpdateQuantity(c.Request.Context(), c.Param("lineId"), req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	h.reconcileDiscount(c, items)
	c.JSON(http.StatusOK, successResponse("Cart item updated", items))
}

func (h *OrderingHTTPHandler) RemoveCartItem(c *gin.Context) {
	items, err := h.cartFor(c).Remove(c.Request.Context(), c.Param("lineId"))
	if err != nil {
		writeError(c, err)
		return
	}
	h.reconcileDiscount(c, items)
	c.JSON(http.StatusOK, successResponse("Cart item removed", items))
}

func (h *OrderingHTTPHandler) ClearCart(c *gin.Context) {
	if err := h.cartFor(c).Clear(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	h.reconcileDiscount(c, nil)
	c.JSON(http.StatusOK, successResponse("Cart cleared", []orders.CartItem{}))
}
