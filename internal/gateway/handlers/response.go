package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"mealplan-system/internal/orders"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

func successResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func errorResponse(message string) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
	}
}

func successWithMetaResponse(message string, data interface{}, meta interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	}
}

// writeError renders a domain error: validation failures as 400, missing
// records as 404 and an unreachable ordering service as 503.
func writeError(c *gin.Context, err error) {
	var (
		v  *orders.ValidationError
		nf *orders.NotFoundError
		ne *orders.NetworkError
	)
	switch {
	case errors.As(err, &v):
		c.JSON(http.StatusBadRequest, errorResponse(v.Error()))
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, errorResponse(nf.Error()))
	case errors.As(err, &ne):
		log.Printf("gateway: %v", err)
		c.JSON(http.StatusServiceUnavailable, errorResponse("Ordering service is currently unavailable"))
	default:
		log.Printf("gateway: unexpected error: %v", err)
		c.JSON(http.StatusInternalServerError, errorResponse("Internal server error"))
	}
}
