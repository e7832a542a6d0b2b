package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/medscan/medscan-golang/internal/auth"
	"github.com/medscan/medscan-golang/internal/scan"
	"github.com/medscan/medscan-golang/internal/service"
	"github.com/medscan/medscan-golang/internal/store"
)

// Handlers holds every service the HTTP layer depends on. One instance is
// shared across all routes.
type Handlers struct {
	Tokens        *auth.TokenManager
	Users         store.UserRepository
	Catalog       *service.CatalogService
	Cart          *service.CartService
	Orders        *service.OrderService
	Notifications *service.NotificationService
	Scanner       *scan.Service
}

// respondError maps service errors onto HTTP statuses with the standard
// {success, message} envelope.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
		message = "Resource not found"
	case errors.Is(err, service.ErrEmptyCart):
		status = http.StatusBadRequest
		message = "Cart is empty"
	case errors.Is(err, service.ErrMissingPrescriber):
		status = http.StatusBadRequest
		message = "Doctor name is required for prescription medicines"
	case errors.Is(err, service.ErrInvalidStatus):
		status = http.StatusBadRequest
		message = "Unknown order status"
	case errors.Is(err, service.ErrIllegalTransition):
		status = http.StatusConflict
		message = "Order status transition not allowed"
	case errors.Is(err, service.ErrAccessDenied):
		status = http.StatusForbidden
		message = "Access denied"
	case errors.Is(err, store.ErrDuplicate):
		status = http.StatusConflict
		message = "Resource already exists"
	}

	c.JSON(status, gin.H{"success": false, "message": message})
}

// pathID parses a numeric :id style path parameter. A false return means
// the 400 response has already been written.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid " + name})
		return 0, false
	}
	return id, true
}

// queryInt parses an optional integer query parameter.
func queryInt(c *gin.Context, name string, fallback int) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return fallback
	}
	return value
}
