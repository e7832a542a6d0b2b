package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medscan/medscan-golang/internal/middleware"
	"github.com/medscan/medscan-golang/internal/models"
	"github.com/medscan/medscan-golang/internal/service"
)

// CreateOrderInput is the checkout payload.
type CreateOrderInput struct {
	ShippingAddress models.ShippingAddress `json:"shippingAddress" binding:"required"`
	PaymentMethod   string                 `json:"paymentMethod"`
	DoctorName      string                 `json:"doctorName"`
}

// CreateOrder is the handler for POST /api/orders/create. Checkout converts the
// caller's cart into an order and empties the cart.
func (h *Handlers) CreateOrder(c *gin.Context) {
	var input CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid input: " + err.Error()})
		return
	}

	order, err := h.Orders.Create(c.Request.Context(), middleware.CurrentUserID(c), service.CreateOrderInput{
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   input.PaymentMethod,
		DoctorName:      input.DoctorName,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Order placed successfully",
		"order":   order,
	})
}

// ListMyOrders is the handler for GET /api/orders/my-orders.
func (h *Handlers) ListMyOrders(c *gin.Context) {
	orders, pagination, err := h.Orders.ListMine(c.Request.Context(),
		middleware.CurrentUserID(c), queryInt(c, "page", 1), queryInt(c, "limit", 10))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"orders":     orders,
		"pagination": pagination,
	})
}

// GetOrder is the handler for GET /api/orders/:orderId. Admins can read any
// order; users only their own.
func (h *Handlers) GetOrder(c *gin.Context) {
	id, ok := pathID(c, "orderId")
	if !ok {
		return
	}

	user := middleware.CurrentUser(c)
	order, err := h.Orders.Get(c.Request.Context(), id, user.ID, user.Role == models.RoleAdmin)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

// DeliveredMedicines is the handler for GET /api/orders/my-medicines.
// It flattens the caller's delivered orders into a medicine history.
func (h *Handlers) DeliveredMedicines(c *gin.Context) {
	medicines, stats, pagination, err := h.Orders.DeliveredMedicines(c.Request.Context(),
		middleware.CurrentUserID(c), queryInt(c, "page", 1), queryInt(c, "limit", 20))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"medicines":  medicines,
		"stats":      stats,
		"pagination": pagination,
	})
}

// MedicineHistory is the handler for
// GET /api/orders/medicine-history/:medicineId. It reports every delivered
// order of the caller that contained the medicine.
func (h *Handlers) MedicineHistory(c *gin.Context) {
	medicineID, ok := pathID(c, "medicineId")
	if !ok {
		return
	}

	history, err := h.Orders.MedicineHistory(c.Request.Context(), middleware.CurrentUserID(c), medicineID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "history": history})
}

// ListAllOrders is the handler for GET /api/orders/admin/all with an optional
// status filter.
func (h *Handlers) ListAllOrders(c *gin.Context) {
	status := models.OrderStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Unknown order status"})
		return
	}

	orders, pagination, err := h.Orders.ListAll(c.Request.Context(), status,
		queryInt(c, "page", 1), queryInt(c, "limit", 20))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"orders":     orders,
		"pagination": pagination,
	})
}

// UpdateOrderStatusInput carries the target status for a transition.
type UpdateOrderStatusInput struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

// UpdateOrderStatus is the handler for PUT /api/orders/admin/:orderId/status.
// Only transitions allowed by the order lifecycle succeed.
func (h *Handlers) UpdateOrderStatus(c *gin.Context) {
	id, ok := pathID(c, "orderId")
	if !ok {
		return
	}

	var input UpdateOrderStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid input: " + err.Error()})
		return
	}

	order, err := h.Orders.SetStatus(c.Request.Context(), id, input.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order status updated",
		"order":   order,
	})
}
