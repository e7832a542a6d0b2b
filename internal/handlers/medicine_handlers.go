package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/medscan/medscan-golang/internal/models"
	"github.com/medscan/medscan-golang/internal/store"
)

// ListMedicines is the handler for GET /api/medicines. Supports search,
// letter and prescription filters plus pagination.
func (h *Handlers) ListMedicines(c *gin.Context) {
	filter := store.MedicineFilter{
		Search: c.Query("search"),
		Letter: c.Query("letter"),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 12),
	}
	if rx := c.Query("prescriptionRequired"); rx != "" {
		value, err := strconv.ParseBool(rx)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid prescriptionRequired filter"})
			return
		}
		filter.PrescriptionRequired = &value
	}

	medicines, pagination, err := h.Catalog.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"medicines":  medicines,
		"pagination": pagination,
	})
}

// GetMedicine is the handler for GET /api/medicines/:id.
func (h *Handlers) GetMedicine(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	medicine, err := h.Catalog.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "medicine": medicine})
}

// MedicineStats is the handler for GET /api/medicines/stats.
func (h *Handlers) MedicineStats(c *gin.Context) {
	stats, err := h.Catalog.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}

// CreateMedicineInput is the admin catalog-ingestion payload.
type CreateMedicineInput struct {
	Name                 string `json:"name" binding:"required"`
	Manufacturer         string `json:"manufacturer" binding:"required"`
	Composition          string `json:"composition" binding:"required"`
	Description          string `json:"description"`
	Uses                 string `json:"uses"`
	SideEffects          string `json:"sideEffects"`
	QuickTips            string `json:"quickTips"`
	ImageURL             string `json:"imageUrl"`
	Link                 string `json:"link"`
	Price                string `json:"price" binding:"required"`
	PrescriptionRequired bool   `json:"prescriptionRequired"`
}

// CreateMedicine is the handler for POST /api/medicines (admin token only).
func (h *Handlers) CreateMedicine(c *gin.Context) {
	var input CreateMedicineInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid input: " + err.Error()})
		return
	}

	medicine := &models.Medicine{
		Name:                 input.Name,
		Manufacturer:         input.Manufacturer,
		Composition:          input.Composition,
		Description:          input.Description,
		Uses:                 input.Uses,
		SideEffects:          input.SideEffects,
		QuickTips:            input.QuickTips,
		ImageURL:             input.ImageURL,
		Link:                 input.Link,
		Price:                input.Price,
		PrescriptionRequired: input.PrescriptionRequired,
	}

	if err := h.Catalog.Create(c.Request.Context(), medicine); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "medicine": medicine})
}
