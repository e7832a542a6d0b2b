package handlers

import (
	"encoding/base64"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"

	"github.com/medscan/medscan-golang/internal/scan"
)

// maxScanImageBytes caps prescription uploads at 10 MB.
const maxScanImageBytes = 10 << 20

// dataURIRE matches the "data:image/...;base64," prefix browser clients
// attach when reading files as data URLs.
var dataURIRE = regexp.MustCompile(`^data:(image/[a-z0-9.+-]+);base64,`)

// ScanPrescriptionInput carries the prescription image as a base64 string,
// with or without a data URI prefix.
type ScanPrescriptionInput struct {
	Image string `json:"image" binding:"required"`
}

// ScanPrescription is the handler for POST /api/scan-prescription. It
// returns the extracted prescription details.
func (h *Handlers) ScanPrescription(c *gin.Context) {
	if h.Scanner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "Prescription scanning is not configured"})
		return
	}

	var input ScanPrescriptionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Image data is required"})
		return
	}

	mimeType := "image/jpeg"
	data := input.Image
	if m := dataURIRE.FindStringSubmatch(data); m != nil {
		mimeType = m[1]
		data = data[len(m[0]):]
	}

	image, err := base64.StdEncoding.DecodeString(data)
	if err != nil || len(image) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid base64 image data"})
		return
	}
	if len(image) > maxScanImageBytes {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Image too large"})
		return
	}

	prescription, err := h.Scanner.Analyze(c.Request.Context(), image, mimeType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to analyze prescription image"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "prescription": prescription})
}

// SuggestScheduleInput is one medication to schedule dose times for.
type SuggestScheduleInput struct {
	Name         string `json:"name" binding:"required"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency" binding:"required"`
	Instructions string `json:"instructions"`
}

// SuggestSchedule is the handler for POST /api/suggest-schedule. It maps a
// medication's frequency onto concrete dose times.
func (h *Handlers) SuggestSchedule(c *gin.Context) {
	var input SuggestScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid input: " + err.Error()})
		return
	}

	times := scan.SuggestSchedule(scan.Medication{
		Name:         input.Name,
		Dosage:       input.Dosage,
		Frequency:    input.Frequency,
		Instructions: input.Instructions,
	})

	c.JSON(http.StatusOK, gin.H{"success": true, "times": times})
}
