package models

import "time"

// Medicine is the model for the 'medicines' table. Records come from the
// offline catalog ingestion and are read-only to the cart/order flow.
type Medicine struct {
	ID                   int64     `json:"id" db:"id"`
	Name                 string    `json:"name" db:"name"`
	Slug                 string    `json:"slug" db:"slug"`
	Letter               string    `json:"letter" db:"letter"`
	Manufacturer         string    `json:"manufacturer" db:"manufacturer"`
	Composition          string    `json:"composition" db:"composition"`
	Description          string    `json:"description,omitempty" db:"description"`
	Uses                 string    `json:"uses,omitempty" db:"uses"`
	SideEffects          string    `json:"sideEffects,omitempty" db:"side_effects"`
	QuickTips            string    `json:"quickTips,omitempty" db:"quick_tips"`
	ImageURL             string    `json:"imageUrl,omitempty" db:"image_url"`
	Link                 string    `json:"link,omitempty" db:"link"`
	Price                string    `json:"price" db:"price"` // display string, e.g. "₹45.00"
	PrescriptionRequired bool      `json:"prescriptionRequired" db:"prescription_required"`
	ScrapedAt            time.Time `json:"scrapedAt" db:"scraped_at"`
	CreatedAt            time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time `json:"updatedAt" db:"updated_at"`
}

// LetterStat is one row of the per-letter catalog breakdown.
type LetterStat struct {
	Letter            string `json:"letter"`
	Count             int    `json:"count"`
	PrescriptionCount int    `json:"prescriptionCount"`
}

// MedicineStats summarizes the catalog for the admin dashboard.
type MedicineStats struct {
	TotalMedicines       int          `json:"totalMedicines"`
	PrescriptionRequired int          `json:"prescriptionRequired"`
	OTCMedicines         int          `json:"otcMedicines"`
	LetterStats          []LetterStat `json:"letterStats"`
}

// Pagination is the metadata block attached to every paginated listing.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalCount  int  `json:"totalCount"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}

// NewPagination derives the metadata for a page of `total` records.
func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCount:  total,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}
}
