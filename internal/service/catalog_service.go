package service

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/gosimple/slug"

	"github.com/medscan/medscan-golang/internal/models"
	"github.com/medscan/medscan-golang/internal/store"
)

// CatalogService serves the medicine catalog. The catalog is append-only:
// records come in through ingestion and are never mutated by shoppers.
type CatalogService struct {
	store *store.Store
}

func NewCatalogService(st *store.Store) *CatalogService {
	return &CatalogService{store: st}
}

// List returns one page of medicines matching the filter.
func (s *CatalogService) List(ctx context.Context, filter store.MedicineFilter) ([]models.Medicine, models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 12
	}
	filter.Letter = strings.ToUpper(strings.TrimSpace(filter.Letter))

	medicines, total, err := s.store.Medicines.List(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return medicines, models.NewPagination(filter.Page, filter.Limit, total), nil
}

// Get fetches a single medicine by id.
func (s *CatalogService) Get(ctx context.Context, id int64) (*models.Medicine, error) {
	return s.store.Medicines.GetByID(ctx, id)
}

// Stats returns the catalog totals and the per-letter breakdown.
func (s *CatalogService) Stats(ctx context.Context) (*models.MedicineStats, error) {
	return s.store.Medicines.Stats(ctx)
}

// Create ingests one medicine record. Slug and letter are derived from the
// name; a duplicate slug fails with store.ErrDuplicate.
func (s *CatalogService) Create(ctx context.Context, medicine *models.Medicine) error {
	medicine.Name = strings.TrimSpace(medicine.Name)
	medicine.Slug = slug.Make(medicine.Name)
	medicine.Letter = firstLetter(medicine.Name)
	if medicine.ScrapedAt.IsZero() {
		medicine.ScrapedAt = time.Now()
	}
	return s.store.Medicines.Create(ctx, medicine)
}

// firstLetter returns the uppercased first letter of the name, or "#" for
// names that do not start with a letter.
func firstLetter(name string) string {
	for _, r := range name {
		if unicode.IsLetter(r) {
			return strings.ToUpper(string(r))
		}
		return "#"
	}
	return "#"
}
