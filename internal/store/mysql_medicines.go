package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/medscan/medscan-golang/internal/models"
)

type mysqlMedicines struct {
	s *mysqlStore
}

const medicineColumns = `id, name, slug, letter, manufacturer, composition, description, uses, side_effects, quick_tips, image_url, link, price, prescription_required, scraped_at, created_at, updated_at`

func scanMedicine(row interface{ Scan(dest ...any) error }, m *models.Medicine) error {
	return row.Scan(
		&m.ID,
		&m.Name,
		&m.Slug,
		&m.Letter,
		&m.Manufacturer,
		&m.Composition,
		&m.Description,
		&m.Uses,
		&m.SideEffects,
		&m.QuickTips,
		&m.ImageURL,
		&m.Link,
		&m.Price,
		&m.PrescriptionRequired,
		&m.ScrapedAt,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
}

func (r *mysqlMedicines) Create(ctx context.Context, m *models.Medicine) error {
	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now
	if m.ScrapedAt.IsZero() {
		m.ScrapedAt = now
	}

	query := `
		INSERT INTO medicines
		(name, slug, letter, manufacturer, composition, description, uses, side_effects, quick_tips, image_url, link, price, prescription_required, scraped_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.s.q(ctx).ExecContext(ctx, query,
		m.Name, m.Slug, m.Letter, m.Manufacturer, m.Composition, m.Description,
		m.Uses, m.SideEffects, m.QuickTips, m.ImageURL, m.Link, m.Price,
		m.PrescriptionRequired, m.ScrapedAt, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	m.ID, err = result.LastInsertId()
	return err
}

func (r *mysqlMedicines) GetByID(ctx context.Context, id int64) (*models.Medicine, error) {
	var m models.Medicine
	err := scanMedicine(r.s.q(ctx).QueryRowContext(ctx,
		`SELECT `+medicineColumns+` FROM medicines WHERE id = ?`, id), &m)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *mysqlMedicines) List(ctx context.Context, f MedicineFilter) ([]models.Medicine, int, error) {
	where := "1 = 1"
	args := []any{}

	if f.Search != "" {
		where += " AND (name LIKE ? OR composition LIKE ? OR manufacturer LIKE ?)"
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern, pattern)
	}
	if f.Letter != "" {
		where += " AND letter = ?"
		args = append(args, f.Letter)
	}
	if f.PrescriptionRequired != nil {
		where += " AND prescription_required = ?"
		args = append(args, *f.PrescriptionRequired)
	}

	var total int
	err := r.s.q(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM medicines WHERE `+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	offset := (f.Page - 1) * f.Limit
	query := `SELECT ` + medicineColumns + ` FROM medicines WHERE ` + where + ` ORDER BY name ASC LIMIT ? OFFSET ?`
	rows, err := r.s.q(ctx).QueryContext(ctx, query, append(args, f.Limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var medicines []models.Medicine
	for rows.Next() {
		var m models.Medicine
		if err := scanMedicine(rows, &m); err != nil {
			return nil, 0, err
		}
		medicines = append(medicines, m)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, err
	}
	return medicines, total, nil
}

func (r *mysqlMedicines) Stats(ctx context.Context) (*models.MedicineStats, error) {
	var stats models.MedicineStats
	q := r.s.q(ctx)

	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM medicines`).Scan(&stats.TotalMedicines)
	if err != nil {
		return nil, err
	}
	err = q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM medicines WHERE prescription_required = 1`).Scan(&stats.PrescriptionRequired)
	if err != nil {
		return nil, err
	}
	stats.OTCMedicines = stats.TotalMedicines - stats.PrescriptionRequired

	rows, err := q.QueryContext(ctx, `
		SELECT letter, COUNT(*), SUM(prescription_required)
		FROM medicines
		GROUP BY letter
		ORDER BY letter ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var ls models.LetterStat
		if err := rows.Scan(&ls.Letter, &ls.Count, &ls.PrescriptionCount); err != nil {
			return nil, err
		}
		stats.LetterStats = append(stats.LetterStats, ls)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return &stats, nil
}
