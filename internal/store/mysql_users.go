package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/medscan/medscan-golang/internal/models"
)

type mysqlUsers struct {
	s *mysqlStore
}

const userColumns = `id, role, name, email, password_hash, phone, gender, created_at, updated_at`

func scanUser(row interface{ Scan(dest ...any) error }, u *models.User) error {
	return row.Scan(
		&u.ID, &u.Role, &u.Name, &u.Email, &u.PasswordHash,
		&u.Phone, &u.Gender, &u.CreatedAt, &u.UpdatedAt,
	)
}

func (r *mysqlUsers) Create(ctx context.Context, u *models.User) error {
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	query := `
		INSERT INTO users (role, name, email, password_hash, phone, gender, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.s.q(ctx).ExecContext(ctx, query,
		u.Role, u.Name, u.Email, u.PasswordHash, u.Phone, u.Gender, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	u.ID, err = result.LastInsertId()
	return err
}

func (r *mysqlUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := scanUser(r.s.q(ctx).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email), &u)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *mysqlUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := scanUser(r.s.q(ctx).QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id), &u)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
