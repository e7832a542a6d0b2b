package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/medscan/medscan-golang/internal/models"
)

type mysqlCarts struct {
	s *mysqlStore
}

func (r *mysqlCarts) GetByUser(ctx context.Context, userID int64) (*models.Cart, error) {
	q := r.s.q(ctx)

	// Inside a transaction, lock the cart row so a concurrent mutation or
	// checkout for the same user serializes behind us.
	query := `SELECT id, user_id, total_amount, created_at, updated_at FROM carts WHERE user_id = ?`
	if inTx(ctx) {
		query += ` FOR UPDATE`
	}

	var c models.Cart
	err := q.QueryRowContext(ctx, query, userID).Scan(
		&c.ID, &c.UserID, &c.TotalAmount, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	itemQuery := `
		SELECT
			ci.id, ci.cart_id, ci.medicine_id, ci.quantity, ci.price, ci.created_at, ci.updated_at,
			m.id, m.name, m.slug, m.letter, m.manufacturer, m.composition, m.description, m.uses, m.side_effects, m.quick_tips, m.image_url, m.link, m.price, m.prescription_required, m.scraped_at, m.created_at, m.updated_at
		FROM cart_items ci
		JOIN medicines m ON ci.medicine_id = m.id
		WHERE ci.cart_id = ?
		ORDER BY ci.id ASC`

	rows, err := q.QueryContext(ctx, itemQuery, c.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item models.CartItem
		var m models.Medicine
		if err := rows.Scan(
			&item.ID, &item.CartID, &item.MedicineID, &item.Quantity, &item.Price, &item.CreatedAt, &item.UpdatedAt,
			&m.ID, &m.Name, &m.Slug, &m.Letter, &m.Manufacturer, &m.Composition, &m.Description, &m.Uses, &m.SideEffects, &m.QuickTips, &m.ImageURL, &m.Link, &m.Price, &m.PrescriptionRequired, &m.ScrapedAt, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		item.Medicine = &m
		c.Items = append(c.Items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Save persists the cart as a unit: upsert the cart row, then replace the
// line set wholesale. Callers run this inside a transaction.
func (r *mysqlCarts) Save(ctx context.Context, cart *models.Cart) error {
	q := r.s.q(ctx)
	now := time.Now()

	if cart.ID == 0 {
		cart.CreatedAt = now
		result, err := q.ExecContext(ctx,
			`INSERT INTO carts (user_id, total_amount, created_at, updated_at) VALUES (?, ?, ?, ?)`,
			cart.UserID, cart.TotalAmount, now, now)
		if err != nil {
			// Two first-time saves for the same user raced on uq_carts_user;
			// the loser must re-read the winner's row and retry.
			if isDuplicate(err) {
				return ErrDuplicate
			}
			return err
		}
		cart.ID, err = result.LastInsertId()
		if err != nil {
			return err
		}
	} else {
		_, err := q.ExecContext(ctx,
			`UPDATE carts SET total_amount = ?, updated_at = ? WHERE id = ?`,
			cart.TotalAmount, now, cart.ID)
		if err != nil {
			return err
		}
	}
	cart.UpdatedAt = now

	if _, err := q.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = ?`, cart.ID); err != nil {
		return err
	}
	for i := range cart.Items {
		item := &cart.Items[i]
		item.CartID = cart.ID
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}
		item.UpdatedAt = now
		result, err := q.ExecContext(ctx, `
			INSERT INTO cart_items (cart_id, medicine_id, quantity, price, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			item.CartID, item.MedicineID, item.Quantity, item.Price, item.CreatedAt, item.UpdatedAt)
		if err != nil {
			return err
		}
		if item.ID, err = result.LastInsertId(); err != nil {
			return err
		}
	}
	return nil
}

func (r *mysqlCarts) DeleteByUser(ctx context.Context, userID int64) error {
	q := r.s.q(ctx)

	var cartID int64
	err := q.QueryRowContext(ctx, `SELECT id FROM carts WHERE user_id = ?`, userID).Scan(&cartID)
	if err == sql.ErrNoRows {
		return nil // nothing to clear
	}
	if err != nil {
		return err
	}

	if _, err := q.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = ?`, cartID); err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `DELETE FROM carts WHERE id = ?`, cartID)
	return err
}
