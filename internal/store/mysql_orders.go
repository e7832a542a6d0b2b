package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/medscan/medscan-golang/internal/models"
)

type mysqlOrders struct {
	s *mysqlStore
}

const orderColumns = `id, user_id, order_number, total_amount, status, prescription_required, doctor_name, ship_name, ship_phone, ship_address, ship_city, ship_state, ship_zip, payment_method, payment_status, estimated_delivery, created_at, updated_at`

func scanOrder(row interface{ Scan(dest ...any) error }, o *models.Order) error {
	return row.Scan(
		&o.ID,
		&o.UserID,
		&o.OrderNumber,
		&o.TotalAmount,
		&o.Status,
		&o.PrescriptionRequired,
		&o.DoctorName,
		&o.ShippingAddress.Name,
		&o.ShippingAddress.Phone,
		&o.ShippingAddress.Address,
		&o.ShippingAddress.City,
		&o.ShippingAddress.State,
		&o.ShippingAddress.ZipCode,
		&o.PaymentMethod,
		&o.PaymentStatus,
		&o.EstimatedDelivery,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
}

func (r *mysqlOrders) Create(ctx context.Context, o *models.Order) error {
	q := r.s.q(ctx)
	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now

	query := `
		INSERT INTO orders
		(user_id, order_number, total_amount, status, prescription_required, doctor_name, ship_name, ship_phone, ship_address, ship_city, ship_state, ship_zip, payment_method, payment_status, estimated_delivery, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := q.ExecContext(ctx, query,
		o.UserID, o.OrderNumber, o.TotalAmount, o.Status, o.PrescriptionRequired, o.DoctorName,
		o.ShippingAddress.Name, o.ShippingAddress.Phone, o.ShippingAddress.Address,
		o.ShippingAddress.City, o.ShippingAddress.State, o.ShippingAddress.ZipCode,
		o.PaymentMethod, o.PaymentStatus, o.EstimatedDelivery, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		// The unique index on order_number is the authority on collisions;
		// the generation loop retries on this.
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	if o.ID, err = result.LastInsertId(); err != nil {
		return err
	}

	itemQuery := `
		INSERT INTO order_items (order_id, medicine_id, quantity, unit_price, prescription_required)
		VALUES (?, ?, ?, ?, ?)`
	for i := range o.Items {
		item := &o.Items[i]
		item.OrderID = o.ID
		result, err := q.ExecContext(ctx, itemQuery,
			item.OrderID, item.MedicineID, item.Quantity, item.UnitPrice, item.PrescriptionRequired)
		if err != nil {
			return err
		}
		if item.ID, err = result.LastInsertId(); err != nil {
			return err
		}
	}
	return nil
}

func (r *mysqlOrders) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	q := r.s.q(ctx)

	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`
	if inTx(ctx) {
		// Lock the row so a concurrent status update serializes behind us.
		query += ` FOR UPDATE`
	}

	var o models.Order
	err := scanOrder(q.QueryRowContext(ctx, query, id), &o)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *mysqlOrders) loadItems(ctx context.Context, o *models.Order) error {
	query := `
		SELECT
			oi.id, oi.order_id, oi.medicine_id, oi.quantity, oi.unit_price, oi.prescription_required,
			m.name, m.manufacturer, m.composition, m.image_url
		FROM order_items oi
		JOIN medicines m ON oi.medicine_id = m.id
		WHERE oi.order_id = ?
		ORDER BY oi.id ASC`

	rows, err := r.s.q(ctx).QueryContext(ctx, query, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		var m models.Medicine
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.MedicineID, &item.Quantity, &item.UnitPrice, &item.PrescriptionRequired,
			&m.Name, &m.Manufacturer, &m.Composition, &m.ImageURL,
		); err != nil {
			return err
		}
		m.ID = item.MedicineID
		item.Medicine = &m
		o.Items = append(o.Items, item)
	}
	return rows.Err()
}

func (r *mysqlOrders) listWhere(ctx context.Context, where string, args []any, page, limit int) ([]models.Order, int, error) {
	q := r.s.q(ctx)

	var total int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE `+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	query := `SELECT ` + orderColumns + ` FROM orders WHERE ` + where + ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := q.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range orders {
		if err := r.loadItems(ctx, &orders[i]); err != nil {
			return nil, 0, err
		}
	}
	return orders, total, nil
}

func (r *mysqlOrders) ListByUser(ctx context.Context, userID int64, page, limit int) ([]models.Order, int, error) {
	return r.listWhere(ctx, "user_id = ?", []any{userID}, page, limit)
}

func (r *mysqlOrders) ListDeliveredByUser(ctx context.Context, userID int64, page, limit int) ([]models.Order, int, error) {
	return r.listWhere(ctx, "user_id = ? AND status = ?", []any{userID, models.StatusDelivered}, page, limit)
}

func (r *mysqlOrders) List(ctx context.Context, f OrderFilter) ([]models.Order, int, error) {
	where := "1 = 1"
	args := []any{}
	if f.Status != "" {
		where += " AND status = ?"
		args = append(args, f.Status)
	}
	return r.listWhere(ctx, where, args, f.Page, f.Limit)
}

func (r *mysqlOrders) UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	result, err := r.s.q(ctx).ExecContext(ctx,
		`UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now(), id)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
