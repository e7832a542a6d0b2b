package store

import (
	"context"
	"errors"

	"github.com/medscan/medscan-golang/internal/models"
)

// ErrNotFound is returned when an entity is absent or not owned by the
// caller; handlers map it to 404.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a unique constraint rejects an insert
// (order number, user email).
var ErrDuplicate = errors.New("duplicate key")

// MedicineFilter narrows the catalog listing.
type MedicineFilter struct {
	Search               string
	Letter               string
	PrescriptionRequired *bool
	Page                 int
	Limit                int
}

// MedicineRepository is the read-mostly catalog. Create exists only for the
// admin ingestion endpoint; nothing in the cart/order flow mutates it.
type MedicineRepository interface {
	Create(ctx context.Context, m *models.Medicine) error
	GetByID(ctx context.Context, id int64) (*models.Medicine, error)
	List(ctx context.Context, f MedicineFilter) ([]models.Medicine, int, error)
	Stats(ctx context.Context) (*models.MedicineStats, error)
}

// CartRepository persists the per-user cart as a unit: Save replaces the
// line set wholesale, which keeps the document-style semantics of the cart.
type CartRepository interface {
	GetByUser(ctx context.Context, userID int64) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
	DeleteByUser(ctx context.Context, userID int64) error
}

// OrderFilter narrows the admin order listing.
type OrderFilter struct {
	Status models.OrderStatus
	Page   int
	Limit  int
}

type OrderRepository interface {
	// Create inserts the order and its items; ErrDuplicate signals an
	// order-number collision and the caller must regenerate and retry.
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	ListByUser(ctx context.Context, userID int64, page, limit int) ([]models.Order, int, error)
	ListDeliveredByUser(ctx context.Context, userID int64, page, limit int) ([]models.Order, int, error)
	List(ctx context.Context, f OrderFilter) ([]models.Order, int, error)
	UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) error
}

// NotificationFilter narrows the notification listing. Filter is "unread",
// "read" or empty for all.
type NotificationFilter struct {
	Filter string
	Page   int
	Limit  int
}

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID int64, f NotificationFilter) ([]models.Notification, int, error)
	UnreadCount(ctx context.Context, userID int64) (int, error)
	// MarkRead and Delete are ownership-scoped: a mismatched user yields
	// ErrNotFound, never a cross-user mutation.
	MarkRead(ctx context.Context, id, userID int64) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	Delete(ctx context.Context, id, userID int64) error
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// TxManager runs fn atomically. Repository calls made with the ctx passed to
// fn join the same transaction.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Store bundles the repositories handed to the service layer.
type Store struct {
	Medicines     MedicineRepository
	Carts         CartRepository
	Orders        OrderRepository
	Notifications NotificationRepository
	Users         UserRepository
	Tx            TxManager
}
