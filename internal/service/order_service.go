package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/medscan/medscan-golang/internal/models"
	"github.com/medscan/medscan-golang/internal/store"
)

// OrderEventPublisher broadcasts accepted order events to interested
// consumers (message broker). Publishing is best-effort and happens after
// the transaction commits; a nil publisher disables it.
type OrderEventPublisher interface {
	PublishOrderStatus(ctx context.Context, o *models.Order, previous models.OrderStatus) error
}

// OrderService owns checkout and the order status state machine.
type OrderService struct {
	store         *store.Store
	notifications *NotificationService
	publisher     OrderEventPublisher
}

func NewOrderService(st *store.Store, notifications *NotificationService, publisher OrderEventPublisher) *OrderService {
	return &OrderService{store: st, notifications: notifications, publisher: publisher}
}

// CreateOrderInput is the checkout payload after handler-level binding.
type CreateOrderInput struct {
	ShippingAddress models.ShippingAddress
	PaymentMethod   string
	DoctorName      string
}

// generateOrderNumber builds a candidate order number from the current time
// plus a random suffix. The unique index on orders.order_number is the real
// collision authority; retries add extra digits.
func generateOrderNumber(attempt int) string {
	n := fmt.Sprintf("ORD%d%03d", time.Now().UnixMilli(), rand.IntN(1000))
	if attempt > 0 {
		n += fmt.Sprintf("%02d", rand.IntN(100))
	}
	return n
}

// Create converts the user's cart into an order atomically: the order is
// persisted, the order-created notification written, and the cart deleted
// in one transaction. A failed checkout leaves the cart intact; a
// concurrent duplicate checkout finds the cart gone and fails with
// ErrEmptyCart.
func (s *OrderService) Create(ctx context.Context, userID int64, input CreateOrderInput) (*models.Order, error) {
	paymentMethod := input.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "card"
	}

	var orderID int64
	err := s.store.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		cart, err := s.store.Carts.GetByUser(ctx, userID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrEmptyCart
		}
		if err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return ErrEmptyCart
		}

		// The prescription flag is read from the catalog at this moment,
		// not from any cached copy.
		requiresPrescription := false
		items := make([]models.OrderItem, 0, len(cart.Items))
		for _, line := range cart.Items {
			medicine, err := s.store.Medicines.GetByID(ctx, line.MedicineID)
			if err != nil {
				return err
			}
			if medicine.PrescriptionRequired {
				requiresPrescription = true
			}
			items = append(items, models.OrderItem{
				MedicineID:           line.MedicineID,
				Quantity:             line.Quantity,
				UnitPrice:            line.Price,
				PrescriptionRequired: medicine.PrescriptionRequired,
			})
		}

		doctorName := strings.TrimSpace(input.DoctorName)
		if requiresPrescription && doctorName == "" {
			return ErrMissingPrescriber
		}
		if !requiresPrescription {
			doctorName = "" // ignored for over-the-counter orders
		}

		status := models.StatusConfirmed
		deliveryDays := 3
		if requiresPrescription {
			status = models.StatusPendingApproval
			deliveryDays = 7
		}

		order := &models.Order{
			UserID:               userID,
			Items:                items,
			TotalAmount:          cart.TotalAmount,
			Status:               status,
			PrescriptionRequired: requiresPrescription,
			DoctorName:           doctorName,
			ShippingAddress:      input.ShippingAddress,
			PaymentMethod:        paymentMethod,
			PaymentStatus:        "pending",
			EstimatedDelivery:    time.Now().AddDate(0, 0, deliveryDays),
		}

		for attempt := 0; ; attempt++ {
			order.OrderNumber = generateOrderNumber(attempt)
			err := s.store.Orders.Create(ctx, order)
			if errors.Is(err, store.ErrDuplicate) {
				continue
			}
			if err != nil {
				return err
			}
			break
		}

		if err := s.notifications.NotifyOrderStatus(ctx, order, ""); err != nil {
			return err
		}

		// Persist-then-delete: the cart goes last so nothing is lost if
		// anything above fails.
		if err := s.store.Carts.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := s.store.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, order, "")
	return order, nil
}

// SetStatus advances the order through the state machine. The new status
// must be in the allowed-next set for the current one; the notification is
// created in the same transaction as the update.
func (s *OrderService) SetStatus(ctx context.Context, orderID int64, next models.OrderStatus) (*models.Order, error) {
	if !next.Valid() {
		return nil, ErrInvalidStatus
	}

	var previous models.OrderStatus
	err := s.store.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		order, err := s.store.Orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		previous = order.Status
		if !order.Status.CanTransitionTo(next) {
			return ErrIllegalTransition
		}

		if err := s.store.Orders.UpdateStatus(ctx, orderID, next); err != nil {
			return err
		}
		order.Status = next
		return s.notifications.NotifyOrderStatus(ctx, order, previous)
	})
	if err != nil {
		return nil, err
	}

	order, err := s.store.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, order, previous)
	return order, nil
}

func (s *OrderService) publish(ctx context.Context, order *models.Order, previous models.OrderStatus) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishOrderStatus(ctx, order, previous); err != nil {
		log.Printf("WARNING: failed to publish event for order %s: %v", order.OrderNumber, err)
	}
}

// Get fetches one order. Only the owner or an admin may read it.
func (s *OrderService) Get(ctx context.Context, orderID, callerID int64, isAdmin bool) (*models.Order, error) {
	order, err := s.store.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != callerID && !isAdmin {
		return nil, ErrAccessDenied
	}
	return order, nil
}

// ListMine returns one page of the user's orders, newest first.
func (s *OrderService) ListMine(ctx context.Context, userID int64, page, limit int) ([]models.Order, models.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	orders, total, err := s.store.Orders.ListByUser(ctx, userID, page, limit)
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return orders, models.NewPagination(page, limit, total), nil
}

// ListAll is the admin listing with an optional status filter.
func (s *OrderService) ListAll(ctx context.Context, status models.OrderStatus, page, limit int) ([]models.Order, models.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	orders, total, err := s.store.Orders.List(ctx, store.OrderFilter{Status: status, Page: page, Limit: limit})
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return orders, models.NewPagination(page, limit, total), nil
}

// DeliveredMedicine is one medicine line from a delivered order, with the
// order context attached.
type DeliveredMedicine struct {
	Medicine             *models.Medicine `json:"medicine"`
	Quantity             int              `json:"quantity"`
	Price                models.Money     `json:"price"`
	PrescriptionRequired bool             `json:"prescriptionRequired"`
	OrderNumber          string           `json:"orderNumber"`
	OrderDate            time.Time        `json:"orderDate"`
	DeliveredDate        time.Time        `json:"deliveredDate"`
	DoctorName           string           `json:"doctorName,omitempty"`
}

// DeliveredStats summarizes the user's delivered medicine history.
type DeliveredStats struct {
	TotalOrders           int `json:"totalOrders"`
	UniqueMedicines       int `json:"uniqueMedicines"`
	TotalQuantity         int `json:"totalQuantity"`
	PrescriptionMedicines int `json:"prescriptionMedicines"`
}

// DeliveredMedicines flattens the user's delivered orders into a medicine
// history page plus summary stats.
func (s *OrderService) DeliveredMedicines(ctx context.Context, userID int64, page, limit int) ([]DeliveredMedicine, DeliveredStats, models.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	orders, total, err := s.store.Orders.ListDeliveredByUser(ctx, userID, page, limit)
	if err != nil {
		return nil, DeliveredStats{}, models.Pagination{}, err
	}

	medicines := []DeliveredMedicine{}
	unique := make(map[int64]struct{})
	stats := DeliveredStats{TotalOrders: total}
	for _, order := range orders {
		for _, item := range order.Items {
			medicines = append(medicines, DeliveredMedicine{
				Medicine:             item.Medicine,
				Quantity:             item.Quantity,
				Price:                item.UnitPrice,
				PrescriptionRequired: item.PrescriptionRequired,
				OrderNumber:          order.OrderNumber,
				OrderDate:            order.CreatedAt,
				DeliveredDate:        order.UpdatedAt,
				DoctorName:           order.DoctorName,
			})
			unique[item.MedicineID] = struct{}{}
			stats.TotalQuantity += item.Quantity
			if item.PrescriptionRequired {
				stats.PrescriptionMedicines++
			}
		}
	}
	stats.UniqueMedicines = len(unique)

	pagination := models.NewPagination(page, limit, total)
	pagination.TotalCount = len(medicines)
	return medicines, stats, pagination, nil
}

// MedicineUsage is one delivered order that contained a given medicine.
type MedicineUsage struct {
	OrderNumber   string       `json:"orderNumber"`
	Quantity      int          `json:"quantity"`
	Price         models.Money `json:"price"`
	OrderDate     time.Time    `json:"orderDate"`
	DeliveredDate time.Time    `json:"deliveredDate"`
	DoctorName    string       `json:"doctorName,omitempty"`
}

// MedicineHistory reports every delivered order of the user that contained
// medicineID, newest first.
func (s *OrderService) MedicineHistory(ctx context.Context, userID, medicineID int64) ([]MedicineUsage, error) {
	const pageSize = 50

	history := []MedicineUsage{}
	for page := 1; ; page++ {
		orders, total, err := s.store.Orders.ListDeliveredByUser(ctx, userID, page, pageSize)
		if err != nil {
			return nil, err
		}
		for _, order := range orders {
			for _, item := range order.Items {
				if item.MedicineID != medicineID {
					continue
				}
				history = append(history, MedicineUsage{
					OrderNumber:   order.OrderNumber,
					Quantity:      item.Quantity,
					Price:         item.UnitPrice,
					OrderDate:     order.CreatedAt,
					DeliveredDate: order.UpdatedAt,
					DoctorName:    order.DoctorName,
				})
				break
			}
		}
		if len(orders) == 0 || page*pageSize >= total {
			return history, nil
		}
	}
}
