package service

import (
	"context"
	"fmt"

	"github.com/medscan/medscan-golang/internal/models"
	"github.com/medscan/medscan-golang/internal/store"
)

// NotificationService synthesizes user-facing notifications for order
// lifecycle events and owns the read markers.
type NotificationService struct {
	store *store.Store
}

func NewNotificationService(st *store.Store) *NotificationService {
	return &NotificationService{store: st}
}

// statusContent is the fixed lookup for notification copy. A confirmed
// order that came out of pending_approval gets the "approved" messaging.
func statusContent(status, previous models.OrderStatus) (title, message string) {
	switch status {
	case models.StatusPendingApproval:
		return "Order Pending Approval", "Your order with prescription medicines is pending pharmacist approval."
	case models.StatusConfirmed:
		if previous == models.StatusPendingApproval {
			return "Order Confirmed", "Great news! Your prescription has been approved and your order is confirmed."
		}
		return "Order Confirmed", "Your order has been confirmed and is being prepared."
	case models.StatusShipped:
		return "Order Shipped", "Your order is on its way! You should receive it within 2-3 business days."
	case models.StatusOutForDelivery:
		return "Out for Delivery", "Your order is out for delivery and will arrive today!"
	case models.StatusDelivered:
		return "Order Delivered", "Your order has been successfully delivered. Thank you for choosing MedScan!"
	case models.StatusCancelled:
		return "Order Cancelled", "Your order has been cancelled. If you have any questions, please contact support."
	}
	return "Order Status Update", fmt.Sprintf("Your order status has been updated to %s.", status)
}

func notificationType(status, previous models.OrderStatus) models.NotificationType {
	switch {
	case previous == "":
		return models.NotificationOrderCreated
	case previous == models.StatusPendingApproval && status == models.StatusConfirmed:
		return models.NotificationPrescriptionApproved
	case status == models.StatusDelivered:
		return models.NotificationOrderDelivered
	default:
		return models.NotificationOrderStatusChange
	}
}

// NotifyOrderStatus creates exactly one notification for an order reaching
// its current status. previous is empty for the order-created event. The
// metadata snapshot is taken here and never recomputed.
// NOTE: must run inside the same transaction as the status change so the
// transition is never silently unobserved.
func (s *NotificationService) NotifyOrderStatus(ctx context.Context, order *models.Order, previous models.OrderStatus) error {
	title, message := statusContent(order.Status, previous)

	n := &models.Notification{
		UserID:         order.UserID,
		OrderID:        order.ID,
		Type:           notificationType(order.Status, previous),
		Title:          title,
		Message:        message,
		Status:         order.Status,
		PreviousStatus: previous,
		Metadata: models.NotificationMetadata{
			OrderNumber: order.OrderNumber,
			ItemCount:   order.ItemCount(),
			TotalAmount: order.TotalAmount,
		},
	}

	if err := s.store.Notifications.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to add notification: %w", err)
	}
	return nil
}

// List returns one page of the user's notifications, newest first, plus the
// unread count. filter is "unread", "read" or anything else for all.
func (s *NotificationService) List(ctx context.Context, userID int64, filter string, page, limit int) ([]models.Notification, int, models.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	notifications, total, err := s.store.Notifications.ListByUser(ctx, userID, store.NotificationFilter{
		Filter: filter,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return nil, 0, models.Pagination{}, err
	}

	unreadCount, err := s.store.Notifications.UnreadCount(ctx, userID)
	if err != nil {
		return nil, 0, models.Pagination{}, err
	}
	return notifications, unreadCount, models.NewPagination(page, limit, total), nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.store.Notifications.UnreadCount(ctx, userID)
}

// MarkRead marks one notification read, scoped to the owning user.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID int64) (*models.Notification, error) {
	return s.store.Notifications.MarkRead(ctx, id, userID)
}

// MarkAllRead marks every unread notification for the user and returns how
// many were modified.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	return s.store.Notifications.MarkAllRead(ctx, userID)
}

// Delete permanently removes a notification, scoped to the owning user and
// independent of read state.
func (s *NotificationService) Delete(ctx context.Context, id, userID int64) error {
	return s.store.Notifications.Delete(ctx, id, userID)
}
