package models

import "time"

// NotificationType classifies why a notification was created.
type NotificationType string

const (
	NotificationOrderCreated         NotificationType = "order_created"
	NotificationOrderStatusChange    NotificationType = "order_status_change"
	NotificationOrderDelivered       NotificationType = "order_delivered"
	NotificationPrescriptionApproved NotificationType = "prescription_approved"
)

// NotificationMetadata is the order snapshot taken when the notification is
// created. It is never recomputed.
type NotificationMetadata struct {
	OrderNumber string `json:"orderNumber"`
	ItemCount   int    `json:"itemCount"`
	TotalAmount Money  `json:"totalAmount"`
}

// Notification is the model for the 'notifications' table. Created by the
// system only; mutable solely through the read markers.
type Notification struct {
	ID             int64                `json:"id" db:"id"`
	UserID         int64                `json:"userId" db:"user_id"`
	OrderID        int64                `json:"orderId" db:"order_id"`
	Type           NotificationType     `json:"type" db:"type"`
	Title          string               `json:"title" db:"title"`
	Message        string               `json:"message" db:"message"`
	Status         OrderStatus          `json:"status" db:"status"`
	PreviousStatus OrderStatus          `json:"previousStatus,omitempty" db:"previous_status"`
	IsRead         bool                 `json:"isRead" db:"is_read"`
	ReadAt         *time.Time           `json:"readAt,omitempty" db:"read_at"`
	Metadata       NotificationMetadata `json:"metadata"`
	CreatedAt      time.Time            `json:"createdAt" db:"created_at"`
}
