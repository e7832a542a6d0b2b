package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medscan/medscan-golang/internal/models"
	"github.com/medscan/medscan-golang/internal/store"
)

func TestStatusContentTable(t *testing.T) {
	tests := []struct {
		name      string
		status    models.OrderStatus
		previous  models.OrderStatus
		wantTitle string
	}{
		{"created pending", models.StatusPendingApproval, "", "Order Pending Approval"},
		{"created confirmed", models.StatusConfirmed, "", "Order Confirmed"},
		{"prescription approved", models.StatusConfirmed, models.StatusPendingApproval, "Order Confirmed"},
		{"shipped", models.StatusShipped, models.StatusConfirmed, "Order Shipped"},
		{"out for delivery", models.StatusOutForDelivery, models.StatusShipped, "Out for Delivery"},
		{"delivered", models.StatusDelivered, models.StatusOutForDelivery, "Order Delivered"},
		{"cancelled", models.StatusCancelled, models.StatusConfirmed, "Order Cancelled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, message := statusContent(tt.status, tt.previous)
			assert.Equal(t, tt.wantTitle, title)
			assert.NotEmpty(t, message)
		})
	}

	// The approval message differs from a plain confirmation.
	_, approved := statusContent(models.StatusConfirmed, models.StatusPendingApproval)
	assert.Contains(t, approved, "Great news!")
	_, plain := statusContent(models.StatusConfirmed, "")
	assert.NotEqual(t, approved, plain)
}

func TestNotificationTypeMapping(t *testing.T) {
	assert.Equal(t, models.NotificationOrderCreated, notificationType(models.StatusConfirmed, ""))
	assert.Equal(t, models.NotificationOrderCreated, notificationType(models.StatusPendingApproval, ""))
	assert.Equal(t, models.NotificationPrescriptionApproved, notificationType(models.StatusConfirmed, models.StatusPendingApproval))
	assert.Equal(t, models.NotificationOrderDelivered, notificationType(models.StatusDelivered, models.StatusOutForDelivery))
	assert.Equal(t, models.NotificationOrderStatusChange, notificationType(models.StatusShipped, models.StatusConfirmed))
}

func TestEveryTransitionEmitsExactlyOneNotification(t *testing.T) {
	st, carts, orders, notifications, _ := newOrderFixture(t)
	ctx := context.Background()
	med := seedMedicine(t, st, "Metformin", "₹65.00", false)

	_, err := carts.AddItem(ctx, 1, med.ID, 2)
	require.NoError(t, err)
	order, err := orders.Create(ctx, 1, CreateOrderInput{ShippingAddress: testShippingAddress()})
	require.NoError(t, err)

	list, unread, _, err := notifications.List(ctx, 1, "", 1, 20)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, unread)
	assert.Equal(t, models.NotificationOrderCreated, list[0].Type)
	assert.Equal(t, order.OrderNumber, list[0].Metadata.OrderNumber)
	assert.Equal(t, 2, list[0].Metadata.ItemCount)
	assert.Equal(t, order.TotalAmount, list[0].Metadata.TotalAmount)

	_, err = orders.SetStatus(ctx, order.ID, models.StatusShipped)
	require.NoError(t, err)

	list, _, _, err = notifications.List(ctx, 1, "", 1, 20)
	require.NoError(t, err)
	require.Len(t, list, 2)

	var shipped *models.Notification
	for i := range list {
		if list[i].Status == models.StatusShipped {
			shipped = &list[i]
		}
	}
	require.NotNil(t, shipped)
	assert.Equal(t, models.StatusConfirmed, shipped.PreviousStatus)
	assert.Equal(t, models.NotificationOrderStatusChange, shipped.Type)
}

func TestPrescriptionApprovalNotification(t *testing.T) {
	st, carts, orders, notifications, _ := newOrderFixture(t)
	ctx := context.Background()
	med := seedMedicine(t, st, "Warfarin", "₹150.00", true)

	_, err := carts.AddItem(ctx, 1, med.ID, 1)
	require.NoError(t, err)
	order, err := orders.Create(ctx, 1, CreateOrderInput{ShippingAddress: testShippingAddress(), DoctorName: "Dr. Rao"})
	require.NoError(t, err)

	_, err = orders.SetStatus(ctx, order.ID, models.StatusConfirmed)
	require.NoError(t, err)

	list, _, _, err := notifications.List(ctx, 1, "", 1, 20)
	require.NoError(t, err)
	require.Len(t, list, 2)

	var approved *models.Notification
	for i := range list {
		if list[i].Type == models.NotificationPrescriptionApproved {
			approved = &list[i]
		}
	}
	require.NotNil(t, approved)
	assert.Equal(t, "Order Confirmed", approved.Title)
	assert.Contains(t, approved.Message, "Great news!")
}

func TestMarkReadOwnershipAndIdempotence(t *testing.T) {
	st, carts, orders, notifications, _ := newOrderFixture(t)
	ctx := context.Background()
	med := seedMedicine(t, st, "Sertraline", "₹110.00", false)

	_, err := carts.AddItem(ctx, 1, med.ID, 1)
	require.NoError(t, err)
	_, err = orders.Create(ctx, 1, CreateOrderInput{ShippingAddress: testShippingAddress()})
	require.NoError(t, err)

	list, _, _, err := notifications.List(ctx, 1, "", 1, 20)
	require.NoError(t, err)
	require.Len(t, list, 1)
	id := list[0].ID

	// Another user cannot touch it.
	_, err = notifications.MarkRead(ctx, id, 2)
	assert.ErrorIs(t, err, store.ErrNotFound)

	read, err := notifications.MarkRead(ctx, id, 1)
	require.NoError(t, err)
	assert.True(t, read.IsRead)
	require.NotNil(t, read.ReadAt)
	firstReadAt := *read.ReadAt

	// Marking again succeeds and keeps the original readAt.
	again, err := notifications.MarkRead(ctx, id, 1)
	require.NoError(t, err)
	require.NotNil(t, again.ReadAt)
	assert.Equal(t, firstReadAt, *again.ReadAt)

	count, err := notifications.UnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestListFilterAndMarkAllRead(t *testing.T) {
	st, carts, orders, notifications, _ := newOrderFixture(t)
	ctx := context.Background()
	med := seedMedicine(t, st, "Atorvastatin", "₹85.00", false)

	_, err := carts.AddItem(ctx, 1, med.ID, 1)
	require.NoError(t, err)
	order, err := orders.Create(ctx, 1, CreateOrderInput{ShippingAddress: testShippingAddress()})
	require.NoError(t, err)
	_, err = orders.SetStatus(ctx, order.ID, models.StatusShipped)
	require.NoError(t, err)

	unreadOnly, _, _, err := notifications.List(ctx, 1, "unread", 1, 20)
	require.NoError(t, err)
	assert.Len(t, unreadOnly, 2)

	readOnly, _, _, err := notifications.List(ctx, 1, "read", 1, 20)
	require.NoError(t, err)
	assert.Empty(t, readOnly)

	updated, err := notifications.MarkAllRead(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	readOnly, unread, _, err := notifications.List(ctx, 1, "read", 1, 20)
	require.NoError(t, err)
	assert.Len(t, readOnly, 2)
	assert.Equal(t, 0, unread)
}

func TestDeleteNotificationOwnership(t *testing.T) {
	st, carts, orders, notifications, _ := newOrderFixture(t)
	ctx := context.Background()
	med := seedMedicine(t, st, "Pantoprazole", "₹70.00", false)

	_, err := carts.AddItem(ctx, 1, med.ID, 1)
	require.NoError(t, err)
	_, err = orders.Create(ctx, 1, CreateOrderInput{ShippingAddress: testShippingAddress()})
	require.NoError(t, err)

	list, _, _, err := notifications.List(ctx, 1, "", 1, 20)
	require.NoError(t, err)
	require.Len(t, list, 1)

	assert.ErrorIs(t, notifications.Delete(ctx, list[0].ID, 2), store.ErrNotFound)
	require.NoError(t, notifications.Delete(ctx, list[0].ID, 1))

	list, _, _, err = notifications.List(ctx, 1, "", 1, 20)
	require.NoError(t, err)
	assert.Empty(t, list)
}
