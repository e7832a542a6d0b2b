package models

import "time"

// OrderStatus is the order lifecycle enum. Transitions are driven by
// explicit admin action only; there are no timers.
type OrderStatus string

const (
	StatusPendingApproval OrderStatus = "pending_approval"
	StatusConfirmed       OrderStatus = "confirmed"
	StatusShipped         OrderStatus = "shipped"
	StatusOutForDelivery  OrderStatus = "out_for_delivery"
	StatusDelivered       OrderStatus = "delivered"
	StatusCancelled       OrderStatus = "cancelled"
)

// orderTransitions is the allowed-next table. Cancellation is only possible
// before the order ships; delivered and cancelled are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusPendingApproval: {StatusConfirmed, StatusCancelled},
	StatusConfirmed:       {StatusShipped, StatusCancelled},
	StatusShipped:         {StatusOutForDelivery},
	StatusOutForDelivery:  {StatusDelivered},
	StatusDelivered:       {},
	StatusCancelled:       {},
}

// Valid reports whether s is a known status value.
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransitionTo reports whether next is in the allowed-next set for s.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AllowedNext returns the admin actions offered for an order in status s.
func (s OrderStatus) AllowedNext() []OrderStatus {
	return orderTransitions[s]
}

// Terminal reports whether no further transition is possible.
func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0
}

// ShippingAddress is embedded in the order snapshot. All fields are required
// at checkout.
type ShippingAddress struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
	Address string `json:"address" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
	ZipCode string `json:"zipCode" binding:"required"`
}

// Order is the model for the 'orders' table. Items and totals are frozen at
// checkout; later catalog changes never alter a placed order.
type Order struct {
	ID                   int64           `json:"id" db:"id"`
	UserID               int64           `json:"userId" db:"user_id"`
	OrderNumber          string          `json:"orderNumber" db:"order_number"`
	Items                []OrderItem     `json:"items"`
	TotalAmount          Money           `json:"totalAmount" db:"total_amount"`
	Status               OrderStatus     `json:"status" db:"status"`
	PrescriptionRequired bool            `json:"prescriptionRequired" db:"prescription_required"`
	DoctorName           string          `json:"doctorName,omitempty" db:"doctor_name"`
	ShippingAddress      ShippingAddress `json:"shippingAddress"`
	PaymentMethod        string          `json:"paymentMethod" db:"payment_method"`
	PaymentStatus        string          `json:"paymentStatus" db:"payment_status"`
	EstimatedDelivery    time.Time       `json:"estimatedDelivery" db:"estimated_delivery"`
	CreatedAt            time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderItem is the model for the 'order_items' table. Price and the
// prescription flag are copied from the cart/catalog at checkout time.
type OrderItem struct {
	ID                   int64     `json:"id" db:"id"`
	OrderID              int64     `json:"orderId" db:"order_id"`
	MedicineID           int64     `json:"medicineId" db:"medicine_id"`
	Quantity             int       `json:"quantity" db:"quantity"`
	UnitPrice            Money     `json:"unitPrice" db:"unit_price"`
	PrescriptionRequired bool      `json:"prescriptionRequired" db:"prescription_required"`
	Medicine             *Medicine `json:"medicine,omitempty" db:"-"` // joined summary
}

// ItemCount is the total quantity across all order lines.
func (o *Order) ItemCount() int {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}
