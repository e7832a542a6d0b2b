package models

import "time"

// Cart defines the struct for the 'carts' table. One cart per user, created
// lazily on the first add and deleted on checkout or clear.
type Cart struct {
	ID          int64      `json:"id" db:"id"`
	UserID      int64      `json:"userId" db:"user_id"`
	Items       []CartItem `json:"items"`
	TotalAmount Money      `json:"totalAmount" db:"total_amount"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// CartItem defines the struct for the 'cart_items' table. Price is the
// snapshot taken when the line was added, not a reference to the catalog.
type CartItem struct {
	ID         int64     `json:"id" db:"id"`
	CartID     int64     `json:"cartId" db:"cart_id"`
	MedicineID int64     `json:"medicineId" db:"medicine_id"`
	Quantity   int       `json:"quantity" db:"quantity"`
	Price      Money     `json:"price" db:"price"`
	Medicine   *Medicine `json:"medicine,omitempty" db:"-"` // joined summary
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

// FindItem returns the index of the line for medicineID, or -1.
func (c *Cart) FindItem(medicineID int64) int {
	for i := range c.Items {
		if c.Items[i].MedicineID == medicineID {
			return i
		}
	}
	return -1
}

// Recompute refreshes TotalAmount from the current lines. Every cart
// mutation must call this before persisting.
func (c *Cart) Recompute() {
	var total Money
	for _, item := range c.Items {
		total += item.Price * Money(item.Quantity)
	}
	c.TotalAmount = total
}

// ItemCount is the total quantity across all lines.
func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}
