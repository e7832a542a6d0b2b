package service

import (
	"context"
	"errors"

	"github.com/medscan/medscan-golang/internal/models"
	"github.com/medscan/medscan-golang/internal/store"
)

// CartService owns the per-user cart. Every mutation runs in a transaction
// so two concurrent requests for the same user never lose an update, and
// recomputes the persisted total before committing.
type CartService struct {
	store *store.Store
}

func NewCartService(st *store.Store) *CartService {
	return &CartService{store: st}
}

// Get returns the user's cart with catalog summaries joined, or an empty
// cart shape when none exists yet.
func (s *CartService) Get(ctx context.Context, userID int64) (*models.Cart, error) {
	cart, err := s.store.Carts.GetByUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return &models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// AddItem adds quantity of a medicine to the cart, creating the cart lazily.
// Repeated calls accumulate quantity; the line price is snapshotted from the
// catalog's current display price on first add.
func (s *CartService) AddItem(ctx context.Context, userID, medicineID int64, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		quantity = 1
	}

	mutate := func(ctx context.Context) error {
		medicine, err := s.store.Medicines.GetByID(ctx, medicineID)
		if err != nil {
			return err
		}

		cart, err := s.store.Carts.GetByUser(ctx, userID)
		if errors.Is(err, store.ErrNotFound) {
			cart = &models.Cart{UserID: userID}
		} else if err != nil {
			return err
		}

		if idx := cart.FindItem(medicineID); idx >= 0 {
			cart.Items[idx].Quantity += quantity
		} else {
			cart.Items = append(cart.Items, models.CartItem{
				MedicineID: medicineID,
				Quantity:   quantity,
				Price:      models.ParsePrice(medicine.Price),
			})
		}

		cart.Recompute()
		return s.store.Carts.Save(ctx, cart)
	}

	err := s.store.Tx.WithTransaction(ctx, mutate)
	if errors.Is(err, store.ErrDuplicate) {
		// A concurrent first-time add created the cart row between our read
		// and insert. The row exists now, so a single retry applies this
		// mutation on top of it.
		err = s.store.Tx.WithTransaction(ctx, mutate)
	}
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// UpdateQuantity sets a line's quantity directly; zero or negative removes
// the line. Missing cart or line is NotFound.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, medicineID int64, quantity int) (*models.Cart, error) {
	err := s.store.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		cart, err := s.store.Carts.GetByUser(ctx, userID)
		if err != nil {
			return err
		}

		idx := cart.FindItem(medicineID)
		if idx < 0 {
			return store.ErrNotFound
		}

		if quantity <= 0 {
			cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
		} else {
			cart.Items[idx].Quantity = quantity
		}

		cart.Recompute()
		return s.store.Carts.Save(ctx, cart)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// RemoveItem drops the line for medicineID. A line that is not in the cart
// is a no-op, not an error.
func (s *CartService) RemoveItem(ctx context.Context, userID, medicineID int64) (*models.Cart, error) {
	err := s.store.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		cart, err := s.store.Carts.GetByUser(ctx, userID)
		if err != nil {
			return err
		}

		idx := cart.FindItem(medicineID)
		if idx < 0 {
			return nil
		}
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)

		cart.Recompute()
		return s.store.Carts.Save(ctx, cart)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// Clear deletes the cart entirely. Clearing an absent cart succeeds.
func (s *CartService) Clear(ctx context.Context, userID int64) error {
	return s.store.Carts.DeleteByUser(ctx, userID)
}
