package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medscan/medscan-golang/internal/models"
	"github.com/medscan/medscan-golang/internal/store"
)

func seedMedicine(t *testing.T, st *store.Store, name, price string, rx bool) *models.Medicine {
	t.Helper()
	m := &models.Medicine{
		Name:                 name,
		Slug:                 name,
		Letter:               name[:1],
		Manufacturer:         "Acme Pharma",
		Composition:          "Test compound",
		Price:                price,
		PrescriptionRequired: rx,
	}
	require.NoError(t, st.Medicines.Create(context.Background(), m))
	return m
}

func TestCartGetEmptyShape(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewCartService(st)

	cart, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, models.Money(0), cart.TotalAmount)
}

func TestCartAddAccumulatesQuantity(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewCartService(st)
	ctx := context.Background()
	med := seedMedicine(t, st, "Paracetamol", "₹45.00", false)

	_, err := svc.AddItem(ctx, 1, med.ID, 2)
	require.NoError(t, err)
	cart, err := svc.AddItem(ctx, 1, med.ID, 3)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, models.Money(4500*5), cart.TotalAmount)
}

func TestCartAddUnknownMedicine(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewCartService(st)

	_, err := svc.AddItem(context.Background(), 1, 404, 1)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCartTotalAcrossLines(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewCartService(st)
	ctx := context.Background()
	a := seedMedicine(t, st, "Aspirin", "₹10.50", false)
	b := seedMedicine(t, st, "Benadryl", "₹99.99", false)

	_, err := svc.AddItem(ctx, 1, a.ID, 2)
	require.NoError(t, err)
	cart, err := svc.AddItem(ctx, 1, b.ID, 1)
	require.NoError(t, err)

	assert.Equal(t, models.Money(1050*2+9999), cart.TotalAmount)
	assert.Equal(t, 3, cart.ItemCount())
}

func TestCartUpdateQuantityToZeroRemovesLine(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewCartService(st)
	ctx := context.Background()
	med := seedMedicine(t, st, "Cetirizine", "₹30.00", false)

	_, err := svc.AddItem(ctx, 1, med.ID, 2)
	require.NoError(t, err)

	cart, err := svc.UpdateQuantity(ctx, 1, med.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, models.Money(0), cart.TotalAmount)
}

func TestCartUpdateMissingLine(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewCartService(st)
	ctx := context.Background()
	med := seedMedicine(t, st, "Dolo", "₹25.00", false)

	_, err := svc.AddItem(ctx, 1, med.ID, 1)
	require.NoError(t, err)

	_, err = svc.UpdateQuantity(ctx, 1, med.ID+1, 2)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCartRemoveMissingLineIsNoop(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewCartService(st)
	ctx := context.Background()
	med := seedMedicine(t, st, "Eno", "₹15.00", false)

	_, err := svc.AddItem(ctx, 1, med.ID, 1)
	require.NoError(t, err)

	cart, err := svc.RemoveItem(ctx, 1, med.ID+99)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestCartPriceSnapshotFrozenAtAdd(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewCartService(st)
	ctx := context.Background()
	med := seedMedicine(t, st, "Fexofenadine", "₹100.00", false)

	cart, err := svc.AddItem(ctx, 1, med.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, models.Money(10000), cart.Items[0].Price)
	// The snapshot is taken once; the line keeps the price it was added at.
	assert.Equal(t, models.ParsePrice(med.Price), cart.Items[0].Price)
}

func TestCartsAreIsolatedPerUser(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewCartService(st)
	ctx := context.Background()
	med := seedMedicine(t, st, "Gelusil", "₹50.00", false)

	_, err := svc.AddItem(ctx, 1, med.ID, 2)
	require.NoError(t, err)

	other, err := svc.Get(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, other.Items)
}

// collidingCarts simulates two first-time adds racing on the cart row's
// unique key: the first insert loses with ErrDuplicate, and the winner's
// cart becomes visible on the next read.
type collidingCarts struct {
	store.CartRepository
	winnerItem models.CartItem
	collided   bool
	seeded     bool
}

func (c *collidingCarts) GetByUser(ctx context.Context, userID int64) (*models.Cart, error) {
	if c.collided && !c.seeded {
		c.seeded = true
		winner := &models.Cart{UserID: userID, Items: []models.CartItem{c.winnerItem}}
		winner.Recompute()
		if err := c.CartRepository.Save(ctx, winner); err != nil {
			return nil, err
		}
	}
	return c.CartRepository.GetByUser(ctx, userID)
}

func (c *collidingCarts) Save(ctx context.Context, cart *models.Cart) error {
	if cart.ID == 0 && !c.collided {
		c.collided = true
		return store.ErrDuplicate
	}
	return c.CartRepository.Save(ctx, cart)
}

func TestAddItemRetriesOnCartRowCollision(t *testing.T) {
	st := store.NewMemoryStore()
	med := seedMedicine(t, st, "Cetirizine", "₹30.00", false)

	racing := &collidingCarts{
		CartRepository: st.Carts,
		winnerItem: models.CartItem{
			MedicineID: med.ID,
			Quantity:   1,
			Price:      models.ParsePrice(med.Price),
		},
	}
	st.Carts = racing
	svc := NewCartService(st)

	cart, err := svc.AddItem(context.Background(), 1, med.ID, 2)
	require.NoError(t, err)
	require.True(t, racing.collided)

	// The retry lands on top of the winner's line instead of surfacing the
	// duplicate-key error.
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
}
