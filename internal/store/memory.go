package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/medscan/medscan-golang/internal/models"
)

// memoryStore is the in-memory Store used by unit tests. A write
// transaction is the global write lock, which gives the same all-or-nothing
// visibility the MySQL transactions provide.
type memoryStore struct {
	mu sync.RWMutex

	nextMedicineID     int64
	nextCartID         int64
	nextCartItemID     int64
	nextOrderID        int64
	nextOrderItemID    int64
	nextNotificationID int64
	nextUserID         int64

	medicines     map[int64]models.Medicine
	cartsByUser   map[int64]models.Cart
	orders        map[int64]models.Order
	orderNumbers  map[string]int64
	notifications map[int64]models.Notification
	users         map[int64]models.User
	usersByEmail  map[string]int64
}

// NewMemoryStore wires the in-memory repositories.
func NewMemoryStore() *Store {
	m := &memoryStore{
		nextMedicineID:     1,
		nextCartID:         1,
		nextCartItemID:     1,
		nextOrderID:        1,
		nextOrderItemID:    1,
		nextNotificationID: 1,
		nextUserID:         1,
		medicines:          make(map[int64]models.Medicine),
		cartsByUser:        make(map[int64]models.Cart),
		orders:             make(map[int64]models.Order),
		orderNumbers:       make(map[string]int64),
		notifications:      make(map[int64]models.Notification),
		users:              make(map[int64]models.User),
		usersByEmail:       make(map[string]int64),
	}
	return &Store{
		Medicines:     &memMedicines{m},
		Carts:         &memCarts{m},
		Orders:        &memOrders{m},
		Notifications: &memNotifications{m},
		Users:         &memUsers{m},
		Tx:            m,
	}
}

type memTxKey struct{}

func inMemTx(ctx context.Context) bool {
	v, ok := ctx.Value(memTxKey{}).(bool)
	return ok && v
}

// lock helpers skip locking when ctx is inside a transaction, which already
// holds the write lock.
func (m *memoryStore) rlock(ctx context.Context) {
	if !inMemTx(ctx) {
		m.mu.RLock()
	}
}

func (m *memoryStore) runlock(ctx context.Context) {
	if !inMemTx(ctx) {
		m.mu.RUnlock()
	}
}

func (m *memoryStore) wlock(ctx context.Context) {
	if !inMemTx(ctx) {
		m.mu.Lock()
	}
}

func (m *memoryStore) wunlock(ctx context.Context) {
	if !inMemTx(ctx) {
		m.mu.Unlock()
	}
}

// memSnapshot is the pre-transaction state kept for rollback.
type memSnapshot struct {
	nextMedicineID     int64
	nextCartID         int64
	nextCartItemID     int64
	nextOrderID        int64
	nextOrderItemID    int64
	nextNotificationID int64
	nextUserID         int64

	medicines     map[int64]models.Medicine
	cartsByUser   map[int64]models.Cart
	orders        map[int64]models.Order
	orderNumbers  map[string]int64
	notifications map[int64]models.Notification
	users         map[int64]models.User
	usersByEmail  map[string]int64
}

// snapshot copies everything a transaction can touch. Carts and orders carry
// item slices, so those are cloned rather than aliased.
func (m *memoryStore) snapshot() *memSnapshot {
	s := &memSnapshot{
		nextMedicineID:     m.nextMedicineID,
		nextCartID:         m.nextCartID,
		nextCartItemID:     m.nextCartItemID,
		nextOrderID:        m.nextOrderID,
		nextOrderItemID:    m.nextOrderItemID,
		nextNotificationID: m.nextNotificationID,
		nextUserID:         m.nextUserID,
		medicines:          make(map[int64]models.Medicine, len(m.medicines)),
		cartsByUser:        make(map[int64]models.Cart, len(m.cartsByUser)),
		orders:             make(map[int64]models.Order, len(m.orders)),
		orderNumbers:       make(map[string]int64, len(m.orderNumbers)),
		notifications:      make(map[int64]models.Notification, len(m.notifications)),
		users:              make(map[int64]models.User, len(m.users)),
		usersByEmail:       make(map[string]int64, len(m.usersByEmail)),
	}
	for id, med := range m.medicines {
		s.medicines[id] = med
	}
	for userID, cart := range m.cartsByUser {
		s.cartsByUser[userID] = copyCart(cart)
	}
	for id, o := range m.orders {
		s.orders[id] = copyOrder(o)
	}
	for number, id := range m.orderNumbers {
		s.orderNumbers[number] = id
	}
	for id, n := range m.notifications {
		s.notifications[id] = n
	}
	for id, u := range m.users {
		s.users[id] = u
	}
	for email, id := range m.usersByEmail {
		s.usersByEmail[email] = id
	}
	return s
}

func (m *memoryStore) restore(s *memSnapshot) {
	m.nextMedicineID = s.nextMedicineID
	m.nextCartID = s.nextCartID
	m.nextCartItemID = s.nextCartItemID
	m.nextOrderID = s.nextOrderID
	m.nextOrderItemID = s.nextOrderItemID
	m.nextNotificationID = s.nextNotificationID
	m.nextUserID = s.nextUserID
	m.medicines = s.medicines
	m.cartsByUser = s.cartsByUser
	m.orders = s.orders
	m.orderNumbers = s.orderNumbers
	m.notifications = s.notifications
	m.users = s.users
	m.usersByEmail = s.usersByEmail
}

// WithTransaction serializes writers behind the global write lock and rolls
// the maps back to their pre-transaction state when fn fails, matching the
// all-or-nothing semantics of the SQL transactions it stands in for.
func (m *memoryStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inMemTx(ctx) {
		return fn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot()
	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

func containsIgnoreCase(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func paginate[T any](items []T, page, limit int) []T {
	start := (page - 1) * limit
	if start < 0 || start >= len(items) {
		return nil
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

//
// --- Medicines ---
//

type memMedicines struct {
	m *memoryStore
}

func (r *memMedicines) Create(ctx context.Context, med *models.Medicine) error {
	m := r.m
	m.wlock(ctx)
	defer m.wunlock(ctx)

	for _, existing := range m.medicines {
		if existing.Slug == med.Slug {
			return ErrDuplicate
		}
	}

	now := time.Now()
	med.ID = m.nextMedicineID
	m.nextMedicineID++
	med.CreatedAt = now
	med.UpdatedAt = now
	if med.ScrapedAt.IsZero() {
		med.ScrapedAt = now
	}
	m.medicines[med.ID] = *med
	return nil
}

func (r *memMedicines) GetByID(ctx context.Context, id int64) (*models.Medicine, error) {
	m := r.m
	m.rlock(ctx)
	defer m.runlock(ctx)

	med, ok := m.medicines[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &med, nil
}

func (r *memMedicines) List(ctx context.Context, f MedicineFilter) ([]models.Medicine, int, error) {
	m := r.m
	m.rlock(ctx)
	defer m.runlock(ctx)

	var matched []models.Medicine
	for _, med := range m.medicines {
		if f.Search != "" &&
			!containsIgnoreCase(med.Name, f.Search) &&
			!containsIgnoreCase(med.Composition, f.Search) &&
			!containsIgnoreCase(med.Manufacturer, f.Search) {
			continue
		}
		if f.Letter != "" && med.Letter != f.Letter {
			continue
		}
		if f.PrescriptionRequired != nil && med.PrescriptionRequired != *f.PrescriptionRequired {
			continue
		}
		matched = append(matched, med)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })
	return paginate(matched, f.Page, f.Limit), len(matched), nil
}

func (r *memMedicines) Stats(ctx context.Context) (*models.MedicineStats, error) {
	m := r.m
	m.rlock(ctx)
	defer m.runlock(ctx)

	var stats models.MedicineStats
	byLetter := make(map[string]*models.LetterStat)
	for _, med := range m.medicines {
		stats.TotalMedicines++
		if med.PrescriptionRequired {
			stats.PrescriptionRequired++
		}
		ls, ok := byLetter[med.Letter]
		if !ok {
			ls = &models.LetterStat{Letter: med.Letter}
			byLetter[med.Letter] = ls
		}
		ls.Count++
		if med.PrescriptionRequired {
			ls.PrescriptionCount++
		}
	}
	stats.OTCMedicines = stats.TotalMedicines - stats.PrescriptionRequired

	for _, ls := range byLetter {
		stats.LetterStats = append(stats.LetterStats, *ls)
	}
	sort.Slice(stats.LetterStats, func(i, j int) bool {
		return stats.LetterStats[i].Letter < stats.LetterStats[j].Letter
	})
	return &stats, nil
}

//
// --- Carts ---
//

type memCarts struct {
	m *memoryStore
}

func copyCart(c models.Cart) models.Cart {
	items := make([]models.CartItem, len(c.Items))
	copy(items, c.Items)
	for i := range items {
		if items[i].Medicine != nil {
			med := *items[i].Medicine
			items[i].Medicine = &med
		}
	}
	c.Items = items
	return c
}

func (r *memCarts) GetByUser(ctx context.Context, userID int64) (*models.Cart, error) {
	m := r.m
	m.rlock(ctx)
	defer m.runlock(ctx)

	c, ok := m.cartsByUser[userID]
	if !ok {
		return nil, ErrNotFound
	}
	out := copyCart(c)
	for i := range out.Items {
		if med, ok := m.medicines[out.Items[i].MedicineID]; ok {
			medCopy := med
			out.Items[i].Medicine = &medCopy
		}
	}
	return &out, nil
}

func (r *memCarts) Save(ctx context.Context, cart *models.Cart) error {
	m := r.m
	m.wlock(ctx)
	defer m.wunlock(ctx)

	now := time.Now()
	if cart.ID == 0 {
		cart.ID = m.nextCartID
		m.nextCartID++
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now
	for i := range cart.Items {
		item := &cart.Items[i]
		item.CartID = cart.ID
		if item.ID == 0 {
			item.ID = m.nextCartItemID
			m.nextCartItemID++
			item.CreatedAt = now
		}
		item.UpdatedAt = now
	}
	m.cartsByUser[cart.UserID] = copyCart(*cart)
	return nil
}

func (r *memCarts) DeleteByUser(ctx context.Context, userID int64) error {
	m := r.m
	m.wlock(ctx)
	defer m.wunlock(ctx)

	delete(m.cartsByUser, userID)
	return nil
}

//
// --- Orders ---
//

type memOrders struct {
	m *memoryStore
}

func copyOrder(o models.Order) models.Order {
	items := make([]models.OrderItem, len(o.Items))
	copy(items, o.Items)
	for i := range items {
		if items[i].Medicine != nil {
			med := *items[i].Medicine
			items[i].Medicine = &med
		}
	}
	o.Items = items
	return o
}

func (r *memOrders) Create(ctx context.Context, o *models.Order) error {
	m := r.m
	m.wlock(ctx)
	defer m.wunlock(ctx)

	if _, exists := m.orderNumbers[o.OrderNumber]; exists {
		return ErrDuplicate
	}

	now := time.Now()
	o.ID = m.nextOrderID
	m.nextOrderID++
	o.CreatedAt = now
	o.UpdatedAt = now
	for i := range o.Items {
		item := &o.Items[i]
		item.ID = m.nextOrderItemID
		m.nextOrderItemID++
		item.OrderID = o.ID
	}
	m.orders[o.ID] = copyOrder(*o)
	m.orderNumbers[o.OrderNumber] = o.ID
	return nil
}

func (r *memOrders) getLocked(id int64) (*models.Order, error) {
	o, ok := r.m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := copyOrder(o)
	for i := range out.Items {
		if med, ok := r.m.medicines[out.Items[i].MedicineID]; ok {
			medCopy := med
			out.Items[i].Medicine = &medCopy
		}
	}
	return &out, nil
}

func (r *memOrders) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	m := r.m
	m.rlock(ctx)
	defer m.runlock(ctx)
	return r.getLocked(id)
}

func (r *memOrders) listLocked(match func(models.Order) bool, page, limit int) ([]models.Order, int, error) {
	var matched []models.Order
	for _, o := range r.m.orders {
		if match(o) {
			matched = append(matched, copyOrder(o))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return paginate(matched, page, limit), len(matched), nil
}

func (r *memOrders) ListByUser(ctx context.Context, userID int64, page, limit int) ([]models.Order, int, error) {
	m := r.m
	m.rlock(ctx)
	defer m.runlock(ctx)
	return r.listLocked(func(o models.Order) bool { return o.UserID == userID }, page, limit)
}

func (r *memOrders) ListDeliveredByUser(ctx context.Context, userID int64, page, limit int) ([]models.Order, int, error) {
	m := r.m
	m.rlock(ctx)
	defer m.runlock(ctx)
	return r.listLocked(func(o models.Order) bool {
		return o.UserID == userID && o.Status == models.StatusDelivered
	}, page, limit)
}

func (r *memOrders) List(ctx context.Context, f OrderFilter) ([]models.Order, int, error) {
	m := r.m
	m.rlock(ctx)
	defer m.runlock(ctx)
	return r.listLocked(func(o models.Order) bool {
		return f.Status == "" || o.Status == f.Status
	}, f.Page, f.Limit)
}

func (r *memOrders) UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	m := r.m
	m.wlock(ctx)
	defer m.wunlock(ctx)

	o, ok := m.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	m.orders[id] = o
	return nil
}

//
// --- Notifications ---
//

type memNotifications struct {
	m *memoryStore
}

func (r *memNotifications) Create(ctx context.Context, n *models.Notification) error {
	m := r.m
	m.wlock(ctx)
	defer m.wunlock(ctx)

	n.ID = m.nextNotificationID
	m.nextNotificationID++
	n.CreatedAt = time.Now()
	m.notifications[n.ID] = *n
	return nil
}

func (r *memNotifications) ListByUser(ctx context.Context, userID int64, f NotificationFilter) ([]models.Notification, int, error) {
	m := r.m
	m.rlock(ctx)
	defer m.runlock(ctx)

	var matched []models.Notification
	for _, n := range m.notifications {
		if n.UserID != userID {
			continue
		}
		if f.Filter == "unread" && n.IsRead {
			continue
		}
		if f.Filter == "read" && !n.IsRead {
			continue
		}
		matched = append(matched, n)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return paginate(matched, f.Page, f.Limit), len(matched), nil
}

func (r *memNotifications) UnreadCount(ctx context.Context, userID int64) (int, error) {
	m := r.m
	m.rlock(ctx)
	defer m.runlock(ctx)

	count := 0
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *memNotifications) MarkRead(ctx context.Context, id, userID int64) (*models.Notification, error) {
	m := r.m
	m.wlock(ctx)
	defer m.wunlock(ctx)

	n, ok := m.notifications[id]
	if !ok || n.UserID != userID {
		return nil, ErrNotFound
	}
	if !n.IsRead {
		now := time.Now()
		n.IsRead = true
		n.ReadAt = &now
		m.notifications[id] = n
	}
	return &n, nil
}

func (r *memNotifications) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	m := r.m
	m.wlock(ctx)
	defer m.wunlock(ctx)

	now := time.Now()
	var modified int64
	for id, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &now
			m.notifications[id] = n
			modified++
		}
	}
	return modified, nil
}

func (r *memNotifications) Delete(ctx context.Context, id, userID int64) error {
	m := r.m
	m.wlock(ctx)
	defer m.wunlock(ctx)

	n, ok := m.notifications[id]
	if !ok || n.UserID != userID {
		return ErrNotFound
	}
	delete(m.notifications, id)
	return nil
}

//
// --- Users ---
//

type memUsers struct {
	m *memoryStore
}

func (r *memUsers) Create(ctx context.Context, u *models.User) error {
	m := r.m
	m.wlock(ctx)
	defer m.wunlock(ctx)

	if _, exists := m.usersByEmail[u.Email]; exists {
		return ErrDuplicate
	}

	now := time.Now()
	u.ID = m.nextUserID
	m.nextUserID++
	u.CreatedAt = now
	u.UpdatedAt = now
	m.users[u.ID] = *u
	m.usersByEmail[u.Email] = u.ID
	return nil
}

func (r *memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m := r.m
	m.rlock(ctx)
	defer m.runlock(ctx)

	id, ok := m.usersByEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	u := m.users[id]
	return &u, nil
}

func (r *memUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	m := r.m
	m.rlock(ctx)
	defer m.runlock(ctx)

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}
