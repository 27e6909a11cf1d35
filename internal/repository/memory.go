package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"afrilink/internal/domain"
)

type productRow struct {
	seq int64
	p   domain.Product
}

type notificationRow struct {
	seq int64
	n   domain.Notification
}

// MemoryStore keeps products and notifications in memory behind one lock.
type MemoryStore struct {
	mu            sync.RWMutex
	seq           int64
	now           func() time.Time
	productsByID  map[string]productRow
	notifications map[string]notificationRow
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:           func() time.Time { return time.Now().UTC() },
		productsByID:  make(map[string]productRow),
		notifications: make(map[string]notificationRow),
	}
}

// WithClock replaces the time source used for created/updated timestamps.
func (m *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	m.now = now
	return m
}

// Ensure interfaces
var (
	_ ProductRepository      = (*MemoryStore)(nil)
	_ NotificationRepository = (*MemoryNotifications)(nil)
)

func copyProduct(p domain.Product) domain.Product {
	cp := p
	if p.Images != nil {
		cp.Images = append([]string(nil), p.Images...)
	}
	return cp
}

func copyNotification(n domain.Notification) domain.Notification {
	cp := n
	if n.Link != nil {
		link := *n.Link
		cp.Link = &link
	}
	return cp
}

func (m *MemoryStore) Create(ctx context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = m.now()
	}
	p.UpdatedAt = p.CreatedAt
	m.seq++
	m.productsByID[p.ID] = productRow{seq: m.seq, p: copyProduct(*p)}
	return nil
}

func (m *MemoryStore) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	row, ok := m.productsByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	// return copy
	cp := copyProduct(row.p)
	return &cp, nil
}

func (m *MemoryStore) List(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	m.mu.RLock()
	rows := make([]productRow, 0)
	for _, row := range m.productsByID {
		if f.match(row.p) {
			rows = append(rows, row)
		}
	}
	m.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.p.CreatedAt.Equal(b.p.CreatedAt) {
			return a.p.CreatedAt.After(b.p.CreatedAt)
		}
		return a.seq > b.seq
	})
	out := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, copyProduct(row.p))
	}
	return out, nil
}

func (m *MemoryStore) UpdateStatus(ctx context.Context, id string, from, to domain.ProductStatus) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.productsByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	if row.p.Status != from {
		return nil, ErrStatusConflict
	}
	row.p.Status = to
	row.p.UpdatedAt = m.now()
	m.productsByID[id] = row
	cp := copyProduct(row.p)
	return &cp, nil
}

// SetSales is used by seeding and tests; sales are recorded outside this service.
func (m *MemoryStore) SetSales(id string, sales int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.productsByID[id]
	if !ok {
		return ErrNotFound
	}
	row.p.Sales = sales
	m.productsByID[id] = row
	return nil
}

// MemoryNotifications NotificationRepository on top of the shared store
type MemoryNotifications struct{ store *MemoryStore }

func NewMemoryNotifications(store *MemoryStore) *MemoryNotifications {
	return &MemoryNotifications{store: store}
}

func (mn *MemoryNotifications) Create(ctx context.Context, n *domain.Notification) error {
	mn.store.mu.Lock()
	defer mn.store.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = mn.store.now()
	}
	mn.store.seq++
	mn.store.notifications[n.ID] = notificationRow{seq: mn.store.seq, n: copyNotification(*n)}
	return nil
}

// newest first; caller holds the lock
func (mn *MemoryNotifications) userRows(userID string) []notificationRow {
	rows := make([]notificationRow, 0)
	for _, row := range mn.store.notifications {
		if row.n.UserID == userID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.n.CreatedAt.Equal(b.n.CreatedAt) {
			return a.n.CreatedAt.After(b.n.CreatedAt)
		}
		return a.seq > b.seq
	})
	return rows
}

func (mn *MemoryNotifications) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	mn.store.mu.RLock()
	defer mn.store.mu.RUnlock()
	rows := mn.userRows(userID)
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	out := make([]domain.Notification, 0, len(rows))
	for _, row := range rows {
		out = append(out, copyNotification(row.n))
	}
	return out, nil
}

func (mn *MemoryNotifications) CountUnread(ctx context.Context, userID string) (int, error) {
	mn.store.mu.RLock()
	defer mn.store.mu.RUnlock()
	count := 0
	for _, row := range mn.store.notifications {
		if row.n.UserID == userID && !row.n.Read {
			count++
		}
	}
	return count, nil
}

func (mn *MemoryNotifications) MarkRead(ctx context.Context, userID, id string) (*domain.Notification, error) {
	mn.store.mu.Lock()
	defer mn.store.mu.Unlock()
	row, ok := mn.store.notifications[id]
	if !ok || row.n.UserID != userID {
		return nil, ErrNotFound
	}
	row.n.Read = true
	mn.store.notifications[id] = row
	n := copyNotification(row.n)
	return &n, nil
}

func (mn *MemoryNotifications) MarkAllRead(ctx context.Context, userID string) ([]domain.Notification, error) {
	mn.store.mu.Lock()
	defer mn.store.mu.Unlock()
	out := make([]domain.Notification, 0)
	for _, row := range mn.userRows(userID) {
		if row.n.Read {
			continue
		}
		row.n.Read = true
		mn.store.notifications[row.n.ID] = row
		out = append(out, copyNotification(row.n))
	}
	return out, nil
}

func (mn *MemoryNotifications) Delete(ctx context.Context, userID, id string) (*domain.Notification, error) {
	mn.store.mu.Lock()
	defer mn.store.mu.Unlock()
	row, ok := mn.store.notifications[id]
	if !ok || row.n.UserID != userID {
		return nil, ErrNotFound
	}
	delete(mn.store.notifications, id)
	n := copyNotification(row.n)
	return &n, nil
}

func (mn *MemoryNotifications) DeleteAll(ctx context.Context, userID string) ([]domain.Notification, error) {
	mn.store.mu.Lock()
	defer mn.store.mu.Unlock()
	out := make([]domain.Notification, 0)
	for _, row := range mn.userRows(userID) {
		delete(mn.store.notifications, row.n.ID)
		out = append(out, copyNotification(row.n))
	}
	return out, nil
}
