package repository

import (
	"context"
	"errors"
	"strings"

	"afrilink/internal/domain"
)

var (
	// ErrNotFound is returned when the entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrStatusConflict: the conditional update matched the id but not the expected status.
	ErrStatusConflict = errors.New("status conflict")
	// ErrStoreUnavailable wraps transport and driver failures.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ProductFilter narrows List. Zero values mean "any".
type ProductFilter struct {
	VendorID       string
	Status         domain.ProductStatus
	TitleSubstring string
	MinPrice       *int64
	MaxPrice       *int64
}

// ProductRepository stores products.
// List returns products ordered by creation time, newest first.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, f ProductFilter) ([]domain.Product, error)
	// UpdateStatus sets status to `to` only if the stored status equals `from`.
	UpdateStatus(ctx context.Context, id string, from, to domain.ProductStatus) (*domain.Product, error)
}

// NotificationRepository stores per-user notifications.
// Every call is scoped to userID; other users' rows behave as missing.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID, id string) (*domain.Notification, error)
	MarkAllRead(ctx context.Context, userID string) ([]domain.Notification, error)
	Delete(ctx context.Context, userID, id string) (*domain.Notification, error)
	DeleteAll(ctx context.Context, userID string) ([]domain.Notification, error)
}

func (f ProductFilter) match(p domain.Product) bool {
	if f.VendorID != "" && p.VendorID != f.VendorID {
		return false
	}
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if !containsIgnoreCase(p.Title, f.TitleSubstring) {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	return true
}

// helper: case-insensitive contains
func containsIgnoreCase(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
