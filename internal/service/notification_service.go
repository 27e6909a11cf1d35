package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"afrilink/internal/domain"
	"afrilink/internal/events"
	"afrilink/internal/repository"
)

const DefaultNotificationLimit = 20

// NotificationList is one page of notifications plus the unread count.
type NotificationList struct {
	Items  []domain.Notification `json:"items"`
	Unread int                   `json:"unread"`
}

// NotificationService stores user notifications and fans changes out to live subscribers.
type NotificationService struct {
	repo repository.NotificationRepository
	hub  *Hub
}

func NewNotificationService(repo repository.NotificationRepository, hub *Hub) *NotificationService {
	if hub == nil {
		hub = NewHub()
	}
	return &NotificationService{repo: repo, hub: hub}
}

func (s *NotificationService) List(ctx context.Context, userID string, limit int) (*NotificationList, error) {
	if userID == "" || limit < 0 {
		return nil, ErrInvalidInput
	}
	if limit == 0 {
		limit = DefaultNotificationLimit
	}
	items, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &NotificationList{Items: items, Unread: unread}, nil
}

// Notify stores a notification and pushes an INSERT change to the user's subscribers.
func (s *NotificationService) Notify(ctx context.Context, n domain.Notification) (*domain.Notification, error) {
	if n.UserID == "" || n.Title == "" {
		return nil, ErrInvalidInput
	}
	if n.Type == "" {
		n.Type = domain.NotificationInfo
	}
	n.Read = false
	if err := s.repo.Create(ctx, &n); err != nil {
		return nil, err
	}
	s.hub.Publish(domain.NotificationChange{Type: domain.ChangeInsert, Notification: n})
	return &n, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) (*domain.Notification, error) {
	n, err := s.repo.MarkRead(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	s.hub.Publish(domain.NotificationChange{Type: domain.ChangeUpdate, Notification: *n})
	return n, nil
}

// MarkAllRead returns how many notifications changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int, error) {
	changed, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	for _, n := range changed {
		s.hub.Publish(domain.NotificationChange{Type: domain.ChangeUpdate, Notification: n})
	}
	return len(changed), nil
}

func (s *NotificationService) Delete(ctx context.Context, userID, id string) error {
	n, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	s.hub.Publish(domain.NotificationChange{Type: domain.ChangeDelete, Notification: *n})
	return nil
}

// ClearAll returns how many notifications were deleted.
func (s *NotificationService) ClearAll(ctx context.Context, userID string) (int, error) {
	deleted, err := s.repo.DeleteAll(ctx, userID)
	if err != nil {
		return 0, err
	}
	for _, n := range deleted {
		s.hub.Publish(domain.NotificationChange{Type: domain.ChangeDelete, Notification: n})
	}
	return len(deleted), nil
}

func (s *NotificationService) Subscribe(userID string) (<-chan domain.NotificationChange, func()) {
	return s.hub.Subscribe(userID)
}

// ProductStatusChanged turns a lifecycle event into a notification for the vendor.
func (s *NotificationService) ProductStatusChanged(ctx context.Context, ev events.StatusChanged) error {
	n, ok := vendorNotification(ev)
	if !ok {
		return nil
	}
	if _, err := s.Notify(ctx, n); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "ProductStatusChanged").Str("product_id", ev.ProductID).Msg("")
		return err
	}
	return nil
}

func vendorNotification(ev events.StatusChanged) (domain.Notification, bool) {
	link := "/vendor/products/" + ev.ProductID
	n := domain.Notification{UserID: ev.VendorID, Link: &link}
	switch ev.Action {
	case domain.ActionApprove:
		n.Type = domain.NotificationSuccess
		n.Title = "Product approved"
		n.Message = fmt.Sprintf("%q is now live on the marketplace.", ev.ProductTitle)
	case domain.ActionReject:
		n.Type = domain.NotificationError
		n.Title = "Product rejected"
		n.Message = fmt.Sprintf("%q was not approved by the moderators.", ev.ProductTitle)
	case domain.ActionRequestTakedown:
		n.Type = domain.NotificationInfo
		n.Title = "Takedown requested"
		n.Message = fmt.Sprintf("Your takedown request for %q is awaiting review.", ev.ProductTitle)
	case domain.ActionApproveTakedown:
		n.Type = domain.NotificationWarning
		n.Title = "Product taken down"
		n.Message = fmt.Sprintf("%q has been removed from the marketplace.", ev.ProductTitle)
	case domain.ActionRejectTakedown:
		n.Type = domain.NotificationInfo
		n.Title = "Takedown request declined"
		n.Message = fmt.Sprintf("%q stays live on the marketplace.", ev.ProductTitle)
	default:
		return domain.Notification{}, false
	}
	return n, true
}
