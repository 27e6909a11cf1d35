package events

import (
	"context"
	"time"

	"afrilink/internal/domain"
)

const (
	EventProductCreated       = "product_created"
	EventProductStatusChanged = "product_status_changed"
)

// Message is the envelope written to the topic.
type Message struct {
	EventType string      `json:"event_type"`
	Data      interface{} `json:"data"`
}

// StatusChanged is emitted after a transition has been stored.
type StatusChanged struct {
	ProductID    string               `json:"product_id"`
	VendorID     string               `json:"vendor_id"`
	ProductTitle string               `json:"product_title"`
	Action       domain.Action        `json:"action"`
	From         domain.ProductStatus `json:"from"`
	To           domain.ProductStatus `json:"to"`
	ActorID      string               `json:"actor_id"`
	ActorRole    domain.Role          `json:"actor_role"`
	OccurredAt   time.Time            `json:"occurred_at"`
}

// Publisher delivers events to downstream consumers. Key is the partitioning key.
type Publisher interface {
	Publish(ctx context.Context, key, eventType string, data interface{}) error
}

// Nop publisher for runs without a broker
type Nop struct{}

func (Nop) Publish(ctx context.Context, key, eventType string, data interface{}) error {
	return nil
}
