package service

import (
	"context"
	"time"
)

// Event types published after a user change is stored
const (
	EventActivityCompleted   = "activity.completed"
	EventPackPurchased       = "pack.purchased"
	EventSubscriptionChanged = "subscription.changed"
)

// DomainEvent is a user change announced to downstream consumers such as analytics and email.
type DomainEvent struct {
	RequestID  string            `json:"request_id,omitempty"` // For distributed tracing
	EventID    string            `json:"event_id"`
	Type       string            `json:"type"`
	UserID     string            `json:"user_id"`
	OccurredAt time.Time         `json:"occurred_at"`
	Data       map[string]string `json:"data,omitempty"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// Publish delivers one event. It returns once the broker has accepted it.
	Publish(ctx context.Context, event *DomainEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
