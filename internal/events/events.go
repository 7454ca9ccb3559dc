package events

import (
	"context"
	"time"

	"go.uber.org/zap"

	"storefront/internal/models"
)

const (
	TypeOrderPlaced        = "order.placed"
	TypeOrderStatusChanged = "order.status_changed"
)

// OrderEvent is published after an order write has committed.
type OrderEvent struct {
	Type           string             `json:"type"`
	OrderID        string             `json:"order_id"`
	UserID         string             `json:"user_id"`
	Status         models.OrderStatus `json:"status"`
	PreviousStatus models.OrderStatus `json:"previous_status,omitempty"`
	Total          models.Money       `json:"total"`
	Actor          models.Role        `json:"actor"`
	OccurredAt     time.Time          `json:"occurred_at"`
}

// OrderPlaced describes a freshly created order.
func OrderPlaced(order models.Order) OrderEvent {
	return OrderEvent{
		Type:       TypeOrderPlaced,
		OrderID:    order.ID,
		UserID:     order.UserID,
		Status:     order.Status,
		Total:      order.Total,
		Actor:      models.RoleCustomer,
		OccurredAt: order.CreatedAt,
	}
}

// StatusChanged describes a committed transition out of from.
func StatusChanged(order models.Order, from models.OrderStatus, actor models.Role) OrderEvent {
	return OrderEvent{
		Type:           TypeOrderStatusChanged,
		OrderID:        order.ID,
		UserID:         order.UserID,
		Status:         order.Status,
		PreviousStatus: from,
		Total:          order.Total,
		Actor:          actor,
		OccurredAt:     order.UpdatedAt,
	}
}

// Publisher delivers order events to whoever listens downstream.
type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
	Close() error
}

// LogPublisher only logs events. It is used when no broker is configured.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event OrderEvent) error {
	p.logger.Info("order event",
		zap.String("type", event.Type),
		zap.String("order_id", event.OrderID),
		zap.String("status", string(event.Status)),
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
