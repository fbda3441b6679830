// Package publisher announces accepted bookings to other services.
package publisher

import (
	"context"
	"fmt"

	"schoolbook/pkg/kafka"
	"schoolbook/pkg/model"
)

const (
	EventBookingConfirmed = "booking.confirmed"
	SchemaVersion         = "1"
	Source                = "schoolbook-bookings"
)

type BookingPublisher interface {
	BookingConfirmed(ctx context.Context, booking model.Booking, correlationID string) error
	Close() error
}

// BookingConfirmedEvent is the payload of EventBookingConfirmed.
type BookingConfirmedEvent struct {
	Booking         model.Booking `json:"booking"`
	EventTitle      string        `json:"event_title,omitempty"`
	DurationMinutes int           `json:"duration_minutes"`
}

type kafkaPublisher struct {
	producer kafka.Publisher
	titles   func(eventID string) string
}

// NewKafkaPublisher keys every message by parent id so one parent's bookings
// stay ordered on a single partition. titles may be nil.
func NewKafkaPublisher(producer kafka.Publisher, titles func(eventID string) string) BookingPublisher {
	return &kafkaPublisher{producer: producer, titles: titles}
}

func (p *kafkaPublisher) BookingConfirmed(ctx context.Context, booking model.Booking, correlationID string) error {
	payload := BookingConfirmedEvent{
		Booking:         booking,
		DurationMinutes: int(booking.EndTime.Sub(booking.StartTime).Minutes()),
	}
	if p.titles != nil {
		payload.EventTitle = p.titles(booking.EventID)
	}

	msg, err := kafka.NewMessage().
		WithKey(booking.ParentID).
		WithValue(payload).
		WithEventType(EventBookingConfirmed).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		WithCorrelationID(correlationID).
		Build()
	if err != nil {
		return fmt.Errorf("build %s message: %w", EventBookingConfirmed, err)
	}

	if err := p.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("publish %s for booking %s: %w", EventBookingConfirmed, booking.ID, err)
	}
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

type noopPublisher struct{}

// NewNoop is used when no brokers are configured.
func NewNoop() BookingPublisher {
	return noopPublisher{}
}

func (noopPublisher) BookingConfirmed(context.Context, model.Booking, string) error { return nil }

func (noopPublisher) Close() error { return nil }
