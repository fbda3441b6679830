package model

import (
	"time"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusMissed    BookingStatus = "missed"
)

type Booking struct {
	ID        string        `json:"id" bson:"_id" yaml:"id"`
	EventID   string        `json:"event_id" bson:"event_id" yaml:"event_id"`
	ParentID  string        `json:"parent_id" bson:"parent_id" yaml:"parent_id"`
	ChildID   string        `json:"child_id" bson:"child_id" yaml:"child_id"`
	TeacherID string        `json:"teacher_id" bson:"teacher_id" yaml:"teacher_id"`
	StartTime time.Time     `json:"start_time" bson:"start_time" yaml:"start_time"`
	EndTime   time.Time     `json:"end_time" bson:"end_time" yaml:"end_time"`
	Status    BookingStatus `json:"status" bson:"status" yaml:"status"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at" yaml:"created_at,omitempty"`
}

// Valid reports whether s is one of the known statuses.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusConfirmed, BookingStatusPending, BookingStatusCancelled, BookingStatusMissed:
		return true
	}
	return false
}

func (b *Booking) IsConfirmed() bool {
	return b.Status == BookingStatusConfirmed
}

func (b *Booking) Slot() TimeSlot {
	return TimeSlot{TeacherID: b.TeacherID, StartTime: b.StartTime}
}

// BookingRequest is what a parent submits to reserve a slot.
type BookingRequest struct {
	EventID   string    `json:"event_id" validate:"required,min=1,max=64,entity_id"`
	ChildID   string    `json:"child_id" validate:"required,min=1,max=64,entity_id"`
	TeacherID string    `json:"teacher_id" validate:"required,min=1,max=64,entity_id"`
	StartTime time.Time `json:"start_time" validate:"required"`
}
