package model

import (
	"fmt"
	"strings"
	"time"
)

type EventType string

const (
	EventTypeOpenDay              EventType = "OpenDay"
	EventTypeParentTeacherMeeting EventType = "ParentTeacherMeeting"
	EventTypeSpecialActivity      EventType = "SpecialActivity"
)

var eventTypeLabels = map[EventType]string{
	EventTypeOpenDay:              "Open Day",
	EventTypeParentTeacherMeeting: "Parent-Teacher Meeting",
	EventTypeSpecialActivity:      "Special Activity",
}

// ParseEventType accepts both the enum name and the display label
// ("Open Day", "Parent-Teacher Meeting", "Special Activity").
func ParseEventType(s string) (EventType, error) {
	s = strings.TrimSpace(s)
	for t, label := range eventTypeLabels {
		if strings.EqualFold(s, string(t)) || strings.EqualFold(s, label) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown event type %q", s)
}

func (t EventType) Valid() bool {
	_, ok := eventTypeLabels[t]
	return ok
}

func (t EventType) Label() string {
	if label, ok := eventTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

// DurationTable maps an event type to the length of one booking, in minutes.
type DurationTable map[EventType]int

func DefaultDurationTable() DurationTable {
	return DurationTable{
		EventTypeOpenDay:              60,
		EventTypeParentTeacherMeeting: 30,
		EventTypeSpecialActivity:      30,
	}
}

// Duration returns the booking length for t. Types missing from the table
// fall back to the meeting length, matching the "Open Day or everything else" rule.
func (d DurationTable) Duration(t EventType) time.Duration {
	if minutes, ok := d[t]; ok {
		return time.Duration(minutes) * time.Minute
	}
	if minutes, ok := d[EventTypeParentTeacherMeeting]; ok {
		return time.Duration(minutes) * time.Minute
	}
	return 30 * time.Minute
}

type TimeSlot struct {
	TeacherID string    `json:"teacher_id" bson:"teacher_id" yaml:"teacher_id"`
	StartTime time.Time `json:"start_time" bson:"start_time" yaml:"start_time"`
}

// SlotKey identifies a bookable (teacher, start instant) pair.
type SlotKey struct {
	TeacherID string
	Start     int64
}

func (s TimeSlot) Key() SlotKey {
	return SlotKey{TeacherID: s.TeacherID, Start: s.StartTime.UnixNano()}
}

type Event struct {
	ID          string     `json:"id" bson:"_id"`
	Title       string     `json:"title" bson:"title"`
	Description string     `json:"description" bson:"description"`
	Date        time.Time  `json:"date" bson:"date"`
	Type        EventType  `json:"type" bson:"type"`
	Slots       []TimeSlot `json:"slots,omitempty" bson:"slots"`
}

// HasSlot reports whether slot is one of the event's offered slots.
func (e *Event) HasSlot(slot TimeSlot) bool {
	key := slot.Key()
	for _, s := range e.Slots {
		if s.Key() == key {
			return true
		}
	}
	return false
}

// EventSummary is an event without its slot list, used for listings.
type EventSummary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Type        EventType `json:"type"`
	TypeLabel   string    `json:"type_label"`
	SlotCount   int       `json:"slot_count"`
}

func (e *Event) Summary() EventSummary {
	return EventSummary{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		Type:        e.Type,
		TypeLabel:   e.Type.Label(),
		SlotCount:   len(e.Slots),
	}
}
