package service

import (
	"time"

	"schoolbook/pkg/model"
)

// BookingView is a booking with the names a dashboard shows next to it.
type BookingView struct {
	model.Booking
	EventTitle  string `json:"event_title"`
	EventType   string `json:"event_type"`
	ParentName  string `json:"parent_name"`
	ChildName   string `json:"child_name"`
	TeacherName string `json:"teacher_name"`
	LocalStart  string `json:"local_start"`
}

type SlotView struct {
	model.TimeSlot
	TeacherName string `json:"teacher_name"`
	LocalStart  string `json:"local_start"`
}

type Stats struct {
	TotalBookings     int `json:"total_bookings"`
	ConfirmedBookings int `json:"confirmed_bookings"`
	RegisteredUsers   int `json:"registered_users"`
	ActiveEvents      int `json:"active_events"`
}

const localLayout = "Mon 2 Jan 2006 15:04"

func (s *bookingService) describe(b model.Booking) BookingView {
	view := BookingView{
		Booking:    b,
		LocalStart: s.local(b.StartTime),
	}
	if e, ok := s.catalog.Event(b.EventID); ok {
		view.EventTitle = e.Title
		view.EventType = e.Type.Label()
	}
	if u, ok := s.catalog.User(b.ParentID); ok {
		view.ParentName = u.Name
	}
	if c, ok := s.catalog.Child(b.ChildID); ok {
		view.ChildName = c.Name
	}
	if u, ok := s.catalog.User(b.TeacherID); ok {
		view.TeacherName = u.Name
	}
	return view
}

func (s *bookingService) describeAll(bookings []model.Booking) []BookingView {
	out := make([]BookingView, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, s.describe(b))
	}
	return out
}

func (s *bookingService) slotView(slot model.TimeSlot) SlotView {
	view := SlotView{TimeSlot: slot, LocalStart: s.local(slot.StartTime)}
	if u, ok := s.catalog.User(slot.TeacherID); ok {
		view.TeacherName = u.Name
	}
	return view
}

func (s *bookingService) local(t time.Time) string {
	return t.In(s.cfg.TimeLocation()).Format(localLayout)
}
