// Package calendar renders bookings as an iCalendar (RFC 5545) feed that
// parents and teachers can import into their own calendar apps.
package calendar

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"schoolbook/pkg/model"
)

const ProductID = "-//schoolbook//bookings//EN"

// Entry is one booking with the names shown in the calendar event.
type Entry struct {
	Booking     model.Booking
	EventTitle  string
	EventType   string
	ParentName  string
	ChildName   string
	TeacherName string
}

// Export builds a calendar named name. stamp is written as DTSTAMP on every
// event so repeated exports of the same ledger are byte-identical.
func Export(name string, entries []Entry, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(ProductID)
	cal.SetXWRCalName(name)

	for _, e := range entries {
		b := e.Booking
		ev := cal.AddEvent(UID(b.ID))
		ev.SetDtStampTime(stamp)
		if !b.CreatedAt.IsZero() {
			ev.SetCreatedTime(b.CreatedAt)
		}
		ev.SetStartAt(b.StartTime)
		ev.SetEndAt(b.EndTime)
		ev.SetSummary(summary(e))
		ev.SetDescription(description(e))
		ev.SetStatus(status(b.Status))
	}

	return cal.Serialize()
}

func UID(bookingID string) string {
	return bookingID + "@schoolbook"
}

func summary(e Entry) string {
	title := e.EventTitle
	if title == "" {
		title = e.Booking.EventID
	}
	if e.TeacherName == "" {
		return title
	}
	return fmt.Sprintf("%s with %s", title, e.TeacherName)
}

func description(e Entry) string {
	var lines []string
	if e.EventType != "" {
		lines = append(lines, "Type: "+e.EventType)
	}
	if e.ChildName != "" {
		lines = append(lines, "Child: "+e.ChildName)
	}
	if e.ParentName != "" {
		lines = append(lines, "Parent: "+e.ParentName)
	}
	lines = append(lines, "Booking: "+e.Booking.ID)
	return strings.Join(lines, "\n")
}

func status(s model.BookingStatus) ics.ObjectStatus {
	switch s {
	case model.BookingStatusCancelled, model.BookingStatusMissed:
		return ics.ObjectStatusCancelled
	case model.BookingStatusPending:
		return ics.ObjectStatusTentative
	default:
		return ics.ObjectStatusConfirmed
	}
}
