package calendar

import (
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"

	"schoolbook/pkg/model"
)

var stamp = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

func entries() []Entry {
	start := time.Date(2026, 10, 28, 10, 30, 0, 0, time.UTC)
	return []Entry{
		{
			Booking: model.Booking{
				ID: "booking1", EventID: "event1", ParentID: "parent1", ChildID: "child1", TeacherID: "teacher1",
				StartTime: start, EndTime: start.Add(30 * time.Minute), Status: model.BookingStatusConfirmed,
				CreatedAt: stamp,
			},
			EventTitle:  "Parent-Teacher Meetings",
			EventType:   "Parent-Teacher Meeting",
			ParentName:  "John Smith",
			ChildName:   "Alex Smith",
			TeacherName: "Mrs. Davis",
		},
		{
			Booking: model.Booking{
				ID: "booking9", EventID: "event2", TeacherID: "teacher2",
				StartTime: start.Add(-7 * 24 * time.Hour), EndTime: start.Add(-7*24*time.Hour + time.Hour),
				Status: model.BookingStatusCancelled,
			},
		},
	}
}

func TestExport_RoundTrip(t *testing.T) {
	out := Export("John Smith's bookings", entries(), stamp)

	cal, err := ics.ParseCalendar(strings.NewReader(out))
	if err != nil {
		t.Fatalf("ParseCalendar() error = %v\n%s", err, out)
	}

	events := cal.Events()
	if len(events) != 2 {
		t.Fatalf("len(Events()) = %d, want 2", len(events))
	}

	first := events[0]
	if first.Id() != "booking1@schoolbook" {
		t.Errorf("UID = %q", first.Id())
	}
	if got := first.GetProperty(ics.ComponentPropertySummary).Value; got != "Parent-Teacher Meetings with Mrs. Davis" {
		t.Errorf("SUMMARY = %q", got)
	}
	start, err := first.GetStartAt()
	if err != nil || !start.Equal(entries()[0].Booking.StartTime) {
		t.Errorf("DTSTART = %v (%v)", start, err)
	}
	end, err := first.GetEndAt()
	if err != nil || end.Sub(start) != 30*time.Minute {
		t.Errorf("DTEND = %v (%v)", end, err)
	}
	if got := first.GetProperty(ics.ComponentPropertyStatus).Value; got != string(ics.ObjectStatusConfirmed) {
		t.Errorf("STATUS = %q", got)
	}

	second := events[1]
	if got := second.GetProperty(ics.ComponentPropertySummary).Value; got != "event2" {
		t.Errorf("SUMMARY without names = %q", got)
	}
	if got := second.GetProperty(ics.ComponentPropertyStatus).Value; got != string(ics.ObjectStatusCancelled) {
		t.Errorf("STATUS = %q", got)
	}
}

func TestExport_Deterministic(t *testing.T) {
	if Export("x", entries(), stamp) != Export("x", entries(), stamp) {
		t.Error("Export() is not deterministic for a fixed stamp")
	}
}

func TestExport_Empty(t *testing.T) {
	out := Export("empty", nil, stamp)
	if !strings.Contains(out, "BEGIN:VCALENDAR") || strings.Contains(out, "BEGIN:VEVENT") {
		t.Errorf("Export(nil) = %q", out)
	}
	if !strings.Contains(out, "X-WR-CALNAME:empty") {
		t.Errorf("calendar name missing: %q", out)
	}
}
