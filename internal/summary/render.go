// Package summary turns the school's events and bookings into text and asks
// a language model to summarize it for administrators.
package summary

import (
	"fmt"
	"strings"
	"time"

	"schoolbook/pkg/model"
)

const timeLayout = "2/1/2006, 15:04:05"

// Render writes the totals followed by one line per booking. Names that do
// not resolve are written as "unknown".
func Render(events []model.Event, bookings []model.Booking, users []model.User, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}

	titles := make(map[string]string, len(events))
	for _, e := range events {
		titles[e.ID] = e.Title
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Total Events: %d\n", len(events))
	fmt.Fprintf(&sb, "Total Bookings: %d\n", len(bookings))
	fmt.Fprintf(&sb, "Total Users: %d\n", len(users))
	sb.WriteString("\nDetailed Bookings:\n")

	for _, b := range bookings {
		fmt.Fprintf(&sb, "- Event: %s, Parent: %s, Teacher: %s, Time: %s, Status: %s\n",
			lookup(titles, b.EventID),
			lookup(names, b.ParentID),
			lookup(names, b.TeacherID),
			b.StartTime.In(loc).Format(timeLayout),
			b.Status,
		)
	}
	return sb.String()
}

func lookup(m map[string]string, id string) string {
	if v, ok := m[id]; ok && v != "" {
		return v
	}
	return "unknown"
}

const promptTemplate = `You are an administrator tasked with summarizing event data. Analyze the provided event data and generate a concise summary, highlighting key metrics such as attendance rates, peak booking times, and any notable trends. Use clear and straightforward language.

Event Data: %s`

func BuildPrompt(eventData string) string {
	return fmt.Sprintf(promptTemplate, eventData)
}
