package catalog

import (
	"time"

	"schoolbook/pkg/model"
)

// GenerateSlots offers, for every teacher in turn, one slot every step from
// startHour (inclusive) to endHour (exclusive) on date's calendar day in loc.
func GenerateSlots(date time.Time, teacherIDs []string, startHour, endHour int, step time.Duration, loc *time.Location) []model.TimeSlot {
	if step <= 0 || endHour <= startHour {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}

	y, m, d := date.In(loc).Date()
	var slots []model.TimeSlot
	for _, teacherID := range teacherIDs {
		end := time.Date(y, m, d, endHour, 0, 0, 0, loc)
		for cur := time.Date(y, m, d, startHour, 0, 0, 0, loc); cur.Before(end); cur = cur.Add(step) {
			slots = append(slots, model.TimeSlot{TeacherID: teacherID, StartTime: cur})
		}
	}
	return slots
}

// StartOfDay truncates t to midnight of its calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func at(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}
