package catalog

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"schoolbook/pkg/model"
	"schoolbook/pkg/sanitizer"
)

const yamlDateLayout = "2006-01-02"

type yamlFile struct {
	Users    []model.User  `yaml:"users"`
	Children []model.Child `yaml:"children"`
	Events   []yamlEvent   `yaml:"events"`
	Bookings []yamlBooking `yaml:"bookings"`
}

type yamlEvent struct {
	ID          string         `yaml:"id"`
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Type        string         `yaml:"type"`
	Date        string         `yaml:"date"`
	SlotRules   []yamlSlotRule `yaml:"slot_rules"`
	Slots       []yamlSlot     `yaml:"slots"`
}

type yamlSlotRule struct {
	Teachers    []string `yaml:"teachers"`
	StartHour   int      `yaml:"start_hour"`
	EndHour     int      `yaml:"end_hour"`
	StepMinutes int      `yaml:"step_minutes"`
}

type yamlSlot struct {
	TeacherID string `yaml:"teacher_id"`
	StartTime string `yaml:"start_time"`
}

type yamlBooking struct {
	ID        string `yaml:"id"`
	EventID   string `yaml:"event_id"`
	ParentID  string `yaml:"parent_id"`
	ChildID   string `yaml:"child_id"`
	TeacherID string `yaml:"teacher_id"`
	StartTime string `yaml:"start_time"`
	EndTime   string `yaml:"end_time"`
	Status    string `yaml:"status"`
	CreatedAt string `yaml:"created_at"`
}

// LoadYAML reads a catalog file. Dates without a zone are interpreted in loc.
func LoadYAML(path string, loc *time.Location) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return ParseYAML(bytes.NewReader(data), loc)
}

func ParseYAML(r io.Reader, loc *time.Location) (*Catalog, error) {
	if loc == nil {
		loc = time.UTC
	}

	var file yamlFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	for i := range file.Users {
		sanitizer.SanitizeUser(&file.Users[i])
	}
	for i := range file.Children {
		sanitizer.SanitizeChild(&file.Children[i])
	}

	events := make([]model.Event, 0, len(file.Events))
	for _, ye := range file.Events {
		e, err := ye.toModel(loc)
		if err != nil {
			return nil, fmt.Errorf("%w: event %q: %v", ErrInvalidCatalog, ye.ID, err)
		}
		sanitizer.SanitizeEvent(&e)
		events = append(events, e)
	}

	bookings := make([]model.Booking, 0, len(file.Bookings))
	for _, yb := range file.Bookings {
		b, err := yb.toModel(loc)
		if err != nil {
			return nil, fmt.Errorf("%w: booking %q: %v", ErrInvalidCatalog, yb.ID, err)
		}
		bookings = append(bookings, b)
	}

	return New(file.Users, file.Children, events, bookings)
}

func (ye yamlEvent) toModel(loc *time.Location) (model.Event, error) {
	eventType, err := model.ParseEventType(ye.Type)
	if err != nil {
		return model.Event{}, err
	}
	date, err := time.ParseInLocation(yamlDateLayout, ye.Date, loc)
	if err != nil {
		return model.Event{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", ye.Date)
	}

	e := model.Event{
		ID:          ye.ID,
		Title:       ye.Title,
		Description: ye.Description,
		Date:        date,
		Type:        eventType,
	}
	for _, rule := range ye.SlotRules {
		if rule.StepMinutes <= 0 || rule.EndHour <= rule.StartHour || rule.StartHour < 0 || rule.EndHour > 24 {
			return model.Event{}, fmt.Errorf("invalid slot rule %d-%d every %d minutes", rule.StartHour, rule.EndHour, rule.StepMinutes)
		}
		e.Slots = append(e.Slots, GenerateSlots(date, rule.Teachers, rule.StartHour, rule.EndHour, time.Duration(rule.StepMinutes)*time.Minute, loc)...)
	}
	for _, ys := range ye.Slots {
		start, err := parseInstant(ys.StartTime, loc)
		if err != nil {
			return model.Event{}, err
		}
		e.Slots = append(e.Slots, model.TimeSlot{TeacherID: ys.TeacherID, StartTime: start})
	}
	return e, nil
}

func (yb yamlBooking) toModel(loc *time.Location) (model.Booking, error) {
	start, err := parseInstant(yb.StartTime, loc)
	if err != nil {
		return model.Booking{}, err
	}
	var end time.Time
	if yb.EndTime != "" {
		if end, err = parseInstant(yb.EndTime, loc); err != nil {
			return model.Booking{}, err
		}
	}

	b := model.Booking{
		ID:        sanitizer.SanitizeID(yb.ID),
		EventID:   sanitizer.SanitizeID(yb.EventID),
		ParentID:  sanitizer.SanitizeID(yb.ParentID),
		ChildID:   sanitizer.SanitizeID(yb.ChildID),
		TeacherID: sanitizer.SanitizeID(yb.TeacherID),
		StartTime: start,
		EndTime:   end,
		Status:    model.BookingStatus(yb.Status),
	}
	if b.Status == "" {
		b.Status = model.BookingStatusConfirmed
	}
	if yb.CreatedAt != "" {
		if b.CreatedAt, err = parseInstant(yb.CreatedAt, loc); err != nil {
			return model.Booking{}, err
		}
	}
	return b, nil
}

// parseInstant accepts RFC 3339, or a zone-less "YYYY-MM-DDTHH:MM" in loc.
func parseInstant(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q", s)
}
