package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"schoolbook/pkg/model"
)

var testBase = time.Date(2026, 10, 14, 8, 15, 0, 0, time.UTC)

func TestBuiltin(t *testing.T) {
	c, err := Builtin(testBase, time.UTC)
	if err != nil {
		t.Fatalf("Builtin() error = %v", err)
	}

	tests := []struct {
		eventID   string
		wantDate  time.Time
		wantType  model.EventType
		wantSlots int
	}{
		{"event1", time.Date(2026, 10, 28, 0, 0, 0, 0, time.UTC), model.EventTypeParentTeacherMeeting, 48},
		{"event2", time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC), model.EventTypeOpenDay, 10},
		{"event3", time.Date(2026, 11, 4, 0, 0, 0, 0, time.UTC), model.EventTypeSpecialActivity, 4},
	}
	for _, tt := range tests {
		t.Run(tt.eventID, func(t *testing.T) {
			e, ok := c.Event(tt.eventID)
			if !ok {
				t.Fatalf("event %s missing", tt.eventID)
			}
			if !e.Date.Equal(tt.wantDate) {
				t.Errorf("Date = %v, want %v", e.Date, tt.wantDate)
			}
			if e.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", e.Type, tt.wantType)
			}
			if len(e.Slots) != tt.wantSlots {
				t.Errorf("len(Slots) = %d, want %d", len(e.Slots), tt.wantSlots)
			}
		})
	}

	seeds := c.SeedBookings()
	if len(seeds) != 2 {
		t.Fatalf("len(SeedBookings) = %d, want 2", len(seeds))
	}
	ptm, _ := c.Event("event1")
	for _, b := range seeds {
		if !ptm.HasSlot(b.Slot()) {
			t.Errorf("seed %s is not on an offered slot", b.ID)
		}
	}

	if !c.ChildOf("parent1", "child2") {
		t.Error("child2 should belong to parent1")
	}
	if c.ChildOf("parent2", "child1") {
		t.Error("child1 should not belong to parent2")
	}
	if got := len(c.ChildrenOf("parent1")); got != 2 {
		t.Errorf("ChildrenOf(parent1) = %d children, want 2", got)
	}
}

func TestCatalog_RoleLookups(t *testing.T) {
	c, err := Builtin(testBase, time.UTC)
	if err != nil {
		t.Fatalf("Builtin() error = %v", err)
	}

	if _, ok := c.Parent("teacher1"); ok {
		t.Error("Parent(teacher1) should fail")
	}
	if _, ok := c.Teacher("teacher1"); !ok {
		t.Error("Teacher(teacher1) should succeed")
	}
	if _, ok := c.Teacher("admin1"); ok {
		t.Error("Teacher(admin1) should fail")
	}
	if _, ok := c.User("nobody"); ok {
		t.Error("User(nobody) should fail")
	}
}

func TestCatalog_ReturnsCopies(t *testing.T) {
	c, err := Builtin(testBase, time.UTC)
	if err != nil {
		t.Fatalf("Builtin() error = %v", err)
	}

	e, _ := c.Event("event1")
	e.Slots[0].TeacherID = "mutated"
	again, _ := c.Event("event1")
	if again.Slots[0].TeacherID == "mutated" {
		t.Error("mutating a returned event changed the catalog")
	}

	p, _ := c.Parent("parent1")
	p.ChildIDs[0] = "mutated"
	if !c.ChildOf("parent1", "child1") {
		t.Error("mutating a returned user changed the catalog")
	}
}

func TestNew_Rejects(t *testing.T) {
	teacher := model.User{ID: "t1", Role: model.RoleTeacher}
	parent := model.User{ID: "p1", Role: model.RoleParent, ChildIDs: []string{"c1"}}
	child := model.Child{ID: "c1"}
	slot := model.TimeSlot{TeacherID: "t1", StartTime: testBase}
	event := model.Event{ID: "e1", Type: model.EventTypeOpenDay, Slots: []model.TimeSlot{slot}}

	tests := []struct {
		name     string
		users    []model.User
		children []model.Child
		events   []model.Event
		seeds    []model.Booking
		wantMsg  string
	}{
		{
			name:    "duplicate user",
			users:   []model.User{teacher, teacher},
			wantMsg: "duplicate user",
		},
		{
			name:    "unknown child",
			users:   []model.User{parent},
			wantMsg: "unknown child",
		},
		{
			name:     "unknown role",
			users:    []model.User{{ID: "x", Role: "janitor"}},
			children: []model.Child{child},
			wantMsg:  "unknown role",
		},
		{
			name:     "slot with unknown teacher",
			users:    []model.User{parent},
			children: []model.Child{child},
			events:   []model.Event{event},
			wantMsg:  "unknown teacher",
		},
		{
			name:     "duplicate slot",
			users:    []model.User{teacher},
			events:   []model.Event{{ID: "e1", Type: model.EventTypeOpenDay, Slots: []model.TimeSlot{slot, slot}}},
			wantMsg:  "twice",
		},
		{
			name:    "unknown event type",
			users:   []model.User{teacher},
			events:  []model.Event{{ID: "e1", Type: "Concert"}},
			wantMsg: "unknown type",
		},
		{
			name:     "seed for someone else's child",
			users:    []model.User{teacher, parent, {ID: "p2", Role: model.RoleParent}},
			children: []model.Child{child},
			events:   []model.Event{event},
			seeds: []model.Booking{{
				ID: "b1", EventID: "e1", ParentID: "p2", ChildID: "c1", TeacherID: "t1",
				StartTime: testBase, EndTime: testBase.Add(time.Hour),
			}},
			wantMsg: "does not belong",
		},
		{
			name:     "seed with unknown status",
			users:    []model.User{teacher, parent},
			children: []model.Child{child},
			events:   []model.Event{event},
			seeds: []model.Booking{{
				ID: "b1", EventID: "e1", ParentID: "p1", ChildID: "c1", TeacherID: "t1",
				StartTime: testBase, Status: "bogus",
			}},
			wantMsg: "unknown status",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.users, tt.children, tt.events, tt.seeds)
			if err == nil {
				t.Fatal("New() expected error")
			}
			if !errors.Is(err, ErrInvalidCatalog) {
				t.Errorf("error %v does not wrap ErrInvalidCatalog", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestGenerateSlots(t *testing.T) {
	day := time.Date(2026, 10, 28, 0, 0, 0, 0, time.UTC)

	slots := GenerateSlots(day, []string{"a", "b"}, 11, 14, 45*time.Minute, time.UTC)
	var starts []string
	for _, s := range slots {
		if s.TeacherID == "a" {
			starts = append(starts, s.StartTime.Format("15:04"))
		}
	}
	if got, want := strings.Join(starts, ","), "11:00,11:45,12:30,13:15"; got != want {
		t.Errorf("starts = %s, want %s", got, want)
	}
	if len(slots) != 8 {
		t.Errorf("len(slots) = %d, want 8", len(slots))
	}
	if slots[0].TeacherID != "a" || slots[4].TeacherID != "b" {
		t.Error("slots should be grouped per teacher in argument order")
	}

	if got := GenerateSlots(day, []string{"a"}, 10, 10, time.Hour, time.UTC); got != nil {
		t.Errorf("empty window returned %d slots", len(got))
	}
	if got := GenerateSlots(day, []string{"a"}, 9, 10, 0, time.UTC); got != nil {
		t.Errorf("zero step returned %d slots", len(got))
	}
}

func TestGenerateSlots_Location(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	day := time.Date(2026, 10, 27, 23, 0, 0, 0, time.UTC) // already the 28th in loc

	slots := GenerateSlots(day, []string{"a"}, 9, 10, time.Hour, loc)
	if len(slots) != 1 {
		t.Fatalf("len(slots) = %d, want 1", len(slots))
	}
	want := time.Date(2026, 10, 28, 7, 0, 0, 0, time.UTC)
	if !slots[0].StartTime.Equal(want) {
		t.Errorf("StartTime = %v, want %v", slots[0].StartTime.UTC(), want)
	}
}

func TestLoadYAML(t *testing.T) {
	c, err := LoadYAML("testdata/school.yaml", time.UTC)
	if err != nil {
		t.Fatalf("LoadYAML() error = %v", err)
	}

	ptm, ok := c.Event("ptm")
	if !ok {
		t.Fatal("event ptm missing")
	}
	if ptm.Type != model.EventTypeParentTeacherMeeting {
		t.Errorf("Type = %v", ptm.Type)
	}
	if len(ptm.Slots) != 4 {
		t.Errorf("len(Slots) = %d, want 4", len(ptm.Slots))
	}

	open, _ := c.Event("open")
	if len(open.Slots) != 1 || open.Slots[0].StartTime.Hour() != 10 {
		t.Errorf("explicit slots not parsed: %+v", open.Slots)
	}

	seeds := c.SeedBookings()
	if len(seeds) != 1 || seeds[0].Status != model.BookingStatusConfirmed {
		t.Fatalf("seed bookings = %+v", seeds)
	}
	if !ptm.HasSlot(seeds[0].Slot()) {
		t.Error("seed booking should be on an offered slot")
	}
}

func TestParseYAML_Sanitizes(t *testing.T) {
	doc := `children:
  - id: " c1 "
    name: "  Mia   Brown "
users:
  - id: p1
    name: Sam Brown
    email: " Sam@Example.com"
    role: parent
    children: [c1, " c1"]
events:
  - id: e1
    title: "Open    Day"
    type: OpenDay
    date: 2026-11-02
`
	c, err := ParseYAML(strings.NewReader(doc), time.UTC)
	if err != nil {
		t.Fatalf("ParseYAML() error = %v", err)
	}
	child, ok := c.Child("c1")
	if !ok || child.Name != "Mia Brown" {
		t.Errorf("child = %+v, ok = %v", child, ok)
	}
	if u, _ := c.User("p1"); u.Email != "sam@example.com" || len(u.ChildIDs) != 1 {
		t.Errorf("user = %+v", u)
	}
	if e, _ := c.Event("e1"); e.Title != "Open Day" {
		t.Errorf("title = %q", e.Title)
	}
}

func TestParseYAML_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown field", "users:\n  - id: x\n    nickname: y\n"},
		{"bad event type", "events:\n  - id: e\n    type: Concert\n    date: 2026-11-02\n"},
		{"bad date", "events:\n  - id: e\n    type: OpenDay\n    date: 02/11/2026\n"},
		{"bad rule", "events:\n  - id: e\n    type: OpenDay\n    date: 2026-11-02\n    slot_rules:\n      - start_hour: 12\n        end_hour: 9\n        step_minutes: 30\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML(strings.NewReader(tt.doc), time.UTC)
			if !errors.Is(err, ErrInvalidCatalog) {
				t.Errorf("ParseYAML() error = %v, want ErrInvalidCatalog", err)
			}
		})
	}
}

func TestLoad_Sources(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := Load(ctx, Options{Source: SourceBuiltin, BaseDate: testBase}); err != nil {
		t.Errorf("builtin: %v", err)
	}
	if _, err := Load(ctx, Options{Source: SourceYAML, Path: "testdata/school.yaml"}); err != nil {
		t.Errorf("yaml: %v", err)
	}
	if _, err := Load(ctx, Options{Source: SourceMongo}); err == nil {
		t.Error("mongo without database should fail")
	}
	if _, err := Load(ctx, Options{Source: "ldap"}); err == nil {
		t.Error("unknown source should fail")
	}
}
