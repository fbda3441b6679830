package summary

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"schoolbook/internal/catalog"
	apperrors "schoolbook/pkg/errors"
	"schoolbook/pkg/logger"
	"schoolbook/pkg/model"
)

type mockGenerator struct {
	generateFunc func(ctx context.Context, prompt string) (string, error)
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return m.generateFunc(ctx, prompt)
}

type staticBookings []model.Booking

func (s staticBookings) All() []model.Booking { return s }

var base = time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)

func builtin(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Builtin(base, time.UTC)
	if err != nil {
		t.Fatalf("Builtin() error = %v", err)
	}
	return c
}

func TestRender(t *testing.T) {
	c := builtin(t)
	bookings := c.SeedBookings()
	bookings = append(bookings, model.Booking{
		ID: "x", EventID: "gone", ParentID: "nobody", TeacherID: "teacher3",
		StartTime: time.Date(2026, 11, 4, 11, 0, 0, 0, time.UTC), Status: model.BookingStatusCancelled,
	})

	got := Render(c.Events(), bookings, c.Users(), time.UTC)
	want := `Total Events: 3
Total Bookings: 3
Total Users: 6

Detailed Bookings:
- Event: Parent-Teacher Meetings, Parent: John Smith, Teacher: Mrs. Davis, Time: 28/10/2026, 10:30:00, Status: confirmed
- Event: Parent-Teacher Meetings, Parent: Emily Johnson, Teacher: Mr. Wilson, Time: 28/10/2026, 14:00:00, Status: confirmed
- Event: unknown, Parent: unknown, Teacher: Ms. Taylor, Time: 4/11/2026, 11:00:00, Status: cancelled
`
	if got != want {
		t.Errorf("Render() =\n%s\nwant\n%s", got, want)
	}
}

func TestRender_Location(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	b := model.Booking{StartTime: time.Date(2026, 10, 28, 23, 30, 0, 0, time.UTC), Status: model.BookingStatusConfirmed}

	got := Render(nil, []model.Booking{b}, nil, loc)
	if !strings.Contains(got, "Time: 29/10/2026, 01:30:00") {
		t.Errorf("Render() did not use the location:\n%s", got)
	}
}

func TestBuildPrompt(t *testing.T) {
	got := BuildPrompt("Total Events: 1")
	if !strings.HasPrefix(got, "You are an administrator tasked with summarizing event data.") {
		t.Errorf("prompt prefix = %q", got)
	}
	if !strings.HasSuffix(got, "\n\nEvent Data: Total Events: 1") {
		t.Errorf("prompt suffix = %q", got)
	}
	for _, want := range []string{"attendance rates", "peak booking times", "notable trends"} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt does not ask for %q", want)
		}
	}
}

func admin(t *testing.T, c *catalog.Catalog) model.Session {
	t.Helper()
	u, _ := c.User("admin1")
	return model.Session{User: u}
}

func TestService_Summarize(t *testing.T) {
	c := builtin(t)
	var prompt string
	gen := &mockGenerator{generateFunc: func(_ context.Context, p string) (string, error) {
		prompt = p
		return "  Two meetings are booked.  \n", nil
	}}
	svc := NewService(gen, c, staticBookings(c.SeedBookings()), time.Second, time.UTC, logger.Discard())

	res, err := svc.Summarize(context.Background(), admin(t, c))
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if res.Summary != "Two meetings are booked." {
		t.Errorf("Summary = %q", res.Summary)
	}
	if !strings.Contains(prompt, res.EventData) || !strings.Contains(res.EventData, "Total Bookings: 2") {
		t.Errorf("prompt does not carry the event data:\n%s", prompt)
	}
}

func TestService_Failures(t *testing.T) {
	c := builtin(t)
	parent, _ := c.User("parent1")

	tests := []struct {
		name     string
		gen      Generator
		session  model.Session
		wantCode string
		wantErr  error
	}{
		{
			name:     "not an admin",
			gen:      &mockGenerator{generateFunc: func(context.Context, string) (string, error) { return "ok", nil }},
			session:  model.Session{User: parent},
			wantCode: apperrors.CodeForbidden,
		},
		{
			name:     "not configured",
			session:  admin(t, c),
			wantCode: apperrors.CodeUnavailable,
			wantErr:  ErrNotConfigured,
		},
		{
			name:     "empty text",
			gen:      &mockGenerator{generateFunc: func(context.Context, string) (string, error) { return " \n", nil }},
			session:  admin(t, c),
			wantCode: apperrors.CodeUnavailable,
			wantErr:  ErrEmptySummary,
		},
		{
			name: "deadline",
			gen: &mockGenerator{generateFunc: func(ctx context.Context, _ string) (string, error) {
				<-ctx.Done()
				return "", ctx.Err()
			}},
			session:  admin(t, c),
			wantCode: apperrors.CodeUnavailable,
			wantErr:  context.DeadlineExceeded,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.gen, c, staticBookings(nil), 10*time.Millisecond, time.UTC, logger.Discard())

			_, err := svc.Summarize(context.Background(), tt.session)
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Fatalf("Summarize() error = %v, want %s", err, tt.wantCode)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Summarize() error = %v, want wrapped %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewGeminiGenerator_RequiresKey(t *testing.T) {
	if _, err := NewGeminiGenerator(context.Background(), "", "models/gemini-1.5-flash"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("NewGeminiGenerator() error = %v, want ErrNotConfigured", err)
	}
}
