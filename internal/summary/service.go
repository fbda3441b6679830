package summary

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "schoolbook/pkg/errors"
	"schoolbook/pkg/logger"
	"schoolbook/pkg/model"
)

var (
	ErrNotConfigured = errors.New("summary generator is not configured")
	ErrEmptySummary  = errors.New("summary generator returned no text")
)

// Source provides the data being summarized.
type Source interface {
	Events() []model.Event
	Users() []model.User
}

type BookingSource interface {
	All() []model.Booking
}

type Result struct {
	Summary     string    `json:"summary"`
	EventData   string    `json:"event_data"`
	GeneratedAt time.Time `json:"generated_at"`
}

type Service struct {
	generator Generator
	catalog   Source
	bookings  BookingSource
	timeout   time.Duration
	loc       *time.Location
	log       *logger.Logger
	now       func() time.Time
}

// NewService accepts a nil generator; Summarize then reports the feature as
// unavailable.
func NewService(generator Generator, catalog Source, bookings BookingSource, timeout time.Duration, loc *time.Location, log *logger.Logger) *Service {
	return &Service{
		generator: generator,
		catalog:   catalog,
		bookings:  bookings,
		timeout:   timeout,
		loc:       loc,
		log:       log,
		now:       time.Now,
	}
}

func (s *Service) Summarize(ctx context.Context, session model.Session) (*Result, error) {
	if !session.User.IsAdmin() {
		return nil, apperrors.Forbidden("Administrator access required")
	}
	if s.generator == nil {
		return nil, apperrors.Unavailable("Summary generator").WithCause(ErrNotConfigured)
	}

	eventData := Render(s.catalog.Events(), s.bookings.All(), s.catalog.Users(), s.loc)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := s.now()
	text, err := s.generator.Generate(ctx, BuildPrompt(eventData))
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrEmptySummary
	}
	if err != nil {
		s.log.Error("Failed to generate summary",
			"user_id", session.User.ID,
			"duration_ms", s.now().Sub(start).Milliseconds(),
			"error", err,
		)
		return nil, apperrors.Unavailable("Summary generator").WithCause(err)
	}

	s.log.Info("Summary generated",
		"user_id", session.User.ID,
		"duration_ms", s.now().Sub(start).Milliseconds(),
		"chars", len(text),
	)
	return &Result{
		Summary:     strings.TrimSpace(text),
		EventData:   eventData,
		GeneratedAt: s.now(),
	}, nil
}
