package service

import (
	"context"
	"errors"
	"time"

	bookingserrors "schoolbook/internal/bookings/errors"
	"schoolbook/internal/bookings/publisher"
	"schoolbook/internal/bookings/validator"
	"schoolbook/internal/catalog"
	"schoolbook/pkg/config"
	apperrors "schoolbook/pkg/errors"
	"schoolbook/pkg/middleware"
	"schoolbook/pkg/model"
	"schoolbook/pkg/sanitizer"
)

// BookingLedger is the subset of *ledger.Ledger the service needs.
type BookingLedger interface {
	Propose(parentID, childID string, event model.Event, slot model.TimeSlot) (model.Booking, []model.Booking, error)
	ListForParent(parentID string, onDate time.Time) []model.Booking
	AvailableSlots(event model.Event) []model.TimeSlot
	ParentBookings(parentID string) []model.Booking
	ForTeacher(teacherID string) []model.Booking
	All() []model.Booking
}

type BookingService interface {
	ListEvents(ctx context.Context) []model.EventSummary
	AvailableSlots(ctx context.Context, eventID string) ([]SlotView, error)
	Propose(ctx context.Context, session model.Session, req *model.BookingRequest) (*BookingView, error)
	ListForParent(ctx context.Context, session model.Session, onDate *time.Time) ([]BookingView, error)
	ForTeacher(ctx context.Context, session model.Session, teacherID string) ([]BookingView, error)
	GetAll(ctx context.Context, session model.Session, limit int, offset int64) ([]BookingView, int64, error)
	Stats(ctx context.Context, session model.Session) (*Stats, error)
}

type bookingService struct {
	ledger    BookingLedger
	catalog   *catalog.Catalog
	validator *validator.BookingValidator
	publisher publisher.BookingPublisher
	cfg       *config.Config
}

func NewBookingService(
	ledger BookingLedger,
	catalog *catalog.Catalog,
	validator *validator.BookingValidator,
	publisher publisher.BookingPublisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		ledger:    ledger,
		catalog:   catalog,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *bookingService) ListEvents(_ context.Context) []model.EventSummary {
	events := s.catalog.Events()
	out := make([]model.EventSummary, 0, len(events))
	for i := range events {
		out = append(out, events[i].Summary())
	}
	return out
}

func (s *bookingService) AvailableSlots(_ context.Context, eventID string) ([]SlotView, error) {
	if eventID == "" {
		return nil, apperrors.InvalidInput("Event ID cannot be empty")
	}
	event, ok := s.catalog.Event(eventID)
	if !ok {
		return nil, apperrors.NotFoundWithID("Event", eventID)
	}

	slots := s.ledger.AvailableSlots(event)
	out := make([]SlotView, 0, len(slots))
	for _, slot := range slots {
		out = append(out, s.slotView(slot))
	}
	return out, nil
}

func (s *bookingService) Propose(ctx context.Context, session model.Session, req *model.BookingRequest) (*BookingView, error) {
	if err := requireParent(session); err != nil {
		return nil, err
	}
	sanitizer.SanitizeBookingRequest(req)
	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Booking request validation failed",
			"parent_id", session.User.ID,
			"error", err,
		)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, apperrors.Validation("Invalid booking request", verrs.Details())
		}
		return nil, apperrors.Validation("Invalid booking request", map[string]any{"error": err.Error()})
	}

	// An unknown event is passed through so the ledger reports it like any
	// other bad reference.
	event, ok := s.catalog.Event(req.EventID)
	if !ok {
		event = model.Event{ID: req.EventID}
	}
	slot := model.TimeSlot{TeacherID: req.TeacherID, StartTime: req.StartTime}

	booking, _, err := s.ledger.Propose(session.User.ID, req.ChildID, event, slot)
	if err != nil {
		s.cfg.Log.Warn("Booking rejected",
			"parent_id", session.User.ID,
			"child_id", req.ChildID,
			"event_id", req.EventID,
			"teacher_id", req.TeacherID,
			"start_time", req.StartTime,
			"error", err,
		)
		return nil, toAppError(err)
	}

	s.cfg.Log.Info("Booking confirmed",
		"id", booking.ID,
		"parent_id", booking.ParentID,
		"child_id", booking.ChildID,
		"event_id", booking.EventID,
		"teacher_id", booking.TeacherID,
		"start_time", booking.StartTime,
	)

	requestID := middleware.RequestIDFromContext(ctx)
	if err := s.publisher.BookingConfirmed(context.WithoutCancel(ctx), booking, requestID); err != nil {
		s.cfg.Log.Error("Failed to publish booking event",
			"id", booking.ID,
			"request_id", requestID,
			"error", err,
		)
	}

	view := s.describe(booking)
	return &view, nil
}

func (s *bookingService) ListForParent(_ context.Context, session model.Session, onDate *time.Time) ([]BookingView, error) {
	if err := requireParent(session); err != nil {
		return nil, err
	}
	if onDate == nil {
		return s.describeAll(s.ledger.ParentBookings(session.User.ID)), nil
	}
	return s.describeAll(s.ledger.ListForParent(session.User.ID, *onDate)), nil
}

func (s *bookingService) ForTeacher(_ context.Context, session model.Session, teacherID string) ([]BookingView, error) {
	if _, ok := s.catalog.Teacher(teacherID); !ok {
		return nil, apperrors.NotFoundWithID("Teacher", teacherID)
	}
	if !session.User.IsAdmin() && !(session.User.IsTeacher() && session.User.ID == teacherID) {
		return nil, apperrors.Forbidden("Only the teacher or an administrator can view this schedule")
	}
	return s.describeAll(s.ledger.ForTeacher(teacherID)), nil
}

func (s *bookingService) GetAll(_ context.Context, session model.Session, limit int, offset int64) ([]BookingView, int64, error) {
	if !session.User.IsAdmin() {
		return nil, 0, apperrors.Forbidden("Administrator access required")
	}

	all := s.ledger.All()
	total := int64(len(all))
	if offset >= total {
		return []BookingView{}, total, nil
	}
	end := min(offset+int64(limit), total)
	return s.describeAll(all[offset:end]), total, nil
}

// Stats counts what the admin dashboard shows at a glance.
func (s *bookingService) Stats(_ context.Context, session model.Session) (*Stats, error) {
	if !session.User.IsAdmin() {
		return nil, apperrors.Forbidden("Administrator access required")
	}

	stats := &Stats{
		RegisteredUsers: len(s.catalog.Users()),
		ActiveEvents:    len(s.catalog.Events()),
	}
	for _, b := range s.ledger.All() {
		stats.TotalBookings++
		if b.IsConfirmed() {
			stats.ConfirmedBookings++
		}
	}
	return stats, nil
}

func requireParent(session model.Session) error {
	if session.User.ID == "" {
		return apperrors.Unauthorized("Unknown user")
	}
	if !session.User.IsParent() {
		return apperrors.Forbidden("Only parents can book or view their bookings")
	}
	return nil
}

func toAppError(err error) error {
	var unavailable *bookingserrors.SlotUnavailableError
	var conflict *bookingserrors.SchedulingConflictError
	var reference *bookingserrors.InvalidReferenceError

	switch {
	case errors.As(err, &unavailable):
		return apperrors.SlotUnavailable("This time slot is no longer available. Please choose another one.", map[string]any{
			"teacher_id": unavailable.TeacherID,
			"start_time": unavailable.StartTime,
		}).WithCause(err)
	case errors.As(err, &conflict):
		return apperrors.SchedulingConflict("This booking is too close to another of your bookings.", map[string]any{
			"required_gap_minutes":   conflict.RequiredMinutes(),
			"actual_gap_minutes":     conflict.ActualMinutes(),
			"conflicting_booking_id": conflict.ConflictingBookingID,
		}).WithCause(err)
	case errors.As(err, &reference):
		return apperrors.InvalidReference("The booking refers to something that does not exist.", map[string]any{
			"field":  reference.Field,
			"value":  reference.Value,
			"reason": reference.Reason,
		}).WithCause(err)
	default:
		return apperrors.Internal("Failed to create booking", err)
	}
}
