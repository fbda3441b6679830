package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"schoolbook/internal/bookings/service"
	"schoolbook/internal/calendar"
	"schoolbook/internal/summary"
	apperrors "schoolbook/pkg/errors"
	httputil "schoolbook/pkg/http"
	"schoolbook/pkg/logger"
	"schoolbook/pkg/middleware"
	"schoolbook/pkg/model"
)

type SummaryService interface {
	Summarize(ctx context.Context, session model.Session) (*summary.Result, error)
}

type BookingHandler struct {
	service service.BookingService
	summary SummaryService
	loc     *time.Location
	log     *logger.Logger
	now     func() time.Time
}

func NewBookingHandler(service service.BookingService, summary SummaryService, loc *time.Location, log *logger.Logger) *BookingHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &BookingHandler{
		service: service,
		summary: summary,
		loc:     loc,
		log:     log,
		now:     time.Now,
	}
}

func (h *BookingHandler) ListEvents(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteSuccess(w, h.service.ListEvents(r.Context())); err != nil {
		h.log.Error("failed to write success response", "handler", "ListEvents", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) AvailableSlots(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	slots, err := h.service.AvailableSlots(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "AvailableSlots", err)
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "AvailableSlots", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	session, ok := h.session(w, r, "Create")
	if !ok {
		return
	}

	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body").WithCause(err))
		return
	}

	booking, err := h.service.Propose(r.Context(), session, &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

// MyBookings lists the caller's confirmed bookings on ?date=YYYY-MM-DD, or
// every booking they hold when no date is given.
func (h *BookingHandler) MyBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	session, ok := h.session(w, r, "MyBookings")
	if !ok {
		return
	}

	onDate, err := httputil.ExtractDate(r, "date", h.loc)
	if err != nil {
		h.writeError(w, "MyBookings", err)
		return
	}

	bookings, err := h.service.ListForParent(r.Context(), session, onDate)
	if err != nil {
		h.writeError(w, "MyBookings", err)
		return
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "MyBookings", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) MyCalendar(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	session, ok := h.session(w, r, "MyCalendar")
	if !ok {
		return
	}

	bookings, err := h.service.ListForParent(r.Context(), session, nil)
	if err != nil {
		h.writeError(w, "MyCalendar", err)
		return
	}

	h.writeCalendar(w, "MyCalendar", session.User.Name+" - school bookings", session.User.ID, bookings)
}

func (h *BookingHandler) TeacherBookings(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, ok := h.session(w, r, "TeacherBookings")
	if !ok {
		return
	}

	bookings, err := h.service.ForTeacher(r.Context(), session, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "TeacherBookings", err)
		return
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "TeacherBookings", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) TeacherCalendar(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, ok := h.session(w, r, "TeacherCalendar")
	if !ok {
		return
	}

	teacherID := ps.ByName("id")
	bookings, err := h.service.ForTeacher(r.Context(), session, teacherID)
	if err != nil {
		h.writeError(w, "TeacherCalendar", err)
		return
	}

	name := teacherID
	if len(bookings) > 0 && bookings[0].TeacherName != "" {
		name = bookings[0].TeacherName
	}
	h.writeCalendar(w, "TeacherCalendar", name+" - school bookings", teacherID, bookings)
}

func (h *BookingHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	session, ok := h.session(w, r, "GetAll")
	if !ok {
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	bookings, total, err := h.service.GetAll(r.Context(), session, limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) Stats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	session, ok := h.session(w, r, "Stats")
	if !ok {
		return
	}

	stats, err := h.service.Stats(r.Context(), session)
	if err != nil {
		h.writeError(w, "Stats", err)
		return
	}

	if err := httputil.WriteSuccess(w, stats); err != nil {
		h.log.Error("failed to write success response", "handler", "Stats", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Summary(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	session, ok := h.session(w, r, "Summary")
	if !ok {
		return
	}

	result, err := h.summary.Summarize(r.Context(), session)
	if err != nil {
		h.writeError(w, "Summary", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Summary", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/events", h.ListEvents)
	router.GET("/api/v1/events/:id/slots", h.AvailableSlots)
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/me/bookings", h.MyBookings)
	router.GET("/api/v1/me/bookings.ics", h.MyCalendar)
	router.GET("/api/v1/teachers/:id/bookings", h.TeacherBookings)
	router.GET("/api/v1/teachers/:id/bookings.ics", h.TeacherCalendar)
	router.GET("/api/v1/admin/bookings", h.GetAll)
	router.GET("/api/v1/admin/stats", h.Stats)
	router.POST("/api/v1/admin/summary", h.Summary)
}

func (h *BookingHandler) session(w http.ResponseWriter, r *http.Request, handler string) (model.Session, bool) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		h.writeError(w, handler, apperrors.Unauthorized("X-User-ID header is required"))
		return model.Session{}, false
	}
	return session, true
}

func (h *BookingHandler) writeCalendar(w http.ResponseWriter, handler, name, owner string, bookings []service.BookingView) {
	entries := make([]calendar.Entry, 0, len(bookings))
	for _, b := range bookings {
		entries = append(entries, calendar.Entry{
			Booking:     b.Booking,
			EventTitle:  b.EventTitle,
			EventType:   b.EventType,
			ParentName:  b.ParentName,
			ChildName:   b.ChildName,
			TeacherName: b.TeacherName,
		})
	}

	body := calendar.Export(name, entries, h.now().UTC())
	if err := httputil.WriteCalendar(w, owner+".ics", []byte(body)); err != nil {
		h.log.Error("failed to write calendar response", "handler", handler, "operation", "WriteCalendar", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}
