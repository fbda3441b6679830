// Package ledger decides whether a proposed booking may be accepted and keeps
// the accepted bookings in memory.
//
// A proposal is checked, in order, for consistent references, for a free
// (teacher, start) slot, and for the parent's minimum spacing between
// bookings. The check and the append happen under one lock, so concurrent
// proposals cannot both take the same slot or both squeeze in next to the
// same booking.
package ledger

import (
	"fmt"
	"slices"
	"sync"
	"time"

	bookingserrors "schoolbook/internal/bookings/errors"
	"schoolbook/internal/catalog"
	"schoolbook/pkg/model"
)

const DefaultBuffer = 45 * time.Minute

type Policy struct {
	// Buffer is added to the proposed event's duration to get the minimum
	// distance between two start times of the same parent.
	Buffer    time.Duration
	Durations model.DurationTable
	// Location decides calendar-day boundaries for ListForParent.
	Location *time.Location
}

func DefaultPolicy() Policy {
	return Policy{
		Buffer:    DefaultBuffer,
		Durations: model.DefaultDurationTable(),
		Location:  time.UTC,
	}
}

type Ledger struct {
	mu       sync.RWMutex
	ref      *catalog.Catalog
	policy   Policy
	clock    Clock
	ids      IDGenerator
	bookings []model.Booking
	byID     map[string]struct{}
	held     map[model.SlotKey]string
}

func New(ref *catalog.Catalog, policy Policy, clock Clock, ids IDGenerator) *Ledger {
	if policy.Durations == nil {
		policy.Durations = model.DefaultDurationTable()
	}
	if policy.Location == nil {
		policy.Location = time.UTC
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if ids == nil {
		ids = UUIDGenerator{}
	}
	return &Ledger{
		ref:    ref,
		policy: policy,
		clock:  clock,
		ids:    ids,
		byID:   make(map[string]struct{}),
		held:   make(map[model.SlotKey]string),
	}
}

func (l *Ledger) Policy() Policy {
	return l.policy
}

// Duration is the booking length for events of type t.
func (l *Ledger) Duration(t model.EventType) time.Duration {
	return l.policy.Durations.Duration(t)
}

// RequiredGap is the minimum distance between two starts of the same parent
// when the later proposal is for an event of type t.
func (l *Ledger) RequiredGap(t model.EventType) time.Duration {
	return l.Duration(t) + l.policy.Buffer
}

// Load appends existing bookings, typically the catalog's seed data. The
// batch is rejected as a whole if any booking has a duplicate id, an unknown
// reference or status, a slot its event does not offer, an end time other
// than start plus the event's duration, or a slot that is already held. A
// zero end time is derived. Spacing is not checked.
func (l *Ledger) Load(bookings []model.Booking) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	staged := make(map[model.SlotKey]string)
	seen := make(map[string]struct{})
	accepted := make([]model.Booking, 0, len(bookings))
	for _, b := range bookings {
		if _, dup := l.byID[b.ID]; dup {
			return fmt.Errorf("%w: %s", bookingserrors.ErrDuplicateBooking, b.ID)
		}
		if _, dup := seen[b.ID]; dup {
			return fmt.Errorf("%w: %s", bookingserrors.ErrDuplicateBooking, b.ID)
		}
		seen[b.ID] = struct{}{}

		b, err := l.checkLoaded(b)
		if err != nil {
			return fmt.Errorf("booking %s: %w", b.ID, err)
		}
		accepted = append(accepted, b)
		if !b.IsConfirmed() {
			continue
		}

		key := b.Slot().Key()
		holder, taken := l.held[key]
		if !taken {
			holder, taken = staged[key]
		}
		if taken {
			return fmt.Errorf("booking %s: %w", b.ID, &bookingserrors.SlotUnavailableError{
				TeacherID: b.TeacherID,
				StartTime: b.StartTime,
				BookingID: holder,
			})
		}
		staged[key] = b.ID
	}

	for _, b := range accepted {
		l.bookings = append(l.bookings, b)
		l.byID[b.ID] = struct{}{}
	}
	for key, id := range staged {
		l.held[key] = id
	}
	return nil
}

// checkLoaded validates b against the catalog and the policy and returns it
// with its end time set.
func (l *Ledger) checkLoaded(b model.Booking) (model.Booking, error) {
	event, ok := l.ref.Event(b.EventID)
	if !ok {
		return b, bookingserrors.InvalidReference("event_id", b.EventID, "does not exist")
	}
	if _, ok := l.ref.Parent(b.ParentID); !ok {
		return b, bookingserrors.InvalidReference("parent_id", b.ParentID, "is not a parent")
	}
	if !l.ref.ChildOf(b.ParentID, b.ChildID) {
		return b, bookingserrors.InvalidReference("child_id", b.ChildID, "does not belong to parent")
	}
	if _, ok := l.ref.Teacher(b.TeacherID); !ok {
		return b, bookingserrors.InvalidReference("teacher_id", b.TeacherID, "is not a teacher")
	}
	if !event.HasSlot(b.Slot()) {
		return b, bookingserrors.InvalidReference("start_time", b.StartTime.UTC().Format(time.RFC3339), "is not offered by the event")
	}
	if !b.Status.Valid() {
		return b, fmt.Errorf("%w: unknown status %q", bookingserrors.ErrInvalidBooking, b.Status)
	}

	end := b.StartTime.Add(l.Duration(event.Type))
	if b.EndTime.IsZero() {
		b.EndTime = end
	} else if !b.EndTime.Equal(end) {
		return b, fmt.Errorf("%w: ends at %s, want %s", bookingserrors.ErrInvalidBooking,
			b.EndTime.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
	}
	return b, nil
}

// Propose accepts or rejects one booking. On success it returns the new
// booking and a snapshot of the ledger including it. On failure the ledger is
// unchanged and the error is one of *SlotUnavailableError,
// *SchedulingConflictError or *InvalidReferenceError.
func (l *Ledger) Propose(parentID, childID string, event model.Event, slot model.TimeSlot) (model.Booking, []model.Booking, error) {
	offered, err := l.checkRefs(parentID, childID, event, slot)
	if err != nil {
		return model.Booking{}, nil, err
	}

	duration := l.Duration(offered.Type)
	required := duration + l.policy.Buffer

	l.mu.Lock()
	defer l.mu.Unlock()

	if holder, taken := l.held[slot.Key()]; taken {
		return model.Booking{}, nil, &bookingserrors.SlotUnavailableError{
			TeacherID: slot.TeacherID,
			StartTime: slot.StartTime,
			BookingID: holder,
		}
	}

	if conflict := l.nearestConflict(parentID, slot.StartTime, required); conflict != nil {
		return model.Booking{}, nil, conflict
	}

	booking := model.Booking{
		ID:        l.ids.NewID(),
		EventID:   offered.ID,
		ParentID:  parentID,
		ChildID:   childID,
		TeacherID: slot.TeacherID,
		StartTime: slot.StartTime,
		EndTime:   slot.StartTime.Add(duration),
		Status:    model.BookingStatusConfirmed,
		CreatedAt: l.clock.Now(),
	}
	l.bookings = append(l.bookings, booking)
	l.byID[booking.ID] = struct{}{}
	l.held[slot.Key()] = booking.ID

	return booking, slices.Clone(l.bookings), nil
}

// checkRefs resolves the event against the catalog; the catalog's copy is
// authoritative for the type and the offered slots.
func (l *Ledger) checkRefs(parentID, childID string, event model.Event, slot model.TimeSlot) (model.Event, error) {
	if _, ok := l.ref.Parent(parentID); !ok {
		return model.Event{}, bookingserrors.InvalidReference("parent_id", parentID, "is not a parent")
	}
	if !l.ref.ChildOf(parentID, childID) {
		return model.Event{}, bookingserrors.InvalidReference("child_id", childID, "does not belong to parent")
	}
	offered, ok := l.ref.Event(event.ID)
	if !ok {
		return model.Event{}, bookingserrors.InvalidReference("event_id", event.ID, "does not exist")
	}
	if !offered.HasSlot(slot) {
		return model.Event{}, bookingserrors.InvalidReference("slot", slot.TeacherID+"@"+slot.StartTime.Format(time.RFC3339), "is not offered by the event")
	}
	return offered, nil
}

// nearestConflict returns the closest confirmed booking of parentID that
// starts strictly less than required away from start. Caller holds l.mu.
func (l *Ledger) nearestConflict(parentID string, start time.Time, required time.Duration) *bookingserrors.SchedulingConflictError {
	var conflict *bookingserrors.SchedulingConflictError
	for i := range l.bookings {
		b := &l.bookings[i]
		if b.ParentID != parentID || !b.IsConfirmed() {
			continue
		}
		gap := absDuration(b.StartTime.Sub(start))
		if gap >= required {
			continue
		}
		if conflict == nil || gap < conflict.ActualGap {
			conflict = &bookingserrors.SchedulingConflictError{
				RequiredGap:          required,
				ActualGap:            gap,
				ConflictingBookingID: b.ID,
			}
		}
	}
	return conflict
}

// ListForParent returns the parent's confirmed bookings starting on the
// calendar day of onDate, in the policy's location, ascending by start.
func (l *Ledger) ListForParent(parentID string, onDate time.Time) []model.Booking {
	loc := l.policy.Location
	y, m, d := onDate.In(loc).Date()

	return l.filterSorted(func(b *model.Booking) bool {
		if b.ParentID != parentID || !b.IsConfirmed() {
			return false
		}
		by, bm, bd := b.StartTime.In(loc).Date()
		return by == y && bm == m && bd == d
	}, ascending)
}

// AvailableSlots returns the event's offered slots that no confirmed booking
// holds, in offer order.
func (l *Ledger) AvailableSlots(event model.Event) []model.TimeSlot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]model.TimeSlot, 0, len(event.Slots))
	for _, s := range event.Slots {
		if _, taken := l.held[s.Key()]; !taken {
			out = append(out, s)
		}
	}
	return out
}

// ParentBookings returns the parent's confirmed bookings on any day,
// ascending by start.
func (l *Ledger) ParentBookings(parentID string) []model.Booking {
	return l.filterSorted(func(b *model.Booking) bool {
		return b.ParentID == parentID && b.IsConfirmed()
	}, ascending)
}

// ForTeacher returns every booking with the teacher, ascending by start.
func (l *Ledger) ForTeacher(teacherID string) []model.Booking {
	return l.filterSorted(func(b *model.Booking) bool { return b.TeacherID == teacherID }, ascending)
}

// All returns every booking, newest start first.
func (l *Ledger) All() []model.Booking {
	return l.filterSorted(func(*model.Booking) bool { return true }, descending)
}

// Snapshot returns the ledger in insertion order.
func (l *Ledger) Snapshot() []model.Booking {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.bookings)
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.bookings)
}

func (l *Ledger) filterSorted(keep func(*model.Booking) bool, cmp func(a, b model.Booking) int) []model.Booking {
	l.mu.RLock()
	out := make([]model.Booking, 0)
	for i := range l.bookings {
		if keep(&l.bookings[i]) {
			out = append(out, l.bookings[i])
		}
	}
	l.mu.RUnlock()

	slices.SortStableFunc(out, cmp)
	return out
}

func ascending(a, b model.Booking) int {
	return a.StartTime.Compare(b.StartTime)
}

func descending(a, b model.Booking) int {
	return b.StartTime.Compare(a.StartTime)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
