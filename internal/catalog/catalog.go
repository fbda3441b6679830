// Package catalog holds the read-only reference data the booking ledger
// validates against: users, children, events with their offered slots, and
// the bookings the school starts the session with.
//
// A Catalog is built once at startup and never mutated afterwards; every
// accessor returns copies.
package catalog

import (
	"errors"
	"fmt"

	"schoolbook/pkg/model"
)

var ErrInvalidCatalog = errors.New("invalid catalog")

type Catalog struct {
	users    []model.User
	children []model.Child
	events   []model.Event
	seeds    []model.Booking

	usersByID    map[string]int
	childrenByID map[string]int
	eventsByID   map[string]int
	childParents map[string]map[string]bool
}

// New validates the reference data and indexes it.
func New(users []model.User, children []model.Child, events []model.Event, seeds []model.Booking) (*Catalog, error) {
	c := &Catalog{
		users:        make([]model.User, 0, len(users)),
		children:     make([]model.Child, 0, len(children)),
		events:       make([]model.Event, 0, len(events)),
		seeds:        make([]model.Booking, 0, len(seeds)),
		usersByID:    make(map[string]int, len(users)),
		childrenByID: make(map[string]int, len(children)),
		eventsByID:   make(map[string]int, len(events)),
		childParents: make(map[string]map[string]bool),
	}

	for _, ch := range children {
		if ch.ID == "" {
			return nil, fmt.Errorf("%w: child with empty id", ErrInvalidCatalog)
		}
		if _, dup := c.childrenByID[ch.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate child id %q", ErrInvalidCatalog, ch.ID)
		}
		c.childrenByID[ch.ID] = len(c.children)
		c.children = append(c.children, ch)
	}

	for _, u := range users {
		if u.ID == "" {
			return nil, fmt.Errorf("%w: user with empty id", ErrInvalidCatalog)
		}
		if _, dup := c.usersByID[u.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate user id %q", ErrInvalidCatalog, u.ID)
		}
		switch u.Role {
		case model.RoleParent, model.RoleTeacher, model.RoleAdmin:
		default:
			return nil, fmt.Errorf("%w: user %q has unknown role %q", ErrInvalidCatalog, u.ID, u.Role)
		}
		if u.Role != model.RoleParent && len(u.ChildIDs) > 0 {
			return nil, fmt.Errorf("%w: %s %q cannot own children", ErrInvalidCatalog, u.Role, u.ID)
		}

		u.ChildIDs = append([]string(nil), u.ChildIDs...)
		for _, childID := range u.ChildIDs {
			if _, ok := c.childrenByID[childID]; !ok {
				return nil, fmt.Errorf("%w: parent %q references unknown child %q", ErrInvalidCatalog, u.ID, childID)
			}
			if c.childParents[childID] == nil {
				c.childParents[childID] = make(map[string]bool)
			}
			c.childParents[childID][u.ID] = true
		}

		c.usersByID[u.ID] = len(c.users)
		c.users = append(c.users, u)
	}

	for _, e := range events {
		if e.ID == "" {
			return nil, fmt.Errorf("%w: event with empty id", ErrInvalidCatalog)
		}
		if _, dup := c.eventsByID[e.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate event id %q", ErrInvalidCatalog, e.ID)
		}
		if !e.Type.Valid() {
			return nil, fmt.Errorf("%w: event %q has unknown type %q", ErrInvalidCatalog, e.ID, e.Type)
		}

		seen := make(map[model.SlotKey]bool, len(e.Slots))
		for _, s := range e.Slots {
			if _, ok := c.Teacher(s.TeacherID); !ok {
				return nil, fmt.Errorf("%w: event %q offers a slot with unknown teacher %q", ErrInvalidCatalog, e.ID, s.TeacherID)
			}
			if seen[s.Key()] {
				return nil, fmt.Errorf("%w: event %q offers slot %s/%s twice", ErrInvalidCatalog, e.ID, s.TeacherID, s.StartTime)
			}
			seen[s.Key()] = true
		}

		e.Slots = append([]model.TimeSlot(nil), e.Slots...)
		c.eventsByID[e.ID] = len(c.events)
		c.events = append(c.events, e)
	}

	for _, b := range seeds {
		if err := c.checkBookingRefs(b); err != nil {
			return nil, fmt.Errorf("%w: seed booking %q: %v", ErrInvalidCatalog, b.ID, err)
		}
		c.seeds = append(c.seeds, b)
	}

	return c, nil
}

func (c *Catalog) checkBookingRefs(b model.Booking) error {
	if b.ID == "" {
		return errors.New("empty id")
	}
	if _, ok := c.eventsByID[b.EventID]; !ok {
		return fmt.Errorf("unknown event %q", b.EventID)
	}
	if _, ok := c.Parent(b.ParentID); !ok {
		return fmt.Errorf("unknown parent %q", b.ParentID)
	}
	if !c.ChildOf(b.ParentID, b.ChildID) {
		return fmt.Errorf("child %q does not belong to parent %q", b.ChildID, b.ParentID)
	}
	if _, ok := c.Teacher(b.TeacherID); !ok {
		return fmt.Errorf("unknown teacher %q", b.TeacherID)
	}
	if !b.Status.Valid() {
		return fmt.Errorf("unknown status %q", b.Status)
	}
	if !b.EndTime.IsZero() && !b.EndTime.After(b.StartTime) {
		return errors.New("end time must be after start time")
	}
	return nil
}

func (c *Catalog) User(id string) (model.User, bool) {
	i, ok := c.usersByID[id]
	if !ok {
		return model.User{}, false
	}
	u := c.users[i]
	u.ChildIDs = append([]string(nil), u.ChildIDs...)
	return u, true
}

func (c *Catalog) Parent(id string) (model.User, bool) {
	u, ok := c.User(id)
	if !ok || !u.IsParent() {
		return model.User{}, false
	}
	return u, true
}

func (c *Catalog) Teacher(id string) (model.User, bool) {
	u, ok := c.User(id)
	if !ok || !u.IsTeacher() {
		return model.User{}, false
	}
	return u, true
}

func (c *Catalog) Child(id string) (model.Child, bool) {
	i, ok := c.childrenByID[id]
	if !ok {
		return model.Child{}, false
	}
	return c.children[i], true
}

// ChildOf reports whether childID is one of parentID's children.
func (c *Catalog) ChildOf(parentID, childID string) bool {
	return c.childParents[childID][parentID]
}

func (c *Catalog) ChildrenOf(parentID string) []model.Child {
	p, ok := c.Parent(parentID)
	if !ok {
		return nil
	}
	out := make([]model.Child, 0, len(p.ChildIDs))
	for _, id := range p.ChildIDs {
		if ch, ok := c.Child(id); ok {
			out = append(out, ch)
		}
	}
	return out
}

func (c *Catalog) Event(id string) (model.Event, bool) {
	i, ok := c.eventsByID[id]
	if !ok {
		return model.Event{}, false
	}
	return copyEvent(c.events[i]), true
}

func (c *Catalog) Events() []model.Event {
	out := make([]model.Event, len(c.events))
	for i, e := range c.events {
		out[i] = copyEvent(e)
	}
	return out
}

func (c *Catalog) Users() []model.User {
	out := make([]model.User, len(c.users))
	for i := range c.users {
		out[i], _ = c.User(c.users[i].ID)
	}
	return out
}

func (c *Catalog) Children() []model.Child {
	return append([]model.Child(nil), c.children...)
}

// SeedBookings are the bookings the ledger is loaded with at startup. A zero
// EndTime is filled in by the ledger from the configured durations.
func (c *Catalog) SeedBookings() []model.Booking {
	return append([]model.Booking(nil), c.seeds...)
}

func copyEvent(e model.Event) model.Event {
	e.Slots = append([]model.TimeSlot(nil), e.Slots...)
	return e
}
