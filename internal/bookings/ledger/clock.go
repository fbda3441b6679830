package ledger

import (
	"time"

	"github.com/google/uuid"
)

type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type IDGenerator interface {
	NewID() string
}

type IDFunc func() string

func (f IDFunc) NewID() string { return f() }

// UUIDGenerator issues ids of the form "booking-<uuid>".
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return "booking-" + uuid.NewString()
}
