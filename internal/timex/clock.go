package timex

import "time"

// Clock provides the current time. Lifecycle code reads it exactly once per
// operation and never calls time.Now directly.
type Clock interface {
	Now() time.Time
}

// SystemClock returns the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns T.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// FuncClock adapts a function to Clock.
type FuncClock func() time.Time

func (f FuncClock) Now() time.Time { return f() }

// Unix returns t as whole seconds since the epoch. Instants before 1970
// clamp to zero.
func Unix(t time.Time) uint64 {
	s := t.Unix()
	if s < 0 {
		return 0
	}
	return uint64(s)
}

// FromUnix is the inverse of Unix.
func FromUnix(s uint64) time.Time {
	return time.Unix(int64(s), 0).UTC()
}
