// Package clock abstracts the time source so the reminder jobs and the
// occurrence generator can run against a fixed instant in tests.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

// System reads the real time. All scheduling math in this service is done in
// UTC, matching how task dates and times are stored.
type System struct{}

func (System) Now() time.Time { return time.Now().UTC() }

// Fixed always reports the same instant.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }
