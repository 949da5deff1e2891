// Package clock abstracts time so components that stamp records stay
// deterministic under test.
package clock

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// Real reads the system clock.
type Real struct{}

// Now returns the current system time.
func (Real) Now() time.Time { return time.Now() }
