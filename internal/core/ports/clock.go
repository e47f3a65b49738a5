package ports

import "time"

// Clock supplies the current instant to services so that "now" is always an
// explicit input and tests stay deterministic. Domain operations take the
// instant as a parameter; only services consult the clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns the wall-clock backed Clock used in production wiring.
func SystemClock() Clock { return systemClock{} }
