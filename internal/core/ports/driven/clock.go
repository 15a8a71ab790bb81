package driven

import "time"

// Clock supplies wall-clock time so time-derived values can be tested.
type Clock interface {
	Now() time.Time
}
