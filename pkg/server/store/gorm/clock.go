package gorm

import "time"

// Clock returns the current time. Stores stamp created_at with it in UTC.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}
