package chrono

import (
	"time"
)

// TimeAPI is the interface that anything depending on the system clock should use.
type TimeAPI interface {
	// Now returns the current time in the configured location.
	Now() time.Time
	Location() *time.Location
}

// StandardTime is the standard implementation of TimeAPI using the standard library.
type StandardTime struct {
	location *time.Location
}

// NewStandardTime is the constructor of StandardTime, an empty name means UTC.
func NewStandardTime(name string) (StandardTime, error) {
	if name == "" {
		return StandardTime{location: time.UTC}, nil
	}
	location, err := time.LoadLocation(name)
	if err != nil {
		return StandardTime{}, err
	}
	return StandardTime{location: location}, nil
}

func (s StandardTime) Now() time.Time {
	return time.Now().In(s.Location())
}

func (s StandardTime) Location() *time.Location {
	if s.location == nil {
		return time.UTC
	}
	return s.location
}

// FixedTime always returns the same instant, it is meant for tests.
type FixedTime struct {
	At time.Time
}

func (f FixedTime) Now() time.Time {
	return f.At
}

func (f FixedTime) Location() *time.Location {
	return f.At.Location()
}
