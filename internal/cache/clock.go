package cache

import "time"

// clock abstracts time so TTL handling can be tested
type clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}
