package util

import "time"

// Clock decides which dated file a record lands in.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// DayStamp formats t as YYYYMMDD in t's location.
func DayStamp(t time.Time) string { return t.Format("20060102") }
