package model

import (
	"time"
	_ "time/tzdata" // bundled zone database so Eastern dates work without system tzdata
)

// EasternZone is the reference zone for calendar dates in the balance reports.
const EasternZone = "America/New_York"

const (
	isoDate         = "2006-01-02"
	isoInstant      = "2006-01-02T15:04:05-07:00"
	isoInstantMicro = "2006-01-02T15:04:05.000000-07:00"
)

var eastern = mustLoadLocation(EasternZone)

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// EasternDate converts t into US Eastern time and returns its calendar date.
func EasternDate(t time.Time) string {
	return t.In(eastern).Format(isoDate)
}

// FormatInstant renders t in UTC as an ISO-8601 instant with an explicit
// +00:00 offset. Sub-second precision is kept to microseconds and omitted
// when zero.
func FormatInstant(t time.Time) string {
	t = t.UTC()
	if t.Nanosecond()/int(time.Microsecond) != 0 {
		return t.Format(isoInstantMicro)
	}
	return t.Format(isoInstant)
}
