package utils

import (
	"time"
)

// DateLayout is the ISO 8601 calendar date layout used for every date that
// crosses a component boundary.
const DateLayout = "2006-01-02"

var istLocation = loadLocation("Asia/Kolkata", 5*60*60+30*60)

func loadLocation(name string, offset int) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone(name, offset)
	}
	return loc
}

// TimeNowIST returns the current time in Indian Standard Time, the market
// clock the tracked creators talk about.
func TimeNowIST() time.Time {
	return time.Now().In(istLocation)
}

// ParseDate parses a YYYY-MM-DD date. Longer timestamps are truncated to
// their date part first, so "2023-06-01T10:00:00Z" is accepted.
func ParseDate(s string) (time.Time, error) {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	return time.Parse(DateLayout, s)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Date returns midnight UTC of the given calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// LastDayOfMonth returns the last calendar day of the month containing t.
func LastDayOfMonth(year int, month time.Month) time.Time {
	return Date(year, month+1, 1).AddDate(0, 0, -1)
}
