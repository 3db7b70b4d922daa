package util

import "time"

const (
	DateTimeFormat = "2006-01-02 15:04:05"
	ISO8601Format  = "2006-01-02T15:04:05.000Z"
)

func FormatDateTime(t time.Time) string {
	return t.Format(DateTimeFormat)
}

// TimeToISO8601Str renders t in UTC with millisecond precision, the format
// clients receive deadlines and timestamps in.
func TimeToISO8601Str(t time.Time) string {
	return t.UTC().Format(ISO8601Format)
}

func ParseISO8601(s string) (time.Time, error) {
	return time.Parse(ISO8601Format, s)
}
