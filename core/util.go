package core

import (
	"math"
	"strings"
	"time"
)

// DateLayout is the wire format of date-only fields.
const DateLayout = "2006-01-02"

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// Humanize turns a field name such as "grading_period_id" into "grading period".
func Humanize(field string) string {
	field = strings.TrimSuffix(field, "_id")
	return strings.ReplaceAll(field, "_", " ")
}

// Round2 rounds to 2 decimal places.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// ParseDate accepts a date (2006-01-02) or a RFC3339 timestamp.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}
