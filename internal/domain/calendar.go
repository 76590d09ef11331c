package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is the storage format of goal dates.
	DateLayout = "2006-01-02"
	// ClockLayout is the normalized 12-hour time-of-day format.
	ClockLayout = "03:04 PM"
)

var clockInputLayouts = []string{
	ClockLayout,
	"3:04 PM",
	"03:04PM",
	"3:04PM",
	"15:04",
	"15:04:05",
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(value string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return d, nil
}

// WeekStart returns the first day of the week containing date, where weeks
// begin on first.
func WeekStart(date time.Time, first time.Weekday) time.Time {
	offset := (int(date.Weekday()) - int(first) + 7) % 7
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return day.AddDate(0, 0, -offset)
}

// DayOfWeek returns the English weekday name of date.
func DayOfWeek(date time.Time) string {
	return date.Weekday().String()
}

// ParseWeekday resolves a weekday name ("monday", "Sun", ...) case-insensitively.
func ParseWeekday(name string) (time.Weekday, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return time.Monday, nil
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if n == full || n == full[:3] {
			return d, nil
		}
	}
	return time.Monday, fmt.Errorf("unknown weekday %q", name)
}

// NormalizeClock accepts a 12- or 24-hour time of day and returns it in
// ClockLayout. An empty value stays empty.
func NormalizeClock(value string) (string, error) {
	v := strings.ToUpper(strings.TrimSpace(value))
	if v == "" {
		return "", nil
	}
	for _, layout := range clockInputLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format(ClockLayout), nil
		}
	}
	return "", fmt.Errorf("invalid time %q", value)
}
