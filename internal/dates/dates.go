// Package dates parses and formats due dates in loose natural language.
package dates

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrBadDate reports input that is neither a known phrase nor a parseable
// date. Treated as a validation error: the operation aborts, nothing
// changes.
var ErrBadDate = errors.New("unrecognized date")

var inPattern = regexp.MustCompile(`^in (\d+) (day|days|week|weeks)$`)

// ParseNatural resolves phrases like "tomorrow", "next week", or
// "in 3 days" relative to now, then falls back to "2006-01-02" and
// "2006-01-02 15:04". Empty input means no due date.
func ParseNatural(input string, now time.Time) (*time.Time, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return nil, nil
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var t time.Time
	switch input {
	case "today":
		t = today
	case "tomorrow":
		t = today.AddDate(0, 0, 1)
	case "next week", "in a week":
		t = today.AddDate(0, 0, 7)
	case "next month":
		t = today.AddDate(0, 1, 0)
	default:
		if m := inPattern.FindStringSubmatch(input); m != nil {
			n, _ := strconv.Atoi(m[1])
			if strings.HasPrefix(m[2], "week") {
				n *= 7
			}
			t = today.AddDate(0, 0, n)
			return &t, nil
		}
		if parsed, err := time.ParseInLocation("2006-01-02 15:04", input, now.Location()); err == nil {
			return &parsed, nil
		}
		if parsed, err := time.ParseInLocation("2006-01-02", input, now.Location()); err == nil {
			return &parsed, nil
		}
		return nil, fmt.Errorf("%w: %q", ErrBadDate, input)
	}
	return &t, nil
}

// FormatNatural renders a date relative to now: "Today at 15:04",
// "Tomorrow at 09:00", "Yesterday at 18:30", else "Mon Jan 2 15:04".
func FormatNatural(t, now time.Time) string {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	clock := t.Format("15:04")
	switch {
	case day.Equal(today):
		return "Today at " + clock
	case day.Equal(today.AddDate(0, 0, 1)):
		return "Tomorrow at " + clock
	case day.Equal(today.AddDate(0, 0, -1)):
		return "Yesterday at " + clock
	default:
		return t.Format("Mon Jan 2 15:04")
	}
}
