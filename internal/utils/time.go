package util

import (
	"fmt"
	"strings"
	"time"
)

const (
	localLayout = "2006-01-02T15:04:05"
	dateLayout  = "2006-01-02"
)

var location = time.FixedZone("BRT", -3*60*60)

// SetLocation changes the zone used to read local timestamps and to cut days.
func SetLocation(loc *time.Location) {
	if loc != nil {
		location = loc
	}
}

func Location() *time.Location { return location }

// LocalDateTime accepts the formats the web client sends for deadlines:
// RFC 3339, a local "2006-01-02T15:04:05" timestamp or a bare date, which
// means the end of that day.
type LocalDateTime struct {
	time.Time
}

func ParseLocalDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(localLayout, s, location); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(dateLayout, s, location); err == nil {
		return t.Add(24*time.Hour - time.Second), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func (ldt *LocalDateTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	t, err := ParseLocalDateTime(s)
	if err != nil {
		return err
	}
	ldt.Time = t
	return nil
}

func (ldt LocalDateTime) MarshalJSON() ([]byte, error) {
	if ldt.IsZero() {
		return []byte(`null`), nil
	}
	return []byte(`"` + ldt.In(location).Format(localLayout) + `"`), nil
}

// ToTimePtr returns nil for a missing or zero value.
func ToTimePtr(ldt *LocalDateTime) *time.Time {
	if ldt == nil || ldt.IsZero() {
		return nil
	}
	t := ldt.Time
	return &t
}

// StartOfDay truncates t to midnight in the configured zone.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.In(location).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, location)
}

// DayKey is the calendar day of t in the configured zone.
func DayKey(t time.Time) string {
	return t.In(location).Format(dateLayout)
}
