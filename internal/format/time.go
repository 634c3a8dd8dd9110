package format

import (
	"fmt"
	"strings"
	"time"
)

// Formatter renders timestamps with the user's display preferences.
type Formatter struct {
	date string
	time string
}

// New builds a Formatter from the ui.date_format and ui.time_format values.
// Empty values fall back to "Jan 02" and 24h.
func New(dateFormat, timeFormat string) Formatter {
	return Formatter{date: dateFormat, time: timeFormat}
}

// DateTime formats a time with both date and time.
// Example output: "23/01/2024 15:04" or "01/23/2024 3:04 PM"
func (f Formatter) DateTime(t time.Time) string {
	return f.Date(t) + " " + f.Time(t)
}

// DateTimeShort formats a time with short date and time (no year).
// Example output: "23/01 15:04" or "01/23 3:04 PM"
func (f Formatter) DateTimeShort(t time.Time) string {
	return f.DateShort(t) + " " + f.Time(t)
}

// Date formats only the date portion.
func (f Formatter) Date(t time.Time) string {
	return t.Format(f.dateLayout())
}

// DateShort formats date without year.
func (f Formatter) DateShort(t time.Time) string {
	return t.Format(f.dateLayoutShort())
}

// Time formats only the time portion.
func (f Formatter) Time(t time.Time) string {
	return t.Format(f.timeLayout(false))
}

// Full formats with full date and time with seconds.
// Example output: "23/01/2024 15:04:05"
func (f Formatter) Full(t time.Time) string {
	return f.Date(t) + " " + t.Format(f.timeLayout(true))
}

// Ago describes the distance from t to now in the largest whole unit,
// e.g. "just now", "5m ago", "3h ago", "2d ago". Older than a week falls
// back to DateShort.
func (f Formatter) Ago(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	default:
		return f.DateShort(t)
	}
}

func (f Formatter) dateLayout() string {
	switch f.date {
	case "":
		return "Jan 02"
	case "mm/dd/yyyy":
		return "01/02/2006"
	case "yyyy-mm-dd":
		return "2006-01-02"
	case "dd/mm/yyyy":
		return "02/01/2006"
	default:
		// custom Go layout
		return f.date
	}
}

func (f Formatter) dateLayoutShort() string {
	switch f.date {
	case "":
		return "Jan 02"
	case "mm/dd/yyyy":
		return "01/02"
	case "yyyy-mm-dd":
		return "01-02"
	case "dd/mm/yyyy":
		return "02/01"
	default:
		// Strip year patterns from the custom layout
		short := f.date
		short = strings.ReplaceAll(short, "2006", "")
		short = strings.ReplaceAll(short, "/06", "")
		short = strings.ReplaceAll(short, "-06", "")
		short = strings.ReplaceAll(short, " 06", "")
		short = strings.TrimSpace(short)
		short = strings.Trim(short, "/-")
		if short == "" {
			return "Jan 02"
		}
		return short
	}
}

func (f Formatter) timeLayout(seconds bool) string {
	if f.time == "12h" {
		if seconds {
			return "3:04:05 PM"
		}
		return "3:04 PM"
	}
	if seconds {
		return "15:04:05"
	}
	return "15:04"
}
