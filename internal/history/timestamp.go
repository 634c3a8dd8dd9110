package history

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// timestampLayouts are tried in order. Naive timestamps, as written by
// Python's datetime.isoformat(), are read in local time.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// timestamp decodes the time formats found in history documents.
type timestamp struct{ time.Time }

func (t *timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	parsed, err := parseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for i, layout := range timestampLayouts {
		loc := time.Local
		if i == 0 {
			loc = time.UTC
		}
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("timestamp: unrecognized format %q", s)
}

func (c *Commit) UnmarshalJSON(data []byte) error {
	type plain Commit
	aux := struct {
		*plain
		FirstSeen timestamp `json:"first_seen"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.FirstSeen = aux.FirstSeen.Time
	return nil
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	type plain Entry
	aux := struct {
		*plain
		FirstSeen     timestamp  `json:"first_seen"`
		LastSeen      timestamp  `json:"last_seen"`
		LastTweetedAt *timestamp `json:"last_tweeted_at"`
	}{plain: (*plain)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	e.FirstSeen = aux.FirstSeen.Time
	e.LastSeen = aux.LastSeen.Time
	e.LastTweetedAt = nil
	if aux.LastTweetedAt != nil && !aux.LastTweetedAt.IsZero() {
		at := aux.LastTweetedAt.Time
		e.LastTweetedAt = &at
	}
	return nil
}
