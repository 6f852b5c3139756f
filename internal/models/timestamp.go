package models

import (
	"fmt"
	"time"
)

// TimestampLayout is fixed width so serialized timestamps sort lexically
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// Timestamp is a UTC instant with a sortable JSON form
type Timestamp struct {
	time.Time
}

// NewTimestamp normalizes t to UTC at microsecond precision
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC().Truncate(time.Microsecond)}
}

// String formats the timestamp using TimestampLayout
func (t Timestamp) String() string {
	return t.UTC().Format(TimestampLayout)
}

// MarshalJSON implements json.Marshaler
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("timestamp must be a JSON string")
	}
	parsed, err := time.Parse(TimestampLayout, string(data[1:len(data)-1]))
	if err != nil {
		parsed, err = time.Parse(time.RFC3339Nano, string(data[1:len(data)-1]))
		if err != nil {
			return fmt.Errorf("parse timestamp: %w", err)
		}
	}
	*t = NewTimestamp(parsed)
	return nil
}
