package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Instant is a point in time decoded leniently from client JSON: RFC 3339
// strings, bare dates (2006-01-02) and Unix epoch milliseconds are accepted.
type Instant struct {
	time.Time
}

var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// UnmarshalJSON implements json.Unmarshaler.
func (i *Instant) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			return nil
		}
		for _, layout := range instantLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				i.Time = t
				return nil
			}
		}
		return fmt.Errorf("instant: unrecognised time %q", s)
	}

	ms, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("instant: %w", err)
	}
	i.Time = time.UnixMilli(int64(ms))
	return nil
}

// MarshalJSON implements json.Marshaler.
func (i Instant) MarshalJSON() ([]byte, error) {
	if i.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(i.Time.Format(time.RFC3339))
}

// IsSet reports whether the instant carries a value.
func (i *Instant) IsSet() bool {
	return i != nil && !i.IsZero()
}
