package handoff

import (
	"encoding/json"
	"time"
)

// Entry is a stored value with its expiry.
type Entry struct {
	Data json.RawMessage `json:"data"`

	// PushedAt is when the value was published.
	PushedAt time.Time `json:"pushed_at"`

	// Expires is when the value stops being visible. Zero never expires.
	Expires time.Time `json:"expires"`
}

// IsExpired returns true if the entry has expired.
func (e *Entry) IsExpired() bool {
	return !e.Expires.IsZero() && time.Now().After(e.Expires)
}

// TTL returns the time until expiration, 0 when already expired and -1 when
// the entry never expires.
func (e *Entry) TTL() time.Duration {
	if e.Expires.IsZero() {
		return -1
	}
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}

func newEntry(v any, ttl time.Duration) (*Entry, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	entry := &Entry{Data: data, PushedAt: now}
	if ttl > 0 {
		entry.Expires = now.Add(ttl)
	}
	return entry, nil
}
