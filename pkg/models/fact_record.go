package models

import "time"

// FactRecord is the canonical structured-fact output of the graph resolver.
// Every field is optional: a partially filled or empty record is a valid
// degraded result, never an error.
type FactRecord struct {
	Title        *string  `json:"title,omitempty"`
	Artist       *string  `json:"artist,omitempty"`
	Date         *string  `json:"date,omitempty"`
	ClassifiedAs []string `json:"classified_as,omitempty"`
	Materials    []string `json:"materials,omitempty"`
	Dimensions   []string `json:"dimensions,omitempty"`
	Descriptions []string `json:"descriptions,omitempty"`
}

// IsEmpty reports whether no field of the record was extracted.
func (f *FactRecord) IsEmpty() bool {
	return f.Title == nil && f.Artist == nil && f.Date == nil &&
		len(f.ClassifiedAs) == 0 && len(f.Materials) == 0 &&
		len(f.Dimensions) == 0 && len(f.Descriptions) == 0
}

// CachedMetadata wraps a resolved fact record together with its source graph
// and an expiry timestamp for the lazy-refresh cache.
type CachedMetadata struct {
	ObjectNumber string         `json:"object_number"`
	PID          string         `json:"pid"`
	Facts        FactRecord     `json:"facts"`
	Raw          map[string]any `json:"raw,omitempty"`
	ExpiresAt    time.Time      `json:"expires_at"`
}

// Expired reports whether the cached value is past its expiry at now.
func (m *CachedMetadata) Expired(now time.Time) bool {
	return !now.Before(m.ExpiresAt)
}
