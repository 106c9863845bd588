package models

import "time"

// CacheEntry is one key of the SQL cache used when Redis is unavailable. Values are
// stored as text so entries read back byte-for-byte what Redis would return.
type CacheEntry struct {
	Key       string    `gorm:"primaryKey;size:256"`
	Value     string    `gorm:"type:text"`
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired reports whether the entry has an expiry and now is past it.
func (e CacheEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}
