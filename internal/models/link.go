package models

import "time"

// Link is the mapping record stored under url:{code}.
type Link struct {
	ShortCode string     `json:"code"`
	LongURL   string     `json:"url"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"` // nil means the link never expires
	Preview   *Preview   `json:"preview,omitempty"`
}

// IsExpired reports whether the link is logically dead at now.
func (l *Link) IsExpired(now time.Time) bool {
	if l.ExpiresAt == nil {
		return false
	}
	return !now.Before(*l.ExpiresAt)
}

// Preview holds the rich-preview fields rendered for social crawlers.
type Preview struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image"`
}

// Complete reports whether every field is set, in which case no metadata
// lookup is needed.
func (p *Preview) Complete() bool {
	return p != nil && p.Title != "" && p.Description != "" && p.ImageURL != ""
}
