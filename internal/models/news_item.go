package models

import "time"

// NewsItem is one ingested headline. URL is the dedupe key: re-ingesting a
// feed never inserts the same link twice.
type NewsItem struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Source      string     `gorm:"not null" json:"source"`
	Title       string     `gorm:"not null" json:"title"`
	URL         string     `gorm:"uniqueIndex;not null" json:"url"`
	PublishedAt *time.Time `gorm:"index" json:"publishedAt"`
	Summary     string     `json:"summary,omitempty"`
	CreatedAt   time.Time  `json:"-"`
}
