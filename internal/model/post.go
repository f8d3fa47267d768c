package model

import "time"

// RawPost is a scraped social post as delivered by a scraper.
// (platform, post_id) identifies the post at the source; content_hash
// dedupes re-scrapes of the same content.
type RawPost struct {
	ID          int64              `json:"id"`
	Platform    string             `json:"platform"`
	PostID      string             `json:"post_id"`
	Content     string             `json:"content"`
	Author      string             `json:"author,omitempty"`
	URL         string             `json:"url,omitempty"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
	ContentHash string             `json:"content_hash"`
	Processed   bool               `json:"processed"`
	ScrapedAt   time.Time          `json:"scraped_at"`
	CreatedAt   time.Time          `json:"created_at"`
}
