package dto

import "time"

type IngestPostRequest struct {
	Platform    string             `json:"platform" binding:"required"`
	PostID      string             `json:"post_id" binding:"required"`
	Content     string             `json:"content" binding:"required"`
	Author      string             `json:"author,omitempty"`
	URL         string             `json:"url,omitempty"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
	ContentHash string             `json:"content_hash,omitempty"`
	ScrapedAt   *time.Time         `json:"scraped_at,omitempty"`
}

type IngestPostResponse struct {
	RawPostID  int64  `json:"raw_post_id"`
	DedupeKey  string `json:"dedupe_key"`
	Duplicated bool   `json:"duplicated"`
}
