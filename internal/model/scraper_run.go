package model

import "time"

// ScraperRun records one run of a scraper or the pipeline itself, for
// freshness monitoring on the dashboard.
type ScraperRun struct {
	ID             int64     `json:"id"`
	ScraperName    string    `json:"scraper_name"`
	Success        bool      `json:"success"`
	Error          *string   `json:"error,omitempty"`
	ItemsProcessed int       `json:"items_processed"`
	RanAt          time.Time `json:"ran_at"`
}
