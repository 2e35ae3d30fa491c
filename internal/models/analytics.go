package models

// LinkClicks is one row of the aggregate analytics top list.
type LinkClicks struct {
	ShortCode string `json:"code"`
	LongURL   string `json:"url,omitempty"`
	Clicks    int64  `json:"clicks"`
}

// AnalyticsSummary is the aggregate analytics view.
type AnalyticsSummary struct {
	TotalClicks int64        `json:"totalClicks"`
	TopURLs     []LinkClicks `json:"topUrls"`
}
