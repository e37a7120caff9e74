package engine

import "time"

// ChannelStats is the typed, already-defaulted channel record the scoring
// core consumes. Fields are populated at the API boundary; counts default
// to zero when the upstream response omits them.
type ChannelStats struct {
	ChannelID       string    `json:"channel_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	CustomURL       string    `json:"custom_url,omitempty"`
	Country         string    `json:"country,omitempty"`
	SubscriberCount int64     `json:"subscriber_count"`
	VideoCount      int64     `json:"video_count"`
	ViewCount       int64     `json:"view_count"`
	ThumbnailURL    string    `json:"thumbnail_url,omitempty"`
	PublishedAt     time.Time `json:"published_at"`
}

// VideoStats is the typed video record.
type VideoStats struct {
	VideoID      string    `json:"video_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ChannelID    string    `json:"channel_id"`
	ChannelTitle string    `json:"channel_title"`
	PublishedAt  time.Time `json:"published_at"`
	ViewCount    int64     `json:"view_count"`
	LikeCount    int64     `json:"like_count"`
	CommentCount int64     `json:"comment_count"`
	Duration     string    `json:"duration,omitempty"`
}

// CandidateChannel bundles everything the extractor and scorer need for one
// channel: its profile plus the most recent videos fetched for it.
type CandidateChannel struct {
	Channel ChannelStats `json:"channel"`
	Videos  []VideoStats `json:"videos"`
}

// SearchRecord is what the query cache stores for one (competitor, query)
// pair: the raw ID lists a search call produced.
type SearchRecord struct {
	Query      string    `json:"query"`
	Competitor string    `json:"competitor"`
	ChannelIDs []string  `json:"channel_ids"`
	VideoIDs   []string  `json:"video_ids"`
	FetchedAt  time.Time `json:"fetched_at"`
}
