package tikrelay

import (
	"strings"
	"time"
)

// VideoMetadata is the resolved description of a TikTok video: identity,
// engagement counts, and direct media URLs. It lives for one request;
// nothing is cached or persisted.
type VideoMetadata struct {
	ID         string
	Title      string
	Duration   int // seconds
	Author     Author
	Stats      Stats
	CreatedAt  time.Time
	VideoURL   string
	AudioURL   string
	Thumbnails Thumbnails
}

// Author identifies the account that posted the video.
type Author struct {
	Username  string
	Nickname  string
	AvatarURL string
}

// Stats holds the video's engagement counts.
type Stats struct {
	Views    int
	Likes    int
	Comments int
	Shares   int
}

// Thumbnails holds the three cover image variants TikTok serves,
// in descending quality order.
type Thumbnails struct {
	Cover        string
	OriginCover  string
	DynamicCover string
}

// HasVideo reports whether a direct video URL was resolved.
func (m VideoMetadata) HasVideo() bool { return m.VideoURL != "" }

// HasAudio reports whether a direct audio URL was resolved.
func (m VideoMetadata) HasAudio() bool { return m.AudioURL != "" }

// Quality selects one of the three thumbnail variants.
type Quality string

const (
	QualityHigh   Quality = "high"
	QualityMedium Quality = "medium"
	QualityLow    Quality = "low"
)

// ParseQuality maps a query-string value to a Quality, ignoring case.
// Unknown or empty values fall back to high.
func ParseQuality(s string) Quality {
	switch Quality(strings.ToLower(s)) {
	case QualityMedium:
		return QualityMedium
	case QualityLow:
		return QualityLow
	default:
		return QualityHigh
	}
}

// ThumbnailURL returns the thumbnail variant for q.
func (m VideoMetadata) ThumbnailURL(q Quality) string {
	switch q {
	case QualityMedium:
		return m.Thumbnails.OriginCover
	case QualityLow:
		return m.Thumbnails.DynamicCover
	default:
		return m.Thumbnails.Cover
	}
}
