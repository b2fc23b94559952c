package tikrelay

import "errors"

var (
	ErrInvalidURL          = errors.New("tikrelay: not a tiktok url")
	ErrNotFound            = errors.New("tikrelay: video not found")
	ErrNoMedia             = errors.New("tikrelay: media not available")
	ErrUpstreamUnavailable = errors.New("tikrelay: all upstream providers unavailable")
	ErrRateLimited         = errors.New("tikrelay: rate limited by upstream")
	ErrInvalidResponse     = errors.New("tikrelay: invalid upstream response")
	ErrBrowserNotReady     = errors.New("tikrelay: browser not initialized")
)
