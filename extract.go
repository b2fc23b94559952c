package tikrelay

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// idPatterns is the ordered list of sharing-URL shapes we recognize.
// The first pattern whose capture group matches wins.
var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:https?://)?(?:www\.)?tiktok\.com/@[\w.-]+/video/(\d+)`),
	regexp.MustCompile(`(?:https?://)?(?:vm\.tiktok\.com|vt\.tiktok\.com)/(\w+)`),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?tiktok\.com/t/(\w+)`),
	regexp.MustCompile(`(?:https?://)?(?:m\.)?tiktok\.com/@[\w.-]+/video/(\d+)`),
	regexp.MustCompile(`tiktok\.com.*?/video/(\d+)`),
	regexp.MustCompile(`/video/(\d+)`),
}

// ExtractVideoID pulls the video identifier out of a sharing URL.
// Best-effort string extraction: the first matching pattern wins and no
// uniqueness is guaranteed. Returns ErrInvalidURL when nothing matches.
func ExtractVideoID(rawURL string) (string, error) {
	for _, p := range idPatterns {
		if m := p.FindStringSubmatch(rawURL); m != nil {
			return m[1], nil
		}
	}
	return "", fmt.Errorf("extract video id from %q: %w", rawURL, ErrInvalidURL)
}

// IsTikTokURL reports whether the URL plausibly points at TikTok at all.
// Used for fast input validation before any upstream call.
func IsTikTokURL(rawURL string) bool {
	return strings.Contains(rawURL, "tiktok.com")
}

// isShortLink reports whether the URL is one of the redirecting short forms.
func isShortLink(rawURL string) bool {
	return strings.Contains(rawURL, "vm.tiktok.com") ||
		strings.Contains(rawURL, "vt.tiktok.com") ||
		strings.Contains(rawURL, "tiktok.com/t/")
}

// NormalizeURL brings a sharing URL into canonical form: short links are
// expanded by following redirects with a HEAD request, and a missing scheme
// gets https prefixed. Expansion failures are non-fatal; the input URL is
// kept and the resolver APIs get to deal with it.
func (c *Client) NormalizeURL(ctx context.Context, rawURL string) string {
	if isShortLink(rawURL) {
		if expanded, err := c.resolveRedirect(ctx, rawURL); err == nil {
			rawURL = expanded
		}
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		rawURL = "https://" + rawURL
	}
	return rawURL
}

// resolveRedirect follows the short-link redirect chain and returns the
// final URL.
func (c *Client) resolveRedirect(ctx context.Context, rawURL string) (string, error) {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		rawURL = "https://" + rawURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create redirect request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("resolve short link: %w", err)
	}
	resp.Body.Close()

	return resp.Request.URL.String(), nil
}
