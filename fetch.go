package tikrelay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// GetVideoInfo resolves a sharing URL into VideoMetadata. Providers are
// consulted in fixed order with no backoff: each primary endpoint, then the
// alternate-shaped provider, then an SSR parse of the video page itself.
//
// The error distinguishes outcomes instead of collapsing them: ErrNotFound
// when a provider answered definitively that the video does not exist,
// ErrUpstreamUnavailable when every provider failed at the transport or
// decode level.
func (c *Client) GetVideoInfo(ctx context.Context, rawURL string) (VideoMetadata, error) {
	if !IsTikTokURL(rawURL) {
		return VideoMetadata{}, fmt.Errorf("get video info %q: %w", rawURL, ErrInvalidURL)
	}

	normalized := c.NormalizeURL(ctx, rawURL)

	var (
		lastErr        error
		sawNotFound    bool
		sawRateLimited bool
	)

	for _, endpoint := range c.endpoints {
		meta, err := c.fetchPrimary(ctx, endpoint, normalized)
		if err == nil {
			return meta, nil
		}
		if errors.Is(err, ErrNotFound) {
			sawNotFound = true
		}
		if errors.Is(err, ErrRateLimited) {
			sawRateLimited = true
		}
		lastErr = err
		c.logger.Debug("primary endpoint failed", "endpoint", endpoint, "err", err)
	}

	meta, err := c.fetchAlternate(ctx, normalized)
	if err == nil {
		return meta, nil
	}
	if errors.Is(err, ErrNotFound) {
		sawNotFound = true
	}
	lastErr = err
	c.logger.Debug("alternate provider failed", "endpoint", c.altEndpoint, "err", err)

	meta, err = c.fetchSSR(ctx, normalized)
	if err == nil {
		return meta, nil
	}
	if errors.Is(err, ErrNotFound) {
		sawNotFound = true
	}
	lastErr = err
	c.logger.Debug("ssr fallback failed", "url", normalized, "err", err)

	if sawNotFound {
		return VideoMetadata{}, fmt.Errorf("get video info: %w", ErrNotFound)
	}
	if sawRateLimited && !errors.Is(lastErr, ErrRateLimited) {
		return VideoMetadata{}, fmt.Errorf("get video info: %w: %w", ErrUpstreamUnavailable, ErrRateLimited)
	}
	return VideoMetadata{}, fmt.Errorf("get video info: %w: %w", ErrUpstreamUnavailable, lastErr)
}

// fetchPrimary queries one tikwm-style endpoint. An envelope code other
// than 0 is a definitive provider answer and maps to ErrNotFound.
func (c *Client) fetchPrimary(ctx context.Context, endpoint, videoURL string) (VideoMetadata, error) {
	q := url.Values{}
	q.Set("url", videoURL)
	q.Set("hd", "1")

	resp, err := c.doRequest(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return VideoMetadata{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return VideoMetadata{}, fmt.Errorf("endpoint status %d: %w", resp.StatusCode, ErrInvalidResponse)
	}

	var env wmEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return VideoMetadata{}, fmt.Errorf("decode provider response: %w", err)
	}

	if env.Code != 0 || env.Data == nil {
		return VideoMetadata{}, fmt.Errorf("provider code %d (%s): %w", env.Code, env.Msg, ErrNotFound)
	}
	return parseWMVideo(*env.Data), nil
}

// fetchAlternate queries the alternate-shaped provider and remaps its
// payload to the primary shape.
func (c *Client) fetchAlternate(ctx context.Context, videoURL string) (VideoMetadata, error) {
	if c.altEndpoint == "" {
		return VideoMetadata{}, fmt.Errorf("alternate provider: not configured")
	}

	reqBody, err := json.Marshal(map[string]string{"url": videoURL})
	if err != nil {
		return VideoMetadata{}, fmt.Errorf("marshal alternate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.altEndpoint, bytes.NewReader(reqBody))
	if err != nil {
		return VideoMetadata{}, fmt.Errorf("create alternate request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return VideoMetadata{}, fmt.Errorf("alternate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return VideoMetadata{}, fmt.Errorf("alternate status %d: %w", resp.StatusCode, ErrInvalidResponse)
	}

	var env altEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return VideoMetadata{}, fmt.Errorf("decode alternate response: %w", err)
	}

	if !env.Success || env.Data == nil {
		return VideoMetadata{}, fmt.Errorf("alternate provider declined: %w", ErrNotFound)
	}
	return parseAltVideo(*env.Data), nil
}
