package tikrelay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

var (
	ssrTagOpen  = []byte(`<script id="__UNIVERSAL_DATA_FOR_REHYDRATION__" type="application/json">`)
	ssrTagClose = []byte(`</script>`)
)

// fetchSSR is the last-resort resolver: fetch the TikTok video page itself
// and parse the rehydration JSON embedded in the server-rendered HTML.
// When the plain HTTP fetch yields no usable SSR block (bot wall, empty
// shell page) and a browser is attached, the page is re-fetched through it.
func (c *Client) fetchSSR(ctx context.Context, videoURL string) (VideoMetadata, error) {
	body, err := c.pageFetch(ctx, videoURL)
	if err != nil {
		return VideoMetadata{}, fmt.Errorf("fetch video page: %w", err)
	}

	data, err := extractUniversalData(body)
	if err != nil && c.browserAttached() {
		var berr error
		body, berr = c.browserPageHTML(videoURL)
		if berr != nil {
			return VideoMetadata{}, fmt.Errorf("browser page fetch: %w", berr)
		}
		data, err = extractUniversalData(body)
	}
	if err != nil {
		return VideoMetadata{}, fmt.Errorf("parse video page: %w", err)
	}

	return extractVideoFromSSR(data)
}

// fetchPagePlain fetches a video page over plain HTTP. A 404 here is the
// site itself saying the video does not exist.
func (c *Client) fetchPagePlain(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("video page status 404: %w", ErrNotFound)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read video page: %w", err)
	}
	return body, nil
}

// extractUniversalData finds and parses the __UNIVERSAL_DATA_FOR_REHYDRATION__
// JSON embedded in TikTok's server-rendered HTML.
func extractUniversalData(htmlBody []byte) (universalData, error) {
	start := bytes.Index(htmlBody, ssrTagOpen)
	if start == -1 {
		return universalData{}, fmt.Errorf("%w: rehydration script tag not found", ErrInvalidResponse)
	}
	start += len(ssrTagOpen)

	end := bytes.Index(htmlBody[start:], ssrTagClose)
	if end == -1 {
		return universalData{}, fmt.Errorf("%w: closing script tag not found", ErrInvalidResponse)
	}

	jsonBytes := htmlBody[start : start+end]

	var data universalData
	if err := json.Unmarshal(jsonBytes, &data); err != nil {
		return universalData{}, fmt.Errorf("unmarshal ssr data: %w", err)
	}
	return data, nil
}

// extractVideoFromSSR pulls the VideoMetadata from parsed SSR data.
func extractVideoFromSSR(data universalData) (VideoMetadata, error) {
	detail := data.DefaultScope.VideoDetail
	if detail.StatusCode != 0 {
		return VideoMetadata{}, fmt.Errorf("%w: ssr status code %d", ErrNotFound, detail.StatusCode)
	}
	item := detail.ItemInfo.ItemStruct
	if item.ID == "" {
		return VideoMetadata{}, fmt.Errorf("%w: video data missing in ssr response", ErrNotFound)
	}
	return parseSSRItem(item), nil
}
