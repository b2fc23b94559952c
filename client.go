package tikrelay

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"golang.org/x/net/proxy"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultEndpoints is the fixed-order primary resolver list. Each entry is
// tried in turn until one yields usable data.
var DefaultEndpoints = []string{
	"https://tikwm.com/api/",
	"https://www.tikwm.com/api/",
	"https://api.tikwm.com/api/",
}

// DefaultAltEndpoint is the alternate-shaped provider consulted when every
// primary endpoint has failed.
const DefaultAltEndpoint = "https://tikmate.online/api/v1/video/details"

// Client resolves TikTok sharing URLs into metadata and relays media bytes.
// It is safe for concurrent use; the only guarded state is the optional
// headless-browser page used by the SSR fallback.
type Client struct {
	client      *http.Client
	proxy       string
	userAgent   string
	baseURL     string // defaults to "https://www.tiktok.com", the SSR page host
	endpoints   []string
	altEndpoint string
	logger      *slog.Logger

	// Browser for SSR page fetches only (bot-blocked plain fetches).
	browser   *rod.Browser
	page      *rod.Page
	browserMu sync.Mutex

	// pageFetch fetches a video page's HTML. Replaceable for testing.
	pageFetch func(ctx context.Context, rawURL string) ([]byte, error)
}

// defaultTransport returns an http.Transport tuned for a relay:
// connection pooling, keep-alive, and TLS handshake caching.
func defaultTransport() *http.Transport {
	return &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}
}

// New creates a Client with sensible defaults. The browser is not launched
// until InitBrowser is called; without it the SSR fallback uses plain HTTP.
func New() *Client {
	c := &Client{
		client: &http.Client{
			Timeout:   15 * time.Second,
			Transport: defaultTransport(),
		},
		baseURL:     "https://www.tiktok.com",
		userAgent:   defaultUserAgent,
		endpoints:   DefaultEndpoints,
		altEndpoint: DefaultAltEndpoint,
		logger:      slog.New(slog.DiscardHandler),
	}
	c.pageFetch = c.fetchPagePlain
	return c
}

// WithEndpoints replaces the primary resolver endpoint list.
func (c *Client) WithEndpoints(endpoints []string) *Client {
	if len(endpoints) > 0 {
		c.endpoints = endpoints
	}
	return c
}

// WithAltEndpoint replaces the alternate-provider endpoint.
func (c *Client) WithAltEndpoint(endpoint string) *Client {
	c.altEndpoint = endpoint
	return c
}

// WithTimeout sets the per-request timeout for metadata lookups. Media
// relays are bound by the caller's context instead.
func (c *Client) WithTimeout(d time.Duration) *Client {
	c.client.Timeout = d
	return c
}

// WithLogger sets the structured logger. Nil restores the discard logger.
func (c *Client) WithLogger(l *slog.Logger) *Client {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	c.logger = l
	return c
}

// SetProxy configures an HTTP/HTTPS or SOCKS5 proxy for upstream requests.
// Connection pooling and keep-alive settings are preserved.
func (c *Client) SetProxy(proxyAddr string) error {
	if proxyAddr == "" {
		c.client.Transport = defaultTransport()
		c.proxy = ""
		return nil
	}

	u, err := url.Parse(proxyAddr)
	if err != nil {
		return fmt.Errorf("parse proxy url: %w", err)
	}

	base := defaultTransport()

	switch u.Scheme {
	case "http", "https":
		base.Proxy = http.ProxyURL(u)
		c.client.Transport = base
	case "socks5":
		var auth *proxy.Auth
		if u.User != nil {
			pass, _ := u.User.Password()
			auth = &proxy.Auth{User: u.User.Username(), Password: pass}
		}
		dialer, err := proxy.SOCKS5("tcp", u.Host, auth, proxy.Direct)
		if err != nil {
			return fmt.Errorf("socks5 proxy: %w", err)
		}
		dc, ok := dialer.(proxy.ContextDialer)
		if !ok {
			return fmt.Errorf("socks5: context dialer not supported")
		}
		base.DialContext = dc.DialContext
		c.client.Transport = base
	default:
		return fmt.Errorf("unsupported proxy scheme: %s", u.Scheme)
	}

	c.proxy = proxyAddr
	return nil
}

// doRequest builds and executes an HTTP request with standard headers.
func (c *Client) doRequest(ctx context.Context, method, urlStr string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, urlStr, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	// 404 is deliberately not mapped here: for an API endpoint it means the
	// route is gone (an outage), for a video page it means the video is gone.
	// Callers decide.
	if resp.StatusCode == http.StatusTooManyRequests {
		resp.Body.Close()
		return nil, ErrRateLimited
	}

	return resp, nil
}

// OpenStream opens a streaming GET to a resolved media URL. The response
// body is not buffered; the caller relays and closes it. The request is
// bound to ctx so a disconnecting caller cancels the upstream transfer.
func (c *Client) OpenStream(ctx context.Context, mediaURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create stream request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Referer", c.baseURL+"/")

	// Bypass the lookup timeout: media transfers legitimately run long and
	// are cancelled through ctx instead.
	streamClient := &http.Client{Transport: c.client.Transport}
	resp, err := streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open media stream: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusForbidden {
			return nil, fmt.Errorf("media fetch status %d: %w", resp.StatusCode, ErrNoMedia)
		}
		return nil, fmt.Errorf("media fetch status %d: %w", resp.StatusCode, ErrUpstreamUnavailable)
	}

	return resp, nil
}

// Close releases all resources including the headless browser if running.
func (c *Client) Close() error {
	return c.closeBrowser()
}
