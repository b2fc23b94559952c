//go:build !unittest

package tikrelay

import (
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// InitBrowser launches a headless Chrome instance with stealth mode. The
// browser stays open in the background and is only used to fetch video
// pages when the plain HTTP SSR fetch comes back bot-blocked.
func (c *Client) InitBrowser() error {
	return c.launchBrowser()
}

func (c *Client) launchBrowser() error {
	l := launcher.New().Headless(true)
	if c.proxy != "" {
		l = l.Proxy(c.proxy)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect browser: %w", err)
	}

	page, err := stealth.Page(browser)
	if err != nil {
		return fmt.Errorf("create stealth page: %w", err)
	}

	c.browser = browser
	c.page = page

	c.setupResourceBlocking()
	return nil
}

func (c *Client) setupResourceBlocking() {
	router := c.browser.HijackRequests()
	blocked := []string{"*.css", "*.png", "*.jpg", "*.jpeg", "*.mp4", "*.woff*", "*.svg", "*analytics*"}
	for _, pattern := range blocked {
		router.MustAdd(pattern, func(ctx *rod.Hijack) {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
		})
	}
	go router.Run()
}

func (c *Client) browserAttached() bool {
	return c.page != nil
}

// browserPageHTML navigates the stealth page to rawURL and returns the
// rendered HTML. The page is single-threaded, hence the mutex.
func (c *Client) browserPageHTML(rawURL string) ([]byte, error) {
	c.browserMu.Lock()
	defer c.browserMu.Unlock()

	if c.page == nil {
		return nil, ErrBrowserNotReady
	}

	page := c.page.Timeout(15 * time.Second)

	if err := page.Navigate(rawURL); err != nil {
		return nil, fmt.Errorf("navigate to video page: %w", err)
	}
	if err := page.WaitStable(2 * time.Second); err != nil {
		return nil, fmt.Errorf("wait for video page: %w", err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("read page html: %w", err)
	}
	return []byte(html), nil
}

func (c *Client) closeBrowser() error {
	if c.page != nil {
		if err := c.page.Close(); err != nil {
			return fmt.Errorf("close page: %w", err)
		}
		c.page = nil
	}
	if c.browser != nil {
		if err := c.browser.Close(); err != nil {
			return fmt.Errorf("close browser: %w", err)
		}
		c.browser = nil
	}
	return nil
}
