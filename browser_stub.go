//go:build unittest

package tikrelay

import "fmt"

func (c *Client) InitBrowser() error {
	return fmt.Errorf("browser: %w (build tag: unittest)", ErrBrowserNotReady)
}

func (c *Client) launchBrowser() error {
	return fmt.Errorf("browser: %w (build tag: unittest)", ErrBrowserNotReady)
}

func (c *Client) setupResourceBlocking() {}

func (c *Client) browserAttached() bool {
	return false
}

func (c *Client) browserPageHTML(rawURL string) ([]byte, error) {
	return nil, ErrBrowserNotReady
}

func (c *Client) closeBrowser() error {
	c.page = nil
	c.browser = nil
	return nil
}
