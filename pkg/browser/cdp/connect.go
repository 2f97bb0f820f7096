package cdp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/chromedp/chromedp"
	"github.com/tidwall/gjson"

	"github.com/entrhq/tabsweep/pkg/tabs"
)

// DebuggerURL resolves remoteURL to the browser's DevTools websocket URL.
// ws:// and wss:// URLs are returned unchanged; http URLs are resolved
// through the /json/version endpoint.
func DebuggerURL(ctx context.Context, client *http.Client, remoteURL string) (string, error) {
	u, err := url.Parse(remoteURL)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid remote url %q", remoteURL)
	}
	switch u.Scheme {
	case "ws", "wss":
		return remoteURL, nil
	case "http", "https":
	default:
		return "", fmt.Errorf("unsupported remote url scheme %q", u.Scheme)
	}

	u.Path = strings.TrimSuffix(u.Path, "/") + "/json/version"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("query %s: %w: %w", u, tabs.ErrCollaboratorUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", u, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("query %s: status %d: %w", u, resp.StatusCode, tabs.ErrCollaboratorUnavailable)
	}
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("query %s: response is not JSON", u)
	}

	ws := gjson.GetBytes(body, "webSocketDebuggerUrl")
	if !ws.Exists() || ws.String() == "" {
		return "", fmt.Errorf("query %s: no webSocketDebuggerUrl in response", u)
	}

	// Chrome reports its own bind address; keep the host the user reached
	// it on so port forwards and containers work.
	wsURL, err := url.Parse(ws.String())
	if err != nil {
		return "", fmt.Errorf("query %s: bad webSocketDebuggerUrl: %w", u, err)
	}
	wsURL.Host = u.Host
	if u.Scheme == "https" {
		wsURL.Scheme = "wss"
	}
	return wsURL.String(), nil
}

// Connect attaches to a running Chrome at remoteURL. Close releases the
// connection without closing the browser.
func Connect(ctx context.Context, remoteURL string, opts Options) (*Backend, error) {
	wsURL, err := DebuggerURL(ctx, nil, remoteURL)
	if err != nil {
		return nil, err
	}

	connCtx, cancel := context.WithCancel(context.Background())
	b, err := chromedp.NewBrowser(connCtx, wsURL)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("connect %s: %w: %w", wsURL, tabs.ErrCollaboratorUnavailable, err)
	}

	backend := newBackend(chromeProtocol{browser: b}, opts)
	backend.closer = cancel
	backend.logger.Infof("connected to chrome at %s", wsURL)
	return backend, nil
}
