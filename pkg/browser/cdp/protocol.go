package cdp

import (
	"context"

	"github.com/chromedp/cdproto/browser"
	cdpproto "github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
)

const targetTypePage = "page"

// protocol is the slice of the DevTools protocol the backend uses.
type protocol interface {
	Targets(ctx context.Context) ([]*target.Info, error)
	WindowForTarget(ctx context.Context, id target.ID) (browser.WindowID, error)
	WindowBounds(ctx context.Context, id browser.WindowID) error
	CreateTarget(ctx context.Context, url string, newWindow, background bool) (target.ID, error)
	CloseTarget(ctx context.Context, id target.ID) error
	ActivateTarget(ctx context.Context, id target.ID) error
}

// chromeProtocol runs commands on a browser-level connection, so no page
// target is created or attached just to talk to Chrome.
type chromeProtocol struct {
	browser *chromedp.Browser
}

func (p chromeProtocol) exec(ctx context.Context) context.Context {
	return cdpproto.WithExecutor(ctx, p.browser)
}

func (p chromeProtocol) Targets(ctx context.Context) ([]*target.Info, error) {
	infos, err := target.GetTargets().Do(p.exec(ctx))
	if err != nil {
		return nil, err
	}
	pages := make([]*target.Info, 0, len(infos))
	for _, info := range infos {
		if info.Type == targetTypePage {
			pages = append(pages, info)
		}
	}
	return pages, nil
}

func (p chromeProtocol) WindowForTarget(ctx context.Context, id target.ID) (browser.WindowID, error) {
	windowID, _, err := browser.GetWindowForTarget().WithTargetID(id).Do(p.exec(ctx))
	return windowID, err
}

func (p chromeProtocol) WindowBounds(ctx context.Context, id browser.WindowID) error {
	_, err := browser.GetWindowBounds(id).Do(p.exec(ctx))
	return err
}

func (p chromeProtocol) CreateTarget(ctx context.Context, url string, newWindow, background bool) (target.ID, error) {
	return target.CreateTarget(url).
		WithNewWindow(newWindow).
		WithBackground(background).
		Do(p.exec(ctx))
}

func (p chromeProtocol) CloseTarget(ctx context.Context, id target.ID) error {
	return target.CloseTarget(id).Do(p.exec(ctx))
}

func (p chromeProtocol) ActivateTarget(ctx context.Context, id target.ID) error {
	return target.ActivateTarget(id).Do(p.exec(ctx))
}
