package browser

import (
	"errors"

	"github.com/playwright-community/playwright-go"
)

// The fakes embed the Playwright interfaces and override only what the
// backend calls; anything else panics on the nil embedded value.

type fakePage struct {
	playwright.Page
	owner   *fakeContext
	url     string
	title   string
	fronted int
}

func (p *fakePage) URL() string { return p.url }

func (p *fakePage) Title() (string, error) { return p.title, nil }

func (p *fakePage) Goto(url string, _ ...playwright.PageGotoOptions) (playwright.Response, error) {
	if err := p.owner.browser.gotoErr[url]; err != nil {
		return nil, err
	}
	p.url = url
	p.title = "title of " + url
	return nil, nil
}

func (p *fakePage) BringToFront() error {
	p.fronted++
	return nil
}

func (p *fakePage) Close(_ ...playwright.PageCloseOptions) error {
	if p.owner.browser.closeErr != nil {
		return p.owner.browser.closeErr
	}
	pages := p.owner.pages
	for i, other := range pages {
		if other == p {
			p.owner.pages = append(pages[:i:i], pages[i+1:]...)
			break
		}
	}
	return nil
}

type fakeContext struct {
	playwright.BrowserContext
	browser *fakeBrowser
	pages   []*fakePage
}

func (c *fakeContext) Pages() []playwright.Page {
	out := make([]playwright.Page, 0, len(c.pages))
	for _, p := range c.pages {
		out = append(out, p)
	}
	return out
}

func (c *fakeContext) NewPage() (playwright.Page, error) {
	if c.browser.newPageErr != nil {
		return nil, c.browser.newPageErr
	}
	p := &fakePage{owner: c, url: "about:blank"}
	c.pages = append(c.pages, p)
	return p, nil
}

func (c *fakeContext) Close(_ ...playwright.BrowserContextCloseOptions) error {
	contexts := c.browser.contexts
	for i, other := range contexts {
		if other == c {
			c.browser.contexts = append(contexts[:i:i], contexts[i+1:]...)
			break
		}
	}
	return nil
}

type fakeBrowser struct {
	playwright.Browser
	contexts      []*fakeContext
	newContextErr error
	newPageErr    error
	closeErr      error
	gotoErr       map[string]error
}

func newFakeBrowser() *fakeBrowser {
	return &fakeBrowser{gotoErr: make(map[string]error)}
}

// window adds a context holding one page per URL.
func (b *fakeBrowser) window(urls ...string) *fakeContext {
	c := &fakeContext{browser: b}
	for _, u := range urls {
		c.pages = append(c.pages, &fakePage{owner: c, url: u, title: "title of " + u})
	}
	b.contexts = append(b.contexts, c)
	return c
}

func (b *fakeBrowser) Contexts() []playwright.BrowserContext {
	out := make([]playwright.BrowserContext, 0, len(b.contexts))
	for _, c := range b.contexts {
		out = append(out, c)
	}
	return out
}

func (b *fakeBrowser) NewContext(_ ...playwright.BrowserNewContextOptions) (playwright.BrowserContext, error) {
	if b.newContextErr != nil {
		return nil, b.newContextErr
	}
	return b.window(), nil
}

func (b *fakeBrowser) Close(_ ...playwright.BrowserCloseOptions) error { return nil }

var errDriver = errors.New("driver crashed")
