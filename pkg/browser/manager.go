package browser

import (
	"fmt"
	"io"
	"sync"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/tabsweep/pkg/tabs"
)

// Manager owns the Playwright driver and the browser it launched.
type Manager struct {
	mu          sync.Mutex
	playwright  *playwright.Playwright
	browser     playwright.Browser
	backend     *Backend
	logger      tabs.Logger
	initialized bool
}

// NewManager creates a manager. logger may be nil.
func NewManager(logger tabs.Logger) *Manager {
	return &Manager{logger: logger}
}

// Initialize installs (unless skipped) and starts the Playwright driver.
func (m *Manager) Initialize(opts Options) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	// Driver output would corrupt the popup.
	runOpts := &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}

	if !opts.SkipInstall {
		if err := playwright.Install(runOpts); err != nil {
			return fmt.Errorf("failed to install playwright: %w", err)
		}
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	m.playwright = pw
	m.initialized = true
	return nil
}

// Launch starts or attaches to Chromium and returns the backend for it.
// Calling Launch again returns the same backend.
func (m *Manager) Launch(opts Options) (*Backend, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.backend != nil {
		return m.backend, nil
	}
	if !m.initialized {
		return nil, fmt.Errorf("browser manager not initialized: %w", tabs.ErrCollaboratorUnavailable)
	}

	var (
		browser playwright.Browser
		err     error
	)
	if opts.RemoteURL != "" {
		browser, err = m.playwright.Chromium.ConnectOverCDP(opts.RemoteURL, playwright.BrowserTypeConnectOverCDPOptions{
			Timeout: playwright.Float(opts.timeoutMillis()),
		})
	} else {
		browser, err = m.playwright.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
			Headless: playwright.Bool(opts.Headless),
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to start browser: %w: %w", tabs.ErrCollaboratorUnavailable, err)
	}

	backend, err := NewBackend(browser, opts, m.logger)
	if err != nil {
		_ = browser.Close()
		return nil, err
	}

	m.browser = browser
	m.backend = backend
	return backend, nil
}

// Shutdown closes the browser and stops Playwright.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser != nil {
		_ = m.browser.Close() // the driver is stopped below either way
		m.browser = nil
		m.backend = nil
	}

	if m.initialized && m.playwright != nil {
		if err := m.playwright.Stop(); err != nil {
			return fmt.Errorf("failed to stop playwright: %w", err)
		}
		m.initialized = false
	}
	return nil
}
