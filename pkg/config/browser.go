package config

import (
	"fmt"
	"net/url"
	"sync"
	"time"
)

const (
	// SectionIDBrowser is the identifier for the browser connection section.
	SectionIDBrowser = "browser"

	BackendPlaywright = "playwright"
	BackendCDP        = "cdp"
	BackendMemory     = "memory"

	defaultBackend     = BackendCDP
	defaultRemoteURL   = "http://127.0.0.1:9222"
	defaultCallTimeout = 10 * time.Second
)

// BrowserSection selects and configures the browser backend.
type BrowserSection struct {
	Backend       string        `json:"backend"`
	RemoteURL     string        `json:"remote_url"`
	BookmarksFile string        `json:"bookmarks_file"`
	Headless      bool          `json:"headless"`
	CallTimeout   time.Duration `json:"call_timeout"`
	FixtureFile   string        `json:"fixture_file"`
	mu            sync.RWMutex
}

// NewBrowserSection creates the section with defaults.
func NewBrowserSection() *BrowserSection {
	s := &BrowserSection{}
	s.Reset()
	return s
}

func (s *BrowserSection) ID() string {
	return SectionIDBrowser
}

func (s *BrowserSection) Title() string {
	return "Browser"
}

func (s *BrowserSection) Description() string {
	return "Which browser to drive and how to reach it."
}

func (s *BrowserSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"backend":        s.Backend,
		"remote_url":     s.RemoteURL,
		"bookmarks_file": s.BookmarksFile,
		"headless":       s.Headless,
		"call_timeout":   s.CallTimeout.String(),
		"fixture_file":   s.FixtureFile,
	}
}

func (s *BrowserSection) SetData(data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		var err error
		switch key {
		case "backend":
			s.Backend, err = stringValue(key, value)
		case "remote_url":
			s.RemoteURL, err = stringValue(key, value)
		case "bookmarks_file":
			s.BookmarksFile, err = stringValue(key, value)
		case "headless":
			s.Headless, err = boolValue(key, value)
		case "call_timeout":
			s.CallTimeout, err = durationValue(key, value)
		case "fixture_file":
			s.FixtureFile, err = stringValue(key, value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *BrowserSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch s.Backend {
	case BackendPlaywright, BackendMemory:
	case BackendCDP:
		u, err := url.Parse(s.RemoteURL)
		if err != nil || u.Host == "" {
			return fmt.Errorf("remote_url must be an absolute URL for the cdp backend, got %q", s.RemoteURL)
		}
	default:
		return fmt.Errorf("unknown backend %q (want %s, %s or %s)", s.Backend, BackendPlaywright, BackendCDP, BackendMemory)
	}

	if s.CallTimeout <= 0 || s.CallTimeout > 5*time.Minute {
		return fmt.Errorf("call_timeout must be between 0 and 5m, got %v", s.CallTimeout)
	}
	return nil
}

func (s *BrowserSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Backend = defaultBackend
	s.RemoteURL = defaultRemoteURL
	s.BookmarksFile = ""
	s.Headless = false
	s.CallTimeout = defaultCallTimeout
	s.FixtureFile = ""
}

// Settings returns a copy of the current values.
func (s *BrowserSection) Settings() BrowserSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return BrowserSettings{
		Backend:       s.Backend,
		RemoteURL:     s.RemoteURL,
		BookmarksFile: s.BookmarksFile,
		Headless:      s.Headless,
		CallTimeout:   s.CallTimeout,
		FixtureFile:   s.FixtureFile,
	}
}

// BrowserSettings is a lock-free snapshot of BrowserSection.
type BrowserSettings struct {
	Backend       string
	RemoteURL     string
	BookmarksFile string
	Headless      bool
	CallTimeout   time.Duration
	FixtureFile   string
}
