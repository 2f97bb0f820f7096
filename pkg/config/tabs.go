package config

import (
	"fmt"
	"sync"

	"github.com/entrhq/tabsweep/pkg/tabs"
)

const (
	// SectionIDTabs is the identifier for the tab engine section.
	SectionIDTabs = "tabs"

	defaultDefaultScope = tabs.ScopeCurrentWindow
	minCloseConcurrency = 1
	maxCloseConcurrency = 64
)

// TabsSection configures the tab engine.
type TabsSection struct {
	ProtectedPatterns []string   `json:"protected_patterns"`
	CloseConcurrency  int        `json:"close_concurrency"`
	DefaultScope      tabs.Scope `json:"default_scope"`
	mu                sync.RWMutex
}

// NewTabsSection creates the section with defaults.
func NewTabsSection() *TabsSection {
	s := &TabsSection{}
	s.Reset()
	return s
}

func (s *TabsSection) ID() string {
	return SectionIDTabs
}

func (s *TabsSection) Title() string {
	return "Tabs"
}

func (s *TabsSection) Description() string {
	return "Extra protected URL patterns, close concurrency and the default scope."
}

func (s *TabsSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	patterns := make([]interface{}, 0, len(s.ProtectedPatterns))
	for _, p := range s.ProtectedPatterns {
		patterns = append(patterns, p)
	}
	return map[string]interface{}{
		"protected_patterns": patterns,
		"close_concurrency":  s.CloseConcurrency,
		"default_scope":      string(s.DefaultScope),
	}
}

func (s *TabsSection) SetData(data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		switch key {
		case "protected_patterns":
			patterns, err := stringSliceValue(key, value)
			if err != nil {
				return err
			}
			s.ProtectedPatterns = patterns
		case "close_concurrency":
			n, err := intValue(key, value)
			if err != nil {
				return err
			}
			s.CloseConcurrency = n
		case "default_scope":
			scope, err := stringValue(key, value)
			if err != nil {
				return err
			}
			s.DefaultScope = tabs.Scope(scope)
		}
	}
	return nil
}

func (s *TabsSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.CloseConcurrency < minCloseConcurrency || s.CloseConcurrency > maxCloseConcurrency {
		return fmt.Errorf("close_concurrency must be between %d and %d, got %d",
			minCloseConcurrency, maxCloseConcurrency, s.CloseConcurrency)
	}
	if _, err := tabs.ParseScope(string(s.DefaultScope)); err != nil {
		return fmt.Errorf("default_scope: %w", err)
	}
	if _, err := tabs.NewClassifier(s.ProtectedPatterns...); err != nil {
		return err
	}
	return nil
}

func (s *TabsSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ProtectedPatterns = nil
	s.CloseConcurrency = tabs.DefaultCloseConcurrency
	s.DefaultScope = defaultDefaultScope
}

// Classifier compiles the protected patterns.
func (s *TabsSection) Classifier() (*tabs.Classifier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return tabs.NewClassifier(s.ProtectedPatterns...)
}

// Concurrency returns the close concurrency.
func (s *TabsSection) Concurrency() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.CloseConcurrency
}

// Scope returns the default scope.
func (s *TabsSection) Scope() tabs.Scope {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.DefaultScope
}

// AddProtectedPattern appends a pattern unless it is already present.
func (s *TabsSection) AddProtectedPattern(pattern string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.ProtectedPatterns {
		if p == pattern {
			return
		}
	}
	s.ProtectedPatterns = append(s.ProtectedPatterns, pattern)
}
