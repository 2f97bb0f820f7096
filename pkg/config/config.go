package config

import (
	"sync"
)

var (
	globalManager *Manager
	globalMu      sync.Mutex
)

// Initialize loads the configuration at configPath (or the default path)
// into the global manager. Call once at startup.
func Initialize(configPath string) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	manager, err := Open(configPath)
	if err != nil {
		return err
	}
	globalManager = manager
	return nil
}

// Open builds a manager with every tabsweep section registered and loaded.
func Open(configPath string) (*Manager, error) {
	store, err := NewFileStore(configPath)
	if err != nil {
		return nil, err
	}

	manager := NewManager(store)
	if err := manager.RegisterSection(NewTabsSection()); err != nil {
		return nil, err
	}
	if err := manager.RegisterSection(NewBrowserSection()); err != nil {
		return nil, err
	}

	if err := manager.LoadAll(); err != nil {
		return nil, err
	}
	return manager, nil
}

// Global returns the global configuration manager.
// Panics if Initialize has not been called.
func Global() *Manager {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalManager == nil {
		panic("config not initialized: call config.Initialize first")
	}
	return globalManager
}

// IsInitialized returns true if the global configuration has been initialized.
func IsInitialized() bool {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalManager != nil
}

// GetTabs returns the tabs section from global config, or nil.
func GetTabs() *TabsSection {
	if !IsInitialized() {
		return nil
	}
	section, ok := Global().GetSection(SectionIDTabs)
	if !ok {
		return nil
	}
	tabsSection, _ := section.(*TabsSection)
	return tabsSection
}

// GetBrowser returns the browser section from global config, or nil.
func GetBrowser() *BrowserSection {
	if !IsInitialized() {
		return nil
	}
	section, ok := Global().GetSection(SectionIDBrowser)
	if !ok {
		return nil
	}
	browser, _ := section.(*BrowserSection)
	return browser
}
