package config

import (
	"fmt"
	"sync"
)

// Section is one named group of settings persisted under its ID.
type Section interface {
	ID() string
	Title() string
	Description() string

	// Data returns the section as plain values suitable for the store.
	Data() map[string]interface{}

	// SetData applies stored values. Unknown keys are ignored.
	SetData(data map[string]interface{}) error

	Validate() error
	Reset()
}

// Manager owns the registered sections and moves them to and from a Store.
type Manager struct {
	store    Store
	sections map[string]Section
	order    []string
	mu       sync.RWMutex
}

// NewManager creates a manager backed by store.
func NewManager(store Store) *Manager {
	return &Manager{
		store:    store,
		sections: make(map[string]Section),
	}
}

// RegisterSection adds a section. IDs must be unique.
func (m *Manager) RegisterSection(section Section) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := section.ID()
	if _, exists := m.sections[id]; exists {
		return fmt.Errorf("section %q already registered", id)
	}
	m.sections[id] = section
	m.order = append(m.order, id)
	return nil
}

// GetSection returns the section registered under id.
func (m *Manager) GetSection(id string) (Section, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	section, ok := m.sections[id]
	return section, ok
}

// GetSections returns the sections in registration order.
func (m *Manager) GetSections() []Section {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sections := make([]Section, 0, len(m.order))
	for _, id := range m.order {
		sections = append(sections, m.sections[id])
	}
	return sections
}

// LoadAll reloads the store and applies its data to every section. A
// section whose stored data is invalid is reset to defaults and reported.
func (m *Manager) LoadAll() error {
	if err := m.store.Load(); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	for _, section := range m.GetSections() {
		data, err := m.store.GetSection(section.ID())
		if err != nil {
			return fmt.Errorf("failed to read section %s: %w", section.ID(), err)
		}
		if len(data) == 0 {
			continue
		}
		if err := section.SetData(data); err != nil {
			section.Reset()
			return fmt.Errorf("invalid settings in section %s: %w", section.ID(), err)
		}
		if err := section.Validate(); err != nil {
			section.Reset()
			return fmt.Errorf("invalid settings in section %s: %w", section.ID(), err)
		}
	}
	return nil
}

// SaveAll validates every section, then writes them all to the store.
func (m *Manager) SaveAll() error {
	sections := m.GetSections()
	for _, section := range sections {
		if err := section.Validate(); err != nil {
			return fmt.Errorf("section %s: %w", section.ID(), err)
		}
	}
	for _, section := range sections {
		if err := m.store.SetSection(section.ID(), section.Data()); err != nil {
			return fmt.Errorf("failed to store section %s: %w", section.ID(), err)
		}
	}
	if err := m.store.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// ResetAll restores every section to its defaults.
func (m *Manager) ResetAll() {
	for _, section := range m.GetSections() {
		section.Reset()
	}
}

// Store returns the underlying store.
func (m *Manager) Store() Store {
	return m.store
}
