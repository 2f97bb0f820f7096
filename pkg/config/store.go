package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Store persists section data.
type Store interface {
	Load() error
	Save() error

	// GetSection returns a copy of one section's data, empty if absent.
	GetSection(sectionID string) (map[string]interface{}, error)
	SetSection(sectionID string, data map[string]interface{}) error

	GetAll() (map[string]map[string]interface{}, error)
	SetAll(data map[string]map[string]interface{}) error
}

// Format is the on-disk encoding of a FileStore.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks YAML for .yaml and .yml files and JSON otherwise.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// fileLayout is the document written to disk.
type fileLayout struct {
	Version  string                            `json:"version" yaml:"version"`
	Sections map[string]map[string]interface{} `json:"sections" yaml:"sections"`
}

// FileStore keeps all sections in one JSON or YAML file.
type FileStore struct {
	path     string
	format   Format
	data     map[string]map[string]interface{}
	mu       sync.RWMutex
	version  string
	modified bool
}

// DefaultPath returns ~/.tabsweep/config.json.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".tabsweep", "config.json"), nil
}

// NewFileStore opens the store at path, or at DefaultPath when path is
// empty. A missing file is an empty configuration.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		def, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = def
	}

	store := &FileStore{
		path:    path,
		format:  FormatForPath(path),
		data:    make(map[string]map[string]interface{}),
		version: "1.0",
	}
	if err := store.Load(); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	return store, nil
}

// Load reads the file, replacing any unsaved data.
func (s *FileStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.data = make(map[string]map[string]interface{})
			s.modified = false
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var doc fileLayout
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := s.decode(raw, &doc); err != nil {
			return fmt.Errorf("failed to decode config file: %w", err)
		}
	}

	if doc.Version != "" {
		s.version = doc.Version
	}
	s.data = doc.Sections
	if s.data == nil {
		s.data = make(map[string]map[string]interface{})
	}
	s.modified = false
	return nil
}

func (s *FileStore) decode(raw []byte, doc *fileLayout) error {
	if s.format == FormatYAML {
		return yaml.Unmarshal(raw, doc)
	}
	return json.Unmarshal(raw, doc)
}

func (s *FileStore) encode(doc fileLayout) ([]byte, error) {
	if s.format == FormatYAML {
		return yaml.Marshal(doc)
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// Save writes the file atomically through a temp file and rename.
func (s *FileStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	out, err := s.encode(fileLayout{Version: s.version, Sections: s.data})
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, out, 0600); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to write temp config file: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	s.modified = false
	return nil
}

func copySection(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

func (s *FileStore) GetSection(sectionID string) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySection(s.data[sectionID]), nil
}

func (s *FileStore) SetSection(sectionID string, data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sectionID] = copySection(data)
	s.modified = true
	return nil
}

func (s *FileStore) GetAll() (map[string]map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]map[string]interface{}, len(s.data))
	for id, section := range s.data {
		out[id] = copySection(section)
	}
	return out, nil
}

func (s *FileStore) SetAll(data map[string]map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string]map[string]interface{}, len(data))
	for id, section := range data {
		s.data[id] = copySection(section)
	}
	s.modified = true
	return nil
}

// IsModified reports unsaved changes.
func (s *FileStore) IsModified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modified
}

// Path returns the file path of the store.
func (s *FileStore) Path() string {
	return s.path
}

// Format returns the file encoding.
func (s *FileStore) Format() Format {
	return s.format
}
