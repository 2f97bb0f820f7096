package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatForPath("/x/config.json"))
	assert.Equal(t, FormatJSON, FormatForPath("/x/config"))
	assert.Equal(t, FormatYAML, FormatForPath("/x/config.yaml"))
	assert.Equal(t, FormatYAML, FormatForPath("/x/CONFIG.YML"))
}

func TestNewFileStore_DefaultPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	store, err := NewFileStore("")
	require.NoError(t, err)

	want, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, want, store.Path())
	assert.Equal(t, ".tabsweep", filepath.Base(filepath.Dir(store.Path())))
	assert.False(t, store.IsModified())
}

func TestFileStore_MissingFileIsEmpty(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)

	all, err := store.GetAll()
	require.NoError(t, err)
	assert.Empty(t, all)

	section, err := store.GetSection("tabs")
	require.NoError(t, err)
	assert.NotNil(t, section)
	assert.Empty(t, section)
}

func TestFileStore_RoundTrip(t *testing.T) {
	for _, name := range []string{"config.json", "config.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			store, err := NewFileStore(path)
			require.NoError(t, err)

			require.NoError(t, store.SetSection("browser", map[string]interface{}{
				"backend":  "memory",
				"headless": true,
			}))
			assert.True(t, store.IsModified())
			require.NoError(t, store.Save())
			assert.False(t, store.IsModified())

			_, err = os.Stat(path + ".tmp")
			assert.True(t, os.IsNotExist(err), "temp file is renamed away")

			reloaded, err := NewFileStore(path)
			require.NoError(t, err)
			section, err := reloaded.GetSection("browser")
			require.NoError(t, err)
			assert.Equal(t, "memory", section["backend"])
			assert.Equal(t, true, section["headless"])
		})
	}
}

func TestFileStore_LoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	doc := `version: "1.0"
sections:
  tabs:
    close_concurrency: 4
    protected_patterns:
      - https://mail.google.com/*
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0600))

	store, err := NewFileStore(path)
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, store.Format())

	section, err := store.GetSection("tabs")
	require.NoError(t, err)
	assert.Equal(t, 4, section["close_concurrency"])
	assert.Equal(t, []interface{}{"https://mail.google.com/*"}, section["protected_patterns"])
}

func TestFileStore_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := NewFileStore(path)
	assert.Error(t, err)
}

func TestFileStore_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("\n"), 0600))

	_, err := NewFileStore(path)
	assert.NoError(t, err)
}

func TestFileStore_CopiesData(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)

	in := map[string]interface{}{"k": "v"}
	require.NoError(t, store.SetSection("s", in))
	in["k"] = "changed"

	out, err := store.GetSection("s")
	require.NoError(t, err)
	assert.Equal(t, "v", out["k"])
	out["k"] = "mutated"

	again, err := store.GetSection("s")
	require.NoError(t, err)
	assert.Equal(t, "v", again["k"])

	require.NoError(t, store.SetAll(map[string]map[string]interface{}{"x": {"a": 1}}))
	all, err := store.GetAll()
	require.NoError(t, err)
	assert.Equal(t, map[string]map[string]interface{}{"x": {"a": 1}}, all)
}
