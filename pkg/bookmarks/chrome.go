// Package bookmarks reads the bookmark tree from a Chrome profile's
// Bookmarks file. Backends that cannot ask the browser for bookmarks use
// it as their bookmark source.
package bookmarks

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/tidwall/gjson"

	"github.com/entrhq/tabsweep/pkg/tabs"
)

// rootOrder is the order Chrome shows its top-level folders in.
var rootOrder = []string{"bookmark_bar", "other", "synced"}

// maxFileSize bounds the Bookmarks file read into memory.
const maxFileSize = 64 << 20

// Parse converts the contents of a Chrome Bookmarks file into a forest with
// one tree per root folder.
func Parse(data []byte) ([]*tabs.BookmarkNode, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("bookmarks file is not valid JSON")
	}
	roots := gjson.GetBytes(data, "roots")
	if !roots.IsObject() {
		return nil, errors.New("bookmarks file has no roots object")
	}

	var forest []*tabs.BookmarkNode
	seen := make(map[string]bool, len(rootOrder))
	for _, key := range rootOrder {
		seen[key] = true
		if root := roots.Get(key); root.IsObject() {
			forest = append(forest, convert(root))
		}
	}
	roots.ForEach(func(key, value gjson.Result) bool {
		if !seen[key.String()] && value.IsObject() && value.Get("type").String() == "folder" {
			forest = append(forest, convert(value))
		}
		return true
	})
	return forest, nil
}

// convert builds the node tree with an explicit stack so arbitrarily deep
// folders cannot exhaust the goroutine stack.
func convert(root gjson.Result) *tabs.BookmarkNode {
	type frame struct {
		src  gjson.Result
		node *tabs.BookmarkNode
	}

	top := &tabs.BookmarkNode{}
	stack := []frame{{src: root, node: top}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		f.node.Title = f.src.Get("name").String()
		if f.src.Get("type").String() == "url" {
			f.node.URL = f.src.Get("url").String()
			continue
		}
		f.src.Get("children").ForEach(func(_, child gjson.Result) bool {
			if !child.IsObject() {
				return true
			}
			n := &tabs.BookmarkNode{}
			f.node.Children = append(f.node.Children, n)
			stack = append(stack, frame{src: child, node: n})
			return true
		})
	}
	return top
}

// ReadFile parses the Bookmarks file at path. An empty path or a file that
// does not exist is reported as tabs.ErrPermissionUnavailable.
func ReadFile(path string) ([]*tabs.BookmarkNode, error) {
	if path == "" {
		return nil, fmt.Errorf("no bookmarks file configured: %w", tabs.ErrPermissionUnavailable)
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("bookmarks file %s not found: %w", path, tabs.ErrPermissionUnavailable)
		}
		return nil, fmt.Errorf("stat bookmarks file: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("bookmarks file %s exceeds %d bytes", path, maxFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bookmarks file: %w", err)
	}
	forest, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return forest, nil
}

// DefaultPath returns where Chrome keeps the Default profile's Bookmarks
// file on this platform, or "" if the home directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Google", "Chrome", "Default", "Bookmarks")
	case "windows":
		base := os.Getenv("LOCALAPPDATA")
		if base == "" {
			base = filepath.Join(home, "AppData", "Local")
		}
		return filepath.Join(base, "Google", "Chrome", "User Data", "Default", "Bookmarks")
	default:
		return filepath.Join(home, ".config", "google-chrome", "Default", "Bookmarks")
	}
}

// File is a bookmark source backed by a Bookmarks file. The file is read on
// every call so edits made in the browser are picked up.
type File struct {
	Path string
}

// BookmarkTree reads and parses the file.
func (f File) BookmarkTree(ctx context.Context) ([]*tabs.BookmarkNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ReadFile(f.Path)
}
