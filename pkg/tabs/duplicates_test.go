package tabs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindDuplicates(t *testing.T) {
	tabs := []Tab{
		{ID: 1, URL: "https://a.test/", WindowID: 1, Index: 0},
		{ID: 2, URL: "https://a.test/", WindowID: 1, Index: 1},
		{ID: 3, URL: "https://b.test/", WindowID: 1, Index: 2},
		{ID: 4, URL: "https://c.test/", WindowID: 2, Index: 0, Pinned: true},
		{ID: 5, URL: "https://c.test/", WindowID: 2, Index: 1},
		{ID: 6, URL: "chrome://newtab/", WindowID: 2, Index: 2},
		{ID: 7, URL: "chrome://newtab/", WindowID: 2, Index: 3},
		{ID: 8, URL: "", WindowID: 2, Index: 4},
		{ID: 9, URL: "", WindowID: 2, Index: 5},
		{ID: 10, URL: "https://a.test/#x", WindowID: 2, Index: 6},
	}

	dups := FindDuplicates(tabs)

	assert.Equal(t, 1, dups.Len())
	assert.True(t, dups.Has("https://a.test/"))
	assert.False(t, dups.Has("https://c.test/"), "pinned copy must not count")
	assert.False(t, dups.Has("chrome://newtab/"), "protected URLs are never duplicates")
	assert.False(t, dups.Has(""))
	assert.False(t, dups.Has("https://a.test/#x"), "marking uses exact strings")
}

func TestFindDuplicates_IgnoresTabsWithoutID(t *testing.T) {
	dups := FindDuplicates([]Tab{
		{ID: TabIDNone, URL: "https://a.test/"},
		{ID: 1, URL: "https://a.test/"},
	})
	assert.Zero(t, dups.Len())
}

func TestFindDuplicates_ConfiguredPatterns(t *testing.T) {
	c, err := NewClassifier("https://mail.test/*")
	assert.NoError(t, err)

	dups := c.FindDuplicates([]Tab{
		{ID: 1, URL: "https://mail.test/inbox"},
		{ID: 2, URL: "https://mail.test/inbox"},
	})
	assert.Zero(t, dups.Len())
}

func TestPartitionDuplicates_LowestWindowThenIndexWins(t *testing.T) {
	tabs := []Tab{
		{ID: 3, URL: "A", WindowID: 2, Index: 0},
		{ID: 2, URL: "A", WindowID: 1, Index: 1},
		{ID: 1, URL: "A", WindowID: 1, Index: 0},
	}

	p := PartitionDuplicates(tabs)

	assert.Len(t, p.Keepers, 1)
	assert.Equal(t, TabID(1), p.Keepers[0].ID)
	assert.Len(t, p.Duplicates, 2)
	assert.Equal(t, TabID(2), p.Duplicates[0].ID)
	assert.Equal(t, TabID(3), p.Duplicates[1].ID)
	assert.Zero(t, p.Skipped.Total())
}

func TestPartitionDuplicates_PinnedScenario(t *testing.T) {
	tabs := []Tab{
		{ID: 1, URL: "A", WindowID: 1, Index: 0, Pinned: true},
		{ID: 2, URL: "A", WindowID: 1, Index: 1},
		{ID: 3, URL: "A", WindowID: 1, Index: 2},
		{ID: 4, URL: "B", WindowID: 1, Index: 3},
	}

	p := PartitionDuplicates(tabs)

	assert.Equal(t, 1, p.Skipped.Pinned)
	assert.Len(t, p.Keepers, 2)
	assert.Equal(t, TabID(2), p.Keepers[0].ID)
	assert.Equal(t, TabID(4), p.Keepers[1].ID)
	assert.Len(t, p.Duplicates, 1)
	assert.Equal(t, TabID(3), p.Duplicates[0].ID)
}

func TestPartitionDuplicates_CountsEverySkipReason(t *testing.T) {
	p := PartitionDuplicates([]Tab{
		{ID: 1, URL: ""},
		{ID: 2, URL: "about:blank"},
		{ID: 3, URL: "https://a.test/", Pinned: true},
		{ID: 4, URL: "about:blank", Pinned: true},
	})

	assert.Equal(t, SkipCounts{Pinned: 2, Protected: 1, NoURL: 1}, p.Skipped)
	assert.Empty(t, p.Keepers)
	assert.Empty(t, p.Duplicates)
}

func TestPartitionDuplicates_DoesNotReorderInput(t *testing.T) {
	tabs := []Tab{
		{ID: 2, URL: "A", WindowID: 2},
		{ID: 1, URL: "A", WindowID: 1},
	}
	_ = PartitionDuplicates(tabs)
	assert.Equal(t, TabID(2), tabs[0].ID)
}
