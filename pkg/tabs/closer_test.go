package tabs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestCloser_ClosesEligibleAndSnapshots(t *testing.T) {
	fb := newFakeBrowser()
	a := fb.addTab(1, 1, "https://a.test/", false)
	b := fb.addTab(2, 1, "https://b.test/", false)
	pinned := fb.addTab(3, 1, "https://c.test/", true)
	internal := fb.addTab(4, 1, "chrome://settings", false)
	blank := fb.addTab(5, 1, "", false)

	closer := NewCloser(fb, nil, 2, nil)
	result := closer.CloseTabs(context.Background(), []Tab{a, b, pinned, internal, blank}, nil)

	assert.NotEmpty(t, result.BatchID)
	assert.Equal(t, 2, result.Closed)
	assert.Zero(t, result.Failed)
	assert.Equal(t, SkipCounts{Pinned: 1, Protected: 1, NoURL: 1}, result.Skipped)
	require.Len(t, result.ClosedTabs, 2)
	assert.Equal(t, TabSnapshot{URL: "https://a.test/", WindowID: 1, Index: 0}, result.ClosedTabs[0])
	assert.Equal(t, TabSnapshot{URL: "https://b.test/", WindowID: 1, Index: 1}, result.ClosedTabs[1])
	assert.Equal(t, []string{"https://c.test/", "chrome://settings", ""}, fb.urlsIn(1))
}

func TestCloser_PartialFailureDoesNotStopOthers(t *testing.T) {
	fb := newFakeBrowser()
	var tabs []Tab
	for i := 1; i <= 6; i++ {
		tabs = append(tabs, fb.addTab(TabID(i), 1, "https://t.test/"+string(rune('a'+i)), false))
	}
	fb.closeErr[2] = errBoom
	fb.closeErr[5] = errBoom

	result := NewCloser(fb, nil, 3, nil).CloseTabs(context.Background(), tabs, nil)

	assert.Equal(t, 4, result.Closed)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.ClosedTabs, 4)
	for _, snap := range result.ClosedTabs {
		assert.NotEqual(t, tabs[1].URL, snap.URL)
		assert.NotEqual(t, tabs[4].URL, snap.URL)
	}
	assert.Equal(t, 6, fb.count("close"))
}

func TestCloser_KeepPredicate(t *testing.T) {
	fb := newFakeBrowser()
	kept := fb.addTab(1, 1, "https://keep.test/#section", false)
	gone := fb.addTab(2, 1, "https://gone.test/", false)
	idx := BuildIndex([]*BookmarkNode{{URL: "https://keep.test/"}})

	result := NewCloser(fb, nil, 0, nil).CloseTabs(context.Background(), []Tab{kept, gone}, func(tab Tab) bool {
		return idx.Contains(tab.URL)
	})

	assert.Equal(t, 1, result.KeptBookmarked)
	assert.Equal(t, 1, result.Closed)
	assert.Equal(t, []string{"https://keep.test/#section"}, fb.urlsIn(1))
}

func TestCloser_NothingToClose(t *testing.T) {
	fb := newFakeBrowser()
	result := NewCloser(fb, nil, 4, nil).CloseTabs(context.Background(), nil, nil)

	assert.Zero(t, result.Closed)
	assert.Zero(t, result.Failed)
	assert.Empty(t, result.ClosedTabs)
	assert.Zero(t, fb.count("close"))
}

func TestCloser_IgnoresTabsWithoutID(t *testing.T) {
	fb := newFakeBrowser()
	result := NewCloser(fb, nil, 4, nil).CloseTabs(context.Background(), []Tab{{ID: TabIDNone, URL: "https://a.test/"}}, nil)

	assert.Zero(t, result.Closed)
	assert.Zero(t, result.Skipped.Total())
	assert.Zero(t, fb.count("close"))
}

func TestCloser_RespectsConcurrencyLimit(t *testing.T) {
	fb := newFakeBrowser()
	var tabs []Tab
	for i := 1; i <= 20; i++ {
		tabs = append(tabs, fb.addTab(TabID(i), 1, "https://t.test/"+string(rune('a'+i)), false))
	}

	result := NewCloser(fb, nil, 2, nil).CloseTabs(context.Background(), tabs, nil)

	assert.Equal(t, 20, result.Closed)
	assert.LessOrEqual(t, fb.maxInFl, 2)
}

func TestCloser_ConfiguredProtection(t *testing.T) {
	fb := newFakeBrowser()
	mail := fb.addTab(1, 1, "https://mail.test/inbox", false)
	c, err := NewClassifier("https://mail.test/*")
	require.NoError(t, err)

	result := NewCloser(fb, c, 1, nil).CloseTabs(context.Background(), []Tab{mail}, nil)

	assert.Equal(t, 1, result.Skipped.Protected)
	assert.Zero(t, result.Closed)
}
