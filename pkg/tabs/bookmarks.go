package tabs

// BookmarkIndex is the set of bookmarked URLs, normalized with
// NormalizeForBookmarkLookup.
type BookmarkIndex struct {
	urls URLSet
}

// BuildIndex collects every bookmark URL in the forest. The walk uses an
// explicit stack so deeply nested folders cannot exhaust the goroutine stack.
func BuildIndex(forest []*BookmarkNode) *BookmarkIndex {
	idx := &BookmarkIndex{urls: make(URLSet)}

	stack := make([]*BookmarkNode, 0, len(forest))
	stack = append(stack, forest...)
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node == nil {
			continue
		}
		if node.URL != "" {
			if normalized := NormalizeForBookmarkLookup(node.URL); normalized != "" {
				idx.urls[normalized] = struct{}{}
			}
		}
		stack = append(stack, node.Children...)
	}
	return idx
}

// Contains reports whether url, once normalized, is bookmarked.
func (b *BookmarkIndex) Contains(url string) bool {
	if b == nil {
		return false
	}
	return b.urls.Has(NormalizeForBookmarkLookup(url))
}

// Len returns the number of distinct bookmarked URLs.
func (b *BookmarkIndex) Len() int {
	if b == nil {
		return 0
	}
	return len(b.urls)
}
