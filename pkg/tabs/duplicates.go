package tabs

import "sort"

// URLSet is a set of URL strings.
type URLSet map[string]struct{}

// Has reports whether url is in the set.
func (s URLSet) Has(url string) bool {
	_, ok := s[url]
	return ok
}

// Len returns the number of URLs in the set.
func (s URLSet) Len() int {
	return len(s)
}

// FindDuplicates returns every URL that more than one eligible tab has open.
// URLs are compared as exact strings.
func (c *Classifier) FindDuplicates(tabs []Tab) URLSet {
	counts := make(map[string]int, len(tabs))
	for _, tab := range tabs {
		if tab.ID == TabIDNone || !c.IsEligible(tab) {
			continue
		}
		counts[tab.URL]++
	}

	dups := make(URLSet)
	for url, n := range counts {
		if n > 1 {
			dups[url] = struct{}{}
		}
	}
	return dups
}

// Partition splits a tab list for closing duplicates.
type Partition struct {
	// Keepers holds the first occurrence of every eligible URL.
	Keepers []Tab
	// Duplicates holds every later occurrence; these are the tabs to close.
	Duplicates []Tab
	// Skipped counts the ineligible tabs that took no part.
	Skipped SkipCounts
}

// PartitionDuplicates orders tabs by window then position and keeps the
// first tab seen for each URL. The lowest window wins, then the lowest index.
func (c *Classifier) PartitionDuplicates(tabs []Tab) Partition {
	sorted := make([]Tab, len(tabs))
	copy(sorted, tabs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].WindowID != sorted[j].WindowID {
			return sorted[i].WindowID < sorted[j].WindowID
		}
		return sorted[i].Index < sorted[j].Index
	})

	var p Partition
	seen := make(map[string]struct{}, len(sorted))
	for _, tab := range sorted {
		if tab.ID == TabIDNone {
			continue
		}
		if reason := skipReasonOf(c, tab); reason != skipNone {
			p.Skipped.add(reason)
			continue
		}
		if _, ok := seen[tab.URL]; ok {
			p.Duplicates = append(p.Duplicates, tab)
			continue
		}
		seen[tab.URL] = struct{}{}
		p.Keepers = append(p.Keepers, tab)
	}
	return p
}

// FindDuplicates uses only the built-in protected schemes.
func FindDuplicates(tabs []Tab) URLSet {
	return (*Classifier)(nil).FindDuplicates(tabs)
}

// PartitionDuplicates uses only the built-in protected schemes.
func PartitionDuplicates(tabs []Tab) Partition {
	return (*Classifier)(nil).PartitionDuplicates(tabs)
}
