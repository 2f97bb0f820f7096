// Package tabs implements the tab reconciliation engine behind the tabsweep
// popup.
//
// The engine reads snapshots of the live tab list from a Browser
// collaborator and answers four questions about them:
//
//  1. Which URLs are open more than once (duplicate marking and closing)
//  2. Which tabs are not bookmarked (bookmark membership)
//  3. How to close a batch while remembering enough to recreate it
//  4. How to put a closed batch back, even if its window is gone
//
// # Eligibility
//
// A tab takes part in any closing operation only if it has a URL, is not
// pinned and its URL is not protected (browser-internal schemes plus any
// configured patterns). The same rule drives duplicate marking.
//
// # Sessions
//
// All mutable state lives on a Session: the loaded tab list, the current
// window, the duplicate marks, the cached bookmark index and the last closed
// batch used for undo. A Session allows one mutating operation at a time.
//
// # Failures
//
// Per-tab failures inside a batch close or a restore are reported as data
// (counts and snapshot lists). Only whole-operation failures, such as a
// missing bookmarks capability, are returned as errors.
package tabs
