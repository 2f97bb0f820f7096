package tabs

import (
	"errors"
	"fmt"
	"strings"
)

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// DescribeDedup renders a deduplicate result for the status line.
func DescribeDedup(r CloseResult) string {
	var b strings.Builder
	if r.Closed == 0 {
		b.WriteString("No duplicate tabs found.")
	} else {
		fmt.Fprintf(&b, "Closed %d duplicate %s.", r.Closed, plural(r.Closed, "tab", "tabs"))
	}

	var notes []string
	if r.Skipped.Pinned > 0 {
		notes = append(notes, fmt.Sprintf("%d pinned", r.Skipped.Pinned))
	}
	if r.Skipped.Protected > 0 {
		notes = append(notes, fmt.Sprintf("%d protected", r.Skipped.Protected))
	}
	if r.Skipped.NoURL > 0 {
		notes = append(notes, fmt.Sprintf("%d no URL", r.Skipped.NoURL))
	}
	if r.Failed > 0 {
		notes = append(notes, fmt.Sprintf("%d failed", r.Failed))
	}
	if len(notes) > 0 {
		fmt.Fprintf(&b, " (skipped %s)", strings.Join(notes, ", "))
	}
	return b.String()
}

// DescribeUnbookmarked renders a close-unbookmarked result.
func DescribeUnbookmarked(r CloseResult) string {
	var b strings.Builder
	if r.Closed == 0 {
		b.WriteString("No unbookmarked tabs found.")
	} else {
		fmt.Fprintf(&b, "Closed %d unbookmarked %s.", r.Closed, plural(r.Closed, "tab", "tabs"))
	}

	var parts []string
	if r.KeptBookmarked > 0 {
		parts = append(parts, fmt.Sprintf("kept %d bookmarked", r.KeptBookmarked))
	}

	var skipped []string
	if r.Skipped.Pinned > 0 {
		skipped = append(skipped, fmt.Sprintf("%d pinned", r.Skipped.Pinned))
	}
	if r.Skipped.Protected > 0 {
		skipped = append(skipped, fmt.Sprintf("%d protected", r.Skipped.Protected))
	}
	if r.Skipped.NoURL > 0 {
		skipped = append(skipped, fmt.Sprintf("%d no URL", r.Skipped.NoURL))
	}
	if len(skipped) > 0 {
		parts = append(parts, "skipped "+strings.Join(skipped, ", "))
	}

	if r.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", r.Failed))
	}
	if len(parts) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(parts, "; "))
	}
	return b.String()
}

// DescribeRestore renders an undo result.
func DescribeRestore(r RestoreResult) string {
	failed := len(r.FailedTabs)
	switch {
	case r.Restored == 0 && failed > 0:
		return fmt.Sprintf("Unable to restore tabs (%d failed).", failed)
	case failed > 0:
		return fmt.Sprintf("Restored %d %s (%d failed).", r.Restored, plural(r.Restored, "tab", "tabs"), failed)
	default:
		return fmt.Sprintf("Restored %d %s.", r.Restored, plural(r.Restored, "tab", "tabs"))
	}
}

// DescribeError renders an operation failure. Nothing to undo is reported
// as a note rather than an error.
func DescribeError(err error) string {
	if errors.Is(err, ErrNothingToUndo) {
		return "Nothing to undo."
	}
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return "Error: " + opErr.Err.Error()
	}
	return "Error: " + err.Error()
}
