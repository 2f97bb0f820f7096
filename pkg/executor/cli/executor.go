// Package cli provides the line-oriented front end of tabsweep: one-shot
// actions for the command line and an interactive shell that keeps one
// session alive, so undo works between commands.
//
// Example usage:
//
//	session := tabs.NewSession(browser, tabs.Options{})
//	executor := cli.NewExecutor(session, cli.WithScope(tabs.ScopeAllWindows))
//	if err := executor.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/entrhq/tabsweep/pkg/report"
	"github.com/entrhq/tabsweep/pkg/tabs"
	"github.com/entrhq/tabsweep/pkg/types"
)

// Executor runs actions against a session and renders their results.
type Executor struct {
	session *tabs.Session
	reader  *bufio.Reader
	writer  io.Writer

	format report.Format
	scope  tabs.Scope

	// Display options
	verbose bool
}

// ExecutorOption is a function that configures an Executor.
type ExecutorOption func(*Executor)

// WithWriter sets a custom output writer (default is os.Stdout).
func WithWriter(w io.Writer) ExecutorOption {
	return func(e *Executor) {
		e.writer = w
	}
}

// WithReader sets the shell input (default is os.Stdin).
func WithReader(r io.Reader) ExecutorOption {
	return func(e *Executor) {
		e.reader = bufio.NewReader(r)
	}
}

// WithFormat selects the report format for listings.
func WithFormat(f report.Format) ExecutorOption {
	return func(e *Executor) {
		e.format = f
	}
}

// WithScope sets the scope used by actions that do not name one.
func WithScope(s tabs.Scope) ExecutorOption {
	return func(e *Executor) {
		e.scope = s
	}
}

// WithVerbose enables/disables load summaries.
func WithVerbose(verbose bool) ExecutorOption {
	return func(e *Executor) {
		e.verbose = verbose
	}
}

// NewExecutor creates an executor for session.
func NewExecutor(session *tabs.Session, opts ...ExecutorOption) *Executor {
	e := &Executor{
		session: session,
		reader:  bufio.NewReader(os.Stdin),
		writer:  os.Stdout,
		format:  report.FormatText,
		scope:   tabs.ScopeCurrentWindow,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// ProgressPrinter returns a session event sink that prints status events
// to w. Session events are emitted on the goroutine running the action, so
// the lines never interleave with the action's own output.
func ProgressPrinter(w io.Writer) tabs.EventSink {
	return func(event *types.SessionEvent) {
		if !event.IsStatusEvent() {
			return
		}
		fmt.Fprintf(w, "... %s\n", event.Content)
	}
}

// Run starts the shell and returns when the user exits, input ends or ctx
// is canceled. Failed commands are reported and the shell carries on.
func (e *Executor) Run(ctx context.Context) error {
	fmt.Fprintln(e.writer, "tabsweep shell")
	fmt.Fprintln(e.writer, "Commands: list, search <query>, dedup [scope], close-unbookmarked [scope], undo, reload. Type 'exit' or 'quit' to leave.")
	fmt.Fprintln(e.writer)

	if err := e.Do(ctx, types.NewScopedAction(types.ActionTypeReload, "")); err != nil {
		fmt.Fprintln(e.writer, tabs.DescribeError(err))
	}

	for {
		// Check if context is canceled
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fmt.Fprint(e.writer, "> ")
		input, err := e.reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read input: %w", err)
		}
		eof := errors.Is(err, io.EOF)

		input = strings.TrimSpace(input)
		switch {
		case input == "exit" || input == "quit":
			return nil
		case input == "":
			if eof {
				fmt.Fprintln(e.writer)
				return nil
			}
			continue
		}

		action, perr := ParseLine(input)
		if perr != nil {
			fmt.Fprintf(e.writer, "Error: %v\n", perr)
		} else if derr := e.Do(ctx, action); derr != nil {
			fmt.Fprintln(e.writer, tabs.DescribeError(derr))
		} else if action.IsMutating() && e.session.CanUndo() {
			fmt.Fprintln(e.writer, "Type 'undo' to restore them.")
		}

		if eof {
			return nil
		}
	}
}

// ParseLine turns a shell line into an action. search takes the rest of the
// line as its query; the closing commands take an optional scope.
func ParseLine(line string) (*types.Action, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	actionType, err := types.ParseActionType(fields[0])
	if err != nil {
		return nil, err
	}
	args := fields[1:]

	switch actionType {
	case types.ActionTypeSearch:
		query := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))
		if query == "" {
			return nil, fmt.Errorf("search needs a query")
		}
		return types.NewSearchAction("", query), nil
	case types.ActionTypeUndo:
		if len(args) > 0 {
			return nil, fmt.Errorf("undo takes no arguments")
		}
		return types.NewUndoAction(), nil
	default:
		if len(args) > 1 {
			return nil, fmt.Errorf("%s takes at most a scope", actionType)
		}
		scope := ""
		if len(args) == 1 {
			if _, err := tabs.ParseScope(args[0]); err != nil {
				return nil, err
			}
			scope = args[0]
		}
		return types.NewScopedAction(actionType, scope), nil
	}
}

// Do runs one action. The session must have been loaded unless the action
// is a reload.
func (e *Executor) Do(ctx context.Context, action *types.Action) error {
	scope := e.scope
	if action.Scope != "" {
		parsed, err := tabs.ParseScope(action.Scope)
		if err != nil {
			return err
		}
		scope = parsed
	}

	switch action.Type {
	case types.ActionTypeReload:
		if err := e.session.LoadTabs(ctx); err != nil {
			return err
		}
		if e.verbose {
			fmt.Fprintf(e.writer, "Loaded %d tabs (%d duplicate URLs).\n", len(e.session.Tabs()), e.session.DuplicateCount())
		}
		return nil

	case types.ActionTypeList:
		return e.list(scope, "", fmt.Sprintf("Tabs (%s)", scopeLabel(scope)))

	case types.ActionTypeSearch:
		return e.list(scope, action.Query, fmt.Sprintf("Tabs matching %q (%s)", action.Query, scopeLabel(scope)))

	case types.ActionTypeDeduplicate:
		result, err := e.session.Deduplicate(ctx, scope)
		if err != nil {
			return err
		}
		return e.closed("Closed duplicate tabs", result, tabs.DescribeDedup(result))

	case types.ActionTypeCloseUnbookmarked:
		result, err := e.session.CloseUnbookmarked(ctx, scope)
		if err != nil {
			return err
		}
		return e.closed("Closed unbookmarked tabs", result, tabs.DescribeUnbookmarked(result))

	case types.ActionTypeUndo:
		result, err := e.session.UndoLastClose(ctx)
		if errors.Is(err, tabs.ErrNothingToUndo) {
			fmt.Fprintln(e.writer, tabs.DescribeError(err))
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(e.writer, tabs.DescribeRestore(result))
		return nil

	default:
		return fmt.Errorf("unknown command %q", action.Type)
	}
}

func scopeLabel(scope tabs.Scope) string {
	if scope == tabs.ScopeAllWindows {
		return "all windows"
	}
	return "current window"
}

func (e *Executor) list(scope tabs.Scope, query, heading string) error {
	matches, err := e.session.SearchTabs(scope, query)
	if err != nil {
		return err
	}
	return report.Render(e.writer, e.format, report.Listing{
		Heading: heading,
		Query:   query,
		Rows:    report.Rows(e.session, matches),
		Summary: fmt.Sprintf("%d of %d tabs.", len(matches), len(e.session.Tabs())),
	})
}

// closed reports what a close run removed. Closed tabs only survive as
// snapshots, so the rows carry a URL and origin window but no title.
func (e *Executor) closed(heading string, result tabs.CloseResult, summary string) error {
	if e.format == report.FormatText && len(result.ClosedTabs) == 0 {
		_, err := fmt.Fprintln(e.writer, summary)
		return err
	}

	rows := make([]report.Row, 0, len(result.ClosedTabs))
	for _, snap := range result.ClosedTabs {
		rows = append(rows, report.Row{
			Tab:          tabs.Tab{ID: tabs.TabIDNone, URL: snap.URL, WindowID: snap.WindowID, Index: snap.Index},
			WindowNumber: e.session.WindowNumber(snap.WindowID),
		})
	}
	return report.Render(e.writer, e.format, report.Listing{
		Heading: heading,
		Rows:    rows,
		Summary: summary,
	})
}
