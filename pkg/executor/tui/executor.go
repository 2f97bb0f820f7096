// Package tui provides the interactive tab popup: a search box over the
// loaded tabs, a scope toggle, the dedup, close-unbookmarked and undo actions
// and a status line fed by session events.
//
// The package is split into:
// - executor.go: program lifecycle and event forwarding
// - model.go: model state and messages
// - update.go: Bubble Tea Update and key handling
// - commands.go: session operations run as tea.Cmd
// - view.go: rendering
// - styles.go: colors and styles
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/tabsweep/pkg/tabs"
	"github.com/entrhq/tabsweep/pkg/types"
)

// eventBuffer bounds how many session events may queue before the program
// reads them. Events past the buffer are dropped; the status line only shows
// the latest one anyway.
const eventBuffer = 64

// Options configures the popup.
type Options struct {
	// Scope is the initial scope of search and the close actions.
	Scope tabs.Scope
	// Logger receives popup diagnostics. Nil discards them.
	Logger tabs.Logger
	// Header replaces the default title line.
	Header string
}

// Executor runs the popup for one session.
type Executor struct {
	opts    Options
	events  chan *types.SessionEvent
	program *tea.Program
}

// NewExecutor creates an executor. Pass EventSink to the session before
// calling Run so the status line follows the session's progress.
func NewExecutor(opts Options) *Executor {
	if opts.Scope == "" {
		opts.Scope = tabs.ScopeCurrentWindow
	}
	if opts.Logger == nil {
		opts.Logger = discardLogger{}
	}
	return &Executor{
		opts:   opts,
		events: make(chan *types.SessionEvent, eventBuffer),
	}
}

// EventSink returns the session event sink that feeds the popup. It never
// blocks the session.
func (e *Executor) EventSink() tabs.EventSink {
	return func(event *types.SessionEvent) {
		select {
		case e.events <- event:
		default:
			e.opts.Logger.Debugf("popup event queue full, dropping %s", event.Type)
		}
	}
}

// Run shows the popup and blocks until the user leaves it.
func (e *Executor) Run(ctx context.Context, session *tabs.Session) error {
	m := newModel(ctx, session, e.opts)

	e.program = tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	done := make(chan struct{})
	defer close(done)
	go func() {
		// Forward session events to the program
		for {
			select {
			case event := <-e.events:
				e.program.Send(event)
			case <-done:
				return
			}
		}
	}()

	e.opts.Logger.Debugf("popup starting with scope %s", e.opts.Scope)
	if _, err := e.program.Run(); err != nil {
		return fmt.Errorf("failed to run popup: %w", err)
	}
	return nil
}

type discardLogger struct{}

func (discardLogger) Debugf(string, ...interface{}) {}
func (discardLogger) Infof(string, ...interface{})  {}
func (discardLogger) Warnf(string, ...interface{})  {}
func (discardLogger) Errorf(string, ...interface{}) {}
