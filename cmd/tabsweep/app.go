package main

import (
	"context"
	"fmt"
	"io"

	"github.com/entrhq/tabsweep/pkg/bookmarks"
	"github.com/entrhq/tabsweep/pkg/browser"
	"github.com/entrhq/tabsweep/pkg/browser/cdp"
	"github.com/entrhq/tabsweep/pkg/browser/memory"
	appconfig "github.com/entrhq/tabsweep/pkg/config"
	"github.com/entrhq/tabsweep/pkg/executor/cli"
	"github.com/entrhq/tabsweep/pkg/executor/tui"
	"github.com/entrhq/tabsweep/pkg/logging"
	"github.com/entrhq/tabsweep/pkg/report"
	"github.com/entrhq/tabsweep/pkg/tabs"
)

// app is one wired invocation: logger, effective settings, backend and
// session.
type app struct {
	config   *Config
	stdout   io.Writer
	logger   *logging.Logger
	settings appconfig.BrowserSettings
	scope    tabs.Scope
	format   report.Format
	browser  tabs.Browser
	session  *tabs.Session
	popup    *tui.Executor
	closers  []func()
}

func newApp(ctx context.Context, config *Config, stdout io.Writer) (*app, error) {
	logger, err := logging.NewLogger("tabsweep")
	if err != nil {
		logger.Warnf("continuing without a log file: %v", err)
	}
	if config.Debug {
		logger.SetLevel(logging.LevelDebug)
	}

	a := &app{config: config, stdout: stdout, logger: logger}
	a.closers = append(a.closers, func() { _ = logger.Close() })

	if err := a.loadSettings(); err != nil {
		a.close()
		return nil, err
	}

	b, err := a.openBrowser(ctx)
	if err != nil {
		a.close()
		return nil, err
	}
	a.browser = b

	tabsSection := appconfig.GetTabs()
	classifier, err := tabsSection.Classifier()
	if err != nil {
		a.close()
		return nil, fmt.Errorf("invalid protected patterns: %w", err)
	}

	opts := tabs.Options{
		Classifier:       classifier,
		CloseConcurrency: tabsSection.Concurrency(),
		Logger:           logger.With("engine"),
	}
	switch config.Command {
	case cmdPopup:
		a.popup = tui.NewExecutor(tui.Options{Scope: a.scope, Logger: logger.With("popup")})
		opts.Events = a.popup.EventSink()
	case cmdShell:
		opts.Events = cli.ProgressPrinter(a.stdout)
	}
	a.session = tabs.NewSession(b, opts)
	return a, nil
}

// loadSettings merges defaults, the config file and explicit flags, in
// that order of increasing precedence.
func (a *app) loadSettings() error {
	if err := appconfig.Initialize(a.config.ConfigPath); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	overrides := make(map[string]interface{})
	if a.config.set["backend"] {
		overrides["backend"] = a.config.Backend
	}
	if a.config.set["remote-url"] {
		overrides["remote_url"] = a.config.RemoteURL
	}
	if a.config.set["bookmarks"] {
		overrides["bookmarks_file"] = a.config.Bookmarks
	}
	if a.config.set["fixture"] {
		overrides["fixture_file"] = a.config.Fixture
		if !a.config.set["backend"] {
			overrides["backend"] = appconfig.BackendMemory
		}
	}

	section := appconfig.GetBrowser()
	if err := section.SetData(overrides); err != nil {
		return err
	}
	if err := section.Validate(); err != nil {
		return fmt.Errorf("invalid browser settings: %w", err)
	}
	a.settings = section.Settings()

	a.scope = appconfig.GetTabs().Scope()
	if a.config.Scope != "" {
		a.scope = tabs.Scope(a.config.Scope)
	}
	a.format, _ = report.ParseFormat(a.config.Format)

	a.logger.Debugf("backend %s, scope %s", a.settings.Backend, a.scope)
	return nil
}

func (a *app) bookmarksFile() string {
	if a.settings.BookmarksFile != "" {
		return a.settings.BookmarksFile
	}
	return bookmarks.DefaultPath()
}

func (a *app) openBrowser(ctx context.Context) (tabs.Browser, error) {
	switch a.settings.Backend {
	case appconfig.BackendMemory:
		if a.settings.FixtureFile == "" {
			return nil, fmt.Errorf("the memory backend needs a fixture file (-fixture)")
		}
		b, err := memory.Load(a.settings.FixtureFile)
		if err != nil {
			return nil, err
		}
		a.logger.Infof("loaded fixture %s with %d tabs", a.settings.FixtureFile, b.TabCount())
		return b, nil

	case appconfig.BackendCDP:
		b, err := cdp.Connect(ctx, a.settings.RemoteURL, cdp.Options{
			Timeout:       a.settings.CallTimeout,
			BookmarksFile: a.bookmarksFile(),
			Logger:        a.logger.With("cdp"),
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, b.Close)
		return b, nil

	case appconfig.BackendPlaywright:
		manager := browser.NewManager(a.logger.With("playwright"))
		opts := browser.Options{
			RemoteURL:     a.settings.RemoteURL,
			Headless:      a.settings.Headless,
			Timeout:       a.settings.CallTimeout,
			BookmarksFile: a.bookmarksFile(),
		}
		if err := manager.Initialize(opts); err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() {
			if err := manager.Shutdown(); err != nil {
				a.logger.Warnf("playwright shutdown: %v", err)
			}
		})
		b, err := manager.Launch(opts)
		if err != nil {
			return nil, err
		}
		return b, nil

	default:
		return nil, fmt.Errorf("unknown backend %q", a.settings.Backend)
	}
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
