// Package main provides the tabsweep command: a terminal popup and one-shot
// commands to search, deduplicate and bulk-close browser tabs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/entrhq/tabsweep/pkg/report"
	"github.com/entrhq/tabsweep/pkg/tabs"
)

const version = "0.1.0" // Version of tabsweep

// Commands accepted after the flags.
const (
	cmdPopup             = "popup"
	cmdList              = "list"
	cmdSearch            = "search"
	cmdDedup             = "dedup"
	cmdCloseUnbookmarked = "close-unbookmarked"
	cmdShell             = "shell"
)

// Config holds the parsed command line.
type Config struct {
	Backend     string
	RemoteURL   string
	Bookmarks   string
	Fixture     string
	Scope       string
	Format      string
	ConfigPath  string
	Debug       bool
	ShowVersion bool

	Command string
	Args    []string

	// set records which flags were given explicitly; only those override
	// the config file.
	set map[string]bool
}

// errUsage is returned after usage has been printed.
var errUsage = errors.New("invalid usage")

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	cancel()
	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, tabs.DescribeError(err))
		os.Exit(1)
	}
}

// parseFlags parses args into a Config.
func parseFlags(args []string, stderr io.Writer) (*Config, error) {
	config := &Config{set: make(map[string]bool)}

	fs := flag.NewFlagSet("tabsweep", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&config.Backend, "backend", "", "Browser backend: playwright, cdp or memory (default from config, else cdp)")
	fs.StringVar(&config.RemoteURL, "remote-url", "", "Chrome remote debugging URL, e.g. http://127.0.0.1:9222")
	fs.StringVar(&config.Bookmarks, "bookmarks", "", "Chrome Bookmarks file (default: the Default profile's)")
	fs.StringVar(&config.Fixture, "fixture", "", "YAML fixture for the memory backend")
	fs.StringVar(&config.Scope, "scope", "", "Scope: current or all (default from config, else current)")
	fs.StringVar(&config.Format, "format", string(report.FormatText), "Output format for one-shot commands: text or html")
	fs.StringVar(&config.ConfigPath, "config", "", "Config file (default ~/.tabsweep/config.json)")
	fs.BoolVar(&config.Debug, "debug", false, "Log debug output")
	fs.BoolVar(&config.ShowVersion, "version", false, "Show version and exit")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "tabsweep - search, deduplicate and close browser tabs\n\n")
		fmt.Fprintf(stderr, "Usage: tabsweep [options] [command]\n\n")
		fmt.Fprintf(stderr, "Commands:\n")
		fmt.Fprintf(stderr, "  popup                 interactive popup (default)\n")
		fmt.Fprintf(stderr, "  list                  list tabs in scope\n")
		fmt.Fprintf(stderr, "  search <query>        list tabs whose title or URL contains query\n")
		fmt.Fprintf(stderr, "  dedup                 close duplicate tabs\n")
		fmt.Fprintf(stderr, "  close-unbookmarked    close tabs that are not bookmarked\n")
		fmt.Fprintf(stderr, "  shell                 read commands from stdin; undo works between them\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  tabsweep                                  # popup over Chrome on :9222\n")
		fmt.Fprintf(stderr, "  tabsweep -scope all search golang\n")
		fmt.Fprintf(stderr, "  tabsweep -backend memory -fixture tabs.yaml dedup\n")
	}

	if err := fs.Parse(args); err != nil {
		return nil, errUsage
	}
	fs.Visit(func(f *flag.Flag) { config.set[f.Name] = true })

	rest := fs.Args()
	config.Command = cmdPopup
	if len(rest) > 0 {
		config.Command = rest[0]
		config.Args = rest[1:]
	}
	return config, nil
}

// validate checks the command line on its own; config-file values are
// checked when they are merged.
func (c *Config) validate() error {
	switch c.Command {
	case cmdPopup, cmdShell, cmdList, cmdDedup, cmdCloseUnbookmarked:
		if len(c.Args) > 0 {
			return fmt.Errorf("%s takes no arguments", c.Command)
		}
	case cmdSearch:
		if c.query() == "" {
			return fmt.Errorf("search needs a query")
		}
	default:
		return fmt.Errorf("unknown command %q", c.Command)
	}

	if _, err := report.ParseFormat(c.Format); err != nil {
		return err
	}
	if c.Scope != "" {
		if _, err := tabs.ParseScope(c.Scope); err != nil {
			return err
		}
	}
	return nil
}

// query is the search text given after the search command.
func (c *Config) query() string {
	return strings.TrimSpace(strings.Join(c.Args, " "))
}

// run executes one invocation.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	config, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	if config.ShowVersion {
		fmt.Fprintf(stdout, "tabsweep v%s\n", version)
		return nil
	}

	if err := config.validate(); err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return errUsage
	}

	app, err := newApp(ctx, config, stdout)
	if err != nil {
		return err
	}
	defer app.close()

	return app.execute(ctx, stdin, stdout)
}
