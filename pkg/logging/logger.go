package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level is a log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
}

// ParseLevel maps a case-insensitive level name to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// LogDirEnv overrides the log directory.
const LogDirEnv = "TABSWEEP_LOG_DIR"

// Logger writes leveled entries for one component to the session log file
// ~/.tabsweep/logs/<session-id>-tabsweep.log. Every component of a run
// shares the same file.
type Logger struct {
	sessionID string
	component string
	file      *os.File
	logger    *log.Logger
	mu        sync.Mutex
	level     Level
	logPath   string
	closeOnce sync.Once
}

var (
	sessionID     string
	sessionIDOnce sync.Once

	logDir   string
	initOnce sync.Once
	initErr  error
)

func getSessionID() string {
	sessionIDOnce.Do(func() {
		sessionID = uuid.New().String()
	})
	return sessionID
}

func resolveLogDirectory() (string, error) {
	if dir := os.Getenv(LogDirEnv); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".tabsweep", "logs"), nil
}

func initLogDirectory() error {
	initOnce.Do(func() {
		dir, err := resolveLogDirectory()
		if err != nil {
			initErr = err
			return
		}
		if err := os.MkdirAll(dir, 0750); err != nil {
			initErr = fmt.Errorf("failed to create log directory: %w", err)
			return
		}
		logDir = dir
	})
	return initErr
}

// NewLogger creates a logger for component at LevelInfo.
//
// If the log file cannot be opened a stderr logger is returned together
// with the error, so callers can warn and carry on.
func NewLogger(component string) (*Logger, error) {
	if err := initLogDirectory(); err != nil {
		return newFallbackLogger(component, err), err
	}

	sessID := getSessionID()
	logPath := filepath.Join(logDir, fmt.Sprintf("%s-tabsweep.log", sessID))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		err = fmt.Errorf("failed to open log file: %w", err)
		return newFallbackLogger(component, err), err
	}

	return &Logger{
		sessionID: sessID,
		component: component,
		file:      file,
		logger:    log.New(file, "", 0),
		level:     LevelInfo,
		logPath:   logPath,
	}, nil
}

func newFallbackLogger(component string, err error) *Logger {
	logger := log.New(os.Stderr, fmt.Sprintf("[%s] ", component), log.LstdFlags)
	logger.Printf("WARNING: Failed to initialize file logging: %v", err)

	return &Logger{
		sessionID: getSessionID(),
		component: component,
		logger:    logger,
		level:     LevelWarn,
	}
}

// New returns a logger writing to w. It is meant for tests and for
// embedding the engine in another program.
func New(component string, w io.Writer, level Level) *Logger {
	return &Logger{
		sessionID: getSessionID(),
		component: component,
		logger:    log.New(w, "", 0),
		level:     level,
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New("discard", io.Discard, LevelError+1)
}

// SetLevel changes the minimum level written.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// With returns a logger for a sub-component sharing the same output.
func (l *Logger) With(component string) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return &Logger{
		sessionID: l.sessionID,
		component: l.component + "." + component,
		logger:    l.logger,
		level:     l.level,
		logPath:   l.logPath,
	}
}

func (l *Logger) write(level Level, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	l.logger.Printf("[%s] [%s] [%s] %s", timestamp, l.component, level, fmt.Sprintf(format, v...))
}

func (l *Logger) Debugf(format string, v ...interface{}) { l.write(LevelDebug, format, v...) }
func (l *Logger) Infof(format string, v ...interface{})  { l.write(LevelInfo, format, v...) }
func (l *Logger) Warnf(format string, v ...interface{})  { l.write(LevelWarn, format, v...) }
func (l *Logger) Errorf(format string, v ...interface{}) { l.write(LevelError, format, v...) }

// SessionID returns the run's session ID.
func (l *Logger) SessionID() string {
	return l.sessionID
}

// LogPath returns the log file path, or "" when not logging to a file.
func (l *Logger) LogPath() string {
	return l.logPath
}

// Close closes the log file. Safe to call multiple times. Loggers derived
// with With share the file and must not be closed.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		if l.file != nil {
			err = l.file.Close()
		}
	})
	return err
}

// GetSessionID returns the current global session ID.
func GetSessionID() string {
	return getSessionID()
}

// GetLogDirectory returns the directory where logs are stored.
func GetLogDirectory() (string, error) {
	if err := initLogDirectory(); err != nil {
		return "", err
	}
	return logDir, nil
}
