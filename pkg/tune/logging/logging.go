// Package logging provides structured logging for the llmtune pipeline.
// Output goes to stderr only: under systemd an ExecStartPre hook's stderr
// lands in the journal, which is where operators look when the managed
// server refuses to start.
//
// Basic usage:
//
//	if err := logging.Init(logging.Config{Level: "info"}); err != nil {
//	    log.Fatal(err)
//	}
//	logger := logging.Get("calc")
//	logger.Info("derived parameters", "parallelism", 4)
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// Level represents a logging level.
type Level int

// Log levels from least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// toCharmLevel converts our Level to charmbracelet/log level.
func (l Level) toCharmLevel() log.Level {
	switch l {
	case LevelDebug:
		return log.DebugLevel
	case LevelWarn:
		return log.WarnLevel
	case LevelError:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// ErrInvalidLevel is returned when an invalid log level string is provided.
var ErrInvalidLevel = errors.New("invalid log level")

// ParseLevel parses a string into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
	}
}

// Config configures the logging system.
type Config struct {
	// Level is the default log level (debug, info, warn, error).
	Level string

	// Components maps component names to their own levels, overriding
	// the default.
	Components map[string]string

	// Output overrides the destination. Nil means stderr; tests point
	// this at a buffer.
	Output io.Writer
}

// state holds the global logging setup.
type state struct {
	mu         sync.RWMutex
	out        io.Writer
	level      Level
	components map[string]Level
	loggers    map[string]*log.Logger
}

var globalState = &state{
	out:        os.Stderr,
	level:      LevelInfo,
	components: make(map[string]Level),
	loggers:    make(map[string]*log.Logger),
}

// Init configures the logging system. Calling it again resets all
// component loggers. Before Init, Get returns info-level stderr loggers.
func Init(cfg Config) error {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}

	components := make(map[string]Level, len(cfg.Components))
	for comp, lvl := range cfg.Components {
		parsed, err := ParseLevel(lvl)
		if err != nil {
			return fmt.Errorf("parsing level for component %q: %w", comp, err)
		}
		components[comp] = parsed
	}

	globalState.mu.Lock()
	defer globalState.mu.Unlock()
	globalState.level = level
	globalState.components = components
	globalState.loggers = make(map[string]*log.Logger)
	globalState.out = os.Stderr
	if cfg.Output != nil {
		globalState.out = cfg.Output
	}
	return nil
}

// Get returns the logger for a component, creating it on first use.
func Get(component string) *log.Logger {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if logger, ok := globalState.loggers[component]; ok {
		return logger
	}

	level := globalState.level
	if override, ok := globalState.components[component]; ok {
		level = override
	}

	logger := log.NewWithOptions(globalState.out, log.Options{
		Level:           level.toCharmLevel(),
		ReportTimestamp: false, // the journal timestamps every line already
		Prefix:          component,
	})
	globalState.loggers[component] = logger
	return logger
}
