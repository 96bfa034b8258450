// Package logging provides the leveled, prefix-forking Logger used by every
// component in this module, instead of a bare *log.Logger.
package logging

import (
	"fmt"
	"strings"
)

// Level specifies the severity of a log record.
type Level int

const (
	// LevelUnknown is the zero value; its behavior is undefined.
	LevelUnknown Level = iota
	// LevelPanic causes output of a message followed by a panic.
	LevelPanic
	// LevelFatal causes output of a message followed by os.Exit(1).
	LevelFatal
	// LevelError is for unexpected error conditions.
	LevelError
	// LevelWarning is for warning conditions.
	LevelWarning
	// LevelInfo is for informational messages.
	LevelInfo
	// LevelDebug is for debug messages.
	LevelDebug
	// LevelTrace is for very verbose per-command/per-response tracing.
	LevelTrace
)

var levelNames = [...]string{
	"unknown", "panic", "fatal", "error", "warning", "info", "debug", "trace",
}

var nameToLevel = func() map[string]Level {
	m := make(map[string]Level, len(levelNames))
	for i, name := range levelNames {
		m[name] = Level(i)
	}
	return m
}()

// ParseLevel converts a case-insensitive level name to a Level, returning
// LevelUnknown if the name is not recognized.
func ParseLevel(s string) Level {
	lvl, ok := nameToLevel[strings.ToLower(s)]
	if !ok {
		return LevelUnknown
	}
	return lvl
}

func (l Level) String() string {
	if l < LevelUnknown || l > LevelTrace {
		return levelNames[LevelUnknown]
	}
	return levelNames[l]
}

// FromString sets *l from a case-insensitive level name.
func (l *Level) FromString(s string) error {
	parsed := ParseLevel(s)
	if parsed == LevelUnknown {
		return fmt.Errorf("unknown log level: %q", s)
	}
	*l = parsed
	return nil
}
