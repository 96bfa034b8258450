package logging

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
)

// MinLogger is the minimal interface a logging sink must provide.
type MinLogger interface {
	Print(args ...interface{})
	Prefix() string
}

// Logger is the leveled, prefix-forking logging interface used throughout
// this module. Every component that can log (transport.Connection,
// gateway.Pool, gateway.Client, callback.Server, ...) takes one of these at
// construction and Forks a child scoped to its own prefix, rather than
// writing to log.Default() directly.
type Logger interface {
	MinLogger

	// Panic logs at LevelPanic and then panics.
	Panic(args ...interface{})
	Panicf(f string, args ...interface{})

	// Fatal logs at LevelFatal and then calls os.Exit(1).
	Fatal(args ...interface{})
	Fatalf(f string, args ...interface{})

	// PanicOnError does nothing if err is nil; otherwise logs and panics.
	PanicOnError(err error)

	Log(level Level, args ...interface{})
	Logf(level Level, f string, args ...interface{})

	ELog(args ...interface{})
	ELogf(f string, args ...interface{})
	WLog(args ...interface{})
	WLogf(f string, args ...interface{})
	ILog(args ...interface{})
	ILogf(f string, args ...interface{})
	DLog(args ...interface{})
	DLogf(f string, args ...interface{})
	TLog(args ...interface{})
	TLogf(f string, args ...interface{})

	// Error returns an error whose message carries this logger's prefix.
	Error(args ...interface{}) error
	Errorf(f string, args ...interface{}) error

	Sprint(args ...interface{}) string
	Sprintf(f string, args ...interface{}) string

	// ELogError/WLogError/DLogError log at the named level and also return
	// an error with the same, prefixed message.
	ELogError(args ...interface{}) error
	ELogErrorf(f string, args ...interface{}) error
	WLogError(args ...interface{}) error
	WLogErrorf(f string, args ...interface{}) error
	DLogError(args ...interface{}) error
	DLogErrorf(f string, args ...interface{}) error

	// Fork creates a new Logger with an additional formatted string
	// appended onto this logger's prefix (joined with ": ").
	Fork(prefix string, args ...interface{}) Logger

	GetLevel() Level
	SetLevel(level Level)
}

const defaultLogFlags = log.Ldate | log.Ltime

// basicLogger is a logical output stream with a level filter and a prefix
// prepended to every record.
type basicLogger struct {
	prefix  string
	prefixC string // prefix + ": ", or "" if prefix is empty
	sink    MinLogger
	level   Level
	flags   int
}

// New creates a Logger with the given prefix and level, writing to os.Stderr.
func New(prefix string, level Level) Logger {
	return NewWithFlags(prefix, defaultLogFlags, level)
}

// NewWithFlags creates a Logger with the given prefix, stdlib log flags, and
// level, writing to os.Stderr.
func NewWithFlags(prefix string, flags int, level Level) Logger {
	return &basicLogger{
		prefix:  prefix,
		prefixC: withColon(prefix),
		sink:    log.New(os.Stderr, "", flags),
		level:   level,
		flags:   flags,
	}
}

// NewConsoleLogger is like New, but when w is an *os.File that isATTY
// reports is not a terminal (piped to a file, or running under a process
// supervisor) it drops the
// date/time prefix stdlib log would otherwise add, since most log collectors
// already stamp lines with wall-clock time and a doubled timestamp only
// makes piped output harder to diff.
func NewConsoleLogger(w io.Writer, isATTY func(f *os.File) bool, prefix string, level Level) Logger {
	flags := defaultLogFlags
	if f, ok := w.(*os.File); ok && isATTY != nil && !isATTY(f) {
		flags = 0
	}
	return &basicLogger{
		prefix:  prefix,
		prefixC: withColon(prefix),
		sink:    log.New(w, "", flags),
		level:   level,
		flags:   flags,
	}
}

func withColon(prefix string) string {
	if prefix == "" {
		return ""
	}
	return prefix + ": "
}

func (l *basicLogger) Print(args ...interface{}) {
	l.sink.Print(l.Sprint(args...))
}

func (l *basicLogger) logNoPrefix(level Level, msg string) {
	if level <= l.level || level <= LevelFatal {
		if level >= LevelPanic {
			l.sink.Print(msg)
		}
		switch level {
		case LevelFatal:
			os.Exit(1)
		case LevelPanic:
			panic(msg)
		}
	}
}

func (l *basicLogger) Log(level Level, args ...interface{}) {
	if level <= l.level || level <= LevelFatal {
		l.logNoPrefix(level, l.Sprint(args...))
	}
}

func (l *basicLogger) Logf(level Level, f string, args ...interface{}) {
	if level <= l.level || level <= LevelFatal {
		l.logNoPrefix(level, l.Sprintf(f, args...))
	}
}

func (l *basicLogger) logError(level Level, msg string) error {
	l.logNoPrefix(level, msg)
	return errors.New(msg)
}

func (l *basicLogger) Panic(args ...interface{})           { l.Log(LevelPanic, args...) }
func (l *basicLogger) Panicf(f string, args ...interface{}) { l.Logf(LevelPanic, f, args...) }
func (l *basicLogger) Fatal(args ...interface{})           { l.Log(LevelFatal, args...) }
func (l *basicLogger) Fatalf(f string, args ...interface{}) { l.Logf(LevelFatal, f, args...) }

func (l *basicLogger) PanicOnError(err error) {
	if err != nil {
		l.Panic(err)
	}
}

func (l *basicLogger) ELog(args ...interface{})            { l.Log(LevelError, args...) }
func (l *basicLogger) ELogf(f string, args ...interface{}) { l.Logf(LevelError, f, args...) }
func (l *basicLogger) WLog(args ...interface{})            { l.Log(LevelWarning, args...) }
func (l *basicLogger) WLogf(f string, args ...interface{}) { l.Logf(LevelWarning, f, args...) }
func (l *basicLogger) ILog(args ...interface{})            { l.Log(LevelInfo, args...) }
func (l *basicLogger) ILogf(f string, args ...interface{}) { l.Logf(LevelInfo, f, args...) }
func (l *basicLogger) DLog(args ...interface{})            { l.Log(LevelDebug, args...) }
func (l *basicLogger) DLogf(f string, args ...interface{}) { l.Logf(LevelDebug, f, args...) }
func (l *basicLogger) TLog(args ...interface{})            { l.Log(LevelTrace, args...) }
func (l *basicLogger) TLogf(f string, args ...interface{}) { l.Logf(LevelTrace, f, args...) }

func (l *basicLogger) Error(args ...interface{}) error {
	return errors.New(l.Sprint(args...))
}

func (l *basicLogger) Errorf(f string, args ...interface{}) error {
	return errors.New(l.Sprintf(f, args...))
}

func (l *basicLogger) Sprint(args ...interface{}) string {
	return l.prefixC + fmt.Sprint(args...)
}

func (l *basicLogger) Sprintf(f string, args ...interface{}) string {
	return l.prefixC + fmt.Sprintf(f, args...)
}

func (l *basicLogger) ELogError(args ...interface{}) error { return l.logError(LevelError, l.Sprint(args...)) }
func (l *basicLogger) ELogErrorf(f string, args ...interface{}) error {
	return l.logError(LevelError, l.Sprintf(f, args...))
}
func (l *basicLogger) WLogError(args ...interface{}) error { return l.logError(LevelWarning, l.Sprint(args...)) }
func (l *basicLogger) WLogErrorf(f string, args ...interface{}) error {
	return l.logError(LevelWarning, l.Sprintf(f, args...))
}
func (l *basicLogger) DLogError(args ...interface{}) error { return l.logError(LevelDebug, l.Sprint(args...)) }
func (l *basicLogger) DLogErrorf(f string, args ...interface{}) error {
	return l.logError(LevelDebug, l.Sprintf(f, args...))
}

func (l *basicLogger) Prefix() string {
	return l.prefix
}

func (l *basicLogger) GetLevel() Level {
	return l.level
}

func (l *basicLogger) SetLevel(level Level) {
	l.level = level
}

// Fork creates a new Logger that appends a formatted string onto this
// logger's prefix, joined by ": ". Used to scope a logger to one connection,
// one pool slot, or one inbound callback connection.
func (l *basicLogger) Fork(prefix string, args ...interface{}) Logger {
	args = append([]interface{}{l.prefix}, args...)
	newPrefix := fmt.Sprintf("%s: "+prefix, args...)
	return NewWithFlags(newPrefix, l.flags, l.level)
}
