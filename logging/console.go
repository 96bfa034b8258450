package logging

import (
	"os"

	"github.com/andrew-d/go-termutil"
)

// IsTerminal reports whether f is attached to an interactive terminal. It is
// the default isATTY predicate passed to NewConsoleLogger by cmd/rgate.
func IsTerminal(f *os.File) bool {
	return termutil.Isatty(f.Fd())
}
