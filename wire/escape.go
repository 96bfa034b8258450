package wire

import (
	"strings"

	"github.com/sammck-go/rgate/gatewayerr"
)

// Escape transforms s so that a literal backslash becomes "\\" and a literal
// newline becomes "\n" (two characters), per §4.A. It is injective: distinct
// inputs never produce the same output, since every backslash in the
// output is either part of an escape pair or was itself escaped.
func Escape(s string) string {
	if !strings.ContainsAny(s, "\\\n") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Unescape reverses Escape in a single left-to-right pass: "\\" becomes "\"
// and "\n" becomes a newline. Any other character following a backslash is a
// protocol decode error.
func Unescape(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var b strings.Builder
	b.Grow(len(s))
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '\\' {
			b.WriteRune(r)
			continue
		}
		i++
		if i >= len(runes) {
			return "", gatewayerr.NewProtocolDecodeError("dangling escape character at end of string")
		}
		switch runes[i] {
		case '\\':
			b.WriteRune('\\')
		case 'n':
			b.WriteRune('\n')
		default:
			return "", gatewayerr.NewProtocolDecodeError("unknown escape sequence \\%c", runes[i])
		}
	}
	return b.String(), nil
}
