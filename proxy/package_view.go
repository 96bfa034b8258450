package proxy

import (
	"context"
	"strings"
	"sync"
	"unicode"

	"github.com/sammck-go/rgate/gatewayerr"
	"github.com/sammck-go/rgate/wire"
)

// Package is a namespace node: property access extends the dotted name and
// recurses, per §3/§4.E.
type Package struct {
	invoker Invoker
	fqn     string
}

// NewPackage constructs a Package proxy rooted at fqn.
func NewPackage(invoker Invoker, fqn string) *Package {
	return &Package{invoker: invoker, fqn: fqn}
}

// FQN returns the package's accumulated dotted path.
func (p *Package) FQN() string { return p.fqn }

// Prop concatenates fqn+"."+name and returns a *Class if name's first
// character is upper-case, else a new *Package, per §4.E. The reserved
// property "then" always fails to resolve.
func (p *Package) Prop(name string) (interface{}, error) {
	if name == reservedThen {
		return nil, ErrNoSuchProperty
	}
	child := p.fqn + "." + name
	if startsUpper(name) {
		return NewClass(p.invoker, child), nil
	}
	return NewPackage(p.invoker, child), nil
}

// Call always fails: a package proxy is not invocable (§4.E).
func (p *Package) Call(ctx context.Context, args ...wire.Value) (wire.Value, error) {
	return wire.Value{}, gatewayerr.NewUsageError("package %q is not callable", p.fqn)
}

func startsUpper(s string) bool {
	if s == "" {
		return false
	}
	r := []rune(s)[0]
	return unicode.IsUpper(r)
}

// View is the mutable namespace view: a name (default DefaultViewName), a
// client reference, and a short-name -> fully-qualified-class-name map
// populated by Import, per §3.
type View struct {
	invoker Invoker
	id      string
	name    string

	shortcutsMu sync.RWMutex
	shortcuts   map[string]string
}

// NewView constructs a View with the given view id (the target id the host
// uses to scope imports) and display name.
func NewView(invoker Invoker, id string, name string) *View {
	if name == "" {
		name = DefaultViewName
	}
	return &View{
		invoker:   invoker,
		id:        id,
		name:      name,
		shortcuts: make(map[string]string),
	}
}

// Name returns the view's display name.
func (v *View) Name() string { return v.name }

// Prop resolves name per §4.E's three-step lookup: a registered import
// shortcut, then upper-case-first promotion to a Class, then a Package.
func (v *View) Prop(name string) (interface{}, error) {
	if name == reservedThen {
		return nil, ErrNoSuchProperty
	}
	v.shortcutsMu.RLock()
	fqn, ok := v.shortcuts[name]
	v.shortcutsMu.RUnlock()
	if ok {
		return NewClass(v.invoker, fqn), nil
	}
	if startsUpper(name) {
		return NewClass(v.invoker, name), nil
	}
	return NewPackage(v.invoker, name), nil
}

// Import sends the `j\ni\n` command and, on success, registers the fqn's
// last dot-segment as a shortcut unless it is `*`.
func (v *View) Import(ctx context.Context, fqn string) error {
	if err := v.invoker.Import(ctx, v.id, fqn); err != nil {
		return err
	}
	last := lastDotSegment(fqn)
	if last != "*" {
		v.shortcutsMu.Lock()
		v.shortcuts[last] = fqn
		v.shortcutsMu.Unlock()
	}
	return nil
}

// RemoveImport sends the `j\nr\n` command and removes any shortcut
// registered for fqn's last dot-segment.
func (v *View) RemoveImport(ctx context.Context, fqn string) error {
	if err := v.invoker.RemoveImport(ctx, v.id, fqn); err != nil {
		return err
	}
	v.shortcutsMu.Lock()
	delete(v.shortcuts, lastDotSegment(fqn))
	v.shortcutsMu.Unlock()
	return nil
}

func lastDotSegment(fqn string) string {
	if i := strings.LastIndexByte(fqn, '.'); i >= 0 {
		return fqn[i+1:]
	}
	return fqn
}
