package proxy

import (
	"context"

	"github.com/sammck-go/rgate/wire"
)

// Class is polymorphic over "constructor callable" and "static member
// namespace": it carries the class's fully-qualified name and a synthesized
// static target id, per §3.
type Class struct {
	Object
	fqn string
}

// NewClass constructs a Class proxy for fqn. Its TargetID is always
// "z:"+fqn (§8 testable property).
func NewClass(invoker Invoker, fqn string) *Class {
	return &Class{
		Object: Object{targetID: StaticDispatchPrefix + fqn, invoker: invoker},
		fqn:    fqn,
	}
}

// FQN returns the class's fully-qualified name.
func (c *Class) FQN() string { return c.fqn }

// Construct performs callConstructor(fqn, args) — invoking the class proxy
// itself, per §4.E.
func (c *Class) Construct(ctx context.Context, args ...wire.Value) (wire.Value, error) {
	return c.invoker.CallConstructor(ctx, c.fqn, args)
}

// StaticMembers lists the class's static members (fields and methods).
func (c *Class) StaticMembers(ctx context.Context) ([]string, error) {
	return c.invoker.GetStaticMembers(ctx, c.fqn)
}

// Help returns the host's free-form class help text. It passes the
// "z:"-prefixed target id so the invoker selects the class help subcommand.
func (c *Class) Help(ctx context.Context, pattern string) (string, error) {
	return c.invoker.Help(ctx, c.targetID, pattern)
}

// Note: Class adds FQN, Construct, StaticMembers, and Help of its own. It
// embeds Object, so Object's methods (TargetID, Call, Field, SetField,
// Methods, Fields, Release) are promoted onto Class and all address the
// "z:"-prefixed static target id; it embeds no container proxy, so no
// List/Set/Map/Array/Iterator method is reachable through it.
