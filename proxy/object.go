package proxy

import (
	"context"

	"github.com/sammck-go/rgate/gatewayerr"
	"github.com/sammck-go/rgate/wire"
)

// reservedThen is the well-known property name that every proxy kind
// refuses, per §4.E/§8: it exists so that proxies never accidentally look
// like promise-bearing objects to duck-typed callers in the host's own
// ecosystem tooling. Go has no such ambiguity, but the refusal is kept for
// protocol parity and so a caller that blindly forwards a host-language
// property name doesn't silently succeed with a nonsense remote call.
const reservedThen = "then"

// ErrNoSuchProperty is returned by Prop/Field for the reserved "then" name.
var ErrNoSuchProperty = gatewayerr.NewUsageError("property %q is reserved and never resolves", reservedThen)

// Object is the generic proxy: any property access becomes a remote method
// call. TargetID and the Invoker are fixed at construction and never
// mutated afterward (§3 invariant).
type Object struct {
	targetID string
	invoker  Invoker
}

// NewObject constructs a generic object proxy for targetID.
func NewObject(invoker Invoker, targetID string) *Object {
	return &Object{targetID: targetID, invoker: invoker}
}

// TargetID returns this proxy's immutable target id.
func (o *Object) TargetID() string { return o.targetID }

// Call performs a remote method call: callMethod(targetId, method, args).
// Property access on an object proxy returns a callable that, when invoked,
// does exactly this (§4.E); Call is that callable made explicit.
func (o *Object) Call(ctx context.Context, method string, args ...wire.Value) (wire.Value, error) {
	if method == reservedThen {
		return wire.Value{}, ErrNoSuchProperty
	}
	return o.invoker.CallMethod(ctx, o.targetID, method, args)
}

// Field fetches a remote field's value via the field-get command.
func (o *Object) Field(ctx context.Context, name string) (wire.Value, error) {
	if name == reservedThen {
		return wire.Value{}, ErrNoSuchProperty
	}
	return o.invoker.GetField(ctx, o.targetID, name)
}

// SetField assigns a remote field. §4.E requires this be the only way to
// assign a field — direct property assignment (`obj.prop = v`) has no Go
// equivalent to refuse, since Go has no operator overloading, but any
// wrapper that exposes field mutation must route through SetField.
func (o *Object) SetField(ctx context.Context, name string, value wire.Value) error {
	return o.invoker.SetField(ctx, o.targetID, name, value)
}

// Methods lists the target's declared instance methods.
func (o *Object) Methods(ctx context.Context) ([]string, error) {
	return o.invoker.GetMethods(ctx, o.targetID)
}

// Fields lists the target's declared instance fields.
func (o *Object) Fields(ctx context.Context) ([]string, error) {
	return o.invoker.GetFields(ctx, o.targetID)
}

// Help returns the host's free-form help text for this object, optionally
// filtered by pattern (empty for unfiltered).
func (o *Object) Help(ctx context.Context, pattern string) (string, error) {
	return o.invoker.Help(ctx, o.targetID, pattern)
}

// Release sends a best-effort memory-release command for this target.
// Transport errors are swallowed, per §4.D/§7 — the host may already have
// collected the object.
func (o *Object) Release(ctx context.Context) {
	o.invoker.ReleaseObject(ctx, o.targetID)
}
