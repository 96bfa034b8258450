// Package proxy implements the lazy proxy namespace (packages, classes,
// instances) and the six container proxy kinds, per §2.E/F, §3, §4.E/F.
//
// Per the design note in spec.md §9, there is no dynamic property
// interception here: Object exposes two explicit operations, Call and
// Field, and namespace traversal returns typed Package/Class/Object values
// through an explicit API instead of duck-typed member access.
package proxy

import (
	"context"

	"github.com/sammck-go/rgate/wire"
)

// Invoker is the narrow slice of gateway.Client that proxy needs: every
// wire operation a proxy can trigger. Defining it here, rather than
// importing package gateway, keeps proxy a leaf package — gateway depends
// on proxy (to build the proxies it returns), never the other way around.
type Invoker interface {
	CallMethod(ctx context.Context, targetID, method string, args []wire.Value) (wire.Value, error)
	CallConstructor(ctx context.Context, fqn string, args []wire.Value) (wire.Value, error)
	GetField(ctx context.Context, targetID, field string) (wire.Value, error)
	SetField(ctx context.Context, targetID, field string, value wire.Value) error
	ReleaseObject(ctx context.Context, targetID string)
	GetMethods(ctx context.Context, targetID string) ([]string, error)
	GetFields(ctx context.Context, targetID string) ([]string, error)
	GetStaticMembers(ctx context.Context, fqn string) ([]string, error)
	Help(ctx context.Context, targetID, pattern string) (string, error)
	NewArray(ctx context.Context, fqn string, dims []wire.Value) (wire.Value, error)
	Import(ctx context.Context, viewID, fqn string) error
	RemoveImport(ctx context.Context, viewID, fqn string) error

	// List-only dedicated protocol (§4.F): these have no generic
	// method-call equivalent, so they are not expressed as Call().
	ListSort(ctx context.Context, targetID string) error
	ListReverse(ctx context.Context, targetID string) error
	ListSubList(ctx context.Context, targetID string, from, to int) (wire.Value, error)
	ListCount(ctx context.Context, targetID string, v wire.Value) (wire.Value, error)

	// Array-only dedicated protocol (§4.F).
	ArrayGet(ctx context.Context, targetID string, i int) (wire.Value, error)
	ArraySet(ctx context.Context, targetID string, i int, v wire.Value) error
	ArrayLength(ctx context.Context, targetID string) (int, error)
	ArraySlice(ctx context.Context, targetID string, from, to int) (wire.Value, error)
}

// StaticDispatchPrefix is the `z:` prefix that routes a method/field call by
// fully-qualified class name rather than by object reference, per §3/§6.
const StaticDispatchPrefix = "z:"

// WellKnownEntryPoint is the gateway's entry-point object id, `t`.
const WellKnownEntryPoint = "t"

// DefaultViewName is the default namespace view name, `rj`.
const DefaultViewName = "rj"
