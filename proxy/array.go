package proxy

import (
	"context"

	"github.com/sammck-go/rgate/wire"
)

// Array is the fixed-length container proxy. Unlike List, Array has no
// generic method-call fallback at all: get/set/length/slice are dedicated
// protocol operations, per §4.F.
type Array struct {
	Object
}

// NewArray constructs an Array proxy for targetID.
func NewArray(invoker Invoker, targetID string) *Array {
	return &Array{Object{targetID: targetID, invoker: invoker}}
}

// Get returns the element at index i.
func (a *Array) Get(ctx context.Context, i int) (wire.Value, error) {
	return a.invoker.ArrayGet(ctx, a.targetID, i)
}

// Set assigns the element at index i.
func (a *Array) Set(ctx context.Context, i int, v wire.Value) error {
	return a.invoker.ArraySet(ctx, a.targetID, i, v)
}

// Length returns the array's fixed length.
func (a *Array) Length(ctx context.Context) (int, error) {
	return a.invoker.ArrayLength(ctx, a.targetID)
}

// Slice returns a new Array proxy over the [from, to) sub-range.
func (a *Array) Slice(ctx context.Context, from, to int) (*Array, error) {
	v, err := a.invoker.ArraySlice(ctx, a.targetID, from, to)
	if err != nil {
		return nil, err
	}
	if sub, ok := v.Proxy.(*Array); ok {
		return sub, nil
	}
	return NewArray(a.invoker, v.RefID), nil
}

// ToSlice materializes the array by Length followed by Get in order.
func (a *Array) ToSlice(ctx context.Context) ([]wire.Value, error) {
	n, err := a.Length(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]wire.Value, n)
	for i := 0; i < n; i++ {
		v, err := a.Get(ctx, i)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
