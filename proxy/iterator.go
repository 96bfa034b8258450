package proxy

import (
	"context"

	"github.com/sammck-go/rgate/wire"
)

// Iterator is the one-shot forward cursor proxy, per §4.F. It has no size
// or reset: HasNext/Next/Remove are the entire contract, matching the host
// iterator's own single-pass semantics.
type Iterator struct {
	Object
}

// NewIterator constructs an Iterator proxy for targetID.
func NewIterator(invoker Invoker, targetID string) *Iterator {
	return &Iterator{Object{targetID: targetID, invoker: invoker}}
}

// HasNext calls the remote hasNext() method.
func (it *Iterator) HasNext(ctx context.Context) (bool, error) {
	v, err := it.Call(ctx, "hasNext")
	if err != nil {
		return false, err
	}
	return v.Bool, nil
}

// Next calls the remote next() method.
func (it *Iterator) Next(ctx context.Context) (wire.Value, error) {
	return it.Call(ctx, "next")
}

// Remove calls the remote remove() method, removing the last element
// returned by Next.
func (it *Iterator) Remove(ctx context.Context) error {
	_, err := it.Call(ctx, "remove")
	return err
}

// Drain consumes the entire iterator into a slice, in order.
func (it *Iterator) Drain(ctx context.Context) ([]wire.Value, error) {
	var out []wire.Value
	for {
		hasNext, err := it.HasNext(ctx)
		if err != nil {
			return nil, err
		}
		if !hasNext {
			return out, nil
		}
		v, err := it.Next(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
}
