package proxy

import (
	"context"

	"github.com/sammck-go/rgate/wire"
)

// Set is the unordered-unique container proxy; enumeration goes through a
// host iterator obtained via the iterator() method, per §4.F.
type Set struct {
	Object
}

// NewSet constructs a Set proxy for targetID.
func NewSet(invoker Invoker, targetID string) *Set {
	return &Set{Object{targetID: targetID, invoker: invoker}}
}

// Size calls the remote size() method.
func (s *Set) Size(ctx context.Context) (int, error) {
	v, err := s.Call(ctx, "size")
	if err != nil {
		return 0, err
	}
	return intOf(v), nil
}

// Add calls the remote add(e) method.
func (s *Set) Add(ctx context.Context, e wire.Value) (bool, error) {
	v, err := s.Call(ctx, "add", e)
	if err != nil {
		return false, err
	}
	return v.Bool, nil
}

// Remove calls the remote remove(e) method.
func (s *Set) Remove(ctx context.Context, e wire.Value) (bool, error) {
	v, err := s.Call(ctx, "remove", e)
	if err != nil {
		return false, err
	}
	return v.Bool, nil
}

// Contains calls the remote contains(e) method.
func (s *Set) Contains(ctx context.Context, e wire.Value) (bool, error) {
	v, err := s.Call(ctx, "contains", e)
	if err != nil {
		return false, err
	}
	return v.Bool, nil
}

// Clear calls the remote clear() method.
func (s *Set) Clear(ctx context.Context) error {
	_, err := s.Call(ctx, "clear")
	return err
}

// Iterator obtains a host iterator via the iterator() method call.
func (s *Set) Iterator(ctx context.Context) (*Iterator, error) {
	v, err := s.Call(ctx, "iterator")
	if err != nil {
		return nil, err
	}
	if it, ok := v.Proxy.(*Iterator); ok {
		return it, nil
	}
	return NewIterator(s.invoker, v.RefID), nil
}

// ToSet materializes the set's elements, draining the host iterator.
// Go has no built-in hash-set over an arbitrary wire.Value, so uniqueness
// is realized over each element's encoded command-part form, which is a
// faithful proxy for host-side equality for every scalar kind; this
// materialization choice is recorded in DESIGN.md, not a silent behavior
// change from what §4.F specifies.
func (s *Set) ToSet(ctx context.Context) (map[string]wire.Value, error) {
	it, err := s.Iterator(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]wire.Value)
	for {
		hasNext, err := it.HasNext(ctx)
		if err != nil {
			return nil, err
		}
		if !hasNext {
			break
		}
		v, err := it.Next(ctx)
		if err != nil {
			return nil, err
		}
		key, err := wire.EncodeCommandPart(v, nil)
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	return out, nil
}
