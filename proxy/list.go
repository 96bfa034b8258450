package proxy

import (
	"context"

	"github.com/sammck-go/rgate/wire"
)

// List is the ordered-sequence container proxy, built over Object plus
// dedicated protocol for sort/reverse/subList/count, per §4.F.
type List struct {
	Object
}

// NewList constructs a List proxy for targetID.
func NewList(invoker Invoker, targetID string) *List {
	return &List{Object{targetID: targetID, invoker: invoker}}
}

// Size calls the remote size() method.
func (l *List) Size(ctx context.Context) (int, error) {
	v, err := l.Call(ctx, "size")
	if err != nil {
		return 0, err
	}
	return intOf(v), nil
}

// Get calls the remote get(i) method.
func (l *List) Get(ctx context.Context, i int) (wire.Value, error) {
	return l.Call(ctx, "get", wire.FromInt(int64(i)))
}

// Add calls the remote add(e) method.
func (l *List) Add(ctx context.Context, e wire.Value) (wire.Value, error) {
	return l.Call(ctx, "add", e)
}

// AddAt calls the remote add(i, e) method.
func (l *List) AddAt(ctx context.Context, i int, e wire.Value) (wire.Value, error) {
	return l.Call(ctx, "add", wire.FromInt(int64(i)), e)
}

// Remove calls the remote remove(indexOrValue) method.
func (l *List) Remove(ctx context.Context, indexOrValue wire.Value) (wire.Value, error) {
	return l.Call(ctx, "remove", indexOrValue)
}

// Set calls the remote set(i, e) method.
func (l *List) Set(ctx context.Context, i int, e wire.Value) (wire.Value, error) {
	return l.Call(ctx, "set", wire.FromInt(int64(i)), e)
}

// Clear calls the remote clear() method.
func (l *List) Clear(ctx context.Context) error {
	_, err := l.Call(ctx, "clear")
	return err
}

// Contains calls the remote contains(v) method.
func (l *List) Contains(ctx context.Context, v wire.Value) (bool, error) {
	res, err := l.Call(ctx, "contains", v)
	if err != nil {
		return false, err
	}
	return res.Bool, nil
}

// IndexOf calls the remote indexOf(v) method.
func (l *List) IndexOf(ctx context.Context, v wire.Value) (int, error) {
	res, err := l.Call(ctx, "indexOf", v)
	if err != nil {
		return 0, err
	}
	return intOf(res), nil
}

// Sort sends the dedicated `l\ns\n` subcommand.
func (l *List) Sort(ctx context.Context) error {
	return l.invoker.ListSort(ctx, l.targetID)
}

// Reverse sends the dedicated `l\nr\n` subcommand.
func (l *List) Reverse(ctx context.Context) error {
	return l.invoker.ListReverse(ctx, l.targetID)
}

// SubList sends the dedicated `l\nl\n <i>from <i>to e\n` subcommand.
func (l *List) SubList(ctx context.Context, from, to int) (*List, error) {
	v, err := l.invoker.ListSubList(ctx, l.targetID, from, to)
	if err != nil {
		return nil, err
	}
	if sub, ok := v.Proxy.(*List); ok {
		return sub, nil
	}
	return NewList(l.invoker, v.RefID), nil
}

// Count sends the dedicated `l\nf\n` subcommand counting occurrences of v.
func (l *List) Count(ctx context.Context, v wire.Value) (int, error) {
	res, err := l.invoker.ListCount(ctx, l.targetID, v)
	if err != nil {
		return 0, err
	}
	return intOf(res), nil
}

// ToArray materializes the list by size() followed by get(i) in order,
// per §4.F.
func (l *List) ToArray(ctx context.Context) ([]wire.Value, error) {
	n, err := l.Size(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]wire.Value, n)
	for i := 0; i < n; i++ {
		v, err := l.Get(ctx, i)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Enumerate yields every element in order, via repeated Get calls, closing
// the value channel after the last element or after the first error.
func (l *List) Enumerate(ctx context.Context) (<-chan wire.Value, <-chan error) {
	values := make(chan wire.Value)
	errs := make(chan error, 1)
	go func() {
		defer close(values)
		defer close(errs)
		n, err := l.Size(ctx)
		if err != nil {
			errs <- err
			return
		}
		for i := 0; i < n; i++ {
			v, err := l.Get(ctx, i)
			if err != nil {
				errs <- err
				return
			}
			select {
			case values <- v:
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
		}
	}()
	return values, errs
}

func intOf(v wire.Value) int {
	switch v.Tag {
	case wire.TagInt32:
		return int(v.Int32)
	case wire.TagInt64:
		return int(v.Int64)
	default:
		return 0
	}
}
