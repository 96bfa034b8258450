package proxy

import (
	"context"

	"github.com/sammck-go/rgate/wire"
)

// Map is the key-value container proxy, per §4.F. Its keySet()/values()
// accessors return generic proxies rather than typed Set/List wrappers: the
// host's declared return type for these methods is not known ahead of the
// call, so promoting them would require guessing a container kind the host
// never advertised. This is an explicit Open Question resolution recorded
// in DESIGN.md.
type Map struct {
	Object
}

// NewMap constructs a Map proxy for targetID.
func NewMap(invoker Invoker, targetID string) *Map {
	return &Map{Object{targetID: targetID, invoker: invoker}}
}

// Size calls the remote size() method.
func (m *Map) Size(ctx context.Context) (int, error) {
	v, err := m.Call(ctx, "size")
	if err != nil {
		return 0, err
	}
	return intOf(v), nil
}

// Get calls the remote get(key) method.
func (m *Map) Get(ctx context.Context, key wire.Value) (wire.Value, error) {
	return m.Call(ctx, "get", key)
}

// Put calls the remote put(key, value) method, returning the prior value.
func (m *Map) Put(ctx context.Context, key, value wire.Value) (wire.Value, error) {
	return m.Call(ctx, "put", key, value)
}

// Remove calls the remote remove(key) method, returning the removed value.
func (m *Map) Remove(ctx context.Context, key wire.Value) (wire.Value, error) {
	return m.Call(ctx, "remove", key)
}

// ContainsKey calls the remote containsKey(key) method.
func (m *Map) ContainsKey(ctx context.Context, key wire.Value) (bool, error) {
	v, err := m.Call(ctx, "containsKey", key)
	if err != nil {
		return false, err
	}
	return v.Bool, nil
}

// Clear calls the remote clear() method.
func (m *Map) Clear(ctx context.Context) error {
	_, err := m.Call(ctx, "clear")
	return err
}

// KeySet calls the remote keySet() method, returning a generic Object proxy
// since the host's advertised container kind for the result is unknown.
func (m *Map) KeySet(ctx context.Context) (*Object, error) {
	v, err := m.Call(ctx, "keySet")
	if err != nil {
		return nil, err
	}
	return NewObject(m.invoker, v.RefID), nil
}

// Values calls the remote values() method, returning a generic Object proxy
// for the same reason as KeySet.
func (m *Map) Values(ctx context.Context) (*Object, error) {
	v, err := m.Call(ctx, "values")
	if err != nil {
		return nil, err
	}
	return NewObject(m.invoker, v.RefID), nil
}
