// Package callback implements the inbound side of the gateway bridge: a TCP
// acceptor for host-initiated calls, a registry of locally-registered proxy
// objects, and dispatch of inbound invocations onto them, per §2.G and §4.G.
package callback

import (
	"reflect"
	"strconv"
	"sync"
)

// registeredObject pairs a locally-registered value with the host-interface
// names it was registered under, for §4.G's "store, return" bookkeeping.
type registeredObject struct {
	impl       interface{}
	interfaces []string
}

// Registry is the proxy pool described in §3: a monotone id counter and a
// map from id to registered object. IDs are never reused within a session,
// and removal is idempotent, matching the data-model invariants.
type Registry struct {
	mu      sync.RWMutex
	nextID  int64
	objects map[string]registeredObject
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{objects: make(map[string]registeredObject)}
}

// Register allocates a fresh `p<n>` id for obj and stores it, implementing
// wire.ProxyResolver.RegisterLocalProxy (via gateway.Client's delegation).
func (r *Registry) Register(obj interface{}, interfaces []string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := "p" + strconv.FormatInt(r.nextID, 10)
	r.objects[id] = registeredObject{impl: obj, interfaces: interfaces}
	return id
}

// Lookup resolves id to its registered object.
func (r *Registry) Lookup(id string) (interface{}, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	obj, ok := r.objects[id]
	if !ok {
		return nil, false
	}
	return obj.impl, true
}

// Remove deletes id from the registry. Idempotent: removing an id twice, or
// one never registered, is not an error.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.objects, id)
}

// findMethod looks up a method named name on obj by reflection, matching
// the callback dispatch requirement of §4.G ("invoke the named method on the
// proxy with the decoded arguments"). Go method names are exported
// (upper-case first letter); name is title-cased before lookup so host
// method names in the conventional lower-camel-case style resolve.
func findMethod(obj interface{}, name string) (reflect.Value, bool) {
	if obj == nil || name == "" {
		return reflect.Value{}, false
	}
	exported := name
	if r := []rune(name); len(r) > 0 && r[0] >= 'a' && r[0] <= 'z' {
		r[0] = r[0] - ('a' - 'A')
		exported = string(r)
	}
	v := reflect.ValueOf(obj)
	m := v.MethodByName(exported)
	if !m.IsValid() {
		return reflect.Value{}, false
	}
	return m, true
}
