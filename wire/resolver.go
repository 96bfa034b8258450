package wire

// ProxyResolver is the minimal seam wire needs into the proxy/callback
// layers to turn a decoded reference into a proxy, and an encoded
// callback-proxy value into a registered local object id. Passing this
// narrow interface — rather than importing package gateway or package
// callback directly — breaks the cyclic dependency described in the design
// notes: gateway.Client implements it by delegating to proxy.Wrap and to the
// shared callback.Registry it was constructed with.
type ProxyResolver interface {
	// WrapReference constructs the proxy of the exact kind tag denotes for
	// a host-object reference id.
	WrapReference(id string, kind Tag) (interface{}, error)

	// LookupLocalProxy resolves a callback-proxy id to the local object
	// registered for it, or ok=false if no such id is registered.
	LookupLocalProxy(id string) (obj interface{}, ok bool)

	// RegisterLocalProxy registers obj (implementing interfaces, for the
	// host's benefit) for inbound callback dispatch and returns its id.
	// Called by Encode's `f`-tag branch when a caller passes a value built
	// with FromCallbackImpl, which carries no id. An empty returned id makes
	// Encode fail with UnsupportedLocalType.
	RegisterLocalProxy(obj interface{}, interfaces []string) string
}
