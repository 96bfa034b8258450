package proxy

import "github.com/sammck-go/rgate/wire"

// Wrap builds the proxy value for a decoded wire reference, dispatching on
// its container tag. This is the single point where a target id becomes a
// typed proxy, and the only place that may do so: once constructed, a
// proxy's kind is fixed for its lifetime and is never re-derived from a
// later response (§3 invariant — proxies are never upgraded or downgraded).
func Wrap(invoker Invoker, id string, tag wire.Tag) (interface{}, error) {
	switch tag {
	case wire.TagList:
		return NewList(invoker, id), nil
	case wire.TagSet:
		return NewSet(invoker, id), nil
	case wire.TagMap:
		return NewMap(invoker, id), nil
	case wire.TagArray:
		return NewArray(invoker, id), nil
	case wire.TagIterator:
		return NewIterator(invoker, id), nil
	case wire.TagReference:
		return NewObject(invoker, id), nil
	default:
		return NewObject(invoker, id), nil
	}
}
