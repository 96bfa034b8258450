package wire

import "math"

// Value is the tagged union described by the data model: null, void,
// boolean, 32-bit integer, 64-bit integer, double, arbitrary-precision
// decimal (opaque string), string, byte sequence, a reference to a host
// object, or a reference to a local proxy registered for host callback.
//
// Go has no built-in sum type, so Value is realized as a struct with a Tag
// discriminator and the payload field that Tag selects; every other field is
// the zero value. Construct one with the functions below rather than
// literal struct initialization, so the Tag always matches the payload.
type Value struct {
	Tag Tag

	Bool    bool
	Int32   int32
	Int64   int64
	Float64 float64
	Decimal string // opaque textual form, preserved byte-for-byte
	Str     string
	Bytes   []byte

	// RefID is set for TagReference/TagList/TagSet/TagMap/TagArray/TagIterator.
	RefID string
	// Proxy holds the constructed proxy for a decoded reference value,
	// populated by Decode via ProxyResolver.WrapReference. Nil on values
	// built for encoding by the caller (only RefID is needed to encode).
	Proxy interface{}

	// LocalProxyID is the registered callback-proxy id: supplied by the
	// caller for an already-registered object, or set by Decode to the id
	// found on the wire. Encode receives Value by copy, so the id it
	// obtains when registering LocalProxyImpl is not stored back here.
	LocalProxyID         string
	LocalProxyInterfaces []string
	// LocalProxyImpl is the raw local object. On encode, a non-nil value
	// with an empty LocalProxyID triggers registration. On decode, it is
	// the object resolver.LookupLocalProxy found (nil if not found).
	LocalProxyImpl interface{}
}

// Null returns the null value.
func Null() Value { return Value{Tag: TagNull} }

// Void returns the void value, used for method calls with no return value.
func Void() Value { return Value{Tag: TagVoidV} }

// FromBool returns a boolean value.
func FromBool(b bool) Value { return Value{Tag: TagBool, Bool: b} }

// FromInt returns an integer value, selecting tag `i` when n fits in a
// signed 32-bit range and tag `L` otherwise, per the §8 sizing property.
func FromInt(n int64) Value {
	if n >= math.MinInt32 && n <= math.MaxInt32 {
		return Value{Tag: TagInt32, Int32: int32(n), Int64: n}
	}
	return Value{Tag: TagInt64, Int64: n}
}

// FromInt32 returns an `i`-tagged value directly.
func FromInt32(n int32) Value { return Value{Tag: TagInt32, Int32: n, Int64: int64(n)} }

// FromInt64 returns an `L`-tagged value directly, bypassing the §8
// 32-bit-range check. Use FromInt unless the `L` tag is specifically wanted
// for a value that happens to fit in 32 bits.
func FromInt64(n int64) Value { return Value{Tag: TagInt64, Int64: n} }

// FromFloat64 returns a double value.
func FromFloat64(f float64) Value { return Value{Tag: TagDouble, Float64: f} }

// FromDecimal returns an arbitrary-precision decimal value, preserving s's
// exact textual form.
func FromDecimal(s string) Value { return Value{Tag: TagDecimal, Decimal: s} }

// FromString returns a text string value.
func FromString(s string) Value { return Value{Tag: TagString, Str: s} }

// FromBytes returns a raw byte sequence value.
func FromBytes(b []byte) Value { return Value{Tag: TagBytes, Bytes: b} }

// FromReference returns a proxy-reference value of the given container kind.
// kind must be one of the tags for which Tag.IsContainerReference is true.
func FromReference(targetID string, kind Tag) Value {
	return Value{Tag: kind, RefID: targetID}
}

// FromLocalProxy returns a callback-proxy value for an object already
// registered under id.
func FromLocalProxy(id string, interfaces []string) Value {
	return Value{Tag: TagLocalProxy, LocalProxyID: id, LocalProxyInterfaces: interfaces}
}

// FromCallbackImpl returns a callback-proxy value for obj, implementing
// interfaces, that has not yet been registered. Encode registers it (via
// ProxyResolver.RegisterLocalProxy) each time it is encoded as a command
// argument, since the returned Value carries no id.
func FromCallbackImpl(obj interface{}, interfaces []string) Value {
	return Value{Tag: TagLocalProxy, LocalProxyImpl: obj, LocalProxyInterfaces: interfaces}
}

// IsNull reports whether v is the null or void value.
func (v Value) IsNull() bool {
	return v.Tag == TagNull || v.Tag == TagVoidV
}
