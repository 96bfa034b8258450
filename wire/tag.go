// Package wire implements the gateway's command/response encoding: the
// typed value union, its single-ASCII-character tag scheme, and the escaping
// rules for newline-sensitive strings, per the protocol's §4.A/§6.
package wire

// Tag is the single-ASCII-character type tag that prefixes every encoded
// value payload.
type Tag byte

// Value type tags, per §6.
const (
	TagReference   Tag = 'r' // generic object proxy
	TagInt32       Tag = 'i'
	TagInt64       Tag = 'L'
	TagDouble      Tag = 'd'
	TagDecimal     Tag = 'D'
	TagBool        Tag = 'b'
	TagString      Tag = 's'
	TagBytes       Tag = 'j'
	TagNull        Tag = 'n'
	TagVoidV       Tag = 'v' // void, both as an encode source and a decode alias for null
	TagLocalProxy  Tag = 'f' // callback-proxy argument/reference
	TagList        Tag = 'l'
	TagSet         Tag = 'h'
	TagMap         Tag = 'a'
	TagArray       Tag = 't'
	TagIterator    Tag = 'g'
)

// IsContainerReference reports whether tag denotes one of the six container
// proxy kinds that Wrap must dispatch on (§4.E's "name-based container
// factory", §4.D's Wrap).
func (t Tag) IsContainerReference() bool {
	switch t {
	case TagReference, TagList, TagSet, TagMap, TagArray, TagIterator:
		return true
	default:
		return false
	}
}

func (t Tag) String() string {
	return string(rune(t))
}
