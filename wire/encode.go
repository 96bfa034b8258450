package wire

import (
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/sammck-go/rgate/gatewayerr"
)

// EncodeCommandPart renders v as a single newline-terminated command part:
// the type tag byte followed by the tag's payload, per §4.A/§6. resolver is
// used to register not-yet-registered callback-proxy values (the `f` tag);
// it may be nil for values that are known not to need it.
func EncodeCommandPart(v Value, resolver ProxyResolver) (string, error) {
	switch v.Tag {
	case TagNull, TagVoidV:
		return "n\n", nil

	case TagBool:
		if v.Bool {
			return "btrue\n", nil
		}
		return "bfalse\n", nil

	case TagInt32:
		return "i" + strconv.FormatInt(int64(v.Int32), 10) + "\n", nil

	case TagInt64:
		return "L" + strconv.FormatInt(v.Int64, 10) + "\n", nil

	case TagDouble:
		return "d" + strconv.FormatFloat(v.Float64, 'g', -1, 64) + "\n", nil

	case TagDecimal:
		// Decimals are peer-dependent (§9 open question); this encoder
		// only ever round-trips a textual form it already received.
		return "D" + v.Decimal + "\n", nil

	case TagString:
		return "s" + Escape(v.Str) + "\n", nil

	case TagBytes:
		return "j" + base64.StdEncoding.EncodeToString(v.Bytes) + "\n", nil

	case TagReference, TagList, TagSet, TagMap, TagArray, TagIterator:
		if v.RefID == "" {
			return "", gatewayerr.NewUsageError("cannot encode a %s reference with no target id", v.Tag)
		}
		return v.Tag.String() + v.RefID + "\n", nil

	case TagLocalProxy:
		id := v.LocalProxyID
		if id == "" {
			if resolver == nil {
				return "", gatewayerr.NewUnsupportedLocalType("cannot register a callback proxy without a resolver")
			}
			id = resolver.RegisterLocalProxy(v.LocalProxyImpl, v.LocalProxyInterfaces)
			if id == "" {
				return "", gatewayerr.NewUnsupportedLocalType("callback proxy registration returned no id")
			}
		}
		return "f" + id + ";" + strings.Join(v.LocalProxyInterfaces, ";") + "\n", nil

	default:
		return "", gatewayerr.NewUnsupportedLocalType("unsupported local value tag %q", string(rune(v.Tag)))
	}
}

// Encode returns v's encoded command part (see EncodeCommandPart) as bytes.
func Encode(v Value, resolver ProxyResolver) ([]byte, error) {
	s, err := EncodeCommandPart(v, resolver)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// EncodeVerbatim encodes a plain identifier part (target id, method name,
// field name, FQN, pattern) that must itself be newline-free, per §4.D.
func EncodeVerbatim(s string) ([]byte, error) {
	if strings.ContainsRune(s, '\n') {
		return nil, gatewayerr.NewUsageError("identifier must not contain a newline: %q", s)
	}
	return []byte(s + "\n"), nil
}
