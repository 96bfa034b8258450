package wire

import (
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/sammck-go/rgate/gatewayerr"
)

// Decode parses a single already-framed line (no trailing newline) as a
// typed value payload: the first byte is the tag, the remainder is the
// tag-specific payload, per §4.A's tag dispatch table.
func Decode(line []byte, resolver ProxyResolver) (Value, error) {
	if len(line) == 0 {
		return Value{}, gatewayerr.NewProtocolDecodeError("empty value payload")
	}
	tag := Tag(line[0])
	payload := string(line[1:])

	switch tag {
	case TagVoidV, TagNull:
		return Null(), nil

	case TagBool:
		return FromBool(strings.EqualFold(payload, "true")), nil

	case TagInt32:
		n, err := strconv.ParseInt(payload, 10, 32)
		if err != nil {
			return Value{}, gatewayerr.NewProtocolDecodeError("malformed int32 payload %q: %s", payload, err)
		}
		return FromInt32(int32(n)), nil

	case TagInt64:
		n, err := strconv.ParseInt(payload, 10, 64)
		if err != nil {
			return Value{}, gatewayerr.NewProtocolDecodeError("malformed int64 payload %q: %s", payload, err)
		}
		// The protocol defines no arbitrary-precision integer (§9 open
		// question); int64 already covers every value the `L` tag can
		// carry without losing precision, so no promotion is needed here.
		return FromInt64(n), nil

	case TagDouble:
		f, err := strconv.ParseFloat(payload, 64)
		if err != nil {
			return Value{}, gatewayerr.NewProtocolDecodeError("malformed double payload %q: %s", payload, err)
		}
		return FromFloat64(f), nil

	case TagDecimal:
		return FromDecimal(payload), nil

	case TagString:
		s, err := Unescape(payload)
		if err != nil {
			return Value{}, err
		}
		return FromString(s), nil

	case TagBytes:
		b, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return Value{}, gatewayerr.NewProtocolDecodeError("malformed base64 payload: %s", err)
		}
		return FromBytes(b), nil

	case TagReference, TagList, TagSet, TagMap, TagArray, TagIterator:
		v := Value{Tag: tag, RefID: payload}
		if resolver != nil {
			proxy, err := resolver.WrapReference(payload, tag)
			if err != nil {
				return Value{}, err
			}
			v.Proxy = proxy
		}
		return v, nil

	case TagLocalProxy:
		v := Value{Tag: TagLocalProxy, LocalProxyID: payload}
		if resolver != nil {
			if obj, ok := resolver.LookupLocalProxy(payload); ok {
				v.LocalProxyImpl = obj
			}
		}
		return v, nil

	default:
		return Value{}, gatewayerr.NewProtocolDecodeError("unknown value type tag %q", string(rune(tag)))
	}
}

// ResponseOutcome distinguishes the three response codes of §4.A/§6.
type ResponseOutcome int

const (
	// ResponseSuccess is the `y` response code.
	ResponseSuccess ResponseOutcome = iota
	// ResponseError is the `x` response code.
	ResponseError
	// ResponseFatal is the `z` response code.
	ResponseFatal
)

// DecodeResponse parses one full response line: an optional leading `!`,
// then a response-code byte, then the tag-dispatched payload for `y`, or the
// raw remainder for `x`/`z`, per §4.A.
func DecodeResponse(line []byte, resolver ProxyResolver) (Value, error) {
	if len(line) == 0 {
		return Value{}, gatewayerr.NewNetworkError("empty response", nil)
	}
	if line[0] == '!' {
		line = line[1:]
	}
	if len(line) == 0 {
		return Value{}, gatewayerr.NewProtocolFramingError("response has no code byte")
	}

	switch line[0] {
	case 'y':
		return Decode(line[1:], resolver)

	case 'x':
		payload := string(line[1:])
		var hostException interface{}
		if v, err := Decode(line[1:], resolver); err == nil {
			hostException = v.Proxy
		}
		return Value{}, gatewayerr.NewHostInvocationError(payload, hostException)

	case 'z':
		return Value{}, gatewayerr.NewFatalProtocolError(string(line[1:]))

	default:
		return Value{}, gatewayerr.NewProtocolFramingError("unrecognized response code %q", string(line[0]))
	}
}
