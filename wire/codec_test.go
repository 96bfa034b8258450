package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEscapeUnescapeRoundTrip(t *testing.T) {
	cases := []string{
		"",
		"plain",
		"line1\nline2",
		`back\slash`,
		"mixed\\and\nnewlines\\here",
	}
	for _, s := range cases {
		escaped := Escape(s)
		unescaped, err := Unescape(escaped)
		require.NoError(t, err)
		require.Equal(t, s, unescaped)
	}
}

func TestUnescapeRejectsDanglingEscape(t *testing.T) {
	_, err := Unescape(`bad\`)
	require.Error(t, err)
}

func TestUnescapeRejectsUnknownEscape(t *testing.T) {
	_, err := Unescape(`bad\qsequence`)
	require.Error(t, err)
}

func TestEncodeDecodeScalarRoundTrip(t *testing.T) {
	values := []Value{
		Null(),
		FromBool(true),
		FromBool(false),
		FromInt32(42),
		FromInt(int64(1) << 40),
		FromFloat64(3.5),
		FromDecimal("123.456000"),
		FromString("hello, \"world\"\nwith a newline"),
		FromBytes([]byte{0, 1, 2, 3, 255}),
	}
	for _, v := range values {
		encoded, err := Encode(v, nil)
		require.NoError(t, err)
		require.True(t, len(encoded) > 0)
		require.Equal(t, byte('\n'), encoded[len(encoded)-1])

		decoded, err := Decode(encoded[:len(encoded)-1], nil)
		require.NoError(t, err)
		require.Equal(t, v, decoded)
	}
}

func TestFromIntSelectsTagBySize(t *testing.T) {
	require.Equal(t, TagInt32, FromInt(42).Tag)
	require.Equal(t, TagInt64, FromInt(int64(1)<<40).Tag)
}

func TestEncodeReferenceRequiresRefID(t *testing.T) {
	_, err := Encode(Value{Tag: TagReference}, nil)
	require.Error(t, err)
}

func TestEncodeVerbatimRejectsNewline(t *testing.T) {
	_, err := EncodeVerbatim("has\nnewline")
	require.Error(t, err)

	part, err := EncodeVerbatim("clean")
	require.NoError(t, err)
	require.Equal(t, []byte("clean\n"), part)
}

type stubResolver struct {
	wrapped    map[string]interface{}
	registered map[string]string
	nextID     int
}

func newStubResolver() *stubResolver {
	return &stubResolver{wrapped: map[string]interface{}{}, registered: map[string]string{}}
}

func (r *stubResolver) WrapReference(id string, kind Tag) (interface{}, error) {
	return "proxy:" + id, nil
}

func (r *stubResolver) LookupLocalProxy(id string) (interface{}, bool) {
	obj, ok := r.wrapped[id]
	return obj, ok
}

func (r *stubResolver) RegisterLocalProxy(obj interface{}, interfaces []string) string {
	r.nextID++
	id := "p" + string(rune('0'+r.nextID))
	r.wrapped[id] = obj
	return id
}

func TestDecodeReferenceUsesResolver(t *testing.T) {
	resolver := newStubResolver()
	v, err := Decode([]byte("ro0"), resolver)
	require.NoError(t, err)
	require.Equal(t, TagReference, v.Tag)
	require.Equal(t, "o0", v.RefID)
	require.Equal(t, "proxy:o0", v.Proxy)
}

func TestEncodeCallbackProxyRegistersOnDemand(t *testing.T) {
	resolver := newStubResolver()
	v := FromCallbackImpl("some object", []string{"com.example.Iface"})
	encoded, err := Encode(v, resolver)
	require.NoError(t, err)
	require.Contains(t, string(encoded), "com.example.Iface")
	require.Len(t, resolver.wrapped, 1)
}

func TestDecodeResponseSuccess(t *testing.T) {
	v, err := DecodeResponse([]byte("ybtrue"), nil)
	require.NoError(t, err)
	require.Equal(t, TagBool, v.Tag)
	require.True(t, v.Bool)
}

func TestDecodeResponseHostInvocationError(t *testing.T) {
	_, err := DecodeResponse([]byte("xro5"), nil)
	require.Error(t, err)
	hostErr, ok := err.(interface{ Error() string })
	require.True(t, ok)
	require.Contains(t, hostErr.Error(), "host invocation error")
}

func TestDecodeResponseFatal(t *testing.T) {
	_, err := DecodeResponse([]byte("zboom"), nil)
	require.Error(t, err)
}

func TestDecodeResponseUnknownCode(t *testing.T) {
	_, err := DecodeResponse([]byte("qwhat"), nil)
	require.Error(t, err)
}

func TestDecodeResponseEmpty(t *testing.T) {
	_, err := DecodeResponse(nil, nil)
	require.Error(t, err)
}
