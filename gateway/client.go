package gateway

import (
	"context"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/sammck-go/rgate/gatewayerr"
	"github.com/sammck-go/rgate/logging"
	"github.com/sammck-go/rgate/proxy"
	"github.com/sammck-go/rgate/transport"
	"github.com/sammck-go/rgate/wire"
)

// LocalProxyLookup resolves a callback-proxy id to a locally registered
// object. Client delegates to it rather than owning the registry itself, so
// the same registry can be shared with the callback server that fills it
// in — package gateway never imports package callback, since callback
// depends on the wire and proxy contracts gateway already implements.
type LocalProxyLookup interface {
	Lookup(id string) (obj interface{}, ok bool)
	Register(obj interface{}, interfaces []string) string
}

// Client is the high-level command layer, dispatching every operation
// through a Pool and decoding responses back into Go values and proxies, per
// §2.C/D and §4.D. It implements both proxy.Invoker (so the proxy package
// never needs to import gateway) and wire.ProxyResolver (so the wire package
// doesn't either).
type Client struct {
	logger    logging.Logger
	pool      *Pool
	callbacks LocalProxyLookup

	nextViewSeq int32
}

var _ proxy.Invoker = (*Client)(nil)
var _ wire.ProxyResolver = (*Client)(nil)

// NewClient builds a Client dispatching through pool. callbacks may be nil
// if this client never registers local objects for host callback (in which
// case encoding a callback-proxy value fails with UnsupportedLocalType).
func NewClient(logger logging.Logger, pool *Pool, callbacks LocalProxyLookup) *Client {
	return &Client{
		logger:    logger.Fork("client"),
		pool:      pool,
		callbacks: callbacks,
	}
}

// EntryPoint returns the proxy for the gateway's well-known entry-point
// object, target id `t`.
func (c *Client) EntryPoint() *proxy.Object {
	return proxy.NewObject(c, proxy.WellKnownEntryPoint)
}

// DefaultView returns a namespace View scoped to the well-known default
// view id `rj`.
func (c *Client) DefaultView() *proxy.View {
	return proxy.NewView(c, proxy.DefaultViewName, proxy.DefaultViewName)
}

// NewView allocates a fresh namespace view with a client-synthesized id and
// sends the `j\nc\n` create-view command.
func (c *Client) NewView(ctx context.Context, name string) (*proxy.View, error) {
	seq := atomic.AddInt32(&c.nextViewSeq, 1)
	id := "view" + strconv.Itoa(int(seq))
	cmd := newCommandBuilder("j", "c")
	cmd.verbatim(id)
	if _, err := c.roundTrip(ctx, cmd); err != nil {
		return nil, err
	}
	return proxy.NewView(c, id, name), nil
}

// WrapReference implements wire.ProxyResolver.
func (c *Client) WrapReference(id string, kind wire.Tag) (interface{}, error) {
	return proxy.Wrap(c, id, kind)
}

// LookupLocalProxy implements wire.ProxyResolver.
func (c *Client) LookupLocalProxy(id string) (interface{}, bool) {
	if c.callbacks == nil {
		return nil, false
	}
	return c.callbacks.Lookup(id)
}

// RegisterLocalProxy implements wire.ProxyResolver.
func (c *Client) RegisterLocalProxy(obj interface{}, interfaces []string) string {
	if c.callbacks == nil {
		c.logger.WLogf("RegisterLocalProxy called with no callback registry configured")
		return ""
	}
	return c.callbacks.Register(obj, interfaces)
}

// commandBuilder accumulates the newline-terminated parts of one command,
// per §6's "all command parts end with a single newline, terminator is the
// literal part e\n" framing.
type commandBuilder struct {
	parts [][]byte
	err   error
}

func newCommandBuilder(top string, sub ...string) *commandBuilder {
	b := &commandBuilder{}
	b.raw(top)
	for _, s := range sub {
		b.raw(s)
	}
	return b
}

func (b *commandBuilder) raw(s string) *commandBuilder {
	b.parts = append(b.parts, []byte(s+"\n"))
	return b
}

func (b *commandBuilder) verbatim(s string) *commandBuilder {
	part, err := wire.EncodeVerbatim(s)
	if err != nil {
		if b.err == nil {
			b.err = err
		}
		return b
	}
	b.parts = append(b.parts, part)
	return b
}

func (b *commandBuilder) value(v wire.Value, resolver wire.ProxyResolver) *commandBuilder {
	part, err := wire.Encode(v, resolver)
	if err != nil {
		if b.err == nil {
			b.err = err
		}
		return b
	}
	b.parts = append(b.parts, part)
	return b
}

func (b *commandBuilder) end() *commandBuilder {
	return b.raw("e")
}

// roundTrip acquires a connection, sends cmd (terminated here with `e\n`;
// callers never end it themselves), and decodes exactly one response value.
func (c *Client) roundTrip(ctx context.Context, cmd *commandBuilder) (wire.Value, error) {
	if cmd.err != nil {
		return wire.Value{}, cmd.err
	}
	cmd.end()
	line, err := WithConnection(ctx, c.pool, func(conn *transport.Connection) ([]byte, error) {
		return conn.Send(ctx, cmd.parts)
	})
	if err != nil {
		return wire.Value{}, err
	}
	return wire.DecodeResponse(line, c)
}

func (c *Client) encodeArgs(cmd *commandBuilder, args []wire.Value) {
	for _, a := range args {
		cmd.value(a, c)
	}
}

// CallMethod implements proxy.Invoker: `c\n TARGET\n METHOD\n ARGPARTS… e\n`.
func (c *Client) CallMethod(ctx context.Context, targetID, method string, args []wire.Value) (wire.Value, error) {
	cmd := newCommandBuilder("c")
	cmd.verbatim(targetID).verbatim(method)
	c.encodeArgs(cmd, args)
	return c.roundTrip(ctx, cmd)
}

// CallConstructor implements proxy.Invoker: `i\n FQN\n ARGPARTS… e\n`.
func (c *Client) CallConstructor(ctx context.Context, fqn string, args []wire.Value) (wire.Value, error) {
	cmd := newCommandBuilder("i")
	cmd.verbatim(fqn)
	c.encodeArgs(cmd, args)
	return c.roundTrip(ctx, cmd)
}

// GetField implements proxy.Invoker. Static targets (prefix `z:`) route
// through reflection get-member instead of the instance field-get command,
// per §4.D.
func (c *Client) GetField(ctx context.Context, targetID, field string) (wire.Value, error) {
	if strings.HasPrefix(targetID, proxy.StaticDispatchPrefix) {
		fqn := strings.TrimPrefix(targetID, proxy.StaticDispatchPrefix)
		cmd := newCommandBuilder("r", "m")
		cmd.verbatim(fqn).verbatim(field)
		return c.roundTrip(ctx, cmd)
	}
	cmd := newCommandBuilder("f", "g")
	cmd.verbatim(targetID).verbatim(field)
	return c.roundTrip(ctx, cmd)
}

// SetField implements proxy.Invoker: `f\ns\n TARGET\n FIELD\n VALUEPART e\n`.
func (c *Client) SetField(ctx context.Context, targetID, field string, value wire.Value) error {
	cmd := newCommandBuilder("f", "s")
	cmd.verbatim(targetID).verbatim(field)
	cmd.value(value, c)
	_, err := c.roundTrip(ctx, cmd)
	return err
}

// ReleaseObject implements proxy.Invoker: `m\nd\n TARGET\n e\n`, best effort.
// Per §5, transport failure here is swallowed — the host may already have
// collected the object.
func (c *Client) ReleaseObject(ctx context.Context, targetID string) {
	cmd := newCommandBuilder("m", "d")
	cmd.verbatim(targetID)
	if _, err := c.roundTrip(ctx, cmd); err != nil {
		c.logger.DLogf("releaseObject(%s): %s", targetID, err)
	}
}

func (c *Client) dirList(ctx context.Context, sub, target string) ([]string, error) {
	cmd := newCommandBuilder("d", sub)
	cmd.verbatim(target)
	v, err := c.roundTrip(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return splitNonEmpty(v.Str), nil
}

// GetMethods implements proxy.Invoker: `d\nm\n TARGET\n e\n`.
func (c *Client) GetMethods(ctx context.Context, targetID string) ([]string, error) {
	return c.dirList(ctx, "m", targetID)
}

// GetFields implements proxy.Invoker: `d\nf\n TARGET\n e\n`.
func (c *Client) GetFields(ctx context.Context, targetID string) ([]string, error) {
	return c.dirList(ctx, "f", targetID)
}

// GetStaticMembers implements proxy.Invoker: `d\ns\n FQN\n e\n`.
func (c *Client) GetStaticMembers(ctx context.Context, fqn string) ([]string, error) {
	return c.dirList(ctx, "s", fqn)
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, "\n") {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Help implements proxy.Invoker: `h\n{o,c}\n TARGET\n [PATTERN\n] e\n`. A
// target starting with the static-dispatch prefix uses the class ('c')
// help subcommand; everything else uses the object ('o') subcommand.
func (c *Client) Help(ctx context.Context, target, pattern string) (string, error) {
	sub := "o"
	if strings.HasPrefix(target, proxy.StaticDispatchPrefix) {
		sub = "c"
		target = strings.TrimPrefix(target, proxy.StaticDispatchPrefix)
	}
	cmd := newCommandBuilder("h", sub)
	cmd.verbatim(target)
	if pattern != "" {
		cmd.verbatim(pattern)
	}
	v, err := c.roundTrip(ctx, cmd)
	if err != nil {
		return "", err
	}
	return v.Str, nil
}

// NewArray implements proxy.Invoker: `a\nc\n s<FQN>\n DIMPARTS… e\n`.
func (c *Client) NewArray(ctx context.Context, fqn string, dims []wire.Value) (wire.Value, error) {
	if len(dims) == 0 {
		return wire.Value{}, gatewayerr.NewUsageError("newArray requires at least one dimension")
	}
	cmd := newCommandBuilder("a", "c")
	cmd.value(wire.FromString(fqn), c)
	c.encodeArgs(cmd, dims)
	return c.roundTrip(ctx, cmd)
}

// Import implements proxy.Invoker: `j\ni\n VIEW\n FQN\n e\n`.
func (c *Client) Import(ctx context.Context, viewID, fqn string) error {
	cmd := newCommandBuilder("j", "i")
	cmd.verbatim(viewID).verbatim(fqn)
	_, err := c.roundTrip(ctx, cmd)
	return err
}

// RemoveImport implements proxy.Invoker: `j\nr\n VIEW\n FQN\n e\n`.
func (c *Client) RemoveImport(ctx context.Context, viewID, fqn string) error {
	cmd := newCommandBuilder("j", "r")
	cmd.verbatim(viewID).verbatim(fqn)
	_, err := c.roundTrip(ctx, cmd)
	return err
}

// ListSort implements proxy.Invoker: `l\ns\n TARGET\n e\n`.
func (c *Client) ListSort(ctx context.Context, targetID string) error {
	cmd := newCommandBuilder("l", "s")
	cmd.verbatim(targetID)
	_, err := c.roundTrip(ctx, cmd)
	return err
}

// ListReverse implements proxy.Invoker: `l\nr\n TARGET\n e\n`.
func (c *Client) ListReverse(ctx context.Context, targetID string) error {
	cmd := newCommandBuilder("l", "r")
	cmd.verbatim(targetID)
	_, err := c.roundTrip(ctx, cmd)
	return err
}

// ListSubList implements proxy.Invoker: `l\nl\n TARGET\n <i>from\n <i>to\n e\n`.
func (c *Client) ListSubList(ctx context.Context, targetID string, from, to int) (wire.Value, error) {
	cmd := newCommandBuilder("l", "l")
	cmd.verbatim(targetID)
	cmd.value(wire.FromInt(int64(from)), c)
	cmd.value(wire.FromInt(int64(to)), c)
	return c.roundTrip(ctx, cmd)
}

// ListCount implements proxy.Invoker: `l\nf\n TARGET\n VALUEPART e\n`.
func (c *Client) ListCount(ctx context.Context, targetID string, v wire.Value) (wire.Value, error) {
	cmd := newCommandBuilder("l", "f")
	cmd.verbatim(targetID)
	cmd.value(v, c)
	return c.roundTrip(ctx, cmd)
}

// ArrayGet implements proxy.Invoker: `a\ng\n TARGET\n <i>i\n e\n`.
func (c *Client) ArrayGet(ctx context.Context, targetID string, i int) (wire.Value, error) {
	cmd := newCommandBuilder("a", "g")
	cmd.verbatim(targetID)
	cmd.value(wire.FromInt(int64(i)), c)
	return c.roundTrip(ctx, cmd)
}

// ArraySet implements proxy.Invoker: `a\ns\n TARGET\n <i>i\n VALUEPART e\n`.
func (c *Client) ArraySet(ctx context.Context, targetID string, i int, v wire.Value) error {
	cmd := newCommandBuilder("a", "s")
	cmd.verbatim(targetID)
	cmd.value(wire.FromInt(int64(i)), c)
	cmd.value(v, c)
	_, err := c.roundTrip(ctx, cmd)
	return err
}

// ArrayLength implements proxy.Invoker: `a\ne\n TARGET\n e\n`.
func (c *Client) ArrayLength(ctx context.Context, targetID string) (int, error) {
	cmd := newCommandBuilder("a", "e")
	cmd.verbatim(targetID)
	v, err := c.roundTrip(ctx, cmd)
	if err != nil {
		return 0, err
	}
	return intOf(v), nil
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

// ArraySlice implements proxy.Invoker: `a\nl\n TARGET\n <i>from\n <i>to\n e\n`.
func (c *Client) ArraySlice(ctx context.Context, targetID string, from, to int) (wire.Value, error) {
	cmd := newCommandBuilder("a", "l")
	cmd.verbatim(targetID)
	cmd.value(wire.FromInt(int64(from)), c)
	cmd.value(wire.FromInt(int64(to)), c)
	return c.roundTrip(ctx, cmd)
}

// ShutdownGateway sends the best-effort `s\n e\n` shutdown command, per
// §4.D/§5. Transport failure is logged and swallowed, matching
// ReleaseObject's tolerance for a peer that is already gone.
func (c *Client) ShutdownGateway(ctx context.Context) {
	cmd := newCommandBuilder("s")
	if _, err := c.roundTrip(ctx, cmd); err != nil {
		c.logger.DLogf("shutdownGateway: %s", err)
	}
}

// Close closes every idle pooled connection.
func (c *Client) Close() {
	c.pool.CloseAll()
}
