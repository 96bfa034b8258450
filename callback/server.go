package callback

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"reflect"
	"strings"

	"github.com/sammck-go/rgate/lifecycle"
	"github.com/sammck-go/rgate/logging"
	"github.com/sammck-go/rgate/wire"
)

// DefaultAddr is the callback server's default bind address, per §4.G.
const DefaultAddr = "127.0.0.1:25334"

// Server is the inbound TCP acceptor: it binds lazily on first Serve, the
// way the teacher's TCPStubEndpoint defers net.Listen to first Accept, and
// drives one goroutine per accepted connection, per §2.G/§4.G/§5's
// "each inbound connection is handled independently" concurrency floor.
type Server struct {
	lifecycle.Helper

	addr     string
	registry *Registry

	listener net.Listener
}

// NewServer constructs a Server bound to addr (DefaultAddr if empty),
// dispatching against registry.
func NewServer(logger logging.Logger, addr string, registry *Registry) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	s := &Server{addr: addr, registry: registry}
	s.Init(logger.Fork("callback"), s)
	return s
}

// HandleOnceShutdown closes the listener, unblocking Serve's Accept loop.
func (s *Server) HandleOnceShutdown(completionErr error) error {
	s.Lock.Lock()
	l := s.listener
	s.listener = nil
	s.Lock.Unlock()
	var err error
	if l != nil {
		err = l.Close()
	}
	if completionErr == nil {
		completionErr = err
	}
	return completionErr
}

// Addr returns the server's actual bound address, valid once Serve has
// successfully bound the listener. This lets a caller configured with port
// 0 discover the ephemeral port the OS assigned, per §4.G.
func (s *Server) Addr() net.Addr {
	s.Lock.Lock()
	defer s.Lock.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve binds the listener if needed and accepts connections until
// shutdown, spawning one goroutine per connection. It returns once the
// listener is closed by shutdown.
func (s *Server) Serve() error {
	if err := s.Activate(); err != nil {
		return err
	}
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		wrapped := s.Errorf("listen on %s failed: %s", s.addr, err)
		s.StartShutdown(wrapped)
		return wrapped
	}
	s.Lock.Lock()
	s.listener = listener
	s.Lock.Unlock()
	s.DLogf("listening on %s", listener.Addr())

	for {
		netConn, err := listener.Accept()
		if err != nil {
			if s.IsStartedShutdown() {
				return nil
			}
			return s.Errorf("accept failed: %s", err)
		}
		go s.handleConn(netConn)
	}
}

func (s *Server) handleConn(netConn net.Conn) {
	defer netConn.Close()
	connLogger := s.Fork("conn(%s)", netConn.RemoteAddr())
	reader := bufio.NewReader(netConn)

	for {
		lines, err := readCommand(reader)
		if err != nil {
			if err != io.EOF {
				connLogger.DLogf("read command failed: %s", err)
			}
			return
		}
		if len(lines) == 0 {
			continue
		}
		reply := s.dispatch(connLogger, lines)
		if _, err := netConn.Write(reply); err != nil {
			connLogger.DLogf("write reply failed: %s", err)
			return
		}
	}
}

// readCommand accumulates lines until one equal to "e" is seen, per §4.G's
// line-accumulating command parser, and returns the lines before it
// (excluding the terminator).
func readCommand(reader *bufio.Reader) ([]string, error) {
	var lines []string
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			lines = append(lines, strings.TrimSuffix(line, "\n"))
		}
		if err != nil {
			return nil, err
		}
		if lines[len(lines)-1] == "e" {
			return lines[:len(lines)-1], nil
		}
	}
}

// dispatch handles one accumulated command per §4.G's `c`/`g` discriminator
// table, producing the exact three-case reply encoding.
func (s *Server) dispatch(logger logging.Logger, lines []string) []byte {
	if len(lines) == 0 {
		return errorReply("empty command")
	}
	switch lines[0] {
	case "c":
		return s.dispatchCall(logger, lines[1:])
	case "g":
		return s.dispatchGC(lines[1:])
	default:
		return errorReply(fmt.Sprintf("unknown callback command %q", lines[0]))
	}
}

func (s *Server) dispatchCall(logger logging.Logger, rest []string) []byte {
	if len(rest) < 2 {
		return errorReply("call command requires a proxy id and a method name")
	}
	proxyID, method := rest[0], rest[1]
	argLines := rest[2:]

	obj, ok := s.registry.Lookup(proxyID)
	if !ok {
		return errorReply(fmt.Sprintf("no such registered proxy %q", proxyID))
	}

	args := make([]wire.Value, 0, len(argLines))
	for _, line := range argLines {
		v, err := wire.Decode([]byte(line), nil)
		if err != nil {
			return errorReply(fmt.Sprintf("malformed argument: %s", err))
		}
		args = append(args, v)
	}

	m, ok := findMethod(obj, method)
	if !ok {
		return errorReply(fmt.Sprintf("proxy %q has no method %q", proxyID, method))
	}

	result, err := invoke(m, args)
	if err != nil {
		logger.DLogf("callback dispatch %s.%s failed: %s", proxyID, method, err)
		return errorReply(err.Error())
	}
	return successReply(result)
}

func (s *Server) dispatchGC(rest []string) []byte {
	if len(rest) < 1 {
		return errorReply("gc command requires a proxy id")
	}
	s.registry.Remove(rest[0])
	return []byte("!yv\n")
}

// invoke calls m with args converted to Go values, per method arity. It
// returns the last non-error return value (if any), or the null value.
// Methods registered for callback are expected to return either a single
// value, or a value and a trailing error.
func invoke(m reflect.Value, args []wire.Value) (wire.Value, error) {
	t := m.Type()
	if t.NumIn() != len(args) {
		return wire.Value{}, fmt.Errorf("method expects %d arguments, got %d", t.NumIn(), len(args))
	}
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		in[i] = reflect.ValueOf(valueToGo(a, t.In(i)))
	}
	out := m.Call(in)
	if len(out) == 0 {
		return wire.Null(), nil
	}
	last := out[len(out)-1]
	if last.Type().Implements(errType) && !last.IsNil() {
		return wire.Value{}, last.Interface().(error)
	}
	if len(out) == 1 && last.Type().Implements(errType) {
		return wire.Null(), nil
	}
	return goToValue(out[0].Interface()), nil
}

var errType = reflect.TypeOf((*error)(nil)).Elem()

// valueToGo converts a decoded wire.Value into the Go value a target
// parameter type expects. This is intentionally narrow: it covers the
// scalar kinds a host is likely to pass across the callback boundary, and
// falls back to passing the wire.Value itself for anything else (letting a
// handler written against wire.Value directly receive it unconverted).
func valueToGo(v wire.Value, target reflect.Type) interface{} {
	switch target.Kind() {
	case reflect.String:
		return v.Str
	case reflect.Bool:
		return v.Bool
	case reflect.Int:
		return int(intOf(v))
	case reflect.Int32:
		return int32(intOf(v))
	case reflect.Int64:
		return int64(intOf(v))
	case reflect.Float64:
		return v.Float64
	case reflect.Float32:
		return float32(v.Float64)
	default:
		if target == reflect.TypeOf(wire.Value{}) {
			return v
		}
		return v.Proxy
	}
}

func intOf(v wire.Value) int64 {
	switch v.Tag {
	case wire.TagInt32:
		return int64(v.Int32)
	case wire.TagInt64:
		return v.Int64
	default:
		return 0
	}
}

// goToValue converts a Go return value into the wire.Value the reply
// encoder expects.
func goToValue(v interface{}) wire.Value {
	switch t := v.(type) {
	case nil:
		return wire.Null()
	case wire.Value:
		return t
	case string:
		return wire.FromString(t)
	case bool:
		return wire.FromBool(t)
	case int:
		return wire.FromInt(int64(t))
	case int32:
		return wire.FromInt32(t)
	case int64:
		return wire.FromInt64(t)
	case float64:
		return wire.FromFloat64(t)
	case []byte:
		return wire.FromBytes(t)
	default:
		return wire.Null()
	}
}

// successReply implements §4.G's two success cases: `!yv\n` for
// null/absent, `!y`+encoded-part otherwise.
func successReply(v wire.Value) []byte {
	if v.IsNull() {
		return []byte("!yv\n")
	}
	part, err := wire.EncodeCommandPart(v, nil)
	if err != nil {
		return errorReply(err.Error())
	}
	return []byte("!y" + part)
}

// errorReply implements §4.G's `!x<message>\n` case. The message is
// assumed newline-free by construction (Go error strings from this
// package never embed one); a defensive strip guards against a handler
// returning one anyway.
func errorReply(message string) []byte {
	message = strings.ReplaceAll(message, "\n", " ")
	return []byte("!x" + message + "\n")
}
