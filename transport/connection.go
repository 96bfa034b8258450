// Package transport implements Connection: a single TCP session to the
// gateway with the strict write-one-read-one discipline of §4.B, line
// framing, and the optional token auth handshake.
package transport

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/sammck-go/rgate/gatewayerr"
	"github.com/sammck-go/rgate/lifecycle"
	"github.com/sammck-go/rgate/logging"
)

var nextConnectionID int32

// AllocConnectionID allocates a unique Connection id, for logging only,
// grounded on the teacher's AllocBasicConnID.
func AllocConnectionID() int32 {
	return atomic.AddInt32(&nextConnectionID, 1)
}

// Connection is a single bidirectional TCP session enforcing §4.B: at most
// one write in flight, and the next write never begins until exactly one
// newline-terminated response line has been read for the previous one.
type Connection struct {
	lifecycle.Helper

	ID    int32
	Stats Stats

	netConn net.Conn
	reader  *bufio.Reader

	// sendMu serializes Send calls, realizing the "at most one write in
	// flight, no interleaved reads" invariant with a single exclusive
	// section per request/response pair, rather than a literal task
	// queue: a connection is only ever handed to one caller at a time by
	// Pool, so mutual exclusion here is sufficient and simpler.
	sendMu sync.Mutex
}

// Dial opens a TCP connection to addr, disables Nagle, and — if authToken is
// non-empty — performs the §4.B auth handshake before returning. It marks
// logger with a fresh per-connection prefix the way the teacher forks a
// logger per SocketConn.
func Dial(ctx context.Context, logger logging.Logger, addr string, authToken string) (*Connection, error) {
	var d net.Dialer
	netConn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, gatewayerr.NewNetworkError(fmt.Sprintf("dial %s failed: %s", addr, err), err)
	}
	if tc, ok := netConn.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}

	id := AllocConnectionID()
	c := &Connection{
		ID:      id,
		netConn: netConn,
		reader:  bufio.NewReader(netConn),
	}
	connLogger := logger.Fork("conn[%d](%s)", id, netConn.RemoteAddr())
	c.Init(connLogger, c)
	c.PanicOnError(c.Activate())

	if authToken != "" {
		if err := c.authenticate(authToken); err != nil {
			c.netConn.Close()
			return nil, err
		}
	}

	connLogger.DLogf("connected")
	return c, nil
}

// authenticate runs the §4.B handshake: `A\n<token>\ne\n`, success iff the
// single response line begins with `y`.
func (c *Connection) authenticate(token string) error {
	line, err := c.rawSend([][]byte{
		[]byte("A\n"),
		[]byte(token + "\n"),
		[]byte("e\n"),
	})
	if err != nil {
		return err
	}
	if len(line) == 0 || line[0] != 'y' {
		return gatewayerr.NewAuthenticationError("authentication rejected: %s", string(line))
	}
	return nil
}

// Send writes every part of commandParts in order, then reads and returns
// exactly one newline-terminated response line (without its trailing
// newline). It fails fast if the connection has already started shutting
// down, and marks the connection dead on any socket error.
func (c *Connection) Send(ctx context.Context, commandParts [][]byte) ([]byte, error) {
	if c.IsStartedShutdown() {
		return nil, gatewayerr.NewNetworkError("connection is closed", nil)
	}
	return c.rawSend(commandParts)
}

func (c *Connection) rawSend(commandParts [][]byte) ([]byte, error) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	for _, part := range commandParts {
		n, err := c.netConn.Write(part)
		c.Stats.AddWritten(int64(n))
		if err != nil {
			c.StartShutdown(err)
			return nil, gatewayerr.NewNetworkError(fmt.Sprintf("write failed: %s", err), err)
		}
	}

	line, err := c.reader.ReadBytes('\n')
	c.Stats.AddRead(int64(len(line)))
	if err != nil {
		c.StartShutdown(err)
		return nil, gatewayerr.NewNetworkError(fmt.Sprintf("read failed: %s", err), err)
	}
	return []byte(strings.TrimSuffix(string(line), "\n")), nil
}

// HandleOnceShutdown closes the underlying socket.
func (c *Connection) HandleOnceShutdown(completionErr error) error {
	err := c.netConn.Close()
	if completionErr == nil && err != nil {
		completionErr = gatewayerr.NewNetworkError(fmt.Sprintf("close failed: %s", err), err)
	}
	return completionErr
}

// IsLive reports whether the connection is still usable (shutdown not yet
// started).
func (c *Connection) IsLive() bool {
	return !c.IsStartedShutdown()
}

func (c *Connection) String() string {
	return c.Prefix()
}
