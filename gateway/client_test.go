package gateway

import (
	"bufio"
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sammck-go/rgate/callback"
	"github.com/sammck-go/rgate/logging"
	"github.com/sammck-go/rgate/wire"
)

// scriptedServer records every accumulated command it receives and answers
// each with the same fixed reply line, letting client tests
// assert on exact wire command shapes without a real gateway process.
type scriptedServer struct {
	mu       sync.Mutex
	commands [][]string
}

func startScriptedServer(t *testing.T, reply string) (*scriptedServer, string) {
	t.Helper()
	s := &scriptedServer{}
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				reader := bufio.NewReader(c)
				for {
					var lines []string
					for {
						line, err := reader.ReadString('\n')
						if err != nil {
							return
						}
						line = strings.TrimSuffix(line, "\n")
						if line == "e" {
							break
						}
						lines = append(lines, line)
					}
					s.mu.Lock()
					s.commands = append(s.commands, lines)
					s.mu.Unlock()
					if _, err := c.Write([]byte(reply)); err != nil {
						return
					}
				}
			}(conn)
		}
	}()
	return s, l.Addr().String()
}

func (s *scriptedServer) last() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.commands) == 0 {
		return nil
	}
	return s.commands[len(s.commands)-1]
}

func newTestClient(t *testing.T, addr string) *Client {
	logger := logging.New("test", logging.LevelError)
	pool := NewPool(logger, addr, 2, nil)
	t.Cleanup(pool.CloseAll)
	return NewClient(logger, pool, callback.NewRegistry())
}

func TestClientCallMethodCommandShape(t *testing.T) {
	srv, addr := startScriptedServer(t, "yv\n")
	client := newTestClient(t, addr)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := client.CallMethod(ctx, "o0", "greet", []wire.Value{wire.FromString("hi")})
	require.NoError(t, err)

	require.Equal(t, []string{"c", "o0", "greet", "shi"}, srv.last())
}

func TestClientGetFieldRoutesStaticThroughReflection(t *testing.T) {
	srv, addr := startScriptedServer(t, "ybtrue\n")
	client := newTestClient(t, addr)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	v, err := client.GetField(ctx, "z:java.lang.Math", "PI")
	require.NoError(t, err)
	require.True(t, v.Bool)
	require.Equal(t, []string{"r", "m", "java.lang.Math", "PI"}, srv.last())
}

func TestClientGetFieldInstance(t *testing.T) {
	srv, addr := startScriptedServer(t, "yv\n")
	client := newTestClient(t, addr)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := client.GetField(ctx, "o0", "name")
	require.NoError(t, err)
	require.Equal(t, []string{"f", "g", "o0", "name"}, srv.last())
}

func TestClientReleaseObjectSwallowsTransportError(t *testing.T) {
	logger := logging.New("test", logging.LevelError)
	// Point at an address nothing is listening on.
	pool := NewPool(logger, "127.0.0.1:1", 1, nil)
	client := NewClient(logger, pool, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	require.NotPanics(t, func() {
		client.ReleaseObject(ctx, "o0")
	})
}

func TestClientCallConstructorCommandShape(t *testing.T) {
	srv, addr := startScriptedServer(t, "yv\n")
	client := newTestClient(t, addr)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := client.CallConstructor(ctx, "java.util.ArrayList", nil)
	require.NoError(t, err)
	require.Equal(t, []string{"i", "java.util.ArrayList"}, srv.last())
}

func TestClientNewArrayRequiresDimensions(t *testing.T) {
	srv, addr := startScriptedServer(t, "yv\n")
	client := newTestClient(t, addr)
	_ = srv

	ctx := context.Background()
	_, err := client.NewArray(ctx, "int", nil)
	require.Error(t, err)
}
