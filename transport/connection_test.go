package transport

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sammck-go/rgate/logging"
)

func startFakeGateway(t *testing.T, handler func(net.Conn)) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		handler(conn)
	}()
	return l.Addr().String()
}

func TestDialSendsAndReceivesOneLine(t *testing.T) {
	addr := startFakeGateway(t, func(conn net.Conn) {
		defer conn.Close()
		reader := bufio.NewReader(conn)
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		require.Equal(t, "c\n", line)
		conn.Write([]byte("yv\n"))
	})

	logger := logging.New("test", logging.LevelError)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	conn, err := Dial(ctx, logger, addr, "")
	require.NoError(t, err)
	defer conn.Close()

	reply, err := conn.Send(ctx, [][]byte{[]byte("c\n")})
	require.NoError(t, err)
	require.Equal(t, "yv", string(reply))
}

func TestDialAuthenticationSuccess(t *testing.T) {
	addr := startFakeGateway(t, func(conn net.Conn) {
		defer conn.Close()
		reader := bufio.NewReader(conn)
		var lines []string
		for i := 0; i < 3; i++ {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			lines = append(lines, strings.TrimSuffix(line, "\n"))
		}
		require.Equal(t, []string{"A", "secret", "e"}, lines)
		conn.Write([]byte("y\n"))
	})

	logger := logging.New("test", logging.LevelError)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	conn, err := Dial(ctx, logger, addr, "secret")
	require.NoError(t, err)
	defer conn.Close()
}

func TestDialAuthenticationFailureClosesConnection(t *testing.T) {
	addr := startFakeGateway(t, func(conn net.Conn) {
		defer conn.Close()
		reader := bufio.NewReader(conn)
		for i := 0; i < 3; i++ {
			reader.ReadString('\n')
		}
		conn.Write([]byte("xdenied\n"))
	})

	logger := logging.New("test", logging.LevelError)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := Dial(ctx, logger, addr, "bad-token")
	require.Error(t, err)
}

func TestSendAfterShutdownFailsFast(t *testing.T) {
	addr := startFakeGateway(t, func(conn net.Conn) {
		conn.Close()
	})

	logger := logging.New("test", logging.LevelError)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	conn, err := Dial(ctx, logger, addr, "")
	require.NoError(t, err)

	conn.Close()
	require.True(t, conn.IsStartedShutdown())

	_, err = conn.Send(ctx, [][]byte{[]byte("c\n")})
	require.Error(t, err)
}
