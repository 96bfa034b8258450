package gateway

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sammck-go/rgate/logging"
	"github.com/sammck-go/rgate/transport"
)

// startEchoListener starts a TCP listener that, for every connection,
// answers every chunk it reads with a fixed reply line, closing when the
// test is done.
func startEchoListener(t *testing.T, reply string) string {
	t.Helper()
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
				buf := make([]byte, 4096)
				for {
					n, err := c.Read(buf)
					if n > 0 {
						if _, err := c.Write([]byte(reply)); err != nil {
							return
						}
					}
					if err != nil {
						return
					}
				}
			}(conn)
		}
	}()
	return l.Addr().String()
}

func TestPoolAcquireDialsUpToMax(t *testing.T) {
	addr := startEchoListener(t, "yv\n")
	logger := logging.New("test", logging.LevelError)
	pool := NewPool(logger, addr, 2, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c1, err := pool.Acquire(ctx)
	require.NoError(t, err)
	c2, err := pool.Acquire(ctx)
	require.NoError(t, err)

	snap := pool.Snapshot()
	require.Equal(t, 2, snap.Active)
	require.Equal(t, 0, snap.Idle)

	pool.Release(c1)
	pool.Release(c2)

	snap = pool.Snapshot()
	require.Equal(t, 0, snap.Active)
	require.Equal(t, 2, snap.Idle)
	require.LessOrEqual(t, snap.Active+snap.Idle, snap.Max, "active+idle must never exceed maxConnections")
}

func TestPoolReleaseHandsToWaiterFIFO(t *testing.T) {
	addr := startEchoListener(t, "yv\n")
	logger := logging.New("test", logging.LevelError)
	pool := NewPool(logger, addr, 1, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	conn, err := pool.Acquire(ctx)
	require.NoError(t, err)

	waiterDone := make(chan *transport.Connection, 1)
	go func() {
		c, err := pool.Acquire(ctx)
		require.NoError(t, err)
		waiterDone <- c
	}()

	// Give the waiter goroutine time to park before releasing.
	time.Sleep(50 * time.Millisecond)
	pool.Release(conn)

	select {
	case waiterConn := <-waiterDone:
		require.Same(t, conn, waiterConn)
	case <-time.After(2 * time.Second):
		t.Fatal("waiter never received the released connection")
	}
}

func TestPoolAcquireAfterCloseFails(t *testing.T) {
	addr := startEchoListener(t, "yv\n")
	logger := logging.New("test", logging.LevelError)
	pool := NewPool(logger, addr, 1, nil)

	ctx := context.Background()
	conn, err := pool.Acquire(ctx)
	require.NoError(t, err)
	pool.Release(conn)

	pool.CloseAll()

	_, err = pool.Acquire(ctx)
	require.Error(t, err)
}

func TestWithConnectionReleasesOnError(t *testing.T) {
	addr := startEchoListener(t, "yv\n")
	logger := logging.New("test", logging.LevelError)
	pool := NewPool(logger, addr, 1, nil)

	ctx := context.Background()
	sentinelErr := assert.AnError
	_, err := WithConnection(ctx, pool, func(conn *transport.Connection) (int, error) {
		return 0, sentinelErr
	})
	require.ErrorIs(t, err, sentinelErr)

	snap := pool.Snapshot()
	require.Equal(t, 1, snap.Idle)
}
