//go:build linux
// +build linux

package tinyhttpd

import (
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func dial(t *testing.T, port int) net.Conn {
	t.Helper()
	c, err := net.DialTimeout("tcp4", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)), time.Second)
	require.NoError(t, err)
	return c
}

// acceptOne retries until the non-blocking listener hands out a connection.
func acceptOne(t *testing.T, l *Listener) *Conn {
	t.Helper()
	var c *Conn
	require.Eventually(t, func() bool {
		var err error
		c, err = l.Accept()
		if err == ErrWouldBlock {
			return false
		}
		require.NoError(t, err)
		return true
	}, 2*time.Second, 5*time.Millisecond)
	return c
}

func TestListenInvalidPort(t *testing.T) {
	for _, port := range []int{-1, 0, MaxPort + 1, 100000} {
		l, err := Listen(port)
		require.Error(t, err)
		require.Nil(t, l)
		require.True(t, errors.Is(err, ErrInvalidPort))
	}
}

func TestValidPort(t *testing.T) {
	require.True(t, ValidPort(1))
	require.True(t, ValidPort(DefaultPort))
	require.True(t, ValidPort(MaxPort))
	require.False(t, ValidPort(0))
	require.False(t, ValidPort(MaxPort+1))
}

func TestListenReachable(t *testing.T) {
	port := freePort(t)
	l, err := Listen(port)
	require.NoError(t, err)
	require.NotNil(t, l)
	require.Equal(t, port, l.Port())
	require.True(t, l.Fd() > 0)
	require.Equal(t, "tcp", l.Addr().Network())

	c := dial(t, port)
	defer c.Close()

	conn := acceptOne(t, l)
	require.NotNil(t, conn)
	require.Contains(t, conn.RemoteAddr().String(), "127.0.0.1:")
	require.NoError(t, conn.Close())
	require.NoError(t, l.Close())
}

func TestListenAddressInUse(t *testing.T) {
	port := freePort(t)
	l, err := Listen(port)
	require.NoError(t, err)
	defer l.Close()

	l2, err := Listen(port)
	require.Error(t, err)
	require.Nil(t, l2)
}

func TestAcceptWouldBlock(t *testing.T) {
	l, err := Listen(freePort(t))
	require.NoError(t, err)
	defer l.Close()

	c, err := l.Accept()
	require.Nil(t, c)
	require.Equal(t, ErrWouldBlock, err)
}

func TestListenerCloseOnce(t *testing.T) {
	l, err := Listen(freePort(t))
	require.NoError(t, err)
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())
}
