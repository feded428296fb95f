//go:build linux
// +build linux

package tinyhttpd

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	srv, err := New(DefaultPort)
	require.NoError(t, err)
	require.Equal(t, DefaultPort, srv.Port())
	require.Equal(t, DefaultCapacity, srv.capacity)
	require.Equal(t, DefaultWaitTimeout, srv.waitTimeout)
	require.Equal(t, DefaultIOTimeout, srv.ioTimeout)
	require.NotNil(t, srv.handler)
	require.NotNil(t, srv.mux)
	require.NotNil(t, srv.shutdown)
	require.Equal(t, StateInit, srv.State())
}

func TestWithCapacity(t *testing.T) {
	srv, err := New(DefaultPort, WithCapacity(3))
	require.NoError(t, err)
	require.Equal(t, 3, srv.capacity)

	_, err = New(DefaultPort, WithCapacity(0))
	require.Error(t, err)
}

func TestWithTimeouts(t *testing.T) {
	srv, err := New(DefaultPort, WithWaitTimeout(10*time.Millisecond), WithIOTimeout(time.Second))
	require.NoError(t, err)
	require.Equal(t, 10*time.Millisecond, srv.waitTimeout)
	require.Equal(t, time.Second, srv.ioTimeout)

	_, err = New(DefaultPort, WithWaitTimeout(0))
	require.Error(t, err)
	_, err = New(DefaultPort, WithIOTimeout(-time.Second))
	require.Error(t, err)
}

func TestWithHandlerAndMultiplexer(t *testing.T) {
	h := ServiceUnavailable()
	m := NewPoller(1)
	srv, err := New(DefaultPort, WithHandler(h), WithOverflowHandler(h), WithMultiplexer(m))
	require.NoError(t, err)
	require.Equal(t, h, srv.handler)
	require.Equal(t, h, srv.overflow)
	require.Equal(t, m, srv.mux)

	_, err = New(DefaultPort, WithHandler(nil))
	require.Error(t, err)
	_, err = New(DefaultPort, WithMultiplexer(nil))
	require.Error(t, err)
}

func TestWithShutdown(t *testing.T) {
	sd := NewShutdown()
	srv, err := New(DefaultPort, WithShutdown(sd))
	require.NoError(t, err)
	srv.Shutdown()
	require.True(t, sd.Requested())

	_, err = New(DefaultPort, WithShutdown(nil))
	require.Error(t, err)
}

func TestWithLoggerAndErrHandler(t *testing.T) {
	called := false
	srv, err := New(DefaultPort,
		WithLogger(zerolog.New(zerolog.NewTestWriter(t))),
		WithErrHandler(func(error) { called = true }),
	)
	require.NoError(t, err)
	srv.handleErr(nil)
	require.True(t, called)
}
