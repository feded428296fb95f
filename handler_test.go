//go:build linux
// +build linux

package tinyhttpd

import (
	"bufio"
	"bytes"
	"io"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type rw struct {
	io.Reader
	io.Writer
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

type errWriter struct{}

func (errWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestFixedResponseFraming(t *testing.T) {
	h := DefaultResponse()
	resp, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(h.Payload())), nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, 200, resp.StatusCode)
	require.Equal(t, "text/html", resp.Header.Get("Content-Type"))
	require.Equal(t, strconv.Itoa(len(DefaultBody)), resp.Header.Get("Content-Length"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, DefaultBody, string(body))
	require.Contains(t, string(body), "Hello from Tinyhttpd2!")
}

func TestFixedResponseServe(t *testing.T) {
	var out bytes.Buffer
	h := DefaultResponse()
	require.NoError(t, h.Serve(rw{strings.NewReader("GET / \r\n\r\n"), &out}))
	require.True(t, strings.HasPrefix(out.String(), "HTTP/1.1 200 OK\r\n"))
	require.Equal(t, h.Payload(), out.Bytes())
}

func TestFixedResponseNoRequest(t *testing.T) {
	var out bytes.Buffer
	h := DefaultResponse()
	require.NoError(t, h.Serve(rw{strings.NewReader(""), &out}))
	require.Equal(t, h.Payload(), out.Bytes())

	out.Reset()
	require.NoError(t, h.Serve(rw{errReader{}, &out}))
	require.Equal(t, h.Payload(), out.Bytes())
}

func TestFixedResponseReadsBoundedRequest(t *testing.T) {
	in := strings.NewReader(strings.Repeat("a", 4096))
	var out bytes.Buffer
	require.NoError(t, DefaultResponse().Serve(rw{in, &out}))
	require.Equal(t, 4096-(ReadBufferSize-1), in.Len())
}

func TestFixedResponseWriteError(t *testing.T) {
	err := DefaultResponse().Serve(rw{strings.NewReader(""), errWriter{}})
	require.Error(t, err)
}

func TestServiceUnavailable(t *testing.T) {
	payload := string(ServiceUnavailable().Payload())
	require.True(t, strings.HasPrefix(payload, "HTTP/1.1 503 Service Unavailable\r\n"))
}

func TestHandlerFunc(t *testing.T) {
	called := false
	var h Handler = HandlerFunc(func(io.ReadWriter) error {
		called = true
		return nil
	})
	require.NoError(t, h.Serve(nil))
	require.True(t, called)
}
