//go:build linux
// +build linux

package tinyhttpd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// DefaultBody is the body of the default response.
const DefaultBody = "<html><body><h1>Hello from Tinyhttpd2!</h1></body></html>\r\n"

// Handler performs one exchange on a ready client connection. It must not
// close the connection, the server loop does that after Serve returns.
type Handler interface {
	Serve(rw io.ReadWriter) error
}

// HandlerFunc adapts a func to the Handler interface.
type HandlerFunc func(rw io.ReadWriter) error

// Serve implements the Handler interface.
func (f HandlerFunc) Serve(rw io.ReadWriter) error {
	return f(rw)
}

// FixedResponse reads whatever the client sent, ignores it, and always
// writes the same response.
type FixedResponse struct {
	payload []byte
}

// NewFixedResponse builds a response with a status line, Content-Type,
// Content-Length and Connection headers followed by body.
func NewFixedResponse(status int, statusText, contentType, body string) *FixedResponse {
	var b strings.Builder
	fmt.Fprintf(&b, "HTTP/1.1 %d %s\r\n", status, statusText)
	b.WriteString("Content-Type: " + contentType + "\r\n")
	b.WriteString("Content-Length: " + strconv.Itoa(len(body)) + "\r\n")
	b.WriteString("Connection: close\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return &FixedResponse{payload: []byte(b.String())}
}

// DefaultResponse returns the 200 OK hello page.
func DefaultResponse() *FixedResponse {
	return NewFixedResponse(200, "OK", "text/html", DefaultBody)
}

// ServiceUnavailable returns a 503 response usable as an overflow handler.
func ServiceUnavailable() *FixedResponse {
	return NewFixedResponse(503, "Service Unavailable", "text/plain", "server busy\r\n")
}

// Payload returns the raw response bytes.
func (h *FixedResponse) Payload() []byte {
	return h.payload
}

// Serve implements the Handler interface. An empty or failed read is not an
// error, the response is written regardless.
func (h *FixedResponse) Serve(rw io.ReadWriter) error {
	buf := make([]byte, ReadBufferSize)
	// The request is ignored.
	_, _ = rw.Read(buf[:ReadBufferSize-1])

	if _, err := rw.Write(h.payload); err != nil {
		return errors.Wrap(err, "failed to send response")
	}
	return nil
}
