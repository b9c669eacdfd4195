// Package mesh defines the boundary between the translator core and the
// mesh-radio transport. The core only needs a send capability; link
// management, retries, and framing belong to whatever sits behind it.
package mesh

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"time"
)

// Sender delivers one payload on a mesh channel. Implementations must not
// retry internally; a failed send is reported once and the caller decides.
type Sender interface {
	Send(ctx context.Context, payload []byte, channel int) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, payload []byte, channel int) error

func (f SenderFunc) Send(ctx context.Context, payload []byte, channel int) error {
	return f(ctx, payload, channel)
}

// WriterSender writes each payload to an io.Writer. It stands in for a
// radio link when piping to another process or during tests; the channel
// index is not representable in a plain byte stream and is ignored.
type WriterSender struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterSender(w io.Writer) *WriterSender {
	return &WriterSender{w: w}
}

func (s *WriterSender) Send(_ context.Context, payload []byte, _ int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(payload); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}
	return nil
}

// TCPSender dials a radio's TCP API and writes the payload, one
// connection per send. Channel selection is part of the device
// configuration on that side of the socket, not of this byte stream.
type TCPSender struct {
	Addr    string
	Timeout time.Duration
}

func (s *TCPSender) Send(ctx context.Context, payload []byte, _ int) error {
	d := net.Dialer{Timeout: s.Timeout}
	conn, err := d.DialContext(ctx, "tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.Addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	}
	if _, err := conn.Write(payload); err != nil {
		return fmt.Errorf("send to %s: %w", s.Addr, err)
	}
	return nil
}
