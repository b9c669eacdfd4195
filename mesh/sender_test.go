package mesh

import (
	"bytes"
	"context"
	"io"
	"net"
	"testing"
	"time"
)

func TestWriterSender(t *testing.T) {
	var buf bytes.Buffer
	s := NewWriterSender(&buf)

	if err := s.Send(context.Background(), []byte{0x2a, 0x00}, 3); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got := buf.Bytes(); !bytes.Equal(got, []byte{0x2a, 0x00}) {
		t.Fatalf("wrote %x, want payload verbatim", got)
	}
}

func TestSenderFunc(t *testing.T) {
	var gotPayload []byte
	gotChannel := -1
	s := SenderFunc(func(_ context.Context, payload []byte, channel int) error {
		gotPayload = payload
		gotChannel = channel
		return nil
	})

	if err := s.Send(context.Background(), []byte("hi"), 7); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if string(gotPayload) != "hi" || gotChannel != 7 {
		t.Fatalf("forwarded %q on channel %d", gotPayload, gotChannel)
	}
}

func TestTCPSenderDeliversPayload(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer lis.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := lis.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		data, _ := io.ReadAll(conn)
		received <- data
	}()

	s := &TCPSender{Addr: lis.Addr().String(), Timeout: 2 * time.Second}
	payload := []byte{0x2a, 0x0a, 0x0d, 0, 0, 0, 0, 0x15, 0, 0, 0, 0}
	if err := s.Send(context.Background(), payload, 0); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case got := <-received:
		if !bytes.Equal(got, payload) {
			t.Fatalf("received %x, want %x", got, payload)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for payload")
	}
}

func TestTCPSenderDialFailure(t *testing.T) {
	// A listener that is immediately closed gives a port nothing accepts on.
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := lis.Addr().String()
	lis.Close()

	s := &TCPSender{Addr: addr, Timeout: time.Second}
	if err := s.Send(context.Background(), []byte("x"), 0); err == nil {
		t.Fatalf("expected dial error")
	}
}
