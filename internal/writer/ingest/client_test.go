// internal/writer/ingest/client_test.go
package ingest

import (
	"bytes"
	"errors"
	"io"
	"net"
	"testing"
	"time"
)

func TestBuildPacket(t *testing.T) {
	pkt := buildPacket(3, 7, 0x0102, []uint16{0xABCD, 0x0001})
	want := []byte{
		'R', 'I', 0x01, 0x03,
		0x00, 0x07,
		0x01, 0x02,
		0x00, 0x02,
		0xAB, 0xCD, 0x00, 0x01,
	}
	if !bytes.Equal(pkt, want) {
		t.Fatalf("packet:\n got % x\nwant % x", pkt, want)
	}
}

// serveOnce reads one packet and answers with status.
func serveOnce(t *testing.T, status byte) (string, <-chan []byte) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	got := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		hdr := make([]byte, headerLen)
		if _, err := io.ReadFull(conn, hdr); err != nil {
			return
		}
		count := int(hdr[8])<<8 | int(hdr[9])
		body := make([]byte, 2*count)
		if _, err := io.ReadFull(conn, body); err != nil {
			return
		}
		got <- append(hdr, body...)
		_, _ = conn.Write([]byte{status})
	}()

	return ln.Addr().String(), got
}

func TestWriteRegisters_OK(t *testing.T) {
	endpoint, got := serveOnce(t, respOK)

	c, err := NewEndpointClient(Config{Endpoint: endpoint, Timeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.WriteRegisters(4, 2, 10, []uint16{100, 15}); err != nil {
		t.Fatalf("write: %v", err)
	}

	pkt := <-got
	if !bytes.Equal(pkt, buildPacket(4, 2, 10, []uint16{100, 15})) {
		t.Fatalf("server saw % x", pkt)
	}
}

func TestWriteRegisters_Rejected(t *testing.T) {
	endpoint, _ := serveOnce(t, respRejected)

	c, err := NewEndpointClient(Config{Endpoint: endpoint, Timeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.WriteRegisters(3, 1, 0, []uint16{1}); !errors.Is(err, ErrRejected) {
		t.Fatalf("expected rejection, got %v", err)
	}
}

func TestWriteRegisters_UnknownStatus(t *testing.T) {
	endpoint, _ := serveOnce(t, 0x7E)

	c, err := NewEndpointClient(Config{Endpoint: endpoint, Timeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.WriteRegisters(3, 1, 0, []uint16{1}); err == nil {
		t.Fatal("expected error")
	}
}
