// internal/writer/ingest/client.go

// Package ingest speaks Raw Ingest v1: one register block per TCP
// connection, acknowledged by a single status byte.
//
// Packet layout (big-endian):
//
//	0-1  magic "RI"
//	2    version 0x01
//	3    area (3 holding registers, 4 input registers)
//	4-5  unit id
//	6-7  start address
//	8-9  register count
//	10+  registers, two bytes each
package ingest

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

const (
	magic     = "RI"
	versionV1 = 0x01
	headerLen = 10

	respOK       byte = 0x00
	respRejected byte = 0x01

	defaultTimeout = 2 * time.Second
)

// ErrRejected is returned when the endpoint refuses a packet.
var ErrRejected = errors.New("writer ingest: rejected")

// EndpointClient is stateless; every write dials.
type EndpointClient struct {
	endpoint string
	timeout  time.Duration
}

type Config struct {
	Endpoint string
	Timeout  time.Duration
}

func NewEndpointClient(cfg Config) (*EndpointClient, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("writer ingest: endpoint required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &EndpointClient{
		endpoint: cfg.Endpoint,
		timeout:  cfg.Timeout,
	}, nil
}

func (c *EndpointClient) Close() error { return nil }

// WriteRegisters sends one register block and waits for the ack.
func (c *EndpointClient) WriteRegisters(area byte, unitID uint8, addr uint16, regs []uint16) error {
	if len(regs) == 0 {
		return nil
	}
	if len(regs) > 0xFFFF {
		return fmt.Errorf("writer ingest: %d registers exceed one packet", len(regs))
	}

	conn, err := net.DialTimeout("tcp", c.endpoint, c.timeout)
	if err != nil {
		return fmt.Errorf("writer ingest: dial: %w", err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return fmt.Errorf("writer ingest: deadline: %w", err)
	}

	// net.Conn.Write returns an error on any short write
	if _, err := conn.Write(buildPacket(area, unitID, addr, regs)); err != nil {
		return fmt.Errorf("writer ingest: write: %w", err)
	}

	var resp [1]byte
	if _, err := io.ReadFull(conn, resp[:]); err != nil {
		return fmt.Errorf("writer ingest: read status: %w", err)
	}

	switch resp[0] {
	case respOK:
		return nil
	case respRejected:
		return ErrRejected
	default:
		return fmt.Errorf("writer ingest: unknown status 0x%02x", resp[0])
	}
}

func buildPacket(area byte, unitID uint8, addr uint16, regs []uint16) []byte {
	pkt := make([]byte, 0, headerLen+2*len(regs))
	pkt = append(pkt, magic...)
	pkt = append(pkt, versionV1, area)
	pkt = binary.BigEndian.AppendUint16(pkt, uint16(unitID))
	pkt = binary.BigEndian.AppendUint16(pkt, addr)
	pkt = binary.BigEndian.AppendUint16(pkt, uint16(len(regs)))
	for _, r := range regs {
		pkt = binary.BigEndian.AppendUint16(pkt, r)
	}
	return pkt
}
