// internal/transport/smbus_linux.go

//go:build linux

package transport

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-daq/smbus"

	"github.com/tamzrod/tof-replicator/internal/rfd77402"
)

// smbusDev issues SMBus byte and word register calls on /dev/i2c-N.
// SMBus words are little-endian, matching the chip.
type smbusDev struct {
	conn *smbus.Conn
	addr uint8
}

func openSMBus(cfg Config) (rfd77402.Transport, io.Closer, error) {
	n, err := strconv.Atoi(cfg.Bus)
	if err != nil {
		return nil, nil, fmt.Errorf("smbus bus must be a number: %w", err)
	}
	if cfg.Address > 0x7F {
		return nil, nil, fmt.Errorf("smbus address %#x out of range", cfg.Address)
	}
	conn, err := smbus.Open(n, uint8(cfg.Address))
	if err != nil {
		return nil, nil, err
	}
	return &smbusDev{conn: conn, addr: uint8(cfg.Address)}, conn, nil
}

func (d *smbusDev) Read8(reg uint8) (uint8, error)    { return d.conn.ReadReg(d.addr, reg) }
func (d *smbusDev) Read16(reg uint8) (uint16, error)  { return d.conn.ReadWord(d.addr, reg) }
func (d *smbusDev) Write8(reg uint8, v uint8) error   { return d.conn.WriteReg(d.addr, reg, v) }
func (d *smbusDev) Write16(reg uint8, v uint16) error { return d.conn.WriteWord(d.addr, reg, v) }
