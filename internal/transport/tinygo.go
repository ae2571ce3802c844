// internal/transport/tinygo.go
package transport

import (
	"encoding/binary"
	"io"

	"github.com/edaniels/golog"
	"tinygo.org/x/drivers"

	"github.com/tamzrod/tof-replicator/internal/rfd77402"
)

// openTinyGo runs the drivers.I2C adapter over a host bus. On a TinyGo
// target the adapter is built directly around machine.I2C with NewI2C.
func openTinyGo(cfg Config, logger golog.Logger) (rfd77402.Transport, io.Closer, error) {
	bus, err := openBus(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return NewI2C(bus, cfg.Address), bus, nil
}

// I2C adapts any drivers.I2C bus to the register calls.
type I2C struct {
	bus  drivers.I2C
	addr uint16
	w    [3]byte
	r    [2]byte
}

// NewI2C returns an adapter for the device at addr.
func NewI2C(bus drivers.I2C, addr uint16) *I2C {
	return &I2C{bus: bus, addr: addr}
}

func (d *I2C) Read8(reg uint8) (uint8, error) {
	d.w[0] = reg
	if err := d.bus.Tx(d.addr, d.w[:1], d.r[:1]); err != nil {
		return 0, err
	}
	return d.r[0], nil
}

func (d *I2C) Read16(reg uint8) (uint16, error) {
	d.w[0] = reg
	if err := d.bus.Tx(d.addr, d.w[:1], d.r[:2]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(d.r[:]), nil
}

func (d *I2C) Write8(reg uint8, v uint8) error {
	d.w[0], d.w[1] = reg, v
	return d.bus.Tx(d.addr, d.w[:2], nil)
}

func (d *I2C) Write16(reg uint8, v uint16) error {
	d.w[0] = reg
	binary.LittleEndian.PutUint16(d.w[1:], v)
	return d.bus.Tx(d.addr, d.w[:3], nil)
}
