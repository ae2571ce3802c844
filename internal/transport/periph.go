// internal/transport/periph.go
package transport

import (
	"encoding/binary"
	"io"
	"sync"

	"github.com/edaniels/golog"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/mmr"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/tamzrod/tof-replicator/internal/rfd77402"
)

var (
	hostOnce sync.Once
	hostErr  error
)

func hostInit() error {
	hostOnce.Do(func() {
		_, hostErr = host.Init()
	})
	return hostErr
}

// openBus opens a host I2C bus by name and applies the requested speed.
// A bus that refuses the speed change is used as is.
func openBus(cfg Config, logger golog.Logger) (i2c.BusCloser, error) {
	if err := hostInit(); err != nil {
		return nil, err
	}
	bus, err := i2creg.Open(cfg.Bus)
	if err != nil {
		return nil, err
	}
	if cfg.SpeedHz > 0 {
		if err := bus.SetSpeed(physic.Frequency(cfg.SpeedHz) * physic.Hertz); err != nil {
			logger.Warnf("bus %q: keeping default speed: %v", cfg.Bus, err)
		}
	}
	return bus, nil
}

func openPeriph(cfg Config, logger golog.Logger) (rfd77402.Transport, io.Closer, error) {
	bus, err := openBus(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return NewPeriph(bus, cfg.Address), bus, nil
}

// PeriphDev talks to the chip through periph's 8-bit register map helper.
type PeriphDev struct {
	regs mmr.Dev8
}

// NewPeriph binds a register map to addr on bus. Words are little-endian.
func NewPeriph(bus i2c.Bus, addr uint16) *PeriphDev {
	return &PeriphDev{
		regs: mmr.Dev8{
			Conn:  &i2c.Dev{Bus: bus, Addr: addr},
			Order: binary.LittleEndian,
		},
	}
}

func (p *PeriphDev) Read8(reg uint8) (uint8, error)    { return p.regs.ReadUint8(reg) }
func (p *PeriphDev) Read16(reg uint8) (uint16, error)  { return p.regs.ReadUint16(reg) }
func (p *PeriphDev) Write8(reg uint8, v uint8) error   { return p.regs.WriteUint8(reg, v) }
func (p *PeriphDev) Write16(reg uint8, v uint16) error { return p.regs.WriteUint16(reg, v) }
