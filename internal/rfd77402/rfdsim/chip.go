// internal/rfd77402/rfdsim/chip.go

// Package rfdsim simulates an RFD77402 register file in memory.
//
// Command writes move the simulated MCPU between modes, single-shot
// measurements pop scripted results, and the calibration mailbox command
// queues scripted payload words. Every access is logged so tests can assert
// exact bus sequences.
package rfdsim

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tamzrod/tof-replicator/internal/rfd77402"
)

// Op is one logged register access.
type Op struct {
	Kind  string // r8, r16, w8, w16
	Reg   uint8
	Value uint16
}

func (o Op) String() string {
	return fmt.Sprintf("%s %#02x=%#04x", o.Kind, o.Reg, o.Value)
}

// Result is one scripted measurement outcome.
type Result struct {
	Raw        uint16 // RESULT
	Confidence uint16 // RESULT_CONFIDENCE
}

// Chip implements rfd77402.Transport.
type Chip struct {
	mu sync.Mutex

	regs [256]byte

	// ChipID is returned from MOD_CHIP_ID.
	ChipID uint16

	// StatusLag is how many DEVICE_STATUS reads keep returning the old
	// mode after a mode command.
	StatusLag int

	// Ignore lists modes the MCPU never enters.
	Ignore map[rfd77402.Mode]bool

	// ReadyLag is how many ICSR reads pass before data-ready is set.
	ReadyLag int

	// NeverReady keeps data-ready clear after a measure command.
	NeverReady bool

	// Results is consumed one entry per measure command.
	Results []Result

	// Next supplies results once Results is exhausted.
	Next func() Result

	// Pending holds mailbox words already queued before any command.
	Pending []uint16

	// CalibrationWords are queued when the calibration command is posted.
	CalibrationWords []uint16

	// Faults fails every access to the keyed register.
	Faults map[uint8]error

	Ops []Op

	status    uint16
	target    uint16
	lag       int
	readyLag  int
	mailbox   []uint16
	measuring bool
}

// New returns a chip with a valid id, sitting in Off mode.
func New() *Chip {
	return &Chip{
		ChipID: 0xAD01,
		status: rfd77402.StatusOff,
		target: rfd77402.StatusOff,
	}
}

// ErrNack is a convenient fault value.
var ErrNack = errors.New("rfdsim: nack")

// ---- rfd77402.Transport ----

func (c *Chip) Read8(reg uint8) (uint8, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.fault(reg); err != nil {
		return 0, err
	}

	var v uint8
	switch reg {
	case rfd77402.RegICSR:
		v = c.regs[reg] &^ (rfd77402.ICSRDataReady | rfd77402.ICSRMailbox)
		if c.dataReady() {
			v |= rfd77402.ICSRDataReady
		}
		if len(c.mailbox)+len(c.Pending) > 0 {
			v |= rfd77402.ICSRMailbox
		}
	default:
		v = c.regs[reg]
	}
	c.Ops = append(c.Ops, Op{Kind: "r8", Reg: reg, Value: uint16(v)})
	return v, nil
}

func (c *Chip) Read16(reg uint8) (uint16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.fault(reg); err != nil {
		return 0, err
	}

	var v uint16
	switch reg {
	case rfd77402.RegModChipID:
		v = c.ChipID
	case rfd77402.RegDeviceStatus:
		if c.lag > 0 {
			c.lag--
		} else {
			c.status = c.target
		}
		v = c.status
	case rfd77402.RegMCPUToHostMailbox:
		v = c.popMailbox()
	default:
		v = c.word(reg)
	}
	c.Ops = append(c.Ops, Op{Kind: "r16", Reg: reg, Value: v})
	return v, nil
}

func (c *Chip) Write8(reg uint8, v uint8) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.fault(reg); err != nil {
		return err
	}
	c.Ops = append(c.Ops, Op{Kind: "w8", Reg: reg, Value: uint16(v)})

	if reg == rfd77402.RegCommand {
		c.command(v)
		return nil
	}
	c.regs[reg] = v
	return nil
}

func (c *Chip) Write16(reg uint8, v uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.fault(reg); err != nil {
		return err
	}
	c.Ops = append(c.Ops, Op{Kind: "w16", Reg: reg, Value: v})

	if reg == rfd77402.RegHostToMCPUMailbox && v == rfd77402.MailboxCalibration {
		c.mailbox = append(c.mailbox, c.CalibrationWords...)
	}
	c.setWord(reg, v)
	return nil
}

// ---- inspection helpers ----

// Word returns the little-endian 16-bit value stored at reg.
func (c *Chip) Word(reg uint8) uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.word(reg)
}

// SetWord stores v at reg without logging an access.
func (c *Chip) SetWord(reg uint8, v uint16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setWord(reg, v)
}

// Log returns a copy of the access log.
func (c *Chip) Log() []Op {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Op, len(c.Ops))
	copy(out, c.Ops)
	return out
}

// Count returns how many logged accesses match kind and reg.
func (c *Chip) Count(kind string, reg uint8) int {
	n := 0
	for _, op := range c.Log() {
		if op.Kind == kind && op.Reg == reg {
			n++
		}
	}
	return n
}

// Commands returns every byte written to the command register, in order.
func (c *Chip) Commands() []uint8 {
	var out []uint8
	for _, op := range c.Log() {
		if op.Kind == "w8" && op.Reg == rfd77402.RegCommand {
			out = append(out, uint8(op.Value))
		}
	}
	return out
}

// ResetLog clears the access log.
func (c *Chip) ResetLog() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Ops = nil
}

// ---- internals ----

func (c *Chip) command(cmd uint8) {
	switch cmd {
	case rfd77402.CmdStandby:
		c.enter(rfd77402.ModeStandby, rfd77402.StatusStandby)
	case rfd77402.CmdOff:
		c.enter(rfd77402.ModeOff, rfd77402.StatusOff)
	case rfd77402.CmdOn:
		c.enter(rfd77402.ModeOn, rfd77402.StatusOn)
	case rfd77402.CmdMeasure:
		c.measuring = true
		c.readyLag = c.ReadyLag
		if len(c.Results) > 0 {
			r := c.Results[0]
			c.Results = c.Results[1:]
			c.setWord(rfd77402.RegResult, r.Raw)
			c.setWord(rfd77402.RegResultConfidence, r.Confidence)
		} else if c.Next != nil {
			r := c.Next()
			c.setWord(rfd77402.RegResult, r.Raw)
			c.setWord(rfd77402.RegResultConfidence, r.Confidence)
		}
	case rfd77402.CmdReset:
		c.status, c.target, c.lag = 0x1F, 0x1F, 0
		c.measuring = false
		c.mailbox = nil
	}
}

func (c *Chip) enter(m rfd77402.Mode, status uint16) {
	c.measuring = false
	if c.Ignore[m] {
		return
	}
	c.target = status
	c.lag = c.StatusLag
}

func (c *Chip) dataReady() bool {
	if !c.measuring || c.NeverReady {
		return false
	}
	if c.readyLag > 0 {
		c.readyLag--
		return false
	}
	return true
}

func (c *Chip) popMailbox() uint16 {
	if len(c.Pending) > 0 {
		v := c.Pending[0]
		c.Pending = c.Pending[1:]
		return v
	}
	if len(c.mailbox) > 0 {
		v := c.mailbox[0]
		c.mailbox = c.mailbox[1:]
		return v
	}
	return 0
}

func (c *Chip) fault(reg uint8) error {
	if err, ok := c.Faults[reg]; ok {
		return err
	}
	return nil
}

func (c *Chip) word(reg uint8) uint16 {
	return uint16(c.regs[reg]) | uint16(c.regs[reg+1])<<8
}

func (c *Chip) setWord(reg uint8, v uint16) {
	c.regs[reg] = byte(v)
	c.regs[reg+1] = byte(v >> 8)
}

var _ rfd77402.Transport = (*Chip)(nil)
