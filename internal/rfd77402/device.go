// internal/rfd77402/device.go

// Package rfd77402 drives the RFD77402 time-of-flight range sensor over a
// register-addressed transport.
//
// A Device is not safe for concurrent use. Callers that need an overall
// deadline wrap Initialize or TakeMeasurement themselves; the poll loops
// inside are bounded but not cancellable.
package rfd77402

import (
	"errors"
	"fmt"
	"time"

	"github.com/edaniels/golog"
)

// Transport is the register bus the driver consumes.
// Each call is one complete bus transaction.
type Transport interface {
	Read8(reg uint8) (uint8, error)
	Read16(reg uint8) (uint16, error)
	Write8(reg uint8, v uint8) error
	Write16(reg uint8, v uint16) error
}

// Config holds optional driver settings.
type Config struct {
	// Calibrate fetches the MCPU calibration payload during Initialize.
	Calibrate bool

	// InterruptPin configures the interrupt pad to signal data-ready and
	// mailbox messages.
	InterruptPin bool

	// PollInterval overrides the 10ms spacing between status polls.
	PollInterval time.Duration

	// Sleep overrides time.Sleep. Tests use it to skip real delays.
	Sleep func(time.Duration)

	Logger golog.Logger
}

// Measurement is the last successfully decoded result.
type Measurement struct {
	Distance    uint16 // millimeters, 11 bits
	ValidPixels uint8  // 4 bits
	Confidence  uint16 // 11 bits
}

// Device is a handle to one RFD77402.
type Device struct {
	bus Transport
	log golog.Logger

	calibrate    bool
	interruptPin bool
	interval     time.Duration
	sleep        func(time.Duration)

	mode        Mode
	result      Measurement
	calibration [CalibrationSize]byte
	calibrated  bool
}

// New returns a Device bound to bus. It does not touch the chip.
func New(bus Transport, cfg Config) *Device {
	d := &Device{
		bus:          bus,
		log:          cfg.Logger,
		calibrate:    cfg.Calibrate,
		interruptPin: cfg.InterruptPin,
		interval:     cfg.PollInterval,
		sleep:        cfg.Sleep,
	}
	if d.log == nil {
		d.log = golog.Global()
	}
	if d.interval <= 0 {
		d.interval = PollInterval
	}
	if d.sleep == nil {
		d.sleep = time.Sleep
	}
	return d
}

// Initialize brings the chip from power-on to On mode with the vendor
// configuration applied. Any failing step aborts and its error is returned.
func (d *Device) Initialize() error {
	id, err := d.ChipID()
	if err != nil {
		return err
	}
	if id < MinChipID {
		return fmt.Errorf("%w: got %#04x", ErrChipIDMismatch, id)
	}
	d.log.Debugw("chip detected", "chip_id", fmt.Sprintf("%#04x", id))

	if err := d.GotoStandby(); err != nil {
		return err
	}
	if d.interruptPin {
		if err := d.configureInterrupt(); err != nil {
			return err
		}
	}
	if err := d.write8(RegConfigureI2C, i2cInterfaceConfig); err != nil {
		return err
	}
	if err := d.write16(RegConfigurePMU, PMUPatchEnable); err != nil {
		return err
	}
	if err := d.GotoOff(); err != nil {
		return err
	}
	if err := d.write16(RegConfigurePMU, PMUMCPUInit); err != nil {
		return err
	}
	if err := d.GotoOn(); err != nil {
		return err
	}

	if err := d.SetPeak(DefaultPeak); err != nil {
		return err
	}
	if err := d.SetThreshold(DefaultThreshold); err != nil {
		return err
	}
	for _, w := range []struct {
		reg uint8
		v   uint16
	}{
		{RegConfigureB, configureBDefault},
		{RegConfigureHW0, hw0Default},
		{RegConfigureHW1, hw1Default},
		{RegConfigureHW2, hw2Default},
		{RegConfigureHW3, hw3Default},
	} {
		if err := d.write16(w.reg, w.v); err != nil {
			return err
		}
	}

	if err := d.GotoStandby(); err != nil {
		return err
	}
	if d.calibrate {
		if err := d.LoadCalibration(); err != nil {
			return err
		}
	}
	if err := d.GotoStandby(); err != nil {
		return err
	}
	return d.Restart()
}

// Restart cycles the MCPU through Off back to On with patch memory enabled.
// It leaves the chip ready to measure.
func (d *Device) Restart() error {
	if err := d.write16(RegConfigurePMU, PMUPatchEnable); err != nil {
		return err
	}
	if err := d.GotoOff(); err != nil {
		return err
	}
	if err := d.write16(RegConfigurePMU, PMUMCPUInit); err != nil {
		return err
	}
	return d.GotoOn()
}

func (d *Device) configureInterrupt() error {
	icsr, err := d.read8(RegICSR)
	if err != nil {
		return err
	}
	icsr &= icsrWritableMask
	if err := d.write8(RegICSR, icsr|IntClearOnResult|IntClearOnRead|IntPushPull|IntActiveLow); err != nil {
		return err
	}
	return d.write8(RegInterrupts, IntSrcData|IntSrcMailbox)
}

// TakeMeasurement runs one single-shot measurement.
//
// The stored result is replaced only when the returned code is Valid.
// The error is non-nil only when the bus failed.
func (d *Device) TakeMeasurement() (ErrorCode, error) {
	if err := d.GotoMeasurement(); err != nil {
		if isTransport(err) {
			return FailedTimeout, err
		}
		d.log.Debugw("measurement not ready", "err", err)
		return FailedTimeout, nil
	}

	raw, err := d.read16(RegResult)
	if err != nil {
		return FailedTimeout, err
	}
	code, distance, fresh := decodeResult(raw)
	if !fresh || code != Valid {
		d.log.Debugw("measurement rejected", "code", code.String(), "result", raw)
		return code, nil
	}

	conf, err := d.read16(RegResultConfidence)
	if err != nil {
		return FailedTimeout, err
	}
	pixels, confidence := decodeConfidence(conf)
	d.result = Measurement{
		Distance:    distance,
		ValidPixels: pixels,
		Confidence:  confidence,
	}
	return Valid, nil
}

// Measurement returns the last valid result.
func (d *Device) Measurement() Measurement { return d.result }

// Distance returns the last valid distance in millimeters.
func (d *Device) Distance() uint16 { return d.result.Distance }

// ValidPixels returns the number of valid pixels of the last valid result.
func (d *Device) ValidPixels() uint8 { return d.result.ValidPixels }

// ConfidenceValue returns how confident the chip was in the last valid distance.
func (d *Device) ConfidenceValue() uint16 { return d.result.Confidence }

// ChipID reads the module chip id. Parts report 0xAD01 or higher.
func (d *Device) ChipID() (uint16, error) {
	return d.read16(RegModChipID)
}

// Mailbox reads the MCPU-to-host mailbox. Check ICSR bit 5 first.
func (d *Device) Mailbox() (uint16, error) {
	return d.read16(RegMCPUToHostMailbox)
}

// Reset issues a software reset and waits for the chip to settle.
func (d *Device) Reset() error {
	if err := d.write8(RegCommand, CmdReset); err != nil {
		return err
	}
	d.mode = ModeUnknown
	d.sleep(ResetSettle)
	return nil
}

// ---- register access ----

func (d *Device) read8(reg uint8) (uint8, error) {
	v, err := d.bus.Read8(reg)
	if err != nil {
		return 0, &TransportError{Op: "read8", Reg: reg, Err: err}
	}
	return v, nil
}

func (d *Device) read16(reg uint8) (uint16, error) {
	v, err := d.bus.Read16(reg)
	if err != nil {
		return 0, &TransportError{Op: "read16", Reg: reg, Err: err}
	}
	return v, nil
}

func (d *Device) write8(reg uint8, v uint8) error {
	if err := d.bus.Write8(reg, v); err != nil {
		return &TransportError{Op: "write8", Reg: reg, Err: err}
	}
	return nil
}

func (d *Device) write16(reg uint8, v uint16) error {
	if err := d.bus.Write16(reg, v); err != nil {
		return &TransportError{Op: "write16", Reg: reg, Err: err}
	}
	return nil
}

func isTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
