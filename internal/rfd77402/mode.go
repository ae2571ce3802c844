// internal/rfd77402/mode.go
package rfd77402

import "fmt"

// Mode is the MCPU power/measurement state. The values are the low bits
// of the matching command byte.
type Mode uint8

const (
	ModeUnknown     Mode = 0x00
	ModeMeasurement Mode = 0x01
	ModeStandby     Mode = 0x10
	ModeOff         Mode = 0x11
	ModeOn          Mode = 0x12
)

func (m Mode) String() string {
	switch m {
	case ModeUnknown:
		return "unknown"
	case ModeMeasurement:
		return "measurement"
	case ModeStandby:
		return "standby"
	case ModeOff:
		return "off"
	case ModeOn:
		return "on"
	}
	return fmt.Sprintf("mode(%#02x)", uint8(m))
}

// modeFromStatus maps DEVICE_STATUS mode bits to a Mode.
func modeFromStatus(status uint16) Mode {
	switch status & statusModeMask {
	case StatusStandby:
		return ModeStandby
	case StatusOff:
		return ModeOff
	case StatusOn:
		return ModeOn
	}
	return ModeUnknown
}

// GotoStandby commands standby and waits for the chip to confirm it.
func (d *Device) GotoStandby() error {
	return d.transition(ModeStandby, CmdStandby, StatusStandby)
}

// GotoOff commands the MCPU off and waits for the chip to confirm it.
func (d *Device) GotoOff() error {
	return d.transition(ModeOff, CmdOff, StatusOff)
}

// GotoOn commands the MCPU on and waits for the chip to confirm it.
func (d *Device) GotoOn() error {
	return d.transition(ModeOn, CmdOn, StatusOn)
}

// transition writes cmd and polls DEVICE_STATUS until its mode bits equal
// want or the poll budget runs out.
func (d *Device) transition(target Mode, cmd uint8, want uint16) error {
	if err := d.write8(RegCommand, cmd); err != nil {
		return err
	}
	ok, err := retry(PollAttempts, d.interval, d.sleep, func() (bool, error) {
		status, err := d.read16(RegDeviceStatus)
		if err != nil {
			return false, err
		}
		return status&statusModeMask == want, nil
	})
	if err != nil {
		return err
	}
	if !ok {
		d.mode = ModeUnknown
		return fmt.Errorf("rfd77402: goto %s: %w", target, ErrModeTimeout)
	}
	d.log.Debugw("mode confirmed", "mode", target.String())
	d.mode = target
	return nil
}

// GotoMeasurement starts a single-shot measurement and waits for the
// data-ready bit in ICSR.
func (d *Device) GotoMeasurement() error {
	if err := d.write8(RegCommand, CmdMeasure); err != nil {
		return err
	}
	ok, err := retry(PollAttempts, d.interval, d.sleep, func() (bool, error) {
		icsr, err := d.read8(RegICSR)
		if err != nil {
			return false, err
		}
		return icsr&ICSRDataReady != 0, nil
	})
	if err != nil {
		return err
	}
	if !ok {
		d.mode = ModeUnknown
		return fmt.Errorf("rfd77402: goto %s: %w", ModeMeasurement, ErrModeTimeout)
	}
	d.mode = ModeMeasurement
	return nil
}

// Mode returns the last mode the chip confirmed. It does no bus traffic.
func (d *Device) Mode() Mode {
	return d.mode
}

// ReadMode reads DEVICE_STATUS and maps its mode bits.
func (d *Device) ReadMode() (Mode, error) {
	status, err := d.read16(RegDeviceStatus)
	if err != nil {
		return ModeUnknown, err
	}
	return modeFromStatus(status), nil
}
