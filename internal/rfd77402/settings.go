// internal/rfd77402/settings.go
package rfd77402

import "fmt"

// Peak returns the VCSEL peak field of CONFIGURE_A.
func (d *Device) Peak() (uint8, error) {
	return d.readField(RegConfigureA, configPeak)
}

// SetPeak sets the VCSEL peak field (0-15) of CONFIGURE_A.
func (d *Device) SetPeak(v uint8) error {
	return d.writeField(RegConfigureA, configPeak, v)
}

// Threshold returns the VCSEL threshold field of CONFIGURE_A.
func (d *Device) Threshold() (uint8, error) {
	return d.readField(RegConfigureA, configThreshold)
}

// SetThreshold sets the VCSEL threshold field (0-15) of CONFIGURE_A.
func (d *Device) SetThreshold(v uint8) error {
	return d.writeField(RegConfigureA, configThreshold, v)
}

// Frequency returns the VCSEL frequency field of CONFIGURE_HW_1.
func (d *Device) Frequency() (uint8, error) {
	return d.readField(RegConfigureHW1, hw1Frequency)
}

// SetFrequency sets the VCSEL frequency field (0-15) of CONFIGURE_HW_1.
func (d *Device) SetFrequency(v uint8) error {
	return d.writeField(RegConfigureHW1, hw1Frequency, v)
}

func (d *Device) readField(reg uint8, f field) (uint8, error) {
	v, err := d.read16(reg)
	if err != nil {
		return 0, err
	}
	return uint8(f.get(v)), nil
}

// writeField is a read-modify-write of one field.
func (d *Device) writeField(reg uint8, f field, x uint8) error {
	if uint16(x) > f.mask()>>f.shift {
		return fmt.Errorf("rfd77402: value %d does not fit %d-bit field of reg %#02x", x, f.width, reg)
	}
	v, err := d.read16(reg)
	if err != nil {
		return err
	}
	return d.write16(reg, f.set(v, uint16(x)))
}
