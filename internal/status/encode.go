// internal/status/encode.go
package status

// Encode converts a Snapshot into a full device status block.
// The device name slots are left zero; the writer owns them.
// Layout is protocol-locked.
// No IO. No side effects.
func Encode(s Snapshot) []uint16 {
	regs := make([]uint16, SlotsPerDevice)

	regs[SlotHealthCode] = s.Health
	regs[SlotLastErrorCode] = s.LastErrorCode
	regs[SlotSecondsInError] = s.SecondsInError
	regs[SlotMode] = s.Mode
	regs[SlotChipID] = s.ChipID

	return regs
}

// EncodeName packs up to 16 ASCII characters into the device name slots.
// Each register stores two ASCII bytes in big-endian order.
func EncodeName(name string) []uint16 {
	out := make([]uint16, SlotDeviceNameSlots)

	b := []byte(name)
	if len(b) > DeviceNameMaxChars {
		b = b[:DeviceNameMaxChars]
	}

	// sanitize to printable ASCII
	for i := 0; i < len(b); i++ {
		if b[i] < 0x20 || b[i] > 0x7E {
			b[i] = '?'
		}
	}

	for i := 0; i < DeviceNameMaxChars; i += 2 {
		var hi, lo byte
		if i < len(b) {
			hi = b[i]
		}
		if i+1 < len(b) {
			lo = b[i+1]
		}
		out[i/2] = uint16(hi)<<8 | uint16(lo)
	}

	return out
}

// Measurement is one decoded reading as published.
type Measurement struct {
	Distance    uint16
	ValidPixels uint16
	Confidence  uint16
	Code        uint16
	Sequence    uint16
}

// EncodeMeasurement converts a reading into a measurement block.
func EncodeMeasurement(m Measurement) []uint16 {
	regs := make([]uint16, MeasurementRegs)

	regs[MeasDistance] = m.Distance
	regs[MeasValidPixels] = m.ValidPixels
	regs[MeasConfidence] = m.Confidence
	regs[MeasCode] = m.Code
	regs[MeasSequence] = m.Sequence

	return regs
}
