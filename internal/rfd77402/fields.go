// internal/rfd77402/fields.go
package rfd77402

// field is a named bit range inside a 16-bit register.
type field struct {
	shift uint
	width uint
}

func (f field) mask() uint16 {
	return uint16((1<<f.width)-1) << f.shift
}

// get extracts the field from v.
func (f field) get(v uint16) uint16 {
	return (v & f.mask()) >> f.shift
}

// set returns v with the field replaced by x. Sibling bits are preserved.
func (f field) set(v, x uint16) uint16 {
	return (v &^ f.mask()) | ((x << f.shift) & f.mask())
}

// RESULT register
var (
	resultPayload   = field{shift: 0, width: 15}
	resultDistance  = field{shift: 2, width: 11}
	resultErrorCode = field{shift: 13, width: 2}
)

// RESULT_CONFIDENCE register
var (
	confidencePixels = field{shift: 0, width: 4}
	confidenceValue  = field{shift: 4, width: 11}
)

// CONFIGURE_A / CONFIGURE_HW_1
var (
	configPeak      = field{shift: 12, width: 4}
	configThreshold = field{shift: 8, width: 4}
	hw1Frequency    = field{shift: 12, width: 4}
)

// decodeResult splits a RESULT register value.
// fresh is false when the payload bits are all zero.
func decodeResult(v uint16) (code ErrorCode, distance uint16, fresh bool) {
	if resultPayload.get(v) == 0 {
		return FailedNotNew, 0, false
	}
	return ErrorCode(resultErrorCode.get(v)), resultDistance.get(v), true
}

// decodeConfidence splits a RESULT_CONFIDENCE register value.
func decodeConfidence(v uint16) (pixels uint8, confidence uint16) {
	return uint8(confidencePixels.get(v)), confidenceValue.get(v)
}
