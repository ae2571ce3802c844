// internal/rfd77402/rfdsim/result.go
package rfdsim

import "github.com/tamzrod/tof-replicator/internal/rfd77402"

// Encode packs a measurement the way the chip reports it.
// A zero distance with a Valid code still sets bit 0 so the result
// does not read as stale.
func Encode(code rfd77402.ErrorCode, distance uint16, pixels uint8, confidence uint16) Result {
	raw := uint16(code&0x3)<<13 | (distance&0x7FF)<<2
	if raw == 0 {
		raw = 0x0001
	}
	return Result{
		Raw:        raw,
		Confidence: (confidence&0x7FF)<<4 | uint16(pixels&0x0F),
	}
}

// Sweep returns a Next function that walks distance from lo to hi and back
// in step millimeter increments, always reporting a valid reading.
func Sweep(lo, hi, step uint16) func() Result {
	if step == 0 {
		step = 1
	}
	d, up := lo, true
	return func() Result {
		r := Encode(rfd77402.Valid, d, 0x0F, 0x7FF-(d>>1))
		switch {
		case up && d+step > hi:
			up = false
		case !up && d < lo+step:
			up = true
		}
		if up {
			d += step
		} else {
			d -= step
		}
		return r
	}
}
