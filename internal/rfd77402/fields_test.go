// internal/rfd77402/fields_test.go
package rfd77402

import (
	"errors"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

func TestDecodeResult(t *testing.T) {
	c := qt.New(t)

	tests := []struct {
		raw      uint16
		code     ErrorCode
		distance uint16
		fresh    bool
	}{
		{raw: 0x0000, code: FailedNotNew, fresh: false},
		{raw: 0x8000, code: FailedNotNew, fresh: false}, // bit 15 alone is not payload
		{raw: 0x0004, code: Valid, distance: 1, fresh: true},
		{raw: 0x1FFC, code: Valid, distance: 0x7FF, fresh: true},
		{raw: 0x0003, code: Valid, distance: 0, fresh: true},
		{raw: 0x2000 | 0x0190, code: FailedPixels, distance: 100, fresh: true},
		{raw: 0x4000 | 0x0004, code: FailedSignal, distance: 1, fresh: true},
		{raw: 0x7FFF, code: FailedSaturated, distance: 0x7FF, fresh: true},
	}
	for _, tt := range tests {
		code, distance, fresh := decodeResult(tt.raw)
		c.Check(code, qt.Equals, tt.code, qt.Commentf("raw=%#04x", tt.raw))
		c.Check(fresh, qt.Equals, tt.fresh, qt.Commentf("raw=%#04x", tt.raw))
		if tt.fresh {
			c.Check(distance, qt.Equals, tt.distance, qt.Commentf("raw=%#04x", tt.raw))
		}
	}
}

func TestDecodeConfidence(t *testing.T) {
	c := qt.New(t)

	pixels, conf := decodeConfidence(0x0000)
	c.Assert(pixels, qt.Equals, uint8(0))
	c.Assert(conf, qt.Equals, uint16(0))

	pixels, conf = decodeConfidence(0x7FFF)
	c.Assert(pixels, qt.Equals, uint8(0x0F))
	c.Assert(conf, qt.Equals, uint16(0x7FF))

	// bit 15 is outside both fields
	pixels, conf = decodeConfidence(0x8000 | 0x0123<<4 | 0x9)
	c.Assert(pixels, qt.Equals, uint8(0x9))
	c.Assert(conf, qt.Equals, uint16(0x123))
}

func TestFieldSetPreservesSiblings(t *testing.T) {
	c := qt.New(t)

	c.Assert(configPeak.set(0x1234, 0xE), qt.Equals, uint16(0xE234))
	c.Assert(configThreshold.set(0x1234, 0x1), qt.Equals, uint16(0x1134))
	c.Assert(hw1Frequency.set(0x5008, 0x3), qt.Equals, uint16(0x3008))

	c.Assert(configPeak.get(0xE234), qt.Equals, uint16(0xE))
	c.Assert(configThreshold.get(0xE234), qt.Equals, uint16(0x2))

	// x is clipped to the field width
	c.Assert(configThreshold.set(0x0000, 0x1F), qt.Equals, uint16(0x0F00))
}

func TestRetry(t *testing.T) {
	c := qt.New(t)

	var slept []time.Duration
	sleep := func(d time.Duration) { slept = append(slept, d) }

	calls := 0
	ok, err := retry(9, 10*time.Millisecond, sleep, func() (bool, error) {
		calls++
		return false, nil
	})
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsFalse)
	c.Assert(calls, qt.Equals, 9)
	c.Assert(slept, qt.HasLen, 8)

	calls, slept = 0, nil
	ok, err = retry(9, 10*time.Millisecond, sleep, func() (bool, error) {
		calls++
		return calls == 3, nil
	})
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
	c.Assert(calls, qt.Equals, 3)
	c.Assert(slept, qt.HasLen, 2)

	boom := errors.New("boom")
	calls = 0
	_, err = retry(9, 0, sleep, func() (bool, error) {
		calls++
		return false, boom
	})
	c.Assert(err, qt.Equals, boom)
	c.Assert(calls, qt.Equals, 1)
}

func TestErrorCodes(t *testing.T) {
	c := qt.New(t)

	type coder interface{ Code() uint16 }

	var cd coder
	c.Assert(errors.As(ErrModeTimeout, &cd), qt.IsTrue)
	c.Assert(cd.Code(), qt.Equals, uint16(FailedTimeout))

	te := &TransportError{Op: "read16", Reg: RegResult, Err: errors.New("nack")}
	c.Assert(errors.As(error(te), &cd), qt.IsTrue)
	c.Assert(cd.Code(), qt.Equals, CodeTransport)
	c.Assert(te.Error(), qt.Equals, "rfd77402: read16 reg=0x08: nack")

	c.Assert(FailedNotNew.String(), qt.Equals, "failed-not-new")
	c.Assert(ModeOn.String(), qt.Equals, "on")
	c.Assert(CmdStandby, qt.Equals, uint8(0x90))
	c.Assert(CmdOff, qt.Equals, uint8(0x91))
	c.Assert(CmdOn, qt.Equals, uint8(0x92))
	c.Assert(CmdMeasure, qt.Equals, uint8(0x81))
}
