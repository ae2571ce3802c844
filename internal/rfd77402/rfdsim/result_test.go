// internal/rfd77402/rfdsim/result_test.go
package rfdsim

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/tamzrod/tof-replicator/internal/rfd77402"
)

func TestSweepBounces(t *testing.T) {
	c := qt.New(t)

	next := Sweep(100, 120, 10)
	var got []Result
	for i := 0; i < 6; i++ {
		got = append(got, next())
	}

	var want []Result
	for _, d := range []uint16{100, 110, 120, 110, 100, 110} {
		want = append(want, Encode(rfd77402.Valid, d, 0x0F, 0x7FF-(d>>1)))
	}
	c.Assert(got, qt.DeepEquals, want)
}

func TestEncodeZeroIsNotStale(t *testing.T) {
	c := qt.New(t)

	r := Encode(rfd77402.Valid, 0, 0, 0)
	c.Assert(r.Raw, qt.Equals, uint16(0x0001))

	r = Encode(rfd77402.FailedSignal, 0x7FF, 0x0F, 0x7FF)
	c.Assert(r.Raw, qt.Equals, uint16(0x5FFC))
	c.Assert(r.Confidence, qt.Equals, uint16(0x7FFF))
}
