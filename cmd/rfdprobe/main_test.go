// cmd/rfdprobe/main_test.go
package main

import (
	"testing"
	"time"

	"github.com/edaniels/golog"
	qt "github.com/frankban/quicktest"

	"github.com/tamzrod/tof-replicator/internal/rfd77402"
	"github.com/tamzrod/tof-replicator/internal/rfd77402/rfdsim"
)

func simDevice(t *testing.T, results ...rfdsim.Result) (*rfd77402.Device, *rfdsim.Chip) {
	chip := rfdsim.New()
	chip.Results = results
	dev := rfd77402.New(chip, rfd77402.Config{
		Sleep:  func(time.Duration) {},
		Logger: golog.NewTestLogger(t),
	})
	return dev, chip
}

// afterFirstMeasure returns the commands following the first measure command.
func afterFirstMeasure(c *qt.C, cmds []uint8) []uint8 {
	for i, cmd := range cmds {
		if cmd == rfd77402.CmdMeasure {
			return cmds[i+1:]
		}
	}
	c.Fatalf("no measure command in %x", cmds)
	return nil
}

func TestProbeFailedCodeTurnsChipOffAndRestarts(t *testing.T) {
	c := qt.New(t)

	dev, chip := simDevice(t,
		rfdsim.Encode(rfd77402.FailedPixels, 2, 0, 0),
		rfdsim.Encode(rfd77402.Valid, 400, 0x0F, 0x100),
	)

	c.Assert(probe(dev, 2, 0), qt.IsNil)

	c.Assert(afterFirstMeasure(c, chip.Commands()), qt.DeepEquals, []uint8{
		rfd77402.CmdOff,
		rfd77402.CmdOff, rfd77402.CmdOn, // restart
		rfd77402.CmdMeasure,
	})
	c.Assert(dev.Measurement().Distance, qt.Equals, uint16(400))
}

func TestProbeFailedLastCodeLeavesChipOff(t *testing.T) {
	c := qt.New(t)

	dev, chip := simDevice(t, rfdsim.Encode(rfd77402.FailedSignal, 0, 0, 0))

	c.Assert(probe(dev, 1, 0), qt.IsNil)

	c.Assert(afterFirstMeasure(c, chip.Commands()), qt.DeepEquals, []uint8{rfd77402.CmdOff})
	c.Assert(dev.Mode(), qt.Equals, rfd77402.ModeOff)
}

func TestProbeValidRunStaysOn(t *testing.T) {
	c := qt.New(t)

	dev, chip := simDevice(t,
		rfdsim.Encode(rfd77402.Valid, 100, 0x0F, 0x200),
		rfdsim.Encode(rfd77402.Valid, 120, 0x0F, 0x200),
	)

	c.Assert(probe(dev, 2, 0), qt.IsNil)

	c.Assert(afterFirstMeasure(c, chip.Commands()), qt.DeepEquals, []uint8{rfd77402.CmdMeasure})
	c.Assert(dev.Measurement().Distance, qt.Equals, uint16(120))
}
