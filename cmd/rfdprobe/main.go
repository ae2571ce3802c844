// cmd/rfdprobe/main.go

// rfdprobe brings one RFD77402 up and prints what it reports.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/edaniels/golog"

	"github.com/tamzrod/tof-replicator/internal/rfd77402"
	"github.com/tamzrod/tof-replicator/internal/transport"
)

func main() {
	var (
		backend   = flag.String("backend", transport.Periph, "bus backend: periph | smbus | tinygo | sim")
		bus       = flag.String("bus", "", "bus name (periph) or number (smbus)")
		addr      = flag.Uint("addr", rfd77402.Address, "7-bit device address")
		speed     = flag.Int64("speed", rfd77402.SpeedStandard, "bus speed in Hz")
		n         = flag.Int("n", 10, "measurements to take")
		interval  = flag.Duration("interval", 100*time.Millisecond, "pause between measurements")
		calibrate = flag.Bool("calibrate", false, "read the calibration payload during init")
		debug     = flag.Bool("debug", false, "development logging")
	)
	flag.Parse()

	logger := golog.NewLogger("rfdprobe")
	if *debug {
		logger = golog.NewDevelopmentLogger("rfdprobe")
	}

	if *addr > 0x7F {
		logger.Fatalw("address is not 7-bit", "addr", *addr)
	}

	b, err := transport.Open(transport.Config{
		Backend: *backend,
		Bus:     *bus,
		Address: uint16(*addr),
		SpeedHz: *speed,
	}, logger)
	if err != nil {
		logger.Fatalw("open failed", "error", err)
	}
	defer b.Close()

	dev := rfd77402.New(b, rfd77402.Config{Calibrate: *calibrate, Logger: logger})
	if err := probe(dev, *n, *interval); err != nil {
		logger.Errorw("probe failed", "error", err)
		_ = dev.GotoOff()
		b.Close()
		os.Exit(1)
	}
}

func probe(dev *rfd77402.Device, n int, interval time.Duration) error {
	if err := dev.Initialize(); err != nil {
		return err
	}

	id, err := dev.ChipID()
	if err != nil {
		return err
	}
	peak, err := dev.Peak()
	if err != nil {
		return err
	}
	threshold, err := dev.Threshold()
	if err != nil {
		return err
	}
	freq, err := dev.Frequency()
	if err != nil {
		return err
	}

	fmt.Printf("chip id    %#04x\n", id)
	fmt.Printf("mode       %s\n", dev.Mode())
	fmt.Printf("peak       %#x\n", peak)
	fmt.Printf("threshold  %#x\n", threshold)
	fmt.Printf("frequency  %#x\n", freq)

	if cal, ok := dev.Calibration(); ok {
		fmt.Printf("calibration % x\n", cal[:])
	}

	for i := 0; i < n; i++ {
		if i > 0 {
			time.Sleep(interval)
		}
		code, err := dev.TakeMeasurement()
		if err != nil {
			return err
		}
		if code != rfd77402.Valid {
			fmt.Printf("%3d  %s\n", i, code)
			if err := dev.GotoOff(); err != nil {
				return err
			}
			if i < n-1 {
				if err := dev.Restart(); err != nil {
					return err
				}
			}
			continue
		}
		m := dev.Measurement()
		fmt.Printf("%3d  %5d mm  pixels=%2d  confidence=%4d\n", i, m.Distance, m.ValidPixels, m.Confidence)
	}
	return nil
}
