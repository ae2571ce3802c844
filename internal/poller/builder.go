// internal/poller/builder.go
package poller

import (
	"fmt"
	"time"

	"github.com/edaniels/golog"

	cfg "github.com/tamzrod/tof-replicator/internal/config"
	"github.com/tamzrod/tof-replicator/internal/rfd77402"
	"github.com/tamzrod/tof-replicator/internal/transport"
)

// Built is a ready poller plus what the orchestrator needs to know
// about the sensor behind it.
type Built struct {
	Poller *Poller
	ChipID uint16
	Close  func() error
}

// Build opens the unit's bus, brings the sensor up and wires a Poller.
// Config must already be validated and normalized.
// Initialization is attempted once; failure is returned (fail fast at startup).
func Build(u cfg.UnitConfig, logger golog.Logger) (*Built, error) {
	if logger == nil {
		logger = golog.Global()
	}
	log := logger.Named(u.ID)

	bus, err := transport.Open(transport.Config{
		Backend: u.Source.Backend,
		Bus:     u.Source.Bus,
		Address: u.Source.Address,
		SpeedHz: u.Source.SpeedHz,
	}, log)
	if err != nil {
		return nil, err
	}

	dev := rfd77402.New(bus, rfd77402.Config{
		Calibrate:    u.Source.Calibrate,
		InterruptPin: u.Source.InterruptPin,
		Logger:       log,
	})

	chipID, err := bringUp(dev, u.Sensor)
	if err != nil {
		_ = bus.Close()
		return nil, fmt.Errorf("poller: unit %s: %w", u.ID, err)
	}
	log.Infow("sensor ready", "chip_id", fmt.Sprintf("%#04x", chipID), "mode", dev.Mode().String())

	p, err := New(
		Config{
			UnitID:   u.ID,
			Interval: time.Duration(u.Poll.IntervalMs) * time.Millisecond,
			Recover:  u.Poll.Recover,
		},
		dev,
		log,
	)
	if err != nil {
		_ = bus.Close()
		return nil, err
	}

	return &Built{Poller: p, ChipID: chipID, Close: bus.Close}, nil
}

// bringUp initializes the device and applies sensor overrides.
func bringUp(dev *rfd77402.Device, s cfg.SensorConfig) (uint16, error) {
	if err := dev.Initialize(); err != nil {
		return 0, err
	}
	if s.Peak != nil {
		if err := dev.SetPeak(*s.Peak); err != nil {
			return 0, err
		}
	}
	if s.Threshold != nil {
		if err := dev.SetThreshold(*s.Threshold); err != nil {
			return 0, err
		}
	}
	if s.Frequency != nil {
		if err := dev.SetFrequency(*s.Frequency); err != nil {
			return 0, err
		}
	}
	return dev.ChipID()
}
