// internal/poller/poller.go
package poller

import (
	"errors"
	"fmt"
	"time"

	"github.com/edaniels/golog"

	"github.com/tamzrod/tof-replicator/internal/rfd77402"
)

// Sensor abstracts the driver operations needed by the poller.
// *rfd77402.Device satisfies it.
type Sensor interface {
	TakeMeasurement() (rfd77402.ErrorCode, error)
	Measurement() rfd77402.Measurement
	Mode() rfd77402.Mode
	Restart() error
}

// Config is the minimal runtime config the poller needs.
type Config struct {
	UnitID   string
	Interval time.Duration

	// Recover restarts the sensor after a failed measurement code.
	// FailedNotNew is not a failure of the sensor and never triggers it.
	Recover bool
}

// Poller is a dumb, clock-driven reader.
type Poller struct {
	cfg    Config
	sensor Sensor
	log    golog.Logger

	seq uint16
}

// New creates a poller with immutable config.
func New(cfg Config, sensor Sensor, logger golog.Logger) (*Poller, error) {
	if cfg.UnitID == "" {
		return nil, errors.New("poller: unit id required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if sensor == nil {
		return nil, errors.New("poller: sensor required")
	}
	if logger == nil {
		logger = golog.Global()
	}
	return &Poller{cfg: cfg, sensor: sensor, log: logger}, nil
}

// PollOnce performs exactly one measurement cycle.
func (p *Poller) PollOnce() PollResult {
	res := PollResult{
		UnitID: p.cfg.UnitID,
		At:     time.Now(),
	}

	code, err := p.sensor.TakeMeasurement()
	res.Code = code
	if err != nil {
		res.Err = fmt.Errorf("poller: unit %s: %w", p.cfg.UnitID, err)
		return p.finish(res)
	}

	if code == rfd77402.Valid {
		p.seq++
	} else if p.cfg.Recover && code != rfd77402.FailedNotNew {
		p.log.Debugw("restarting sensor", "code", code.String())
		res.Recovered = true
		if err := p.sensor.Restart(); err != nil {
			res.Err = fmt.Errorf("poller: unit %s: recover after %s: %w", p.cfg.UnitID, code, err)
		}
	}

	return p.finish(res)
}

func (p *Poller) finish(res PollResult) PollResult {
	res.Seq = p.seq
	res.Measurement = p.sensor.Measurement()
	res.Mode = p.sensor.Mode()
	return res
}
