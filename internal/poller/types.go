// internal/poller/types.go
package poller

import (
	"time"

	"github.com/tamzrod/tof-replicator/internal/rfd77402"
)

// PollResult is a snapshot produced by one poll cycle.
type PollResult struct {
	UnitID string
	At     time.Time

	// Seq counts valid measurements. It only moves when Measurement is fresh.
	Seq uint16

	// Code is the measurement code of this cycle.
	Code rfd77402.ErrorCode

	// Measurement is the last valid reading. It is stale unless Code is Valid.
	Measurement rfd77402.Measurement

	// Mode is the mode the sensor confirmed last.
	Mode rfd77402.Mode

	// Recovered is set when a failed code triggered a sensor restart.
	Recovered bool

	Err error // non-nil means the bus or recovery failed
}

// Fresh reports whether the cycle produced a new valid reading.
func (r PollResult) Fresh() bool {
	return r.Err == nil && r.Code == rfd77402.Valid
}
