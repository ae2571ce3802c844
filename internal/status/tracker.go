// internal/status/tracker.go
package status

import (
	"errors"

	"github.com/tamzrod/tof-replicator/internal/rfd77402"
)

// GenericErrorCode is reported for errors that carry no code of their own.
const GenericErrorCode uint16 = 1

// Tracker owns the status snapshot of one unit.
// It is driven by one goroutine: Observe per poll result, Tick at 1 Hz.
type Tracker struct {
	snap Snapshot
}

// NewTracker starts in HealthUnknown with the chip id already known.
func NewTracker(chipID uint16) *Tracker {
	return &Tracker{snap: Snapshot{
		Health: HealthUnknown,
		ChipID: chipID,
	}}
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() Snapshot { return t.snap }

// Observe folds one poll outcome into the snapshot and reports whether
// anything changed.
//
//   - err != nil            -> HealthError, code from ErrorCode(err)
//   - Valid                 -> HealthOK, code and seconds cleared
//   - FailedNotNew          -> HealthStale, code 0x04
//   - any other failed code -> HealthError, the measurement code
func (t *Tracker) Observe(err error, code rfd77402.ErrorCode, mode rfd77402.Mode) bool {
	next := t.snap
	next.Mode = uint16(mode)

	switch {
	case err != nil:
		next.Health = HealthError
		next.LastErrorCode = ErrorCode(err)
	case code == rfd77402.Valid:
		next.Health = HealthOK
		next.LastErrorCode = 0
		next.SecondsInError = 0
	case code == rfd77402.FailedNotNew:
		next.Health = HealthStale
		next.LastErrorCode = code.Code()
	default:
		next.Health = HealthError
		next.LastErrorCode = code.Code()
	}

	// seconds_in_error increments on the 1Hz ticker only
	changed := next != t.snap
	t.snap = next
	return changed
}

// Tick advances seconds_in_error while the unit is not OK.
// The counter saturates instead of wrapping.
func (t *Tracker) Tick() bool {
	if t.snap.Health == HealthOK {
		return false
	}
	if t.snap.SecondsInError >= MaxSecondsInError {
		return false
	}
	t.snap.SecondsInError++
	return true
}

// ErrorCode extracts a best-effort uint16 code from an error without assuming concrete types.
// If the error does not expose a code, returns GenericErrorCode.
func ErrorCode(err error) uint16 {
	if err == nil {
		return 0
	}

	type coderA interface{ Code() uint16 }
	type coderB interface{ ErrorCode() uint16 }

	var a coderA
	if errors.As(err, &a) {
		return a.Code()
	}
	var b coderB
	if errors.As(err, &b) {
		return b.ErrorCode()
	}

	return GenericErrorCode
}
