// internal/config/normalize.go
package config

import "github.com/tamzrod/tof-replicator/internal/rfd77402"

// Defaults applied by Normalize.
const (
	DefaultIntervalMs = 1000
	DefaultTimeoutMs  = 2000
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	for ui := range cfg.Replicator.Units {
		u := &cfg.Replicator.Units[ui]

		// ------------------------------------------------------------
		// SOURCE DEFAULTS
		// ------------------------------------------------------------

		if u.Source.Address == 0 {
			u.Source.Address = rfd77402.Address
		}
		if u.Source.SpeedHz == 0 {
			u.Source.SpeedHz = rfd77402.SpeedStandard
		}
		if u.Source.TimeoutMs == 0 {
			u.Source.TimeoutMs = DefaultTimeoutMs
		}
		if u.Poll.IntervalMs == 0 {
			u.Poll.IntervalMs = DefaultIntervalMs
		}

		// ------------------------------------------------------------
		// TARGET DEFAULTS
		// ------------------------------------------------------------

		for ti := range u.Targets {
			t := &u.Targets[ti]
			if t.Protocol == "" {
				t.Protocol = ProtocolModbus
			}
			for mi := range t.Memories {
				if t.Memories[mi].Area == 0 {
					t.Memories[mi].Area = AreaHoldingRegisters
				}
			}
		}

		// ------------------------------------------------------------
		// DEVICE STATUS BLOCK NORMALIZATION (OPT-IN)
		// ------------------------------------------------------------

		// Skip units that did not opt in
		if u.Source.StatusSlot == nil {
			continue
		}

		// Normalize device_name:
		// - ASCII already validated
		// - Truncate to max 16 characters
		if len(u.Source.DeviceName) > 16 {
			u.Source.DeviceName = u.Source.DeviceName[:16]
		}
	}
}
