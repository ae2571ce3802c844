// internal/config/validate.go
package config

import (
	"fmt"

	"github.com/tamzrod/tof-replicator/internal/status"
)

// Protocols and register areas accepted by targets.
const (
	ProtocolModbus = "modbus"
	ProtocolIngest = "ingest"

	AreaHoldingRegisters uint8 = 3
	AreaInputRegisters   uint8 = 4
)

var backends = map[string]bool{
	"periph": true,
	"smbus":  true,
	"tinygo": true,
	"sim":    true,
}

const maxSpeedHz = 400000

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil config")
	}
	if len(cfg.Replicator.Units) == 0 {
		return fmt.Errorf("config: no units defined")
	}

	type span struct {
		start uint32
		end   uint32
		owner string
	}

	// ------------------------------------------------------------
	// UNIT / SOURCE / SENSOR
	// ------------------------------------------------------------

	seen := make(map[string]bool)
	for _, u := range cfg.Replicator.Units {
		if u.ID == "" {
			return fmt.Errorf("config: unit id required")
		}
		if seen[u.ID] {
			return fmt.Errorf("config: duplicate unit id %q", u.ID)
		}
		seen[u.ID] = true

		s := u.Source
		if !backends[s.Backend] {
			return fmt.Errorf("unit %q: unknown backend %q", u.ID, s.Backend)
		}
		if s.Address > 0x7F {
			return fmt.Errorf("unit %q: address %#x is not a 7-bit address", u.ID, s.Address)
		}
		if s.SpeedHz < 0 || s.SpeedHz > maxSpeedHz {
			return fmt.Errorf("unit %q: speed_hz %d out of range (max %d)", u.ID, s.SpeedHz, maxSpeedHz)
		}
		if s.TimeoutMs < 0 {
			return fmt.Errorf("unit %q: timeout_ms must be >= 0", u.ID)
		}
		if u.Poll.IntervalMs < 0 {
			return fmt.Errorf("unit %q: poll.interval_ms must be >= 0", u.ID)
		}

		for name, v := range map[string]*uint8{
			"peak":      u.Sensor.Peak,
			"threshold": u.Sensor.Threshold,
			"frequency": u.Sensor.Frequency,
		} {
			if v != nil && *v > 0x0F {
				return fmt.Errorf("unit %q: sensor.%s %d out of range (0-15)", u.ID, name, *v)
			}
		}

		// device_name sanity (ASCII only)
		for i := 0; i < len(s.DeviceName); i++ {
			if s.DeviceName[i] > 0x7F {
				return fmt.Errorf(
					"unit %q: device_name must contain ASCII characters only",
					u.ID,
				)
			}
		}
	}

	// ------------------------------------------------------------
	// TARGETS
	// ------------------------------------------------------------

	// one protocol per endpoint across all units
	protocols := make(map[string]string)

	for _, u := range cfg.Replicator.Units {
		for _, t := range u.Targets {
			if t.Endpoint == "" {
				return fmt.Errorf("unit %q: target %d has no endpoint", u.ID, t.ID)
			}
			proto := t.Protocol
			if proto == "" {
				proto = ProtocolModbus
			}
			if proto != ProtocolModbus && proto != ProtocolIngest {
				return fmt.Errorf("unit %q: target %q: unknown protocol %q", u.ID, t.Endpoint, t.Protocol)
			}
			if prev, ok := protocols[t.Endpoint]; ok && prev != proto {
				return fmt.Errorf("endpoint %s: declared as both %s and %s", t.Endpoint, prev, proto)
			}
			protocols[t.Endpoint] = proto

			for _, m := range t.Memories {
				switch m.Area {
				case 0, AreaHoldingRegisters:
				case AreaInputRegisters:
					if proto != ProtocolIngest {
						return fmt.Errorf(
							"unit %q: target %q: area %d is only writable over ingest",
							u.ID, t.Endpoint, m.Area,
						)
					}
				default:
					return fmt.Errorf("unit %q: target %q: unsupported area %d", u.ID, t.Endpoint, m.Area)
				}
			}
		}
	}

	// ------------------------------------------------------------
	// DEVICE STATUS BLOCK VALIDATION (PER-TARGET, OPT-IN)
	// ------------------------------------------------------------

	// key = endpoint | unit_id | area, shared with measurement blocks below
	spans := make(map[string][]span)

	claim := func(key, what string, start, end uint32) error {
		for _, s := range spans[key] {
			// overlap check (inclusive)
			if !(end < s.start || start > s.end) {
				return fmt.Errorf(
					"memory overlap: %s range=%d-%d overlaps with %s range=%d-%d (%s)",
					what, start, end, s.owner, s.start, s.end, key,
				)
			}
		}
		spans[key] = append(spans[key], span{start: start, end: end, owner: what})
		return nil
	}

	for _, u := range cfg.Replicator.Units {
		// status is opt-in
		if u.Source.StatusSlot == nil {
			continue
		}

		// status requires at least one target
		if len(u.Targets) == 0 {
			return fmt.Errorf(
				"unit %q: status_slot is set but no targets are defined",
				u.ID,
			)
		}

		slot := uint32(*u.Source.StatusSlot)
		start := slot * status.SlotsPerDevice
		end := start + status.SlotsPerDevice - 1
		if end > 0xFFFF {
			return fmt.Errorf("unit %q: status_slot %d exceeds register space", u.ID, slot)
		}

		// targets sharing one status endpoint and unit get one block
		own := make(map[string]bool)

		for _, t := range u.Targets {
			// each target must declare status_unit_id
			if t.StatusUnitID == nil {
				return fmt.Errorf(
					"unit %q: status_slot is set but target %q has no status_unit_id",
					u.ID,
					t.Endpoint,
				)
			}

			ep := StatusEndpoint(cfg, t)
			key := fmt.Sprintf("%s|%d|%d", ep, *t.StatusUnitID, AreaHoldingRegisters)
			if own[key] {
				continue
			}
			own[key] = true
			if err := claim(key, fmt.Sprintf("status of unit %q", u.ID), start, end); err != nil {
				return fmt.Errorf("status_slot collision: %w", err)
			}
		}
	}

	// ------------------------------------------------------------
	// DESTINATION MEMORY GEOMETRY VALIDATION
	// ------------------------------------------------------------

	for _, u := range cfg.Replicator.Units {
		for _, t := range u.Targets {
			for _, m := range t.Memories {
				area := m.Area
				if area == 0 {
					area = AreaHoldingRegisters
				}
				start := uint32(m.Offset)
				end := start + status.MeasurementRegs - 1
				if end > 0xFFFF {
					return fmt.Errorf("unit %q: target %q: offset %d exceeds register space", u.ID, t.Endpoint, m.Offset)
				}

				key := fmt.Sprintf("%s|%d|%d", t.Endpoint, t.UnitID, area)
				if err := claim(key, fmt.Sprintf("measurement of unit %q", u.ID), start, end); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// StatusEndpoint returns where a target's status block is written.
func StatusEndpoint(cfg *Config, t TargetConfig) string {
	if cfg.Replicator.StatusMemory.Endpoint != "" {
		return cfg.Replicator.StatusMemory.Endpoint
	}
	return t.Endpoint
}
