// internal/config/config.go
package config

type Config struct {
	Replicator ReplicatorConfig `yaml:"replicator"`
}

type ReplicatorConfig struct {
	StatusMemory StatusMemoryConfig `yaml:"status_memory"`
	Units        []UnitConfig       `yaml:"units"`
}

// StatusMemoryConfig routes every status block to one shared endpoint.
// When Endpoint is empty, status blocks go to each target's own endpoint.
type StatusMemoryConfig struct {
	Endpoint string `yaml:"endpoint"`
}

// ---- UNIT ----

type UnitConfig struct {
	ID      string         `yaml:"id"`
	Source  SourceConfig   `yaml:"source"`
	Sensor  SensorConfig   `yaml:"sensor"`
	Targets []TargetConfig `yaml:"targets"`
	Poll    PollConfig     `yaml:"poll"`
}

// ---- SOURCE ----

type SourceConfig struct {
	Backend      string `yaml:"backend"` // periph | smbus | tinygo | sim
	Bus          string `yaml:"bus"`
	Address      uint16 `yaml:"address"`
	SpeedHz      int64  `yaml:"speed_hz"`
	Calibrate    bool   `yaml:"calibrate"`
	InterruptPin bool   `yaml:"interrupt_pin"`
	TimeoutMs    int    `yaml:"timeout_ms"`

	// Device status block (optional, opt-in)
	StatusSlot *uint16 `yaml:"status_slot"`
	DeviceName string  `yaml:"device_name"`
}

// ---- SENSOR OVERRIDES ----

// SensorConfig overrides the vendor defaults applied by Initialize.
// Nil leaves the field untouched.
type SensorConfig struct {
	Peak      *uint8 `yaml:"peak"`
	Threshold *uint8 `yaml:"threshold"`
	Frequency *uint8 `yaml:"frequency"`
}

// ---- TARGET ----

type TargetConfig struct {
	ID           uint32         `yaml:"id"`
	Endpoint     string         `yaml:"endpoint"`
	Protocol     string         `yaml:"protocol"`       // modbus | ingest
	UnitID       uint8          `yaml:"unit_id"`        // data memory
	StatusUnitID *uint8         `yaml:"status_unit_id"` // per-target status memory (optional)
	Memories     []MemoryConfig `yaml:"memories"`
}

// MemoryConfig places one copy of the measurement block.
type MemoryConfig struct {
	Area   uint8  `yaml:"area"` // 3 holding registers, 4 input registers (ingest only)
	Offset uint16 `yaml:"offset"`
}

// ---- POLL ----

type PollConfig struct {
	IntervalMs int  `yaml:"interval_ms"`
	Recover    bool `yaml:"recover"`
}
