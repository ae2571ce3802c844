// internal/writer/types.go
package writer

import "github.com/tamzrod/tof-replicator/internal/poller"

// MemoryDest is one placement of the measurement block inside a unit's memory.
type MemoryDest struct {
	Area   byte   // 3 holding registers, 4 input registers
	Offset uint16 // first register of the block
}

// TargetEndpoint is one target endpoint (TCP) with one or more memory destinations.
type TargetEndpoint struct {
	TargetID uint32
	Endpoint string
	UnitID   uint8
	Memories []MemoryDest
}

// StatusDest is one copy of the device status block.
type StatusDest struct {
	Endpoint string
	UnitID   uint8
}

// StatusPlan places the device status block. Nil in Plan means disabled.
type StatusPlan struct {
	Dests      []StatusDest
	BaseSlot   uint16
	DeviceName string
}

// Plan is the fully-built write plan for one unit.
type Plan struct {
	UnitID  string
	Targets []TargetEndpoint
	Status  *StatusPlan
}

// Writer writes poll results into targets.
type Writer interface {
	Write(res poller.PollResult) error
}

// endpointClient is the exact contract the writers use.
// Both the Modbus and the Raw Ingest clients satisfy it.
type endpointClient interface {
	WriteRegisters(area byte, unitID uint8, addr uint16, regs []uint16) error
}
