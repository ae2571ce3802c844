// internal/writer/status_writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/tof-replicator/internal/status"
)

// StatusWriter is the delivery-only contract for device status.
// It receives a snapshot and writes it verbatim.
// No logic, no interpretation.
type StatusWriter interface {
	WriteStatus(s status.Snapshot) error
}

// deviceStatusWriter writes one copy of the status block.
type deviceStatusWriter struct {
	dest     StatusDest
	baseSlot uint16
	cli      endpointClient

	needFull bool
	last     status.Snapshot
	nameRegs []uint16
}

// statusFanout delivers the same snapshot to every destination.
type statusFanout []*deviceStatusWriter

const statusAreaHoldingRegisters byte = 3

// NewDeviceStatusWriter builds a status writer if status is enabled for the unit.
// If plan.Status is nil, status is disabled.
func NewDeviceStatusWriter(plan Plan, clients map[string]endpointClient) (StatusWriter, bool) {
	if plan.Status == nil || len(plan.Status.Dests) == 0 {
		return nil, false
	}

	sp := plan.Status
	nameRegs := status.EncodeName(sp.DeviceName)

	out := make(statusFanout, 0, len(sp.Dests))
	for _, d := range sp.Dests {
		out = append(out, &deviceStatusWriter{
			dest:     d,
			baseSlot: sp.BaseSlot,
			cli:      clients[d.Endpoint],
			needFull: true, // full re-assert on first successful write
			last:     status.Snapshot{Health: status.HealthUnknown},
			nameRegs: nameRegs,
		})
	}
	return out, true
}

func (f statusFanout) WriteStatus(s status.Snapshot) error {
	var errs []string
	for _, sw := range f {
		if err := sw.WriteStatus(s); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, " | "))
	}
	return nil
}

// WriteStatus delivers a device status snapshot into status memory.
// On any write failure, the next successful call will re-assert the full block.
func (sw *deviceStatusWriter) WriteStatus(s status.Snapshot) error {
	if sw.cli == nil {
		return fmt.Errorf("status writer: missing client for endpoint %s", sw.dest.Endpoint)
	}

	baseAddr := sw.baseAddr()
	unitID := sw.dest.UnitID

	// ------------------------------------------------------------
	// Full block write (identity re-assert)
	// ------------------------------------------------------------
	if sw.needFull {
		if err := sw.cli.WriteRegisters(
			statusAreaHoldingRegisters,
			unitID,
			baseAddr,
			sw.fullBlockRegs(s),
		); err != nil {
			sw.needFull = true
			return fmt.Errorf("status writer: ep=%s full block write failed: %w", sw.dest.Endpoint, err)
		}

		sw.needFull = false
		sw.last = s
		return nil
	}

	// ------------------------------------------------------------
	// Incremental: only slots whose value changed
	// ------------------------------------------------------------
	prev := status.Encode(sw.last)
	next := status.Encode(s)

	var errs []string
	for slot := status.SlotHealthCode; slot < status.SlotReservedStart; slot++ {
		if prev[slot] == next[slot] {
			continue
		}
		if err := sw.cli.WriteRegisters(
			statusAreaHoldingRegisters,
			unitID,
			baseAddr+uint16(slot),
			[]uint16{next[slot]},
		); err != nil {
			errs = append(errs, fmt.Sprintf("slot%d write failed: %v", slot, err))
		}
	}

	if len(errs) > 0 {
		// Any partial failure introduces doubt: re-assert on next success.
		sw.needFull = true
		return fmt.Errorf("status writer: ep=%s %s", sw.dest.Endpoint, strings.Join(errs, " | "))
	}

	sw.last = s
	return nil
}

func (sw *deviceStatusWriter) baseAddr() uint16 {
	// Each device owns a fixed SlotsPerDevice block.
	return sw.baseSlot * status.SlotsPerDevice
}

func (sw *deviceStatusWriter) fullBlockRegs(s status.Snapshot) []uint16 {
	regs := status.Encode(s)

	// Reserved slots are left as zero.
	// Device name always lives at the end of the block.
	copy(regs[status.SlotDeviceNameStart:status.SlotDeviceNameEnd+1], sw.nameRegs)

	return regs
}
