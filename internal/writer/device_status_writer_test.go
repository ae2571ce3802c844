// internal/writer/device_status_writer_test.go
package writer

import (
	"errors"
	"testing"

	"github.com/tamzrod/tof-replicator/internal/status"
)

func statusPlan(dests ...StatusDest) Plan {
	return Plan{
		Status: &StatusPlan{
			Dests:      dests,
			BaseSlot:   2,
			DeviceName: "DEV-01",
		},
	}
}

func TestDeviceNameWrittenOnFullAssertOnly(t *testing.T) {
	cli := &fakeEndpointClient{}

	plan := statusPlan(StatusDest{Endpoint: "status-endpoint", UnitID: 1})
	clients := map[string]endpointClient{
		"status-endpoint": cli,
	}

	sw, enabled := NewDeviceStatusWriter(plan, clients)
	if !enabled {
		t.Fatalf("status writer should be enabled")
	}

	// ---- first write: FULL ASSERT ----
	first := status.Snapshot{
		Health: status.HealthOK,
		Mode:   0x12,
		ChipID: 0xAD01,
	}

	if err := sw.WriteStatus(first); err != nil {
		t.Fatalf("initial full assert failed: %v", err)
	}

	// Expect full block
	if len(cli.lastRegs) != status.SlotsPerDevice {
		t.Fatalf(
			"expected full block write (%d regs), got %d",
			status.SlotsPerDevice,
			len(cli.lastRegs),
		)
	}
	if cli.lastRegsAddr != 2*status.SlotsPerDevice {
		t.Fatalf("full block addr: got %d", cli.lastRegsAddr)
	}
	if cli.lastRegs[status.SlotChipID] != 0xAD01 || cli.lastRegs[status.SlotMode] != 0x12 {
		t.Fatalf("identity slots: %v", cli.lastRegs)
	}

	// Verify device name encoding EXACTLY
	expectedNameRegs := status.EncodeName(plan.Status.DeviceName)

	for i := 0; i < status.SlotDeviceNameSlots; i++ {
		slot := status.SlotDeviceNameStart + i
		if cli.lastRegs[slot] != expectedNameRegs[i] {
			t.Fatalf(
				"device name slot %d mismatch: got=%d want=%d",
				slot,
				cli.lastRegs[slot],
				expectedNameRegs[i],
			)
		}
	}

	// ---- second write: INCREMENTAL ONLY ----
	second := first
	second.Health = status.HealthError
	second.LastErrorCode = 7
	second.SecondsInError = 1

	cli.writes = nil
	if err := sw.WriteStatus(second); err != nil {
		t.Fatalf("incremental write failed: %v", err)
	}

	// Incremental update must NOT re-write full block
	if len(cli.writes) != 3 {
		t.Fatalf("expected 3 single-slot writes, got %d", len(cli.writes))
	}
	for _, w := range cli.writes {
		if len(w.regs) != 1 {
			t.Fatalf("device name should not be rewritten on incremental update")
		}
	}
}

func TestSecondsInErrorResetOnRecovery(t *testing.T) {
	cli := &fakeEndpointClient{}

	plan := statusPlan(StatusDest{Endpoint: "status-endpoint", UnitID: 1})
	clients := map[string]endpointClient{
		"status-endpoint": cli,
	}

	sw, enabled := NewDeviceStatusWriter(plan, clients)
	if !enabled {
		t.Fatalf("status writer should be enabled")
	}

	// simulate ERROR
	errSnap := status.Snapshot{
		Health:         status.HealthError,
		LastErrorCode:  42,
		SecondsInError: 3,
	}

	if err := sw.WriteStatus(errSnap); err != nil {
		t.Fatalf("error snapshot write failed: %v", err)
	}

	// simulate recovery
	okSnap := status.Snapshot{
		Health: status.HealthOK,
	}

	if err := sw.WriteStatus(okSnap); err != nil {
		t.Fatalf("recovery snapshot write failed: %v", err)
	}

	expectedAddr := plan.Status.BaseSlot*status.SlotsPerDevice + status.SlotSecondsInError

	if cli.lastRegsAddr != expectedAddr {
		t.Fatalf("unexpected write addr: got=%d want=%d", cli.lastRegsAddr, expectedAddr)
	}

	if len(cli.lastRegs) != 1 {
		t.Fatalf("expected 1 register write, got %d", len(cli.lastRegs))
	}

	if cli.lastRegs[0] != 0 {
		t.Fatalf("seconds_in_error not reset: got=%d want=0", cli.lastRegs[0])
	}
}

func TestFailedIncrementalForcesFullAssert(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw, _ := NewDeviceStatusWriter(statusPlan(StatusDest{Endpoint: "ep", UnitID: 1}), map[string]endpointClient{"ep": cli})

	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthOK}); err != nil {
		t.Fatal(err)
	}

	cli.fail = errors.New("timeout")
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthError}); err == nil {
		t.Fatal("expected error")
	}

	cli.fail = nil
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthError, SecondsInError: 1}); err != nil {
		t.Fatal(err)
	}
	if len(cli.lastRegs) != status.SlotsPerDevice {
		t.Fatalf("expected full re-assert after failure, got %d regs", len(cli.lastRegs))
	}
}

func TestStatusFanout(t *testing.T) {
	a := &fakeEndpointClient{}
	b := &fakeEndpointClient{}

	plan := statusPlan(
		StatusDest{Endpoint: "a", UnitID: 1},
		StatusDest{Endpoint: "b", UnitID: 9},
	)
	sw, enabled := NewDeviceStatusWriter(plan, map[string]endpointClient{"a": a, "b": b})
	if !enabled {
		t.Fatal("expected enabled")
	}

	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthOK}); err != nil {
		t.Fatal(err)
	}
	if len(a.writes) != 1 || len(b.writes) != 1 {
		t.Fatalf("writes: a=%d b=%d", len(a.writes), len(b.writes))
	}
	if b.writes[0].unitID != 9 {
		t.Fatalf("unit id: got %d", b.writes[0].unitID)
	}
}

func TestStatusDisabled(t *testing.T) {
	if _, enabled := NewDeviceStatusWriter(Plan{}, nil); enabled {
		t.Fatal("nil status plan must disable the writer")
	}
}
