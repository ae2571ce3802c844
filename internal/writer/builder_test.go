// internal/writer/builder_test.go
package writer

import (
	"testing"

	cfg "github.com/tamzrod/tof-replicator/internal/config"
)

func u8(v uint8) *uint8    { return &v }
func u16(v uint16) *uint16 { return &v }

func unitWithStatus() cfg.UnitConfig {
	return cfg.UnitConfig{
		ID: "tof-1",
		Source: cfg.SourceConfig{
			Backend:    "sim",
			StatusSlot: u16(3),
			DeviceName: "TOF-A",
		},
		Targets: []cfg.TargetConfig{
			{
				ID:           1,
				Endpoint:     "ep1",
				UnitID:       7,
				StatusUnitID: u8(9),
				Memories:     []cfg.MemoryConfig{{Area: 3, Offset: 100}, {Area: 3, Offset: 200}},
			},
			{
				ID:           2,
				Endpoint:     "ep2",
				UnitID:       1,
				StatusUnitID: u8(9),
				Memories:     []cfg.MemoryConfig{{Area: 3, Offset: 0}},
			},
		},
	}
}

func TestBuildPlan_Targets(t *testing.T) {
	u := unitWithStatus()

	plan, err := BuildPlan(&cfg.Config{}, u)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if plan.UnitID != "tof-1" || len(plan.Targets) != 2 {
		t.Fatalf("plan: %+v", plan)
	}
	if plan.Targets[0].UnitID != 7 || len(plan.Targets[0].Memories) != 2 || plan.Targets[0].Memories[1].Offset != 200 {
		t.Fatalf("target 1: %+v", plan.Targets[0])
	}

	if plan.Status == nil {
		t.Fatal("status should be enabled")
	}
	if plan.Status.BaseSlot != 3 || plan.Status.DeviceName != "TOF-A" {
		t.Fatalf("status plan: %+v", plan.Status)
	}
	if len(plan.Status.Dests) != 2 || plan.Status.Dests[0].Endpoint != "ep1" || plan.Status.Dests[1].Endpoint != "ep2" {
		t.Fatalf("status dests: %+v", plan.Status.Dests)
	}
}

func TestBuildPlan_StatusMemoryOverride(t *testing.T) {
	c := &cfg.Config{}
	c.Replicator.StatusMemory.Endpoint = "status:502"

	plan, err := BuildPlan(c, unitWithStatus())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// both targets route to the same block
	if len(plan.Status.Dests) != 1 {
		t.Fatalf("expected one shared dest, got %+v", plan.Status.Dests)
	}
	if d := plan.Status.Dests[0]; d.Endpoint != "status:502" || d.UnitID != 9 {
		t.Fatalf("dest: %+v", d)
	}
}

func TestBuildPlan_StatusDisabled(t *testing.T) {
	u := unitWithStatus()
	u.Source.StatusSlot = nil

	plan, err := BuildPlan(&cfg.Config{}, u)
	if err != nil {
		t.Fatal(err)
	}
	if plan.Status != nil {
		t.Fatal("status should be disabled")
	}
}

func TestBuildPlan_MissingStatusUnitID(t *testing.T) {
	u := unitWithStatus()
	u.Targets[1].StatusUnitID = nil

	if _, err := BuildPlan(&cfg.Config{}, u); err == nil {
		t.Fatal("expected error")
	}
}

func TestBuildEndpointClients_Ingest(t *testing.T) {
	u := cfg.UnitConfig{
		ID: "tof-1",
		Targets: []cfg.TargetConfig{
			{Endpoint: "127.0.0.1:9000", Protocol: cfg.ProtocolIngest},
		},
	}
	plan, err := BuildPlan(&cfg.Config{}, u)
	if err != nil {
		t.Fatal(err)
	}

	// ingest clients dial per write, so no listener is needed here
	clients, closeAll, err := BuildEndpointClients(u, plan)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closeAll()

	if _, ok := clients["127.0.0.1:9000"]; !ok || len(clients) != 1 {
		t.Fatalf("clients: %v", clients)
	}
}
