// internal/writer/builder.go
package writer

import (
	"errors"
	"fmt"
	"time"

	cfg "github.com/tamzrod/tof-replicator/internal/config"
	wingest "github.com/tamzrod/tof-replicator/internal/writer/ingest"
	wmodbus "github.com/tamzrod/tof-replicator/internal/writer/modbus"
)

// BuildPlan converts one unit config into a Writer Plan.
// Assumes config has already passed validation and normalization.
func BuildPlan(c *cfg.Config, u cfg.UnitConfig) (Plan, error) {
	if u.ID == "" {
		return Plan{}, errors.New("writer: unit.id required")
	}

	plan := Plan{UnitID: u.ID}

	for _, t := range u.Targets {
		ep := TargetEndpoint{
			TargetID: t.ID,
			Endpoint: t.Endpoint,
			UnitID:   t.UnitID,
		}

		for _, m := range t.Memories {
			ep.Memories = append(ep.Memories, MemoryDest{
				Area:   m.Area,
				Offset: m.Offset,
			})
		}

		plan.Targets = append(plan.Targets, ep)
	}

	if u.Source.StatusSlot != nil {
		sp := &StatusPlan{
			BaseSlot:   *u.Source.StatusSlot,
			DeviceName: u.Source.DeviceName,
		}
		for _, t := range u.Targets {
			if t.StatusUnitID == nil {
				return Plan{}, fmt.Errorf("writer: unit %s: target %s has no status_unit_id", u.ID, t.Endpoint)
			}
			d := StatusDest{
				Endpoint: cfg.StatusEndpoint(c, t),
				UnitID:   *t.StatusUnitID,
			}
			if !containsDest(sp.Dests, d) {
				sp.Dests = append(sp.Dests, d)
			}
		}
		plan.Status = sp
	}

	return plan, nil
}

func containsDest(dests []StatusDest, d StatusDest) bool {
	for _, x := range dests {
		if x == d {
			return true
		}
	}
	return false
}

// closer is what every endpoint client adds to endpointClient.
type closer interface {
	endpointClient
	Close() error
}

// BuildEndpointClients creates one client per unique endpoint the plan touches.
// The protocol comes from the targets naming the endpoint; a status-only
// endpoint uses Modbus.
func BuildEndpointClients(u cfg.UnitConfig, plan Plan) (map[string]endpointClient, func() error, error) {
	timeout := time.Duration(u.Source.TimeoutMs) * time.Millisecond

	protocols := map[string]string{}
	for _, t := range u.Targets {
		protocols[t.Endpoint] = t.Protocol
	}
	if plan.Status != nil {
		for _, d := range plan.Status.Dests {
			if _, ok := protocols[d.Endpoint]; !ok {
				protocols[d.Endpoint] = cfg.ProtocolModbus
			}
		}
	}

	clients := make(map[string]endpointClient)
	var closers []func() error

	closeAll := func() error {
		var last error
		for _, fn := range closers {
			if err := fn(); err != nil {
				last = err
			}
		}
		return last
	}

	for endpoint, proto := range protocols {
		var (
			c   closer
			err error
		)
		switch proto {
		case cfg.ProtocolIngest:
			c, err = wingest.NewEndpointClient(wingest.Config{
				Endpoint: endpoint,
				Timeout:  timeout,
			})
		case cfg.ProtocolModbus, "":
			c, err = wmodbus.NewEndpointClient(wmodbus.Config{
				Endpoint: endpoint,
				Timeout:  timeout,
			})
		default:
			err = fmt.Errorf("writer: unknown protocol %q", proto)
		}
		if err != nil {
			_ = closeAll()
			return nil, nil, fmt.Errorf("writer: endpoint %s: %w", endpoint, err)
		}
		clients[endpoint] = c
		closers = append(closers, c.Close)
	}

	return clients, closeAll, nil
}
