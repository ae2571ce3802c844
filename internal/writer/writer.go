// internal/writer/writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/tof-replicator/internal/poller"
	"github.com/tamzrod/tof-replicator/internal/rfd77402"
	"github.com/tamzrod/tof-replicator/internal/status"
)

type writerImpl struct {
	plan    Plan
	clients map[string]endpointClient
}

// New returns the measurement writer for one unit.
func New(plan Plan, clients map[string]endpointClient) Writer {
	return &writerImpl{
		plan:    plan,
		clients: clients,
	}
}

// Write delivers one poll result to every memory destination.
//
// A fresh reading rewrites the whole measurement block. A failed code only
// rewrites the code register so the last valid reading stays in place.
// A failed poll (bus error) writes nothing; status reports it.
func (w *writerImpl) Write(res poller.PollResult) error {
	if res.Err != nil {
		return nil
	}

	var (
		regs []uint16
		rel  uint16
	)
	if res.Code == rfd77402.Valid {
		regs = status.EncodeMeasurement(status.Measurement{
			Distance:    res.Measurement.Distance,
			ValidPixels: uint16(res.Measurement.ValidPixels),
			Confidence:  res.Measurement.Confidence,
			Code:        res.Code.Code(),
			Sequence:    res.Seq,
		})
	} else {
		regs = []uint16{res.Code.Code()}
		rel = status.MeasCode
	}

	var errs []string

	for _, tgt := range w.plan.Targets {
		cli := w.clients[tgt.Endpoint]
		if cli == nil {
			errs = append(errs, fmt.Sprintf(
				"writer: missing client for endpoint %s",
				tgt.Endpoint,
			))
			continue
		}

		for _, mem := range tgt.Memories {
			dstAddr := mem.Offset + rel
			if err := cli.WriteRegisters(mem.Area, tgt.UnitID, dstAddr, regs); err != nil {
				errs = append(errs, fmt.Sprintf(
					"writer: ep=%s unit=%d area=%d addr=%d err=%v",
					tgt.Endpoint, tgt.UnitID, mem.Area, dstAddr, err,
				))
			}
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, " | "))
	}

	return nil
}
