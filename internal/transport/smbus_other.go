// internal/transport/smbus_other.go

//go:build !linux

package transport

import (
	"errors"
	"io"

	"github.com/tamzrod/tof-replicator/internal/rfd77402"
)

func openSMBus(Config) (rfd77402.Transport, io.Closer, error) {
	return nil, nil, errors.New("smbus backend needs linux i2c-dev")
}
