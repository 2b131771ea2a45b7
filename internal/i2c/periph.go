package i2c

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// Open initialises the host drivers and opens the named bus ("" = first available).
// A zero speed keeps the bus default.
func Open(name string, speed physic.Frequency) (BusCloser, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init host drivers: %w", err)
	}

	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", name, err)
	}

	if speed > 0 {
		if err := bus.SetSpeed(speed); err != nil {
			bus.Close()
			return nil, fmt.Errorf("set i2c speed %s: %w", speed, err)
		}
	}

	log.Printf("i2c: opened %s", bus)
	return bus, nil
}
