package config

import (
	"fmt"
)

// Validate checks configuration correctness.
// It does not mutate cfg.
func Validate(cfg Config) error {
	in := cfg.Input

	if in.Poll <= 0 {
		return fmt.Errorf("input.poll must be positive, got %s", in.Poll)
	}
	if in.StartupDelay < 0 {
		return fmt.Errorf("input.startup_delay must not be negative, got %s", in.StartupDelay)
	}
	if in.PinA < 0 || in.PinB < 0 {
		return fmt.Errorf("input pins must not be negative (pin_a=%d pin_b=%d)", in.PinA, in.PinB)
	}
	if in.PinA == in.PinB {
		return fmt.Errorf("input.pin_a and input.pin_b must differ, both %d", in.PinA)
	}
	if in.Chip == "" {
		return fmt.Errorf("input.chip must be set")
	}
	if _, _, err := cfg.Codes(); err != nil {
		return err
	}

	switch cfg.Transport.Kind {
	case TransportBLE, TransportUinput:
	default:
		return fmt.Errorf("transport.kind must be %q or %q, got %q", TransportBLE, TransportUinput, cfg.Transport.Kind)
	}

	if cfg.Device.Name == "" {
		return fmt.Errorf("device.name must be set")
	}
	if cfg.Device.BatteryLevel > 100 {
		return fmt.Errorf("device.battery_level must be 0..100, got %d", cfg.Device.BatteryLevel)
	}

	if cfg.MQTT.Heartbeat < 0 {
		return fmt.Errorf("mqtt.heartbeat must not be negative, got %s", cfg.MQTT.Heartbeat)
	}

	return ValidateDisplay(cfg.Display)
}

// ValidateDisplay checks the OLED settings.
func ValidateDisplay(d DisplayConfig) error {
	// Addresses outside 0x03..0x77 are reserved on a 7-bit bus.
	if d.Address < 0x03 || d.Address > 0x77 {
		return fmt.Errorf("display.address 0x%02X outside 0x03..0x77", d.Address)
	}
	if d.Width != 128 || (d.Height != 64 && d.Height != 32) {
		return fmt.Errorf("display size %dx%d unsupported, want 128x64 or 128x32", d.Width, d.Height)
	}
	if d.Refresh <= 0 {
		return fmt.Errorf("display.refresh must be positive, got %s", d.Refresh)
	}
	return nil
}
