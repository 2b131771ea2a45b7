// Package config loads the daemon configuration from YAML.
// Fields absent from the file keep their Default() values.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/arrow-keys/internal/gpio"
	"github.com/sweeney/arrow-keys/internal/keys"
	"github.com/sweeney/arrow-keys/internal/poller"
)

// Transport kinds.
const (
	TransportBLE    = "ble"
	TransportUinput = "uinput"
)

type Config struct {
	Device    DeviceConfig    `yaml:"device"`
	Input     InputConfig     `yaml:"input"`
	Transport TransportConfig `yaml:"transport"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	HTTP      HTTPConfig      `yaml:"http"`
	Display   DisplayConfig   `yaml:"display"`
}

// DeviceConfig is how the keyboard presents itself to a host.
type DeviceConfig struct {
	Name         string `yaml:"name"`
	Manufacturer string `yaml:"manufacturer"`
	VendorID     uint16 `yaml:"vendor_id"`
	ProductID    uint16 `yaml:"product_id"`
	Version      uint16 `yaml:"version"`
	BatteryLevel uint8  `yaml:"battery_level"`
}

// InputConfig describes the two button lines and the poll timing.
type InputConfig struct {
	Chip         string        `yaml:"chip"`
	PinA         int           `yaml:"pin_a"`
	PinB         int           `yaml:"pin_b"`
	KeyA         string        `yaml:"key_a"`
	KeyB         string        `yaml:"key_b"`
	Poll         time.Duration `yaml:"poll"`
	StartupDelay time.Duration `yaml:"startup_delay"`
}

type TransportConfig struct {
	Kind string `yaml:"kind"` // ble | uinput
}

// MQTTConfig controls telemetry. An empty broker disables MQTT.
type MQTTConfig struct {
	Broker    string        `yaml:"broker"`
	ClientID  string        `yaml:"client_id"` // empty = derived from the instance ID
	Heartbeat time.Duration `yaml:"heartbeat"` // 0 = disabled
}

// HTTPConfig controls the status server. An empty address disables it.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// DisplayConfig is used by the OLED variant only.
type DisplayConfig struct {
	Bus     string        `yaml:"bus"` // periph bus name, empty = first available
	Address uint16        `yaml:"address"`
	Width   int           `yaml:"width"`
	Height  int           `yaml:"height"`
	Refresh time.Duration `yaml:"refresh"`
	Title   string        `yaml:"title"`
	QRText  string        `yaml:"qr_text"`
}

// Default returns the built-in configuration: left/right arrows on GPIO 18/15,
// 20ms ticks after a 1s startup delay, advertised over BLE.
func Default() Config {
	pc := poller.DefaultConfig()
	return Config{
		Device: DeviceConfig{
			Name:         "Arrow Keys",
			Manufacturer: "sweeney",
			VendorID:     0x1209, // pid.codes
			ProductID:    0x0001,
			Version:      0x0100,
			BatteryLevel: 100,
		},
		Input: InputConfig{
			Chip:         gpio.DefaultChip,
			PinA:         gpio.DefaultPinA,
			PinB:         gpio.DefaultPinB,
			KeyA:         pc.CodeA.String(),
			KeyB:         pc.CodeB.String(),
			Poll:         pc.Period,
			StartupDelay: pc.StartupDelay,
		},
		Transport: TransportConfig{Kind: TransportBLE},
		MQTT: MQTTConfig{
			Broker:    "tcp://127.0.0.1:1883",
			Heartbeat: 15 * time.Minute,
		},
		HTTP: HTTPConfig{Addr: ":80"},
		Display: DisplayConfig{
			Address: 0x3C,
			Width:   128,
			Height:  64,
			Refresh: time.Second,
			Title:   "Arrow Keys",
		},
	}
}

// Load reads path on top of Default(). An empty path returns the defaults.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	if err := decode(f, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Codes resolves the configured key names.
func (c Config) Codes() (a, b keys.Code, err error) {
	a, err = keys.ParseCode(c.Input.KeyA)
	if err != nil {
		return keys.CodeNone, keys.CodeNone, fmt.Errorf("input.key_a: %w", err)
	}
	b, err = keys.ParseCode(c.Input.KeyB)
	if err != nil {
		return keys.CodeNone, keys.CodeNone, fmt.Errorf("input.key_b: %w", err)
	}
	return a, b, nil
}

// Poller returns the poll loop configuration. Call Validate first.
func (c Config) Poller() (poller.Config, error) {
	a, b, err := c.Codes()
	if err != nil {
		return poller.Config{}, err
	}
	return poller.Config{
		StartupDelay: c.Input.StartupDelay,
		Period:       c.Input.Poll,
		CodeA:        a,
		CodeB:        b,
	}, nil
}
