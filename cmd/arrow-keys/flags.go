package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/sweeney/arrow-keys/internal/config"
)

// cliFlags holds the flags that are not config overrides.
type cliFlags struct {
	configPath string
	printState bool
	debug      bool
}

// newFlagSet declares every flag. Override defaults mirror config.Default()
// for --help; only flags given on the command line are applied.
func newFlagSet(name string) (*flag.FlagSet, *cliFlags) {
	def := config.Default()
	cli := &cliFlags{}

	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.StringVar(&cli.configPath, "config", "", "YAML config file (empty for built-in defaults)")
	fs.BoolVar(&cli.printState, "print-state", false, "Print current button state and exit")
	fs.BoolVar(&cli.debug, "debug", false, "Enable debug logging")

	fs.Duration("poll", def.Input.Poll, "GPIO polling interval")
	fs.Duration("startup-delay", def.Input.StartupDelay, "Delay before the first sample")
	fs.Int("pin-a", def.Input.PinA, "GPIO line for key A (left)")
	fs.Int("pin-b", def.Input.PinB, "GPIO line for key B (right)")
	fs.String("key-a", def.Input.KeyA, "Key reported for line A (name or 0xNN usage)")
	fs.String("key-b", def.Input.KeyB, "Key reported for line B (name or 0xNN usage)")
	fs.String("chip", def.Input.Chip, "GPIO chip")
	fs.String("transport", def.Transport.Kind, "HID transport: ble or uinput")
	fs.String("name", def.Device.Name, "Advertised device name")
	fs.String("broker", def.MQTT.Broker, "MQTT broker address (empty to disable)")
	fs.Duration("heartbeat", def.MQTT.Heartbeat, "Heartbeat interval (0 to disable)")
	fs.String("http", def.HTTP.Addr, "HTTP status address (empty to disable)")

	return fs, cli
}

// applyFlags copies explicitly set override flags onto cfg.
func applyFlags(cfg *config.Config, fs *flag.FlagSet) error {
	var err error
	fs.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		v := f.Value.(flag.Getter).Get()
		switch f.Name {
		case "poll":
			cfg.Input.Poll = v.(time.Duration)
		case "startup-delay":
			cfg.Input.StartupDelay = v.(time.Duration)
		case "pin-a":
			cfg.Input.PinA = v.(int)
		case "pin-b":
			cfg.Input.PinB = v.(int)
		case "key-a":
			cfg.Input.KeyA = v.(string)
		case "key-b":
			cfg.Input.KeyB = v.(string)
		case "chip":
			cfg.Input.Chip = v.(string)
		case "transport":
			cfg.Transport.Kind = v.(string)
		case "name":
			cfg.Device.Name = v.(string)
		case "broker":
			cfg.MQTT.Broker = v.(string)
		case "heartbeat":
			cfg.MQTT.Heartbeat = v.(time.Duration)
		case "http":
			cfg.HTTP.Addr = v.(string)
		case "config", "print-state", "debug":
		default:
			err = fmt.Errorf("unhandled flag --%s", f.Name)
		}
	})
	return err
}
