// Command oled-demo drives an SH1106 OLED over I2C with a test screen and an
// uptime line until interrupted.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/physic"

	"github.com/sweeney/arrow-keys/internal/config"
	"github.com/sweeney/arrow-keys/internal/display"
	"github.com/sweeney/arrow-keys/internal/i2c"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (empty for built-in defaults)")
	bus := flag.String("bus", "", "I2C bus name (overrides display.bus)")
	addr := flag.Uint("addr", 0, "Display I2C address (overrides display.address)")
	speed := flag.Int("speed-khz", 400, "I2C bus speed in kHz (0 keeps the bus default)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	d := cfg.Display
	if *bus != "" {
		d.Bus = *bus
	}
	if *addr != 0 {
		d.Address = uint16(*addr)
	}
	if err := config.ValidateDisplay(d); err != nil {
		log.Fatalf("config: %v", err)
	}

	b, err := i2c.Open(d.Bus, physic.Frequency(*speed)*physic.KiloHertz)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	defer b.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(d.Refresh)
	defer ticker.Stop()

	if err := run(b, d, time.Now, ticker.C, sigCh); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// run initialises the panel, redraws on every tick and blanks it on signal.
// Draw failures after init are logged and retried on the next tick.
func run(bus i2c.Bus, d config.DisplayConfig, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	dev, err := display.New(bus, d.Address, d.Width, d.Height)
	if err != nil {
		return err
	}
	if err := dev.Init(); err != nil {
		return fmt.Errorf("init display at 0x%02X: %w", d.Address, err)
	}
	if st, err := dev.Status(); err == nil {
		log.Printf("display 0x%02X ready: %dx%d status=%s", d.Address, d.Width, d.Height, st)
	}

	start := now()
	draw := func() {
		lines := []string{"up " + now().Sub(start).Truncate(time.Second).String()}
		img, err := display.RenderTestScreen(d.Title, d.QRText, lines, d.Width, d.Height)
		if err != nil {
			log.Printf("render: %v", err)
			return
		}
		dev.Clear()
		dev.DrawImage(img)
		if err := dev.Flush(); err != nil {
			log.Printf("flush: %v", err)
		}
	}

	draw()
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, blanking display", s)
			dev.Clear()
			if err := dev.Flush(); err != nil {
				log.Printf("flush: %v", err)
			}
			return dev.PowerOff()
		case <-tick:
			draw()
		}
	}
}
