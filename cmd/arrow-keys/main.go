// Command arrow-keys polls two GPIO buttons and reports them to a host as
// keyboard keys over BLE HID (or a local uinput keyboard), publishing key
// activity to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/sweeney/arrow-keys/internal/activity"
	"github.com/sweeney/arrow-keys/internal/config"
	"github.com/sweeney/arrow-keys/internal/gpio"
	"github.com/sweeney/arrow-keys/internal/hid"
	"github.com/sweeney/arrow-keys/internal/keys"
	"github.com/sweeney/arrow-keys/internal/mqtt"
	"github.com/sweeney/arrow-keys/internal/poller"
	"github.com/sweeney/arrow-keys/internal/status"
	"github.com/sweeney/arrow-keys/internal/web"
)

// statusInterval is how often poller counters and MQTT state are copied into
// the tracker and the heartbeat deadline is checked.
const statusInterval = time.Second

func main() {
	fs, cli := newFlagSet(os.Args[0])
	fs.Parse(os.Args[1:])

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if cli.debug {
		log.SetLevel(log.DebugLevel)
	}

	cfg, err := loadConfig(cli.configPath, fs)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := run(cfg, cli.printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// loadConfig reads the YAML file, applies explicitly set flags and validates.
func loadConfig(path string, fs *flag.FlagSet) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if err := applyFlags(&cfg, fs); err != nil {
		return cfg, err
	}
	if err := config.Validate(cfg); err != nil {
		return cfg, fmt.Errorf("invalid: %w", err)
	}
	return cfg, nil
}

func run(cfg config.Config, printState bool) error {
	// Initialize GPIO
	reader, err := gpio.NewRealReader(cfg.Input.Chip, cfg.Input.PinA, cfg.Input.PinB)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer reader.Close()

	// Print state mode
	if printState {
		a, b, err := reader.Read()
		if err != nil {
			return fmt.Errorf("read gpio: %w", err)
		}
		fmt.Println(formatPinState(a, b))
		return nil
	}

	pcfg, err := cfg.Poller()
	if err != nil {
		return err
	}

	transport, err := newTransport(cfg, pcfg)
	if err != nil {
		return fmt.Errorf("init %s transport: %w", cfg.Transport.Kind, err)
	}
	defer transport.Close()

	instanceID := uuid.NewString()

	// Initialize MQTT
	var publisher mqtt.Publisher = discardPublisher{}
	var mqttStatus mqtt.ConnectionStatus = discardPublisher{}
	if cfg.MQTT.Broker != "" {
		clientID := cfg.MQTT.ClientID
		if clientID == "" {
			clientID = "arrow-keys-" + instanceID[:8]
		}
		p := mqtt.NewRealPublisher(cfg.MQTT.Broker, clientID)
		defer p.Close()
		publisher, mqttStatus = p, p
	} else {
		log.Printf("mqtt disabled")
	}

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), instanceID, statusConfig(cfg, pcfg))
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}
	tracker.SetMQTTConnected(mqttStatus.IsConnected())
	tracker.SetPeerConnected(transport.IsConnected())

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      mqtt.EventStartup,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, mqtt.EventStartup, ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP.Addr)
	}

	// Wire the poller's reports and the transport's connection changes into the loop.
	reports := make(chan activity.Input, 64)
	peer := make(chan bool, 16)

	p := poller.New(reader, transport, transport, pcfg)
	p.SetObserver(poller.ObserverFunc(func(r keys.Report, at time.Time) {
		select {
		case reports <- activity.Input{Report: r, Time: at}:
		default:
			log.Debugf("activity queue full, dropping report %s", r)
		}
	}))
	transport.OnConnectionChange(func(connected bool) {
		select {
		case peer <- connected:
		default:
			log.Printf("connection change queue full, dropping connected=%v", connected)
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	pollDone := make(chan struct{})
	go func() {
		defer close(pollDone)
		p.Run(ctx, poller.RealClock())
	}()
	defer func() {
		cancel()
		<-pollDone
	}()

	log.Printf("started: transport=%s pins=%d/%d keys=%s/%s poll=%v startup_delay=%v broker=%q heartbeat=%v",
		cfg.Transport.Kind, cfg.Input.PinA, cfg.Input.PinB, pcfg.CodeA, pcfg.CodeB,
		pcfg.Period, pcfg.StartupDelay, cfg.MQTT.Broker, cfg.MQTT.Heartbeat)

	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	l := &loop{
		publisher:  publisher,
		mqttStatus: mqttStatus,
		tracker:    tracker,
		poller:     p,
		transport:  cfg.Transport.Kind,
		heartbeat:  cfg.MQTT.Heartbeat,
		now:        time.Now,
	}
	return l.run(reports, peer, ticker.C, sigCh)
}

func newTransport(cfg config.Config, pcfg poller.Config) (hid.Transport, error) {
	d := cfg.Device
	switch cfg.Transport.Kind {
	case config.TransportUinput:
		return hid.NewUinputTransport(d.Name, d.VendorID, d.ProductID, pcfg.CodeA, pcfg.CodeB)
	default:
		return hid.NewBLETransport(hid.BLEConfig{
			LocalName:    d.Name,
			Manufacturer: d.Manufacturer,
			VendorID:     d.VendorID,
			ProductID:    d.ProductID,
			Version:      d.Version,
			BatteryLevel: d.BatteryLevel,
		})
	}
}

func statusConfig(cfg config.Config, pcfg poller.Config) status.Config {
	return status.Config{
		DeviceName:     cfg.Device.Name,
		Transport:      cfg.Transport.Kind,
		PinA:           cfg.Input.PinA,
		PinB:           cfg.Input.PinB,
		CodeA:          pcfg.CodeA,
		CodeB:          pcfg.CodeB,
		PollMs:         pcfg.Period.Milliseconds(),
		StartupDelayMs: pcfg.StartupDelay.Milliseconds(),
		HeartbeatMs:    cfg.MQTT.Heartbeat.Milliseconds(),
		Broker:         cfg.MQTT.Broker,
		HTTPAddr:       cfg.HTTP.Addr,
	}
}

// pollerStats is the part of *poller.Poller the loop reads.
type pollerStats interface {
	State() poller.State
	Stats() poller.Stats
}

// loop owns the activity detector and everything downstream of the poller:
// key events, peer changes, heartbeats and shutdown.
type loop struct {
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker
	poller     pollerStats
	transport  string
	heartbeat  time.Duration
	now        func() time.Time
}

func (l *loop) run(reports <-chan activity.Input, peer <-chan bool, tick <-chan time.Time, sig <-chan os.Signal) error {
	detector := activity.NewDetector(l.now())

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			l.refresh()
			snap := l.tracker.Snapshot()
			event := mqtt.SystemEvent{
				Timestamp:  l.now(),
				Event:      mqtt.EventShutdown,
				Reason:     signalName,
				Retained:   true,
				RawPayload: status.FormatStatusEvent(snap, mqtt.EventShutdown, signalName),
			}
			if err := l.publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case in := <-reports:
			for _, event := range detector.Process(in) {
				log.Debugf("event: %s %s held=%v", event.Type, event.Code, event.Held)
				if err := l.publisher.Publish(event); err != nil {
					log.Printf("publish error: %v", err)
					// Don't crash on publish failure
				}
			}
			l.tracker.UpdateKeys(detector.Current(), detector.EventCountsSnapshot())

		case connected := <-peer:
			name := mqtt.EventPeerDisconnected
			if connected {
				name = mqtt.EventPeerConnected
			} else {
				// The host drops held keys on disconnect.
				detector.Reset()
				l.tracker.UpdateKeys(detector.Current(), detector.EventCountsSnapshot())
			}
			log.WithField("transport", l.transport).Printf("peer: %s", name)
			l.tracker.SetPeerConnected(connected)
			err := l.publisher.PublishSystem(mqtt.SystemEvent{
				Timestamp: l.now(),
				Event:     name,
				Reason:    l.transport,
			})
			if err != nil {
				log.Printf("failed to publish %s: %v", name, err)
			}

		case <-tick:
			t := l.now()
			l.refresh()

			// Check for heartbeat
			if hbData := detector.CheckHeartbeat(t, l.heartbeat); hbData != nil {
				log.Printf("heartbeat: uptime=%v key_down=%d key_up=%d",
					hbData.Uptime.Truncate(time.Second), hbData.Counts.Down, hbData.Counts.Up)

				// Refresh network info for heartbeat
				if net := readNetworkInfo(); net != nil {
					l.tracker.SetNetwork(net)
				}
				snap := l.tracker.Snapshot()
				hbEvent := mqtt.SystemEvent{
					Timestamp:  hbData.Timestamp,
					Event:      mqtt.EventHeartbeat,
					RawPayload: status.FormatStatusEvent(snap, mqtt.EventHeartbeat, ""),
				}
				if err := l.publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}
		}
	}
}

// refresh copies poller counters and MQTT state into the tracker.
func (l *loop) refresh() {
	if l.poller != nil {
		l.tracker.UpdatePoller(l.poller.State(), l.poller.Stats())
	}
	l.tracker.SetMQTTConnected(l.mqttStatus.IsConnected())
}

// discardPublisher stands in when no broker is configured.
type discardPublisher struct{}

func (discardPublisher) Publish(activity.Event) error         { return nil }
func (discardPublisher) PublishSystem(mqtt.SystemEvent) error { return nil }
func (discardPublisher) Close() error                         { return nil }
func (discardPublisher) IsConnected() bool                    { return false }

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

func formatPinState(a, b bool) string {
	return fmt.Sprintf("A: %s, B: %s", pressedString(a), pressedString(b))
}

func pressedString(on bool) string {
	if on {
		return "PRESSED"
	}
	return "RELEASED"
}
