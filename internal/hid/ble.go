//go:build linux

package hid

import (
	"fmt"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
	"github.com/sweeney/arrow-keys/internal/keys"
	"tinygo.org/x/bluetooth"
)

// GATT assigned numbers used by HID-over-GATT.
var (
	uuidDeviceInformation = bluetooth.New16BitUUID(0x180A)
	uuidBattery           = bluetooth.New16BitUUID(0x180F)
	uuidHID               = bluetooth.New16BitUUID(0x1812)

	uuidManufacturerName = bluetooth.New16BitUUID(0x2A29)
	uuidPnPID            = bluetooth.New16BitUUID(0x2A50)
	uuidBatteryLevel     = bluetooth.New16BitUUID(0x2A19)
	uuidHIDInformation   = bluetooth.New16BitUUID(0x2A4A)
	uuidReportMap        = bluetooth.New16BitUUID(0x2A4B)
	uuidHIDControlPoint  = bluetooth.New16BitUUID(0x2A4C)
	uuidReport           = bluetooth.New16BitUUID(0x2A4D)
	uuidProtocolMode     = bluetooth.New16BitUUID(0x2A4E)
)

// hidInformation is bcdHID 1.11, country 0, flags "normally connectable".
var hidInformation = []byte{0x11, 0x01, 0x00, 0x02}

// protocolModeReport selects report protocol (as opposed to boot protocol).
const protocolModeReport = 0x01

// BLEConfig configures the HID-over-GATT peripheral.
type BLEConfig struct {
	LocalName    string
	Manufacturer string
	VendorID     uint16
	ProductID    uint16
	Version      uint16
	BatteryLevel uint8
}

// BLETransport is a HID-over-GATT keyboard peripheral.
// Pairing and bonding (just-works, no IO capability) are handled by the
// host's Bluetooth daemon; this type only owns the GATT database.
type BLETransport struct {
	adapter *bluetooth.Adapter
	adv     *bluetooth.Advertisement

	report  bluetooth.Characteristic
	watcher peerWatcher

	connected atomic.Bool

	mu      sync.Mutex
	handler ConnectionHandler
	peers   map[string]bool
}

// NewBLETransport enables the default adapter, registers the GATT services,
// starts advertising and follows central connections through BlueZ.
func NewBLETransport(cfg BLEConfig) (*BLETransport, error) {
	t := &BLETransport{adapter: bluetooth.DefaultAdapter}

	if err := t.adapter.Enable(); err != nil {
		return nil, fmt.Errorf("enable adapter: %w", err)
	}

	if err := t.adapter.AddService(&bluetooth.Service{
		UUID: uuidDeviceInformation,
		Characteristics: []bluetooth.CharacteristicConfig{
			{
				UUID:  uuidManufacturerName,
				Value: []byte(cfg.Manufacturer),
				Flags: bluetooth.CharacteristicReadPermission,
			},
			{
				UUID:  uuidPnPID,
				Value: pnpID(cfg.VendorID, cfg.ProductID, cfg.Version),
				Flags: bluetooth.CharacteristicReadPermission,
			},
		},
	}); err != nil {
		return nil, fmt.Errorf("add device information service: %w", err)
	}

	if err := t.adapter.AddService(&bluetooth.Service{
		UUID: uuidBattery,
		Characteristics: []bluetooth.CharacteristicConfig{
			{
				UUID:  uuidBatteryLevel,
				Value: []byte{cfg.BatteryLevel},
				Flags: bluetooth.CharacteristicReadPermission,
			},
		},
	}); err != nil {
		return nil, fmt.Errorf("add battery service: %w", err)
	}

	if err := t.adapter.AddService(&bluetooth.Service{
		UUID: uuidHID,
		Characteristics: []bluetooth.CharacteristicConfig{
			{
				UUID:  uuidHIDInformation,
				Value: hidInformation,
				Flags: bluetooth.CharacteristicReadPermission,
			},
			{
				UUID:  uuidReportMap,
				Value: ReportMap,
				Flags: bluetooth.CharacteristicReadPermission,
			},
			{
				UUID:  uuidHIDControlPoint,
				Value: []byte{0x00},
				Flags: bluetooth.CharacteristicWriteWithoutResponsePermission,
			},
			{
				UUID:  uuidProtocolMode,
				Value: []byte{protocolModeReport},
				Flags: bluetooth.CharacteristicReadPermission | bluetooth.CharacteristicWriteWithoutResponsePermission,
			},
			{
				Handle: &t.report,
				UUID:   uuidReport,
				Value:  make([]byte, KeyboardReportLen),
				Flags:  bluetooth.CharacteristicReadPermission | bluetooth.CharacteristicNotifyPermission,
			},
		},
	}); err != nil {
		return nil, fmt.Errorf("add hid service: %w", err)
	}

	t.adv = t.adapter.DefaultAdvertisement()
	if err := t.adv.Configure(bluetooth.AdvertisementOptions{
		LocalName:    cfg.LocalName,
		ServiceUUIDs: []bluetooth.UUID{uuidHID},
	}); err != nil {
		return nil, fmt.Errorf("configure advertisement: %w", err)
	}
	if err := t.adv.Start(); err != nil {
		return nil, fmt.Errorf("start advertisement: %w", err)
	}

	// The adapter's connect handler is never invoked by the BlueZ backend.
	w, err := newBluezWatcher()
	if err != nil {
		t.adv.Stop()
		return nil, err
	}
	if err := t.watch(w); err != nil {
		w.Close()
		t.adv.Stop()
		return nil, err
	}

	log.Printf("ble: advertising as %q", cfg.LocalName)
	return t, nil
}

func (t *BLETransport) watch(w peerWatcher) error {
	t.watcher = w
	if err := w.Watch(t.peerChanged); err != nil {
		return fmt.Errorf("watch peers: %w", err)
	}
	return nil
}

// peerChanged tracks every connected central. The link counts as connected
// while at least one is.
func (t *BLETransport) peerChanged(addr string, connected bool) {
	t.mu.Lock()
	if t.peers == nil {
		t.peers = make(map[string]bool)
	}
	if connected {
		t.peers[addr] = true
	} else {
		delete(t.peers, addr)
	}
	up := len(t.peers) > 0
	t.mu.Unlock()

	log.WithField("peer", addr).WithField("connected", connected).Info("ble: peer connection changed")
	t.setConnected(up)
}

// pnpID encodes the PnP ID characteristic with a USB-IF vendor ID source.
func pnpID(vendor, product, version uint16) []byte {
	return []byte{
		0x02,
		byte(vendor), byte(vendor >> 8),
		byte(product), byte(product >> 8),
		byte(version), byte(version >> 8),
	}
}

func (t *BLETransport) setConnected(connected bool) {
	if t.connected.Swap(connected) == connected {
		return
	}
	t.mu.Lock()
	h := t.handler
	t.mu.Unlock()
	if h != nil {
		h(connected)
	}
}

// IsConnected reports whether a central is connected.
func (t *BLETransport) IsConnected() bool {
	return t.connected.Load()
}

// OnConnectionChange registers h for connection changes.
func (t *BLETransport) OnConnectionChange(h ConnectionHandler) {
	t.mu.Lock()
	t.handler = h
	t.mu.Unlock()
}

// Send notifies the Report characteristic with the encoded report.
func (t *BLETransport) Send(report keys.Report) error {
	if !t.IsConnected() {
		return ErrNotConnected
	}
	if _, err := t.report.Write(EncodeKeyboard(report)); err != nil {
		return fmt.Errorf("notify report: %w", err)
	}
	return nil
}

// Close stops watching and advertising. The adapter itself stays enabled.
func (t *BLETransport) Close() error {
	if t.watcher != nil {
		if err := t.watcher.Close(); err != nil {
			log.Printf("ble: close peer watcher: %v", err)
		}
	}
	t.setConnected(false)
	if t.adv != nil {
		if err := t.adv.Stop(); err != nil {
			return fmt.Errorf("stop advertisement: %w", err)
		}
	}
	return nil
}
