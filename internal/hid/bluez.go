//go:build linux

package hid

import (
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"
	log "github.com/sirupsen/logrus"
)

const (
	bluezService     = "org.bluez"
	bluezDevice      = "org.bluez.Device1"
	propertiesIface  = "org.freedesktop.DBus.Properties"
	propertiesSignal = propertiesIface + ".PropertiesChanged"
	managedObjects   = "org.freedesktop.DBus.ObjectManager.GetManagedObjects"
)

// peerWatcher reports centrals connecting to and disconnecting from the
// local adapter, keyed by device address.
type peerWatcher interface {
	Watch(fn func(addr string, connected bool)) error
	Close() error
}

// bluezWatcher follows org.bluez.Device1 "Connected" on the system bus.
// BlueZ owns the link layer, so this is where connections are visible on Linux.
type bluezWatcher struct {
	conn    *dbus.Conn
	signals chan *dbus.Signal
}

func newBluezWatcher() (*bluezWatcher, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("connect system bus: %w", err)
	}
	return &bluezWatcher{conn: conn}, nil
}

// Watch reports devices already connected, then every later change, until Close.
func (w *bluezWatcher) Watch(fn func(addr string, connected bool)) error {
	if err := w.conn.AddMatchSignal(
		dbus.WithMatchInterface(propertiesIface),
		dbus.WithMatchMember("PropertiesChanged"),
		dbus.WithMatchArg(0, bluezDevice),
	); err != nil {
		return fmt.Errorf("match PropertiesChanged: %w", err)
	}
	w.signals = make(chan *dbus.Signal, 16)
	w.conn.Signal(w.signals)

	var objects map[dbus.ObjectPath]map[string]map[string]dbus.Variant
	if err := w.conn.Object(bluezService, "/").Call(managedObjects, 0).Store(&objects); err != nil {
		log.Printf("ble: list bluez devices: %v", err)
	}
	for _, addr := range connectedDevices(objects) {
		fn(addr, true)
	}

	go func() {
		for sig := range w.signals {
			if addr, connected, ok := parseConnectedSignal(sig); ok {
				fn(addr, connected)
			}
		}
	}()
	return nil
}

func (w *bluezWatcher) Close() error {
	if w.signals != nil {
		w.conn.RemoveSignal(w.signals)
		close(w.signals)
	}
	return w.conn.Close()
}

// parseConnectedSignal extracts a Device1 "Connected" change. Other
// property changes and other interfaces are ignored.
func parseConnectedSignal(sig *dbus.Signal) (addr string, connected, ok bool) {
	if sig == nil || sig.Name != propertiesSignal || len(sig.Body) < 2 {
		return "", false, false
	}
	if iface, _ := sig.Body[0].(string); iface != bluezDevice {
		return "", false, false
	}
	changed, _ := sig.Body[1].(map[string]dbus.Variant)
	v, found := changed["Connected"]
	if !found {
		return "", false, false
	}
	connected, ok = v.Value().(bool)
	if !ok {
		return "", false, false
	}
	return deviceAddress(sig.Path), connected, true
}

// connectedDevices lists the addresses of Device1 objects with Connected=true.
func connectedDevices(objects map[dbus.ObjectPath]map[string]map[string]dbus.Variant) []string {
	var out []string
	for path, ifaces := range objects {
		props, isDevice := ifaces[bluezDevice]
		if !isDevice {
			continue
		}
		if c, _ := props["Connected"].Value().(bool); c {
			out = append(out, deviceAddress(path))
		}
	}
	return out
}

// deviceAddress turns /org/bluez/hci0/dev_AA_BB_CC_DD_EE_FF into AA:BB:CC:DD:EE:FF.
func deviceAddress(path dbus.ObjectPath) string {
	s := string(path)
	i := strings.LastIndex(s, "/dev_")
	if i < 0 {
		return s
	}
	return strings.ReplaceAll(s[i+len("/dev_"):], "_", ":")
}
