//go:build linux

package hid

import (
	"fmt"
	"sync"

	"github.com/holoplot/go-evdev"
	"github.com/sweeney/arrow-keys/internal/keys"
)

// usbBusType is BUS_USB from linux/input.h.
const usbBusType = 0x03

// evdevCodes maps HID usages to Linux input event codes.
var evdevCodes = map[keys.Code]evdev.EvCode{
	keys.CodeA: evdev.KEY_A, keys.CodeB: evdev.KEY_B, keys.CodeC: evdev.KEY_C,
	keys.CodeD: evdev.KEY_D, keys.CodeE: evdev.KEY_E, keys.CodeF: evdev.KEY_F,
	keys.CodeG: evdev.KEY_G, keys.CodeH: evdev.KEY_H, keys.CodeI: evdev.KEY_I,
	keys.CodeJ: evdev.KEY_J, keys.CodeK: evdev.KEY_K, keys.CodeL: evdev.KEY_L,
	keys.CodeM: evdev.KEY_M, keys.CodeN: evdev.KEY_N, keys.CodeO: evdev.KEY_O,
	keys.CodeP: evdev.KEY_P, keys.CodeQ: evdev.KEY_Q, keys.CodeR: evdev.KEY_R,
	keys.CodeS: evdev.KEY_S, keys.CodeT: evdev.KEY_T, keys.CodeU: evdev.KEY_U,
	keys.CodeV: evdev.KEY_V, keys.CodeW: evdev.KEY_W, keys.CodeX: evdev.KEY_X,
	keys.CodeY: evdev.KEY_Y, keys.CodeZ: evdev.KEY_Z,

	keys.Code1: evdev.KEY_1, keys.Code2: evdev.KEY_2, keys.Code3: evdev.KEY_3,
	keys.Code4: evdev.KEY_4, keys.Code5: evdev.KEY_5, keys.Code6: evdev.KEY_6,
	keys.Code7: evdev.KEY_7, keys.Code8: evdev.KEY_8, keys.Code9: evdev.KEY_9,
	keys.Code0: evdev.KEY_0,

	keys.CodeF1: evdev.KEY_F1, keys.CodeF2: evdev.KEY_F2, keys.CodeF3: evdev.KEY_F3,
	keys.CodeF4: evdev.KEY_F4, keys.CodeF5: evdev.KEY_F5, keys.CodeF6: evdev.KEY_F6,
	keys.CodeF7: evdev.KEY_F7, keys.CodeF8: evdev.KEY_F8, keys.CodeF9: evdev.KEY_F9,
	keys.CodeF10: evdev.KEY_F10, keys.CodeF11: evdev.KEY_F11, keys.CodeF12: evdev.KEY_F12,

	keys.CodeEnter:      evdev.KEY_ENTER,
	keys.CodeEscape:     evdev.KEY_ESC,
	keys.CodeBackspace:  evdev.KEY_BACKSPACE,
	keys.CodeTab:        evdev.KEY_TAB,
	keys.CodeSpace:      evdev.KEY_SPACE,
	keys.CodePageUp:     evdev.KEY_PAGEUP,
	keys.CodePageDown:   evdev.KEY_PAGEDOWN,
	keys.CodeHome:       evdev.KEY_HOME,
	keys.CodeEnd:        evdev.KEY_END,
	keys.CodeRightArrow: evdev.KEY_RIGHT,
	keys.CodeLeftArrow:  evdev.KEY_LEFT,
	keys.CodeDownArrow:  evdev.KEY_DOWN,
	keys.CodeUpArrow:    evdev.KEY_UP,
}

// eventWriter is the subset of *evdev.InputDevice used by UinputTransport.
type eventWriter interface {
	WriteOne(event *evdev.InputEvent) error
	Close() error
}

// UinputTransport types reports into a local virtual keyboard.
// It is always connected: the kernel is the host.
type UinputTransport struct {
	mu   sync.Mutex
	dev  eventWriter
	prev keys.Report
}

// NewUinputTransport creates the virtual keyboard device via /dev/uinput.
// Every code in codes must have an evdev equivalent.
func NewUinputTransport(name string, vendor, product uint16, codes ...keys.Code) (*UinputTransport, error) {
	if err := checkMapped(codes); err != nil {
		return nil, err
	}

	evCodes := make([]evdev.EvCode, 0, len(evdevCodes))
	for _, c := range evdevCodes {
		evCodes = append(evCodes, c)
	}

	dev, err := evdev.CreateDevice(name, evdev.InputID{
		BusType: usbBusType,
		Vendor:  vendor,
		Product: product,
		Version: 1,
	}, map[evdev.EvType][]evdev.EvCode{
		evdev.EV_KEY: evCodes,
	})
	if err != nil {
		return nil, fmt.Errorf("create uinput device: %w", err)
	}
	return &UinputTransport{dev: dev}, nil
}

func checkMapped(codes []keys.Code) error {
	for _, c := range codes {
		if _, ok := evdevCodes[c]; !ok {
			return fmt.Errorf("key %s has no uinput equivalent", c)
		}
	}
	return nil
}

// IsConnected always reports true.
func (t *UinputTransport) IsConnected() bool {
	return true
}

// OnConnectionChange is a no-op: the virtual device never detaches.
func (t *UinputTransport) OnConnectionChange(h ConnectionHandler) {}

type keyEvent struct {
	code keys.Code
	ev   evdev.EvCode
	down bool
}

// Send converts the difference from the previous report into key events.
// Identical consecutive reports produce no events. A report with an
// unmapped code is rejected before anything is written. If a write fails,
// the keys written so far are still closed with SYN_REPORT and remembered,
// so the next report only sends what the kernel has not seen.
func (t *UinputTransport) Send(report keys.Report) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var events []keyEvent
	for _, c := range t.prev.Codes() {
		if !report.Contains(c) {
			events = append(events, keyEvent{code: c})
		}
	}
	for _, c := range report.Codes() {
		if !t.prev.Contains(c) {
			events = append(events, keyEvent{code: c, down: true})
		}
	}
	for i := range events {
		ev, ok := evdevCodes[events[i].code]
		if !ok {
			return fmt.Errorf("no evdev mapping for key %s", events[i].code)
		}
		events[i].ev = ev
	}
	if len(events) == 0 {
		return nil
	}

	held := t.prev.Codes()
	var writeErr error
	written := 0
	for _, e := range events {
		value := int32(0)
		if e.down {
			value = 1
		}
		if err := t.dev.WriteOne(&evdev.InputEvent{Type: evdev.EV_KEY, Code: e.ev, Value: value}); err != nil {
			writeErr = fmt.Errorf("write key %s: %w", e.code, err)
			break
		}
		written++
		if e.down {
			held = append(held, e.code)
		} else {
			held = without(held, e.code)
		}
	}
	t.prev = reportOf(held)

	if written > 0 {
		if err := t.dev.WriteOne(&evdev.InputEvent{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT}); err != nil && writeErr == nil {
			writeErr = fmt.Errorf("write syn: %w", err)
		}
	}
	return writeErr
}

func without(codes []keys.Code, c keys.Code) []keys.Code {
	out := codes[:0]
	for _, x := range codes {
		if x != c {
			out = append(out, x)
		}
	}
	return out
}

func reportOf(codes []keys.Code) keys.Report {
	var r keys.Report
	for _, c := range codes {
		r.Add(c)
	}
	return r
}

// Close releases all held keys and destroys the virtual device.
func (t *UinputTransport) Close() error {
	if err := t.Send(keys.Report{}); err != nil {
		t.dev.Close()
		return err
	}
	return t.dev.Close()
}
