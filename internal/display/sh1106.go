// Package display drives an SH1106 monochrome OLED over I2C and renders the
// test screen shown by the OLED variant.
package display

import (
	"fmt"
	"image"
	"image/color"

	"github.com/sweeney/arrow-keys/internal/i2c"
)

// Control bytes prefixed to every transfer (Co = 0).
const (
	controlCommand = 0x00
	controlData    = 0x40
)

// The SH1106 has 132 columns of RAM; 128-pixel panels are centred in it.
const columnOffset = 2

// SH1106 commands.
const (
	cmdDisplayOff       = 0xAE
	cmdDisplayOn        = 0xAF
	cmdSetClockDiv      = 0xD5
	cmdSetMultiplex     = 0xA8
	cmdSetDisplayOffset = 0xD3
	cmdSetStartLine     = 0x40
	cmdDCDC             = 0xAD
	cmdSegRemap         = 0xA1
	cmdComScanDec       = 0xC8
	cmdSetComPins       = 0xDA
	cmdSetContrast      = 0x81
	cmdSetPrecharge     = 0xD9
	cmdSetVcomDetect    = 0xDB
	cmdPumpVoltage8V    = 0x32
	cmdResumeRAM        = 0xA4
	cmdNormalDisplay    = 0xA6
	cmdSetPage          = 0xB0
	cmdSetLowerColumn   = 0x00
	cmdSetHigherColumn  = 0x10
)

// Status is the byte returned by a status read.
type Status byte

// Busy reports whether the controller is still executing a command.
func (s Status) Busy() bool { return s&0x80 != 0 }

// On reports whether the panel is powered on.
func (s Status) On() bool { return s&0x40 == 0 }

func (s Status) String() string {
	power := "off"
	if s.On() {
		power = "on"
	}
	if s.Busy() {
		return power + ",busy"
	}
	return power
}

// SH1106 is a frame-buffered display. Drawing calls only touch the buffer;
// Flush sends it to the panel.
type SH1106 struct {
	bus    i2c.Bus
	addr   uint16
	width  int
	height int
	buf    []byte // one byte per column per 8-row page
}

// New returns a driver for a width x height panel at addr. Width must be 128
// and height 64 or 32.
func New(bus i2c.Bus, addr uint16, width, height int) (*SH1106, error) {
	if width != 128 || (height != 64 && height != 32) {
		return nil, fmt.Errorf("sh1106: unsupported size %dx%d", width, height)
	}
	return &SH1106{
		bus:    bus,
		addr:   addr,
		width:  width,
		height: height,
		buf:    make([]byte, width*height/8),
	}, nil
}

// Bounds returns the drawable area.
func (d *SH1106) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.width, d.height)
}

func (d *SH1106) pages() int { return d.height / 8 }

// Command sends one or more command bytes in a single transaction.
func (d *SH1106) Command(cmds ...byte) error {
	return i2c.Send(d.bus, d.addr, append([]byte{controlCommand}, cmds...))
}

// Data sends display RAM bytes in a single transaction.
func (d *SH1106) Data(data []byte) error {
	return i2c.Send(d.bus, d.addr, append([]byte{controlData}, data...))
}

// Init runs the power-up sequence and leaves the panel on with a blank screen.
func (d *SH1106) Init() error {
	comPins := byte(0x12)
	if d.height == 32 {
		comPins = 0x02
	}

	seq := [][]byte{
		{cmdDisplayOff},
		{cmdSetClockDiv, 0x80},
		{cmdSetMultiplex, byte(d.height - 1)},
		{cmdSetDisplayOffset, 0x00},
		{cmdSetStartLine},
		{cmdDCDC, 0x8B},
		{cmdSegRemap},
		{cmdComScanDec},
		{cmdSetComPins, comPins},
		{cmdSetContrast, 0xCF},
		{cmdSetPrecharge, 0x22},
		{cmdSetVcomDetect, 0x40},
		{cmdPumpVoltage8V},
		{cmdResumeRAM},
		{cmdNormalDisplay},
	}
	for _, c := range seq {
		if err := d.Command(c...); err != nil {
			return fmt.Errorf("sh1106 init: %w", err)
		}
	}

	d.Clear()
	if err := d.Flush(); err != nil {
		return fmt.Errorf("sh1106 init: %w", err)
	}
	if err := d.Command(cmdDisplayOn); err != nil {
		return fmt.Errorf("sh1106 init: %w", err)
	}
	return nil
}

// Flush writes the frame buffer one page at a time.
func (d *SH1106) Flush() error {
	for p := 0; p < d.pages(); p++ {
		err := d.Command(
			cmdSetPage|byte(p),
			cmdSetLowerColumn|columnOffset&0x0F,
			cmdSetHigherColumn|columnOffset>>4,
		)
		if err != nil {
			return fmt.Errorf("page %d address: %w", p, err)
		}
		if err := d.Data(d.buf[p*d.width : (p+1)*d.width]); err != nil {
			return fmt.Errorf("page %d data: %w", p, err)
		}
	}
	return nil
}

// Status reads the controller status byte.
func (d *SH1106) Status() (Status, error) {
	b := make([]byte, 1)
	if err := i2c.Receive(d.bus, d.addr, b); err != nil {
		return 0, err
	}
	return Status(b[0]), nil
}

// SetContrast sets the segment drive current.
func (d *SH1106) SetContrast(v byte) error {
	return d.Command(cmdSetContrast, v)
}

// PowerOff blanks the panel. RAM contents are kept.
func (d *SH1106) PowerOff() error {
	return d.Command(cmdDisplayOff)
}

// Clear blanks the frame buffer.
func (d *SH1106) Clear() {
	for i := range d.buf {
		d.buf[i] = 0
	}
}

// SetPixel lights or clears one pixel. Out-of-range coordinates are ignored.
func (d *SH1106) SetPixel(x, y int, on bool) {
	if x < 0 || y < 0 || x >= d.width || y >= d.height {
		return
	}
	i := x + (y/8)*d.width
	bit := byte(1) << uint(y%8)
	if on {
		d.buf[i] |= bit
	} else {
		d.buf[i] &^= bit
	}
}

// Pixel reports whether a pixel is lit.
func (d *SH1106) Pixel(x, y int) bool {
	if x < 0 || y < 0 || x >= d.width || y >= d.height {
		return false
	}
	return d.buf[x+(y/8)*d.width]&(1<<uint(y%8)) != 0
}

// DrawImage copies img into the buffer, anchored at the image's Min point.
// Pixels at half luminance or brighter are lit.
func (d *SH1106) DrawImage(img image.Image) {
	b := img.Bounds()
	for y := 0; y < d.height && y < b.Dy(); y++ {
		for x := 0; x < d.width && x < b.Dx(); x++ {
			g := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			d.SetPixel(x, y, g.Y >= 0x80)
		}
	}
}
