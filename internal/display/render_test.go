package display

import (
	"image/color"
	"strings"
	"testing"

	"github.com/sweeney/arrow-keys/internal/i2c"
)

func lit(c color.Color) bool {
	return color.GrayModel.Convert(c).(color.Gray).Y >= 0x80
}

func TestRenderTestScreenSize(t *testing.T) {
	for _, h := range []int{64, 32} {
		img, err := RenderTestScreen("Arrow Keys", "http://10.0.0.2/", []string{"up 5s"}, 128, h)
		if err != nil {
			t.Fatalf("h=%d: %v", h, err)
		}
		if b := img.Bounds(); b.Dx() != 128 || b.Dy() != h {
			t.Errorf("h=%d: got %v", h, b)
		}
	}
}

func TestRenderTestScreenDrawsText(t *testing.T) {
	img, err := RenderTestScreen("HELLO", "", nil, 128, 64)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var inTitle, below int
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if !lit(img.At(x, y)) {
				continue
			}
			if y < lineHeight {
				inTitle++
			} else if y > lineHeight+1 {
				below++
			}
		}
	}
	if inTitle == 0 {
		t.Error("title row should contain lit pixels")
	}
	if below != 0 {
		t.Errorf("nothing should be drawn below the title rule, got %d lit pixels", below)
	}
}

func TestRenderTestScreenQRIsFlushRight(t *testing.T) {
	img, err := RenderTestScreen("", "arrow-keys", nil, 128, 64)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var left, right int
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if !lit(img.At(x, y)) {
				continue
			}
			if x < 64 {
				left++
			} else {
				right++
			}
		}
	}
	if left != 0 {
		t.Errorf("left half should be blank without text, got %d lit pixels", left)
	}
	if right == 0 {
		t.Error("QR code should light the right half")
	}
}

func TestRenderTestScreenQRTooLarge(t *testing.T) {
	_, err := RenderTestScreen("", strings.Repeat("x", 600), nil, 128, 32)
	if err == nil {
		t.Fatal("expected error for QR code wider than half the screen")
	}
}

func TestRenderedScreenReachesPanel(t *testing.T) {
	bus := &i2c.FakeBus{}
	d, err := New(bus, 0x3C, 128, 64)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	img, err := RenderTestScreen("Arrow Keys", "", nil, 128, 64)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	d.DrawImage(img)
	if err := d.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	var nonzero bool
	for _, w := range bus.Writes() {
		if w[0] != controlData {
			continue
		}
		for _, b := range w[1:] {
			if b != 0 {
				nonzero = true
			}
		}
	}
	if !nonzero {
		t.Error("rendered text should produce non-zero display data")
	}
}
