package display

import (
	"fmt"
	"image"

	"github.com/fogleman/gg"
	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font/basicfont"
)

// lineHeight is the basicfont 7x13 cell height.
const lineHeight = 13

// RenderTestScreen draws the title and info lines on the left and, when
// qrText is set, a square QR code flush right. Lines that do not fit are dropped.
func RenderTestScreen(title, qrText string, lines []string, w, h int) (image.Image, error) {
	dc := gg.NewContext(w, h)
	dc.SetRGB(0, 0, 0)
	dc.Clear()

	textWidth := w
	if qrText != "" {
		qr, err := qrcode.New(qrText, qrcode.Low)
		if err != nil {
			return nil, fmt.Errorf("encode qr: %w", err)
		}
		qr.DisableBorder = true
		img := qr.Image(h)
		size := img.Bounds().Dx()
		if size > w/2 {
			return nil, fmt.Errorf("qr code for %q needs %dpx, screen allows %dpx", qrText, size, w/2)
		}
		dc.DrawImage(img, w-size, 0)
		textWidth = w - size - 2
	}

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetRGB(1, 1, 1)

	all := append([]string{title}, lines...)
	for i, s := range all {
		baseline := float64((i+1)*lineHeight - 2)
		if int(baseline) > h {
			break
		}
		dc.DrawString(clip(dc, s, float64(textWidth)), 0, baseline)
	}
	if title != "" {
		dc.SetLineWidth(1)
		dc.DrawLine(0, lineHeight+0.5, float64(textWidth), lineHeight+0.5)
		dc.Stroke()
	}

	return dc.Image(), nil
}

// clip trims s until it fits in width pixels.
func clip(dc *gg.Context, s string, width float64) string {
	for len(s) > 0 {
		if tw, _ := dc.MeasureString(s); tw <= width {
			return s
		}
		s = s[:len(s)-1]
	}
	return s
}
