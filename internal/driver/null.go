package driver

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

func init() {
	RegisterDriver("null", func(cfg Config) (CameraDriver, error) {
		name, _ := cfg["name"].(string)
		if name == "" {
			name = "NullCam"
		}
		return &NullDriver{name: name}, nil
	})
}

// NullDriver synthesizes a diagnostic JPEG frame instead of talking to real
// hardware, ported from original_source/Unifi/drivers/null.py's PIL-drawn
// color-bars-and-grid test pattern. It is the default driver when no
// "type" is configured.
type NullDriver struct {
	name string
}

const (
	nullFrameWidth  = 1280
	nullFrameHeight = 720
)

var colorBars = []color.RGBA{
	{255, 255, 255, 255},
	{255, 255, 0, 255},
	{0, 255, 255, 255},
	{0, 255, 0, 255},
	{255, 0, 255, 255},
	{255, 0, 0, 255},
	{0, 0, 255, 255},
}

func (d *NullDriver) GetSnapshotJPEG(ctx context.Context) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, nullFrameWidth, nullFrameHeight))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{32, 32, 32, 255}}, image.Point{}, draw.Src)

	barWidth := nullFrameWidth / len(colorBars)
	for i, c := range colorBars {
		rect := image.Rect(i*barWidth, 0, (i+1)*barWidth, nullFrameHeight/2)
		draw.Draw(img, rect, &image.Uniform{C: c}, image.Point{}, draw.Src)
	}

	gridColor := color.RGBA{60, 60, 60, 255}
	for x := 0; x < nullFrameWidth; x += 80 {
		drawVLine(img, x, nullFrameHeight/2, nullFrameHeight, gridColor)
	}
	for y := nullFrameHeight / 2; y < nullFrameHeight; y += 80 {
		drawHLine(img, 0, nullFrameWidth, y, gridColor)
	}

	text := d.name + "  " + time.Now().Format("2006-01-02 15:04:05") + "  1280x720"
	drawLabel(img, text, 10, nullFrameHeight/2+10)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawVLine(img *image.RGBA, x, y0, y1 int, c color.RGBA) {
	for y := y0; y < y1; y++ {
		img.SetRGBA(x, y, c)
	}
}

func drawHLine(img *image.RGBA, x0, x1, y int, c color.RGBA) {
	for x := x0; x < x1; x++ {
		img.SetRGBA(x, y, c)
	}
}

func drawLabel(img *image.RGBA, text string, x, y int) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	pad := 10
	box := image.Rect(x, y, x+width+2*pad, y+face.Height+2*pad)
	draw.Draw(img, box, &image.Uniform{C: color.RGBA{0, 0, 0, 255}}, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{C: color.RGBA{255, 255, 255, 255}},
		Face: face,
		Dot:  fixed.P(x+pad, y+pad+face.Ascent),
	}
	d.DrawString(text)
}

func (d *NullDriver) GetSystemStats(ctx context.Context) (SystemStats, error) {
	return hostSystemStats(ctx), nil
}

func (d *NullDriver) ApplyVideoSettings(ctx context.Context, payload VideoSettings) (VideoSettings, error) {
	video, _ := payload["video"]
	return VideoSettings{"video": video}, nil
}

func (d *NullDriver) ApplyISPSettings(ctx context.Context, payload ISPSettings) (ISPSettings, error) {
	return ISPSettings{}, nil
}

func (d *NullDriver) NetworkStatus(ctx context.Context) (NetworkStatus, error) {
	return NetworkStatus{Status: "connected"}, nil
}

func (d *NullDriver) Close() error { return nil }
