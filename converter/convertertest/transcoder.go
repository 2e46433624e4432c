// Package convertertest provides a pure Go stand-in for the libvips codec.
package convertertest

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"transcoder/converter"
)

// Transcoder reads PNG input and "encodes" to a PNG of the planned size. Calls are
// recorded so tests can inspect what the service asked for.
type Transcoder struct {
	// Err, when set, is returned from Transcode.
	Err error

	Plans   []*converter.Plan
	Formats []converter.Type
}

func (t *Transcoder) Size(buf []byte) (converter.Size, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(buf))
	if err != nil {
		return converter.Size{}, fmt.Errorf("read size: %w", err)
	}
	return converter.Size{Width: cfg.Width, Height: cfg.Height}, nil
}

func (t *Transcoder) Transcode(_ context.Context, src []byte, plan *converter.Plan, typ converter.Type) ([]byte, error) {
	t.Plans = append(t.Plans, plan)
	t.Formats = append(t.Formats, typ)

	if t.Err != nil {
		return nil, t.Err
	}

	natural, err := t.Size(src)
	if err != nil {
		return nil, err
	}

	out := natural
	if plan != nil {
		out = plan.Fit(natural)
	}

	return PNG(out.Width, out.Height), nil
}

// PNG returns an opaque PNG of the given size.
func PNG(width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
