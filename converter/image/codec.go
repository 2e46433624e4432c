package image

import (
	"bytes"
	"context"
	"fmt"

	"github.com/h2non/bimg"
	"go.uber.org/zap"

	"transcoder/converter"
	"transcoder/shared/log"
)

// Codec measures and transcodes images through libvips.
type Codec struct {
	strategy *Strategy
	logger   *zap.Logger
}

func NewCodec(strategy *Strategy, logger *zap.Logger) *Codec {
	return &Codec{strategy: strategy, logger: logger}
}

func (c *Codec) Size(buf []byte) (size converter.Size, err error) {
	defer recoverVips(&err)

	s, err := bimg.NewImage(buf).Size()
	if err != nil {
		return converter.Size{}, fmt.Errorf("read size: %w", err)
	}

	return converter.Size{Width: s.Width, Height: s.Height}, nil
}

func (c *Codec) Transcode(ctx context.Context, src []byte, plan *converter.Plan, t converter.Type) ([]byte, error) {
	logger := log.LoggerWithTrace(ctx, c.logger)

	encoder, ok := c.strategy.Apply(t)
	if !ok {
		return nil, fmt.Errorf("no encoder for %q", t.String())
	}

	img := NewCustomImage(encoder)
	if err := img.Decode(bytes.NewReader(src)); err != nil {
		return nil, err
	}

	img.Transform(WithPlan(plan), WithStripMetadata())

	out, err := img.Encode(ctx, t.Quality())
	if err != nil {
		logger.Error("Error transcoding image", zap.String("format", t.String()), zap.Error(err))
		return nil, err
	}

	return out, nil
}
