package format

import (
	"context"
	"fmt"

	"github.com/h2non/bimg"
	"go.uber.org/zap"

	"transcoder/shared/log"
)

type Webp struct {
	logger *zap.Logger
}

func MustWebp(logger *zap.Logger) *Webp {
	return &Webp{logger: logger}
}

func (w *Webp) Encode(ctx context.Context, img *bimg.Image, opts bimg.Options, quality float32) ([]byte, error) {
	logger := log.LoggerWithTrace(ctx, w.logger)
	logger.Debug(fmt.Sprintf("Converting image to webp with quality: %.0f", quality))

	opts.Type = bimg.WEBP
	opts.Quality = int(quality)

	buf, err := img.Process(opts)
	if err != nil {
		logger.Error("Error converting image to webp", zap.Error(err))
		return nil, err
	}

	return buf, nil
}
