package format

import (
	"context"
	"fmt"

	"github.com/h2non/bimg"
	"go.uber.org/zap"

	"transcoder/shared/log"
)

type Avif struct {
	logger *zap.Logger
}

func MustAvif(logger *zap.Logger) *Avif {
	return &Avif{logger: logger}
}

func (w *Avif) Encode(ctx context.Context, img *bimg.Image, opts bimg.Options, quality float32) ([]byte, error) {
	logger := log.LoggerWithTrace(ctx, w.logger)
	logger.Debug(fmt.Sprintf("Converting image to avif with quality: %.0f", quality))

	opts.Type = bimg.AVIF
	opts.Quality = int(quality)

	buf, err := img.Process(opts)
	if err != nil {
		logger.Error("Error converting image to avif", zap.Error(err))
		return nil, err
	}

	return buf, nil
}
