package service

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"transcoder/api/model"
	"transcoder/converter"
	"transcoder/shared/apperr"
	"transcoder/shared/log"
)

// Transcoder is the image library: it measures images and re-encodes them.
type Transcoder interface {
	Size(buf []byte) (converter.Size, error)
	Transcode(ctx context.Context, src []byte, plan *converter.Plan, t converter.Type) ([]byte, error)
}

type ImageService struct {
	resolver   *InputResolver
	transcoder Transcoder

	tracer trace.Tracer
	logger *zap.Logger
}

func NewImageService(resolver *InputResolver, transcoder Transcoder, logger *zap.Logger) *ImageService {
	return &ImageService{
		resolver:   resolver,
		transcoder: transcoder,
		tracer:     otel.Tracer("transcoder/service"),
		logger:     logger,
	}
}

// Resolve reads the request into an ImageRequest. All errors are client errors.
func (i *ImageService) Resolve(ctx context.Context, raw model.RawRequest) (*model.ImageRequest, error) {
	ctx, span := i.tracer.Start(ctx, "ImageService.Resolve")
	defer span.End()

	req, err := i.resolver.Resolve(ctx, raw)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("image.source_bytes", len(req.Source)),
		attribute.String("image.format", req.Format.String()),
	)

	return req, nil
}

// Process decodes, optionally shrinks and re-encodes the image. The final size is
// measured from the encoded output.
func (i *ImageService) Process(ctx context.Context, req *model.ImageRequest) (*model.ImageResponse, error) {
	ctx, span := i.tracer.Start(ctx, "ImageService.Process")
	defer span.End()
	logger := log.LoggerWithTrace(ctx, i.logger)

	fail := func(err error) (*model.ImageResponse, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("Error processing image", zap.Error(err))
		return nil, apperr.Processing(err)
	}

	original, err := i.transcoder.Size(req.Source)
	if err != nil {
		return fail(err)
	}

	var plan *converter.Plan
	if p, ok := converter.PlanResize(original, req.Bounds); ok {
		plan = &p
	}

	logger.Debug(fmt.Sprintf("Processing image %dx%d to %s, bounds: %+v, plan: %+v",
		original.Width, original.Height, req.Format, req.Bounds, plan))

	out, err := i.transcoder.Transcode(ctx, req.Source, plan, req.Format)
	if err != nil {
		return fail(err)
	}

	final, err := i.transcoder.Size(out)
	if err != nil {
		return fail(fmt.Errorf("measure output: %w", err))
	}

	span.SetAttributes(
		attribute.Int("image.original_width", original.Width),
		attribute.Int("image.original_height", original.Height),
		attribute.Int("image.final_width", final.Width),
		attribute.Int("image.final_height", final.Height),
	)

	return &model.ImageResponse{
		Type:               req.Format.ContentType(),
		ContentLength:      int64(len(out)),
		ContentDisposition: fmt.Sprintf(`inline; filename="%s"`, FileName(req.SourceName, req.Format)),
		Format:             req.Format,
		Original:           original,
		Final:              final,
		Body:               bytes.NewReader(out),
	}, nil
}

// FileName swaps the extension of the source name for the output format's.
func FileName(source string, t converter.Type) string {
	stem := strings.TrimSuffix(path.Base(source), path.Ext(source))
	stem = strings.Map(func(r rune) rune {
		switch r {
		case '"', '\\', '/', '\r', '\n':
			return -1
		}
		return r
	}, stem)
	if stem == "" || stem == "." {
		stem = "image"
	}

	return stem + "." + t.Extension()
}
