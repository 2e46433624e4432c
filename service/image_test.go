package service_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"transcoder/api/model"
	"transcoder/converter"
	"transcoder/converter/convertertest"
	"transcoder/service"
	"transcoder/shared/apperr"
)

func newImageService(transcoder service.Transcoder) *service.ImageService {
	return service.NewImageService(newResolver(nil), transcoder, zap.NewNop())
}

func TestProcess_FitsInsideBox(t *testing.T) {
	transcoder := &convertertest.Transcoder{}
	svc := newImageService(transcoder)

	resp, err := svc.Process(context.Background(), &model.ImageRequest{
		Source:     convertertest.PNG(400, 200),
		SourceName: "poster.png",
		Bounds:     converter.Bounds{MaxWidth: 192, MaxHeight: 108},
		Format:     converter.WEBP,
	})
	require.NoError(t, err)

	require.Len(t, transcoder.Plans, 1)
	assert.Equal(t, &converter.Plan{Width: 192, Height: 108, Contain: true}, transcoder.Plans[0])

	assert.Equal(t, converter.Size{Width: 400, Height: 200}, resp.Original)
	assert.Equal(t, converter.Size{Width: 192, Height: 96}, resp.Final)
	assert.LessOrEqual(t, resp.Final.Width, 192)
	assert.LessOrEqual(t, resp.Final.Height, 108)
	assert.Equal(t, "image/webp", resp.Type)
	assert.Equal(t, `inline; filename="poster.webp"`, resp.ContentDisposition)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, resp.ContentLength, int64(len(body)))
}

func TestProcess_NoUpscale(t *testing.T) {
	transcoder := &convertertest.Transcoder{}
	svc := newImageService(transcoder)

	resp, err := svc.Process(context.Background(), &model.ImageRequest{
		Source: convertertest.PNG(80, 60),
		Bounds: converter.Bounds{MaxWidth: 1920},
		Format: converter.AVIF,
	})
	require.NoError(t, err)

	assert.Nil(t, transcoder.Plans[0])
	assert.Equal(t, []converter.Type{converter.AVIF}, transcoder.Formats)
	assert.Equal(t, resp.Original, resp.Final)
	assert.Equal(t, `inline; filename="image.avif"`, resp.ContentDisposition)
}

func TestProcess_Errors(t *testing.T) {
	svc := newImageService(&convertertest.Transcoder{})

	_, err := svc.Process(context.Background(), &model.ImageRequest{Source: []byte("not an image"), Format: converter.WEBP})
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, e.Code)
	assert.NotEmpty(t, e.Message)

	failing := newImageService(&convertertest.Transcoder{Err: errors.New("VipsForeignSave: unsupported")})
	_, err = failing.Process(context.Background(), &model.ImageRequest{Source: convertertest.PNG(1, 1), Format: converter.AVIF})
	e, ok = apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, e.Code)
	assert.Equal(t, "VipsForeignSave: unsupported", e.Message)
}

func TestFileName(t *testing.T) {
	for source, want := range map[string]string{
		"":               "image.webp",
		"cat.png":        "cat.webp",
		"dir/cat.jpeg":   "cat.webp",
		"archive.tar.gz": "archive.tar.webp",
		`q"uote.png`:     "quote.webp",
		".png":           "image.webp",
	} {
		assert.Equal(t, want, service.FileName(source, converter.WEBP), source)
	}
}
