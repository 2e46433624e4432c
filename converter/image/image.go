package image

import (
	"context"
	"errors"
	"io"

	"github.com/h2non/bimg"
)

type Encoder interface {
	Encode(ctx context.Context, img *bimg.Image, opts bimg.Options, quality float32) ([]byte, error)
}

type CustomImage struct {
	img  *bimg.Image
	opts bimg.Options

	t Encoder
}

func NewCustomImage(t Encoder) *CustomImage {
	return &CustomImage{t: t}
}

func (ci *CustomImage) Decode(reader io.Reader) (err error) {
	buf, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	if len(buf) == 0 {
		return errors.New("empty image")
	}

	ci.img = bimg.NewImage(buf)

	return nil
}

func (ci *CustomImage) Transform(funcs ...Transform) {
	for _, f := range funcs {
		f(&ci.opts)
	}
}

func (ci *CustomImage) Encode(ctx context.Context, quality float32) (buf []byte, err error) {
	defer recoverVips(&err)

	return ci.t.Encode(ctx, ci.img, ci.opts, quality)
}

// recoverVips turns a libvips panic into an error.
func recoverVips(err *error) {
	if r := recover(); r != nil {
		switch value := r.(type) {
		case error:
			*err = value
		case string:
			*err = errors.New(value)
		default:
			*err = errors.New("libvips internal error")
		}
	}
}
