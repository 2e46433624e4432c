package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"path"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"transcoder/api/model"
	"transcoder/converter"
	"transcoder/shared/apperr"
	"transcoder/shared/log"
	"transcoder/shared/multipart"
)

const (
	mimeJSON      = "application/json"
	mimeMultipart = "multipart/form-data"

	fieldImage     = "image"
	fieldMaxWidth  = "maxWidth"
	fieldMaxHeight = "maxHeight"
	fieldFormat    = "format"
)

const usage = `POST multipart/form-data with an "image" file field, or application/json with one of ` +
	`"imageUrl", "imageBase64" or "image". Optional fields: "maxWidth", "maxHeight", "format" (avif|webp).`

var dataURLPrefix = regexp.MustCompile(`^data:image/[A-Za-z0-9.+-]+;base64,`)

// InputResolver turns the three supported request shapes into one ImageRequest.
type InputResolver struct {
	fetcher  Fetcher
	formats  DefaultFormatResolver
	validate *validator.Validate
	decode   utils.JSONUnmarshal
	logger   *zap.Logger
}

// NewInputResolver uses encoding/json when decode is nil.
func NewInputResolver(fetcher Fetcher, formats DefaultFormatResolver, decode utils.JSONUnmarshal, logger *zap.Logger) *InputResolver {
	if decode == nil {
		decode = json.Unmarshal
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &InputResolver{
		fetcher:  fetcher,
		formats:  formats,
		validate: validate,
		decode:   decode,
		logger:   logger,
	}
}

func (r *InputResolver) Resolve(ctx context.Context, raw model.RawRequest) (*model.ImageRequest, error) {
	mediaType, _, _ := strings.Cut(raw.ContentType, ";")
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))

	var (
		req    *model.ImageRequest
		fields rawFields
		err    error
	)

	switch mediaType {
	case mimeJSON:
		req, fields, err = r.fromJSON(ctx, raw)
	case mimeMultipart:
		req, fields, err = r.fromMultipart(ctx, raw)
	default:
		return nil, apperr.UnsupportedContentType(raw.ContentType, usage)
	}
	if err != nil {
		return nil, err
	}

	if req.Bounds.MaxWidth, err = parseDimension(fieldMaxWidth, fields.maxWidth); err != nil {
		return nil, err
	}
	if req.Bounds.MaxHeight, err = parseDimension(fieldMaxHeight, fields.maxHeight); err != nil {
		return nil, err
	}

	req.Format, err = converter.MakeFromString(fields.format)
	if err != nil {
		req.Format = r.formats.DefaultFormat(raw.Host)
	}

	return req, nil
}

type rawFields struct {
	maxWidth  string
	maxHeight string
	format    string
}

func (r *InputResolver) fromJSON(ctx context.Context, raw model.RawRequest) (*model.ImageRequest, rawFields, error) {
	body := raw.Body
	if raw.Encoded {
		decoded, err := multipart.DecodeBase64(body)
		if err != nil {
			return nil, rawFields{}, apperr.BadRequestf("Invalid request body", "body is not valid base64")
		}
		body = decoded
	}

	var payload model.ImagePayload
	if err := r.decode(body, &payload); err != nil {
		return nil, rawFields{}, apperr.BadRequestf("Invalid JSON body", "%v", err)
	}
	if err := r.validate.Struct(payload); err != nil {
		return nil, rawFields{}, validationError(err)
	}

	fields := rawFields{
		maxWidth:  string(payload.MaxWidth),
		maxHeight: string(payload.MaxHeight),
		format:    payload.Format,
	}

	switch {
	case payload.ImageURL != "":
		src, err := r.fetcher.Fetch(ctx, payload.ImageURL)
		if err != nil {
			return nil, fields, err
		}
		return &model.ImageRequest{Source: src, SourceName: urlBase(payload.ImageURL)}, fields, nil
	case payload.ImageBase64 != "":
		src, err := decodeInline("imageBase64", payload.ImageBase64)
		if err != nil {
			return nil, fields, err
		}
		return &model.ImageRequest{Source: src}, fields, nil
	case payload.Image != "":
		src, err := decodeInline(fieldImage, payload.Image)
		if err != nil {
			return nil, fields, err
		}
		return &model.ImageRequest{Source: src}, fields, nil
	}

	return nil, fields, apperr.BadRequestf("Missing image", "provide one of imageUrl, imageBase64 or image")
}

func (r *InputResolver) fromMultipart(ctx context.Context, raw model.RawRequest) (*model.ImageRequest, rawFields, error) {
	logger := log.LoggerWithTrace(ctx, r.logger)

	boundary := boundaryOf(raw.ContentType)
	if boundary == "" {
		return nil, rawFields{}, apperr.BadRequest("Missing multipart boundary")
	}

	form := multipart.Parse(raw.Body, boundary, raw.Encoded)
	if form.Skipped > 0 || form.Truncated {
		logger.Warn("Malformed multipart body",
			zap.Int("skipped", form.Skipped),
			zap.Bool("truncated", form.Truncated),
			zap.Int("fields", form.Len()),
		)
	}

	var fields rawFields
	fields.maxWidth, _ = form.Value(fieldMaxWidth)
	fields.maxHeight, _ = form.Value(fieldMaxHeight)
	fields.format, _ = form.Value(fieldFormat)

	file, ok := form.File(fieldImage)
	if !ok || len(file.Data) == 0 {
		return nil, fields, apperr.BadRequest("Missing required field: image")
	}

	return &model.ImageRequest{Source: file.Data, SourceName: file.Filename}, fields, nil
}

// boundaryOf returns the text after boundary= in a content type, without quotes.
func boundaryOf(contentType string) string {
	idx := strings.Index(strings.ToLower(contentType), "boundary=")
	if idx < 0 {
		return ""
	}

	b := contentType[idx+len("boundary="):]
	if end := strings.IndexByte(b, ';'); end >= 0 {
		b = b[:end]
	}

	return strings.Trim(strings.TrimSpace(b), `"`)
}

func decodeInline(field, value string) ([]byte, error) {
	value = dataURLPrefix.ReplaceAllString(strings.TrimSpace(value), "")

	src, err := multipart.DecodeBase64([]byte(value))
	if err != nil || len(src) == 0 {
		return nil, apperr.BadRequestf("Invalid "+field, "%s is not valid base64 image data", field)
	}

	return src, nil
}

// parseDimension returns 0 for an absent value.
func parseDimension(field, value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, apperr.BadRequestf("Invalid "+field, "%s must be a positive integer, got %q", field, value)
	}

	return n, nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.BadRequestf("Invalid request", "%v", err)
	}

	fe := verrs[0]
	name := fe.Field()

	return apperr.BadRequestf("Invalid "+name, "%s failed the %q check", name, fe.Tag())
}

func urlBase(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	base := path.Base(u.Path)
	if base == "/" || base == "." {
		return ""
	}

	return base
}
