package rest

import (
	"encoding/base64"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"transcoder/api/model"
	"transcoder/config"
	"transcoder/service"
	"transcoder/shared/apperr"
	"transcoder/shared/log"
)

const (
	HeaderOriginalWidth  = "X-Original-Width"
	HeaderOriginalHeight = "X-Original-Height"
	HeaderFinalWidth     = "X-Final-Width"
	HeaderFinalHeight    = "X-Final-Height"
	HeaderOutputFormat   = "X-Output-Format"
	HeaderForwardedHost  = "X-Forwarded-Host"

	HeaderTransportEncoding = "Content-Transfer-Encoding"
)

type ImageController struct {
	cfg     *config.Config
	service *service.ImageService
	cors    cors.Config
	logger  *zap.Logger
}

func NewImageController(app *fiber.App, cfg *config.Config, service *service.ImageService, logger *zap.Logger) *ImageController {
	i := &ImageController{service: service, cfg: cfg, logger: logger}

	exposed := []string{
		fiber.HeaderContentDisposition,
		HeaderOriginalWidth, HeaderOriginalHeight,
		HeaderFinalWidth, HeaderFinalHeight,
		HeaderOutputFormat,
	}

	i.cors = cors.Config{
		AllowOrigins:  cfg.CORSAllowOrigins,
		AllowMethods:  strings.Join([]string{fiber.MethodPost, fiber.MethodOptions}, ","),
		AllowHeaders:  strings.Join([]string{fiber.HeaderContentType, HeaderTransportEncoding}, ","),
		ExposeHeaders: strings.Join(exposed, ","),
	}

	api := app.Group("/", cors.New(i.cors))

	api.Options("/", i.Options)
	api.Post("/", i.Convert)
	api.All("/", i.MethodNotAllowed)

	return i
}

// Convert image
//
//	@Summary		Convert an image to WebP or AVIF
//	@Description	Accepts a multipart upload ("image" file field) or a JSON body with imageUrl, imageBase64 or image. Optionally shrinks the image to fit maxWidth/maxHeight.
//	@Tags			image
//	@Accept			mpfd,json
//	@Produce		image/webp,image/avif
//	@Param			image		formData	file	false	"Image file"
//	@Param			maxWidth	formData	int		false	"Maximum width"
//	@Param			maxHeight	formData	int		false	"Maximum height"
//	@Param			format		formData	string	false	"Output format (avif|webp)"
//	@Success		200			{file}		file	"Returns the converted image"
//	@Failure		400			{object}	model.ErrorResponse
//	@Failure		500			{object}	model.ErrorResponse
//	@Router			/ [post]
func (i *ImageController) Convert(c *fiber.Ctx) error {
	ctx := c.UserContext()
	logger := log.LoggerWithTrace(ctx, i.logger)

	raw := model.RawRequest{
		ContentType: c.Get(fiber.HeaderContentType),
		Host:        i.host(c),
		Body:        c.Body(),
		Encoded:     strings.EqualFold(c.Get(HeaderTransportEncoding), "base64"),
	}

	req, err := i.service.Resolve(ctx, raw)
	if err != nil {
		logger.Info("Rejected image request", zap.Error(err))
		return err
	}

	image, err := i.service.Process(ctx, req)
	if err != nil {
		return err
	}

	logger.Debug(fmt.Sprintf("Converted image %dx%d -> %dx%d %s (%d bytes)",
		image.Original.Width, image.Original.Height, image.Final.Width, image.Final.Height, image.Format, image.ContentLength))

	c.Set(HeaderOriginalWidth, strconv.Itoa(image.Original.Width))
	c.Set(HeaderOriginalHeight, strconv.Itoa(image.Original.Height))
	c.Set(HeaderFinalWidth, strconv.Itoa(image.Final.Width))
	c.Set(HeaderFinalHeight, strconv.Itoa(image.Final.Height))
	c.Set(HeaderOutputFormat, image.Format.String())
	c.Set(fiber.HeaderContentDisposition, image.ContentDisposition)
	c.Set(fiber.HeaderContentType, image.Type)

	if i.cfg.Base64Response {
		return i.sendBase64(c, image)
	}

	return c.SendStream(image.Body, int(image.ContentLength))
}

func (i *ImageController) sendBase64(c *fiber.Ctx, image *model.ImageResponse) error {
	var sb strings.Builder
	enc := base64.NewEncoder(base64.StdEncoding, &sb)
	if _, err := io.Copy(enc, image.Body); err != nil {
		return apperr.Processing(err)
	}
	if err := enc.Close(); err != nil {
		return apperr.Processing(err)
	}

	c.Set(HeaderTransportEncoding, "base64")

	return c.SendString(sb.String())
}

// Options answers OPTIONS requests that are not CORS preflights; the cors
// middleware handles those before this route.
func (i *ImageController) Options(c *fiber.Ctx) error {
	c.Set(fiber.HeaderAccessControlAllowOrigin, i.allowOrigin(c.Get(fiber.HeaderOrigin)))
	c.Set(fiber.HeaderAccessControlAllowMethods, i.cors.AllowMethods)
	c.Set(fiber.HeaderAccessControlAllowHeaders, i.cors.AllowHeaders)
	c.Set(fiber.HeaderAccessControlExposeHeaders, i.cors.ExposeHeaders)
	c.Set(fiber.HeaderAllow, "POST, OPTIONS")
	return c.SendStatus(fiber.StatusNoContent)
}

// allowOrigin echoes origin when it is in the configured list.
func (i *ImageController) allowOrigin(origin string) string {
	allowed := strings.TrimSpace(i.cors.AllowOrigins)
	if allowed == "" || allowed == "*" {
		return "*"
	}

	for _, o := range strings.Split(allowed, ",") {
		o = strings.TrimSpace(o)
		if o == "*" {
			return "*"
		}
		if origin != "" && strings.EqualFold(o, origin) {
			return origin
		}
	}

	first, _, _ := strings.Cut(allowed, ",")
	return strings.TrimSpace(first)
}

func (i *ImageController) MethodNotAllowed(c *fiber.Ctx) error {
	c.Set(fiber.HeaderAllow, "POST, OPTIONS")
	return apperr.MethodNotAllowed(c.Method())
}

func (i *ImageController) host(c *fiber.Ctx) string {
	if forwarded := c.Get(HeaderForwardedHost); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	return c.Hostname()
}
