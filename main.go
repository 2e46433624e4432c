package main

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/gofiber/contrib/fiberzap/v2"
	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/hyperdxio/otel-config-go/otelconfig"
	"go.uber.org/zap"

	"transcoder/api/rest"
	"transcoder/config"
	"transcoder/converter"
	img "transcoder/converter/image"
	"transcoder/service"
	"transcoder/shared/log"
	"transcoder/shared/trace"
)

//	@title			Image transcoder
//	@version		1.0
//	@description	Converts uploaded or remote images to WebP or AVIF

// @BasePath	/
func main() {
	serviceConfig := config.New()

	ctx := context.Background()

	tp := trace.InitTrace()
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			slog.Error("Error shutting down tracer provider", "error", err)
		}
	}()

	otelShutdown, err := otelconfig.ConfigureOpenTelemetry()
	if err != nil {
		slog.Error("Error configuring OpenTelemetry", "error", err)
	} else {
		defer otelShutdown()
	}

	logger := log.InitLogger(ctx, serviceConfig.LogLevel)
	defer func() {
		if err = logger.Sync(); err != nil {
			slog.Error("Error syncing logger", "error", err)
		}
	}()

	var objects service.ObjectGetter
	if serviceConfig.S3Enabled() {
		objects = mustS3(serviceConfig, logger)
	}

	fetcher := service.NewRemoteFetcher(
		&http.Client{Timeout: serviceConfig.FetchTimeout()},
		objects,
		int64(serviceConfig.BodyLimit()),
		logger,
	)

	app := fiber.New(fiber.Config{
		AppName:      serviceConfig.AppName,
		BodyLimit:    serviceConfig.BodyLimit(),
		ErrorHandler: rest.ErrorHandler(logger),
	})
	app.Use(
		recover.New(),
		requestid.New(requestid.Config{Generator: uuid.NewString}),
		otelfiber.Middleware(),
		fiberzap.New(fiberzap.Config{Logger: logger}),
		compress.New(compress.Config{Level: compress.LevelBestSpeed}),
		etag.New(),
		limiter.New(limiter.Config{
			Next: func(c *fiber.Ctx) bool {
				return c.IP() == "127.0.0.1"
			},
			Max:        serviceConfig.RateLimitMaxRequests,
			Expiration: serviceConfig.RateLimitDuration(),
		}),
		swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Image transcoder",
		}),
	)

	resolver := service.NewInputResolver(fetcher, formatResolver(serviceConfig, logger), app.Config().JSONDecoder, logger)
	codec := img.NewCodec(img.MustStrategy(logger), logger)
	imageService := service.NewImageService(resolver, codec, logger)

	rest.NewImageController(app, serviceConfig, imageService, logger)

	if err = app.Listen(":" + serviceConfig.Port); err != nil {
		logger.Panic(err.Error())
		return
	}
}

func formatResolver(cfg *config.Config, logger *zap.Logger) service.DefaultFormatResolver {
	fallback, err := converter.MakeFromString(cfg.DefaultFormat)
	if err != nil {
		logger.Warn("Unknown DEFAULT_FORMAT, using avif", zap.String("format", cfg.DefaultFormat))
		fallback = converter.AVIF
	}

	if cfg.SniffHost {
		return service.HostFormatResolver{Fallback: fallback}
	}
	return service.StaticFormatResolver{Format: fallback}
}

func mustS3(cfg *config.Config, logger *zap.Logger) *s3.S3 {
	awsConfig := &aws.Config{
		Region: aws.String(cfg.S3Region),
	}
	if cfg.S3Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.S3Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}
	if cfg.S3AccessKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(cfg.S3AccessKey, cfg.S3SecretKey, "")
	}

	awsSession, err := session.NewSession(awsConfig)
	if err != nil {
		logger.Error(err.Error())
		panic("Failed to create aws session")
	}

	return s3.New(awsSession)
}
