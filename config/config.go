package config

import (
	"log/slog"
	"time"

	"github.com/caarlos0/env/v8"
	"github.com/joho/godotenv"
)

type Config struct {
	AppName  string `env:"APP_NAME" envDefault:"Image transcoder"`
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"debug"`

	RateLimitMaxRequests   int `env:"RATE_LIMIT_MAX_REQUESTS" envDefault:"100"`
	RateLimitDurationInSec int `env:"RATE_LIMIT_DURATION_IN_SEC" envDefault:"5"`

	BodyLimitInMb int `env:"BODY_LIMIT_IN_MB" envDefault:"10"`

	// DefaultFormat is used when neither the request nor its host picks a format.
	DefaultFormat string `env:"DEFAULT_FORMAT" envDefault:"avif"`
	// SniffHost enables choosing the default format from the forwarded host.
	SniffHost bool `env:"SNIFF_HOST" envDefault:"true"`

	// Base64Response encodes the image body for hosts that only carry text.
	Base64Response bool `env:"BASE64_RESPONSE" envDefault:"false"`

	CORSAllowOrigins string `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`

	FetchTimeoutInSec int `env:"FETCH_TIMEOUT_IN_SEC" envDefault:"10"`

	S3Region    string `env:"S3_REGION"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
}

func New() *Config {
	// a missing .env is fine, the environment may already be populated
	_ = godotenv.Load()

	conf, err := Parse()
	if err != nil {
		slog.Error(err.Error())

		panic("Failed to parse config")
	}

	return conf
}

// Parse reads the configuration from the process environment.
func Parse() (*Config, error) {
	conf := &Config{}

	if err := env.Parse(conf); err != nil {
		return nil, err
	}

	return conf, nil
}

func (c *Config) RateLimitDuration() time.Duration {
	return time.Duration(c.RateLimitDurationInSec) * time.Second
}

func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutInSec) * time.Second
}

func (c *Config) BodyLimit() int {
	return c.BodyLimitInMb * 1024 * 1024
}

func (c *Config) S3Enabled() bool {
	return c.S3Endpoint != "" || c.S3Region != ""
}
