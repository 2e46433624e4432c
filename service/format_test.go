package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"transcoder/converter"
	"transcoder/service"
)

func TestHostFormatResolver(t *testing.T) {
	r := service.HostFormatResolver{Fallback: converter.AVIF}

	for host, want := range map[string]converter.Type{
		"avif.example.com":      converter.AVIF,
		"webp.example.com":      converter.WEBP,
		"img.webp.example.com":  converter.WEBP,
		"WEBP.EXAMPLE.COM":      converter.WEBP,
		"images.example.com":    converter.AVIF,
		"":                      converter.AVIF,
		"avif.webp.example.com": converter.AVIF,
		"webpavif.example.com":  converter.AVIF,
	} {
		assert.Equal(t, want, r.DefaultFormat(host), host)
	}

	webpFirst := service.HostFormatResolver{Fallback: converter.WEBP}
	assert.Equal(t, converter.WEBP, webpFirst.DefaultFormat("localhost:8080"))
	assert.Equal(t, converter.AVIF, service.HostFormatResolver{}.DefaultFormat("localhost"))
}

func TestStaticFormatResolver(t *testing.T) {
	r := service.StaticFormatResolver{Format: converter.WEBP}

	assert.Equal(t, converter.WEBP, r.DefaultFormat("avif.example.com"))
	assert.Equal(t, converter.AVIF, service.StaticFormatResolver{}.DefaultFormat(""))
}
