package service

import (
	"strings"

	"transcoder/converter"
)

// DefaultFormatResolver picks the output format when the request does not name one.
type DefaultFormatResolver interface {
	DefaultFormat(host string) converter.Type
}

// HostFormatResolver chooses by the host the request was addressed to, so that
// avif.example.com and webp.example.com can front the same deployment.
type HostFormatResolver struct {
	Fallback converter.Type
}

func (r HostFormatResolver) DefaultFormat(host string) converter.Type {
	host = strings.ToLower(host)
	switch {
	case strings.Contains(host, "avif."):
		return converter.AVIF
	case strings.Contains(host, "webp."):
		return converter.WEBP
	}

	return fallback(r.Fallback)
}

type StaticFormatResolver struct {
	Format converter.Type
}

func (r StaticFormatResolver) DefaultFormat(string) converter.Type {
	return fallback(r.Format)
}

func fallback(t converter.Type) converter.Type {
	if t.IsZero() {
		return converter.AVIF
	}
	return t
}
