package image

import (
	"go.uber.org/zap"

	"transcoder/converter"
	"transcoder/converter/image/format"
)

type Strategy struct {
	m map[converter.Type]Encoder
}

func MustStrategy(logger *zap.Logger) *Strategy {
	return &Strategy{m: map[converter.Type]Encoder{
		converter.WEBP: format.MustWebp(logger),
		converter.AVIF: format.MustAvif(logger),
	}}
}

func (s *Strategy) Apply(t converter.Type) (Encoder, bool) {
	e, ok := s.m[t]
	return e, ok
}
