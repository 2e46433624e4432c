package converter

import (
	"errors"
	"strings"
)

type Type struct {
	s string
}

var (
	WEBP = Type{"webp"}
	AVIF = Type{"avif"}
)

var ErrUnknownType = errors.New("unknown type")

// MakeFromString accepts a format name in any case.
func MakeFromString(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case WEBP.s:
		return WEBP, nil
	case AVIF.s:
		return AVIF, nil
	}

	return Type{}, ErrUnknownType
}

func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := MakeFromString(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.s), nil
}

func (t Type) String() string {
	return t.s
}

func (t Type) IsZero() bool {
	return t.s == ""
}

func (t Type) ContentType() string {
	return "image/" + t.s
}

func (t Type) Extension() string {
	return t.s
}

// Quality is the fixed encoder quality on a 0-100 scale.
func (t Type) Quality() float32 {
	switch t {
	case WEBP:
		return 80
	case AVIF:
		return 60
	}
	return 0
}
