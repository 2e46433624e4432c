package model

import (
	"bytes"
	"io"
	"strconv"

	"transcoder/converter"
)

// RawRequest is what the resolver needs from an incoming HTTP request.
type RawRequest struct {
	ContentType string
	Host        string
	Body        []byte
	// Encoded marks a base64 transport-encoded body.
	Encoded bool
}

// ImagePayload is the application/json request body.
type ImagePayload struct {
	ImageURL    string        `json:"imageUrl" validate:"omitempty,url"`
	ImageBase64 string        `json:"imageBase64"`
	Image       string        `json:"image"`
	MaxWidth    NumericString `json:"maxWidth"`
	MaxHeight   NumericString `json:"maxHeight"`
	Format      string        `json:"format"`
}

// NumericString accepts either a JSON number or a JSON string.
type NumericString string

func (n *NumericString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*n = ""
	case len(data) > 0 && data[0] == '"':
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return err
		}
		*n = NumericString(s)
	default:
		*n = NumericString(data)
	}
	return nil
}

// ImageRequest is a resolved request ready for transcoding.
type ImageRequest struct {
	Source []byte
	// SourceName is a file name hint for Content-Disposition.
	SourceName string
	Bounds     converter.Bounds
	Format     converter.Type
}

type ImageResponse struct {
	Type               string
	ContentLength      int64
	ContentDisposition string

	Format   converter.Type
	Original converter.Size
	Final    converter.Size

	Body io.Reader
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Usage   string `json:"usage,omitempty"`
}
